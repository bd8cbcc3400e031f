package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure: no infrastructure dependency.

var (
	// Input errors, rejected before any write
	ErrInvalidActivity = errors.New("invalid activity")
	ErrUnknownContent  = errors.New("unknown content unit")

	// Identity
	ErrUnauthenticated = errors.New("unauthenticated")

	// Streak compare-and-swap lost too many races in a row
	ErrStreakContention = errors.New("streak update contended, retry later")

	// Guest import
	ErrGuestAlreadyImported = errors.New("guest streak already imported for this account")
)

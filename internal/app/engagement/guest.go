package engagement

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noor-reader/noor/internal/domain"
)

// MergeStreaks combines an account streak with a guest streak. The record
// with the later last active date wins the current run; longest is the
// max of everything seen.
func MergeStreaks(account, guest domain.Streak) domain.Streak {
	out := account
	switch {
	case guest.LastActiveDate.IsZero():
	case account.LastActiveDate.IsZero(), account.LastActiveDate.Before(guest.LastActiveDate):
		out.CurrentStreak = guest.CurrentStreak
		out.LastActiveDate = guest.LastActiveDate
	case account.LastActiveDate.Equal(guest.LastActiveDate):
		out.CurrentStreak = max(account.CurrentStreak, guest.CurrentStreak)
	}
	out.LongestStreak = max(account.LongestStreak, guest.LongestStreak, out.CurrentStreak)
	return out
}

// GuestImporter moves the install's guest-mode streak into one account.
type GuestImporter struct {
	account domain.GuestImportStore
	log     *zap.Logger
}

// NewGuestImporter creates a guest importer. log may be nil.
func NewGuestImporter(account domain.GuestImportStore, log *zap.Logger) *GuestImporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &GuestImporter{account: account, log: log}
}

// Import merges the guest streak into userID's account record. The guest
// streak can be imported once per install: a repeat, for this account or
// any other, fails with domain.ErrGuestAlreadyImported.
func (g *GuestImporter) Import(ctx context.Context, userID string) (domain.Streak, error) {
	if userID == "" {
		return domain.Streak{}, domain.ErrUnauthenticated
	}
	var gs domain.Streak
	merged, err := g.account.ImportGuestStreak(ctx, userID, func(cur, guest domain.Streak) domain.Streak {
		gs = guest
		return MergeStreaks(cur, guest)
	})
	if err != nil {
		return domain.Streak{}, fmt.Errorf("import guest streak: %w", err)
	}
	g.log.Info("guest streak imported",
		zap.String("user_id", userID),
		zap.Int("guest_current", gs.CurrentStreak),
		zap.Int("current", merged.CurrentStreak),
		zap.Int("longest", merged.LongestStreak),
	)
	return merged, nil
}

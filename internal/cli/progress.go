package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/noor-reader/noor/internal/domain"
)

// ─── Level Bar ──────────────────────────────────────────────────────────────
// Shows: Level 3 [============>.................] 42% | 580 XP to level 4

const barWidth = 30 // Characters for the progress bar

// renderBar builds [=======>............] for pct in 0-100.
func renderBar(pct float64) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	filled := int(pct / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	switch {
	case filled == barWidth:
		return "[" + strings.Repeat("=", filled) + "]"
	case filled > 0:
		return "[" + strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", empty) + "]"
	default:
		return "[" + strings.Repeat(".", barWidth) + "]"
	}
}

// printLevel writes the level line for ul.
func printLevel(w io.Writer, ul domain.UserLevel, toNext int64, pct float64) {
	fmt.Fprintf(w, "Level %d %s %3.0f%% | %d XP to level %d (total %d XP)\n",
		ul.Level, renderBar(pct), pct, toNext, ul.Level+1, ul.XP)
}

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/noor-reader/noor/internal/app/engagement"
	"github.com/noor-reader/noor/internal/domain"
)

func init() {
	addUserFlags(streakCmd, &streakUser, &streakGuest)
	addUserFlags(levelCmd, &levelUser, nil)
	rootCmd.AddCommand(streakCmd, levelCmd)
}

var (
	streakUser  string
	streakGuest bool
	levelUser   string
)

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show the current and longest reading streak",
	RunE:  runStreak,
}

var levelCmd = &cobra.Command{
	Use:   "level",
	Short: "Show XP and level progress",
	RunE:  runLevel,
}

func runStreak(cmd *cobra.Command, args []string) error {
	if !streakGuest {
		if err := requireUser(streakUser); err != nil {
			return err
		}
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := context.Background()
	var s domain.Streak
	if streakGuest {
		if d.Engine.Guest == nil {
			return fmt.Errorf("guest mode is disabled")
		}
		s, err = d.Engine.Guest.Current(ctx, "")
	} else {
		s, err = d.Engine.Streaks.Current(ctx, streakUser)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Current:     %d day(s)\n", s.CurrentStreak)
	fmt.Printf("Longest:     %d day(s)\n", s.LongestStreak)
	if s.LastActiveDate.IsZero() {
		fmt.Println("Last active: never")
	} else {
		fmt.Printf("Last active: %s\n", s.LastActiveDate)
	}
	return nil
}

func runLevel(cmd *cobra.Command, args []string) error {
	if err := requireUser(levelUser); err != nil {
		return err
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	ul, err := d.Engine.Levels.CurrentLevel(context.Background(), levelUser)
	if err != nil {
		return err
	}
	toNext, pct := engagement.LevelProgress(ul)
	printLevel(os.Stdout, ul, toNext, pct)
	return nil
}

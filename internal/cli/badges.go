package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	badgesCmd.Flags().StringVar(&badgesLang, "lang", "en", "Display language (en, ar, id)")
	addUserFlags(achievementsCmd, &achievementsUser, nil)
	achievementsCmd.Flags().StringVar(&badgesLang, "lang", "en", "Display language (en, ar, id)")
	addUserFlags(checkCmd, &checkUser, nil)
	rootCmd.AddCommand(badgesCmd, achievementsCmd, checkCmd)
}

var (
	badgesLang       string
	achievementsUser string
	checkUser        string
)

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "List every badge that can be earned",
	RunE:  runBadges,
}

var achievementsCmd = &cobra.Command{
	Use:     "achievements",
	Aliases: []string{"ach"},
	Short:   "List a user's unlocked badges",
	RunE:    runAchievements,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate badge conditions and award anything newly earned",
	RunE:  runCheck,
}

func runBadges(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tRARITY\tXP\tDESCRIPTION")
	for _, b := range d.Engine.Catalog.Display(badgesLang) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			b.ID, b.LocalizedName, b.Category, b.Rarity, b.XPReward, b.Description)
	}
	return w.Flush()
}

func runAchievements(cmd *cobra.Command, args []string) error {
	if err := requireUser(achievementsUser); err != nil {
		return err
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	unlocked, err := d.Engine.Awards.Unlocked(context.Background(), achievementsUser, badgesLang)
	if err != nil {
		return err
	}
	if len(unlocked) == 0 {
		fmt.Println("No badges yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BADGE\tNAME\tXP\tUNLOCKED")
	for _, u := range unlocked {
		name := u.BadgeID
		var xp int64
		if u.Badge != nil {
			name = u.Badge.LocalizedName
			xp = u.Badge.XPReward
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", u.BadgeID, name, xp, u.UnlockedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runCheck(cmd *cobra.Command, args []string) error {
	if err := requireUser(checkUser); err != nil {
		return err
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	ids, err := d.Engine.Awards.CheckAndAward(context.Background(), checkUser)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("Nothing new.")
		return nil
	}
	for _, b := range d.Engine.Catalog.DisplayIDs(ids) {
		fmt.Printf("Unlocked: %s %s (+%d XP)\n", b.Icon, b.Name, b.XPReward)
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noor-reader/noor/internal/app/engagement"
	"github.com/noor-reader/noor/internal/content"
	"github.com/noor-reader/noor/internal/domain"
)

func init() {
	recordCmd.Long += "\n\nHadith collections: " + strings.Join(content.Collections(), ", ")
	addUserFlags(recordCmd, &recordUser, &recordGuest)
	recordCmd.Flags().IntVarP(&recordPosition, "position", "p", 0, "Position marker (ayah number for surahs)")
	recordCmd.Flags().IntVar(&recordPages, "pages", 0, "Pages read in this session")
	recordCmd.Flags().BoolVar(&recordJSON, "json", false, "Print the raw result as JSON")
	rootCmd.AddCommand(recordCmd)
}

var (
	recordUser     string
	recordGuest    bool
	recordPosition int
	recordPages    int
	recordJSON     bool
)

var recordCmd = &cobra.Command{
	Use:   "record KIND UNIT",
	Short: "Record a reading activity",
	Long: `Record one reading activity and update the daily streak.

KIND is one of surah, hadith, dua, dhikr. UNIT is the content id, e.g.
"1" for Al-Fatihah, "bukhari:1" for a hadith, "morning" for dhikr.`,
	Example: `  noor record surah 18 --position 110 --user u1
  noor record hadith nawawi40:1 --user u1
  noor record dhikr morning --guest`,
	Args: cobra.ExactArgs(2),
	RunE: runRecord,
}

func runRecord(cmd *cobra.Command, args []string) error {
	if !recordGuest {
		if err := requireUser(recordUser); err != nil {
			return err
		}
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	in := engagement.ActivityInput{
		UserID:   recordUser,
		Kind:     domain.ActivityKind(args[0]),
		UnitID:   args[1],
		Position: recordPosition,
		Pages:    recordPages,
	}

	ctx := context.Background()
	var res domain.RecordResult
	if recordGuest {
		// Guest activity is scoped to this install.
		if in.UserID, err = d.DB.InstallID(ctx); err != nil {
			return err
		}
		res, err = d.Engine.RecordGuest(ctx, in)
	} else {
		res, err = d.Engine.Recorder.RecordActivity(ctx, in)
	}
	if err != nil {
		return err
	}

	if recordJSON {
		return printJSON(res)
	}

	if res.Duplicate {
		fmt.Println("Already recorded today.")
	} else {
		fmt.Printf("Recorded %s %s.\n", in.Kind, in.UnitID)
	}
	if res.Warning != "" {
		fmt.Printf("Warning: %s\n", res.Warning)
	}
	if res.Streak != nil {
		fmt.Printf("Streak: %d day(s) (longest %d)\n", res.Streak.CurrentStreak, res.Streak.LongestStreak)
	}
	for _, b := range d.Engine.Catalog.DisplayIDs(res.NewAchievements) {
		fmt.Printf("Unlocked: %s %s (+%d XP)\n", b.Icon, b.Name, b.XPReward)
	}
	return nil
}

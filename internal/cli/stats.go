package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	addUserFlags(statsCmd, &statsUser, nil)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print the snapshot as JSON")
	addUserFlags(historyCmd, &historyUser, nil)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum records to show")
	rootCmd.AddCommand(statsCmd, historyCmd)
}

var (
	statsUser    string
	statsJSON    bool
	historyUser  string
	historyLimit int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated reading statistics",
	RunE:  runStats,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List surah progress records, most recent first",
	RunE:  runHistory,
}

func runStats(cmd *cobra.Command, args []string) error {
	if err := requireUser(statsUser); err != nil {
		return err
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	s, err := d.Engine.Stats.Snapshot(context.Background(), statsUser)
	if err != nil {
		return err
	}
	if statsJSON {
		return printJSON(s)
	}

	fmt.Printf("Ayahs read:        %d\n", s.AyahsRead)
	fmt.Printf("Surahs started:    %d\n", s.SurahsStarted)
	fmt.Printf("Surahs completed:  %d\n", s.SurahsCompleted)
	fmt.Printf("Pages read:        %d\n", s.PagesRead)
	fmt.Printf("Hadiths read:      %d\n", s.HadithsRead)
	fmt.Printf("Duas learned:      %d\n", s.DuasLearned)
	fmt.Printf("Morning dhikr:     %d\n", s.MorningDhikr)
	fmt.Printf("Streak:            %d (longest %d)\n", s.CurrentStreak, s.LongestStreak)

	if len(s.HadithsByCollection) > 0 {
		names := make([]string, 0, len(s.HadithsByCollection))
		for name := range s.HadithsByCollection {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "COLLECTION\tHADITHS")
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%d\n", name, s.HadithsByCollection[name])
		}
		return w.Flush()
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := requireUser(historyUser); err != nil {
		return err
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	records, err := d.Engine.Progress(context.Background(), historyUser, historyLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No progress yet. Run 'noor record surah <n> --position <ayah>' to get started.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SURAH\tLAST\tFURTHEST\tPAGES\tCOMPLETED\tDATE")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%t\t%s\n",
			r.ContentUnitID,
			r.LastPosition,
			r.FurthestPosition,
			r.PagesRead,
			r.IsCompleted,
			r.DateRecorded,
		)
	}
	return w.Flush()
}

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"deck-recommender/internal/format"
	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/storage"
)

func requireHistory() (*storage.DB, error) {
	db, err := openHistory()
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, fmt.Errorf("no history database configured (--db or history.db)")
	}
	return db, nil
}

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved recommendation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := requireHistory()
		if err != nil {
			return err
		}
		defer db.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := db.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tWHEN\tALGORITHM\tOBJECTIVE\tLIVE\tEVENT\tBEST\tDECKS")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%.2f\t%d\n",
				r.ID, r.Name, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Algorithm, r.Objective,
				r.LiveType, r.EventID, r.BestValue(), len(r.Decks))
		}
		return w.Flush()
	},
}

// historyShowCmd represents the history show command
var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the decks of one saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := requireHistory()
		if err != nil {
			return err
		}
		defer db.Close()

		run, err := db.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		obj, _ := enums.ParseObjective(run.Objective)
		fmt.Printf("%s %s %s/%s event=%d member=%d (%dms)\n",
			run.ID, run.Name, run.Algorithm, run.Objective, run.EventID, run.Member, run.DurationMs)
		fmt.Print(format.FormatResult(run.Decks, obj))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.Flags().Int("limit", 20, "Number of runs to list")
}

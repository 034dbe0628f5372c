package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"deck-recommender/internal/format"
	"deck-recommender/internal/request"
	"deck-recommender/internal/utils"
	"deck-recommender/pkg/enums"
)

type batchOutput struct {
	Workers int           `json:"workers"`
	Jobs    []batchResult `json:"jobs"`
}

type batchResult struct {
	Name  string      `json:"name"`
	Error string      `json:"error,omitempty"`
	Run   interface{} `json:"run,omitempty"`
}

var batchCmd = &cobra.Command{
	Use:   "batch <jobs.json>",
	Short: "Run many recommendations concurrently",
	Long: `Run every request of a JSON array concurrently over the same data.
Each element has the shape of an HTTP /api/v1/recommend body.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var reqs []request.Request
		if err := json.Unmarshal(b, &reqs); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		tables, user, err := loadData(ctx)
		if err != nil {
			return err
		}
		workers, _ := cmd.Flags().GetInt("workers")
		if workers < 1 {
			workers = runtime.GOMAXPROCS(0)
		}
		utils.Log.Infof("Running %d jobs on %d workers", len(reqs), workers)
		results := request.ExecuteAll(ctx, tables, user, reqs, workers)

		if save, _ := cmd.Flags().GetBool("save"); save {
			db, err := openHistory()
			if err != nil {
				return err
			}
			if db == nil {
				return fmt.Errorf("--save needs a history database (--db)")
			}
			defer db.Close()
			for _, r := range results {
				if r.Err != nil {
					continue
				}
				if err := db.SaveRun(ctx, r.Run); err != nil {
					return err
				}
			}
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			out := batchOutput{Workers: workers}
			for _, r := range results {
				br := batchResult{Name: r.Name}
				if r.Err != nil {
					br.Error = r.Err.Error()
				} else {
					br.Run = r.Run
				}
				out.Jobs = append(out.Jobs, br)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		verbose, _ := cmd.Flags().GetBool("decks")
		rows := make([]format.Row, len(results))
		for i, r := range results {
			rows[i] = format.Row{Name: r.Name, Err: r.Err}
			if r.Run != nil {
				rows[i].TimeMs = r.Run.DurationMs
				rows[i].Best = r.Run.BestValue()
				rows[i].Decks = len(r.Run.Decks)
			}
			if verbose && r.Err == nil {
				obj, _ := enums.ParseObjective(reqs[i].Objective)
				fmt.Printf("── %s ──\n%s", r.Name, format.FormatResult(r.Run.Decks, obj))
			}
		}
		format.PrintTable(os.Stdout, rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().Int("workers", 0, "Concurrent jobs (0 = GOMAXPROCS)")
	batchCmd.Flags().Bool("json", false, "Output results as JSON")
	batchCmd.Flags().Bool("decks", false, "Print the decks of every job before the summary")
	batchCmd.Flags().Bool("save", false, "Save successful runs to the history database")
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"deck-recommender/internal/format"
	"deck-recommender/internal/request"
	"deck-recommender/internal/utils"
	"deck-recommender/pkg/enums"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend decks for one live",
	Long: `Recommend decks for one live. Defaults come from the "recommend" section of
the config file; flags given on the command line override them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var req request.Request
		if err := viper.UnmarshalKey("recommend", &req); err != nil {
			return fmt.Errorf("config recommend section: %w", err)
		}
		applyRequestFlags(cmd, &req)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		tables, user, err := loadData(ctx)
		if err != nil {
			return err
		}
		run, err := request.Execute(ctx, tables, user, &req)
		if err != nil {
			return err
		}
		utils.Log.Infof("Found %d decks in %.1fs", len(run.Decks), float64(run.DurationMs)/1000)

		if save, _ := cmd.Flags().GetBool("save"); save {
			db, err := openHistory()
			if err != nil {
				return err
			}
			if db == nil {
				return fmt.Errorf("--save needs a history database (--db)")
			}
			defer db.Close()
			if err := db.SaveRun(ctx, run); err != nil {
				return err
			}
			utils.Log.Infof("Saved run %s", run.ID)
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		}
		obj, _ := enums.ParseObjective(req.Objective)
		fmt.Print(format.FormatResult(run.Decks, obj))
		return nil
	},
}

// applyRequestFlags copies every flag set on the command line into req.
func applyRequestFlags(cmd *cobra.Command, req *request.Request) {
	f := cmd.Flags()
	if f.Changed("name") {
		req.Name, _ = f.GetString("name")
	}
	if f.Changed("member") {
		req.Member, _ = f.GetInt("member")
	}
	if f.Changed("limit") {
		req.Limit, _ = f.GetInt("limit")
	}
	if f.Changed("timeout") {
		req.TimeoutMs, _ = f.GetInt("timeout")
	}
	if f.Changed("objective") {
		req.Objective, _ = f.GetString("objective")
	}
	if f.Changed("algorithm") {
		req.Algorithm, _ = f.GetString("algorithm")
	}
	if f.Changed("live") {
		req.LiveType, _ = f.GetString("live")
	}
	if f.Changed("event") {
		req.EventID, _ = f.GetInt("event")
	}
	if f.Changed("special-character") {
		req.SpecialCharacterID, _ = f.GetInt("special-character")
	}
	if f.Changed("challenge-character") {
		req.ChallengeCharacterID, _ = f.GetInt("challenge-character")
	}
	if f.Changed("support-count") {
		req.SupportDeckCount, _ = f.GetInt("support-count")
	}
	if f.Changed("other-score") {
		req.OtherScore, _ = f.GetInt("other-score")
	}
	if f.Changed("music-id") {
		req.MusicID, _ = f.GetInt("music-id")
	}
	if f.Changed("difficulty") {
		req.Difficulty, _ = f.GetString("difficulty")
	}
	if f.Changed("fixed-cards") {
		req.FixedCards, _ = f.GetIntSlice("fixed-cards")
	}
	if f.Changed("fixed-characters") {
		req.FixedCharacters, _ = f.GetIntSlice("fixed-characters")
	}
	if f.Changed("filter-event-unit") {
		req.FilterEventUnit, _ = f.GetBool("filter-event-unit")
	}
	if f.Changed("reference") {
		req.SkillReference, _ = f.GetString("reference")
	}
	if f.Changed("keep-training") {
		req.KeepTrainingState, _ = f.GetBool("keep-training")
	}
	if f.Changed("bonus-targets") {
		req.BonusTargets, _ = f.GetIntSlice("bonus-targets")
	}
}

// addRequestFlags declares the flags read by applyRequestFlags.
func addRequestFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("name", "", "Label stored with the run")
	f.Int("member", 5, "Cards per deck (2-5)")
	f.Int("limit", 10, "Number of decks to return")
	f.Int("timeout", 0, "Search timeout in milliseconds (0 = none)")
	f.String("objective", "score", "Value to maximize: score, power, skill, bonus")
	f.String("algorithm", "dfs", "Search algorithm: dfs, sa, ga")
	f.String("live", "solo", "Live type: solo, multi, challenge, cheerful, auto")
	f.Int("event", 0, "Event id (0 = no event)")
	f.Int("special-character", 0, "World bloom chapter character")
	f.Int("challenge-character", 0, "Challenge live character")
	f.Int("support-count", 0, "World bloom support deck size (0 = event default)")
	f.Int("other-score", 0, "Teammates' total score for multi event points")
	f.Int("music-id", 0, "Music id for live score")
	f.String("difficulty", "master", "Music difficulty")
	f.IntSlice("fixed-cards", nil, "Card ids that must be in the deck (the leader is always the strongest skill)")
	f.IntSlice("fixed-characters", nil, "Character ids that must be in the deck")
	f.Bool("filter-event-unit", false, "Only use cards of the event unit and pure virtual singers")
	f.String("reference", "max", "Teammate skill reference strategy: max, min, average")
	f.Bool("keep-training", false, "Keep each card's current training state")
	f.IntSlice("bonus-targets", nil, "Exact event bonuses for the bonus objective")
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	addRequestFlags(recommendCmd)
	recommendCmd.Flags().Bool("json", false, "Output the run as JSON")
	recommendCmd.Flags().Bool("save", false, "Save the run to the history database")
}

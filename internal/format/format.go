// Package format renders recommended decks and batch summaries as text.
package format

import (
	"fmt"
	"io"
	"strings"

	"deck-recommender/pkg/deck"
	"deck-recommender/pkg/enums"
)

// ── Decks ──

func bonusText(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *p)
}

// headline is the objective value as the player reads it.
func headline(d *deck.Detail, obj enums.Objective) string {
	switch obj {
	case enums.ObjectivePower:
		return fmt.Sprintf("power %d", d.Power.Total)
	case enums.ObjectiveSkill:
		return fmt.Sprintf("skill %.1f%%", d.MultiLiveScoreUp)
	case enums.ObjectiveBonus:
		return fmt.Sprintf("bonus %.1f%%", d.TotalBonus())
	}
	return fmt.Sprintf("score %d", d.Score)
}

// WriteDeck writes one ranked deck: a summary line, then one line per slot.
func WriteDeck(w io.Writer, rank int, d *deck.Detail, obj enums.Objective) {
	fmt.Fprintf(w, "第%d位：%s | 综合力 %d | 加成 %s", rank, headline(d, obj), d.Power.Total, bonusText(d.EventBonus))
	if d.SupportDeckBonus != nil {
		fmt.Fprintf(w, " + 应援 %s", bonusText(d.SupportDeckBonus))
	}
	if d.LiveScore > 0 {
		fmt.Fprintf(w, " | live %d / life %d", d.LiveScore, d.Life)
	}
	fmt.Fprintln(w)

	for i := range d.Cards {
		c := &d.Cards[i]
		role := "队员"
		if i == 0 {
			role = "队长"
		}
		training := ""
		if c.PreTraining {
			training = " (花前)"
		}
		fmt.Fprintf(w, "  %s：%d 角色%d Lv%d SLv%d MR%d -> %d / %.0f%%%s\n",
			role, c.CardID, c.CharacterID, c.Level, c.SkillLevel, c.MasterRank,
			c.Power.Total, c.ScoreUp, training)
	}
}

// FormatResult renders decks best first, separated like the calculator output.
func FormatResult(decks []*deck.Detail, obj enums.Objective) string {
	var b strings.Builder
	for i, d := range decks {
		if i > 0 {
			b.WriteString("===================\n")
		}
		WriteDeck(&b, i+1, d, obj)
	}
	return b.String()
}

// ── Batch table ──

// Row is one batch job in the summary table.
type Row struct {
	Name   string
	Best   float64
	Decks  int
	TimeMs int64
	Err    error
}

// PrintTable writes a fixed-width summary of batch rows with a total line.
func PrintTable(w io.Writer, rows []Row) {
	fmt.Fprintf(w, "%-24s %14s %6s %8s\n", "Job", "Best", "Decks", "Time")
	fmt.Fprintf(w, "%-24s %14s %6s %8s\n", "------------------------", "--------------", "------", "--------")
	var totalMs int64
	failed := 0
	for _, r := range rows {
		totalMs += r.TimeMs
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "%-24s %14s %6s %7.1fs  %v\n", r.Name, "error", "-", float64(r.TimeMs)/1000, r.Err)
			continue
		}
		fmt.Fprintf(w, "%-24s %14.2f %6d %7.1fs\n", r.Name, r.Best, r.Decks, float64(r.TimeMs)/1000)
	}
	fmt.Fprintf(w, "%-24s %14s %6s %8s\n", "------------------------", "--------------", "------", "--------")
	fmt.Fprintf(w, "%-24s %14s %6d %7.1fs\n", "TOTAL", fmt.Sprintf("%d failed", failed), len(rows), float64(totalMs)/1000)
}

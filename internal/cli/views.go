package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/tiebreak/internal/engine"
	"github.com/roach88/tiebreak/internal/ir"
)

// tournamentView is a tournament as printed by show and the mutating
// commands.
type tournamentView struct {
	ir.Tournament
}

func (v tournamentView) RenderText(w io.Writer) {
	t := v.Tournament
	fmt.Fprintf(w, "%s (%s)\n", t.Name, t.ID)
	fmt.Fprintf(w, "status: %s\n", t.Status)
	fmt.Fprintf(w, "scoring: %d/%d/%d, shuffle %s\n",
		t.Config.WinPoints, t.Config.DrawPoints, t.Config.LossPoints, t.Config.ShufflePolicy)

	names := make([]string, len(t.Players))
	for i, p := range t.Players {
		names[i] = p.Name
	}
	fmt.Fprintf(w, "players: %s\n", strings.Join(names, ", "))

	viewed, _ := t.ViewedRoundIndex()
	for i, r := range t.Rounds {
		marker := ""
		if i == viewed {
			marker = " (viewing)"
		}
		fmt.Fprintf(w, "\nround %d%s\n", r.Number, marker)
		for j, m := range r.Matches {
			fmt.Fprintf(w, "  %d. %s: %s\n", j+1, t.MatchLabel(m), resultLabel(m))
		}
	}
}

func resultLabel(m ir.Match) string {
	if m.Result == nil {
		if m.IsBye() {
			return "bye"
		}
		return "pending"
	}
	return string(*m.Result)
}

// summary is one row of the list command.
type summary struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Status  ir.Status `json:"status"`
	Players int       `json:"players"`
	Rounds  int       `json:"rounds"`
}

type listView []summary

func (v listView) RenderText(w io.Writer) {
	if len(v) == 0 {
		fmt.Fprintln(w, "No tournaments.")
		return
	}
	for _, s := range v {
		fmt.Fprintf(w, "%s  %-24s %-12s %d players, %d rounds\n", s.ID, s.Name, s.Status, s.Players, s.Rounds)
	}
}

type standingsView struct {
	TournamentID string            `json:"tournament_id"`
	Standings    []engine.Standing `json:"standings"`
}

func (v standingsView) RenderText(w io.Writer) {
	width := len("player")
	for _, s := range v.Standings {
		width = max(width, len(s.Player.Name))
	}
	fmt.Fprintf(w, "%4s  %-*s  %-7s  %3s  %3s  %4s  %3s\n", "rank", width, "player", "w-l-d", "pts", "omw", "oomw", "pen")
	for _, s := range v.Standings {
		fmt.Fprintf(w, "%4d  %-*s  %-7s  %3d  %3d  %4d  %3d\n",
			s.Rank, width, s.Player.Name,
			fmt.Sprintf("%d-%d-%d", s.Record.Wins, s.Record.Losses, s.Record.Draws),
			s.Breakdown.MatchPoints, s.Breakdown.OMW, s.Breakdown.OOMW, s.Breakdown.LossPenalty)
	}
}

type scoreView struct {
	PlayerID  string           `json:"player_id"`
	Name      string           `json:"name"`
	Score     int64            `json:"score"`
	Breakdown engine.Breakdown `json:"breakdown"`
	Record    ir.Record        `json:"record"`
}

func (v scoreView) RenderText(w io.Writer) {
	fmt.Fprintf(w, "%s: %d\n", v.Name, v.Score)
	fmt.Fprintf(w, "  record: %d-%d-%d\n", v.Record.Wins, v.Record.Losses, v.Record.Draws)
	fmt.Fprintf(w, "  match points: %d\n", v.Breakdown.MatchPoints)
	fmt.Fprintf(w, "  omw: %d\n", v.Breakdown.OMW)
	fmt.Fprintf(w, "  oomw: %d\n", v.Breakdown.OOMW)
	fmt.Fprintf(w, "  loss penalty: %d\n", v.Breakdown.LossPenalty)
}

type historyView struct {
	TournamentID string         `json:"tournament_id"`
	Operations   []ir.Operation `json:"operations"`
}

func (v historyView) RenderText(w io.Writer) {
	if len(v.Operations) == 0 {
		fmt.Fprintln(w, "No operations.")
		return
	}
	for _, op := range v.Operations {
		fmt.Fprintf(w, "%5d  %s  %-18s %s\n", op.Revision, op.AppliedAt.UTC().Format("2006-01-02 15:04:05"), op.Op, formatArgs(op.Args))
	}
}

// formatArgs renders operation arguments as sorted key=value pairs,
// leaving out the tournament ID every entry carries.
func formatArgs(args map[string]any) string {
	var parts []string
	for _, k := range slices.Sorted(maps.Keys(args)) {
		if k == "tournament_id" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	return strings.Join(parts, " ")
}

// message is a plain confirmation.
type message struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

func (m message) RenderText(w io.Writer) {
	fmt.Fprintln(w, m.Message)
}

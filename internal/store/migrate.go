package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/tiebreak/internal/ir"
)

// ErrUnsupportedVersion is returned for documents newer than this build.
var ErrUnsupportedVersion = errors.New("unsupported document version")

// versionProbe reads just enough of a document to pick a decoder.
type versionProbe struct {
	Version *int            `json:"version"`
	State   json.RawMessage `json:"state"`
}

// Legacy (version 0) shape: camelCase fields inside a state envelope,
// point settings flattened onto the tournament.
type legacyEnvelope struct {
	State struct {
		Tournaments []legacyTournament `json:"tournaments"`
	} `json:"state"`
}

type legacyTournament struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Players      []ir.Player   `json:"players"`
	Rounds       []legacyRound `json:"rounds"`
	CurrentRound *int          `json:"currentRound"`
	Status       ir.Status     `json:"status"`
	WinPoints    *int          `json:"winPoints"`
	DrawPoints   *int          `json:"drawPoints"`
	LossPoints   *int          `json:"lossPoints"`
}

type legacyRound struct {
	ID      string        `json:"id"`
	Number  int           `json:"number"`
	Matches []legacyMatch `json:"matches"`
}

type legacyMatch struct {
	ID      string     `json:"id"`
	PlayerA string     `json:"playerA"`
	PlayerB string     `json:"playerB"`
	Result  *ir.Result `json:"result"`
}

// MigrateDocument decodes a stored document of any known version and
// returns it in the current shape. Missing creation times are filled from
// the document's save time, or loadedAt when that is unknown too.
func MigrateDocument(raw []byte, loadedAt time.Time) (ir.Document, error) {
	var probe versionProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ir.Document{}, fmt.Errorf("decode document: %w", err)
	}

	var doc ir.Document
	switch {
	case len(probe.State) > 0 || (probe.Version != nil && *probe.Version == 0):
		tournaments, err := migrateLegacy(raw)
		if err != nil {
			return ir.Document{}, err
		}
		doc = ir.Document{Tournaments: tournaments}
	case probe.Version == nil:
		return ir.Document{}, fmt.Errorf("decode document: missing version")
	case *probe.Version > ir.DocumentVersion:
		return ir.Document{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, *probe.Version)
	default:
		if err := json.Unmarshal(raw, &doc); err != nil {
			return ir.Document{}, fmt.Errorf("decode document v%d: %w", *probe.Version, err)
		}
	}

	fill := doc.SavedAt
	if fill.IsZero() {
		fill = loadedAt.UTC()
	}
	for i := range doc.Tournaments {
		normalizeTournament(&doc.Tournaments[i], fill)
	}

	return ir.NewDocument(doc.Tournaments, fill), nil
}

func migrateLegacy(raw []byte) ([]ir.Tournament, error) {
	var env legacyEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode legacy document: %w", err)
	}

	out := make([]ir.Tournament, 0, len(env.State.Tournaments))
	for _, lt := range env.State.Tournaments {
		cfg := ir.DefaultConfig()
		if lt.WinPoints != nil {
			cfg.WinPoints = *lt.WinPoints
		}
		if lt.DrawPoints != nil {
			cfg.DrawPoints = *lt.DrawPoints
		}
		if lt.LossPoints != nil {
			cfg.LossPoints = *lt.LossPoints
		}

		t := ir.Tournament{
			ID:           lt.ID,
			Name:         lt.Name,
			Players:      lt.Players,
			Rounds:       make([]ir.Round, len(lt.Rounds)),
			CurrentRound: lt.CurrentRound,
			Status:       lt.Status,
			Config:       cfg,
		}
		for i, lr := range lt.Rounds {
			r := ir.Round{ID: lr.ID, Number: lr.Number, Matches: make([]ir.Match, len(lr.Matches))}
			for j, lm := range lr.Matches {
				r.Matches[j] = ir.Match{ID: lm.ID, PlayerA: lm.PlayerA, PlayerB: lm.PlayerB, Result: lm.Result}
			}
			t.Rounds[i] = r
		}
		out = append(out, t)
	}
	return out, nil
}

// normalizeTournament repairs what older writers could leave behind:
// nil lists, a missing status or creation time, a dangling view pointer.
func normalizeTournament(t *ir.Tournament, createdAt time.Time) {
	if t.Players == nil {
		t.Players = []ir.Player{}
	}
	if t.Rounds == nil {
		t.Rounds = []ir.Round{}
	}
	for i := range t.Rounds {
		if t.Rounds[i].Matches == nil {
			t.Rounds[i].Matches = []ir.Match{}
		}
	}
	if t.Status == "" {
		t.Status = ir.StatusSetup
	}
	if t.Config.ShufflePolicy == "" {
		t.Config.ShufflePolicy = ir.ShuffleAllRounds
	}
	if t.CurrentRound != nil && (*t.CurrentRound < 0 || *t.CurrentRound >= len(t.Rounds)) {
		t.CurrentRound = nil
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = createdAt
	}
}

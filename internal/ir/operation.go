package ir

import "time"

// Operation names recorded in the journal.
const (
	OpCreate           = "create"
	OpDraft            = "draft"
	OpRemoveTournament = "remove_tournament"
	OpAddPlayer        = "add_player"
	OpRenamePlayer     = "rename_player"
	OpRemovePlayer     = "remove_player"
	OpStart            = "start"
	OpRecordResult     = "record_result"
	OpAdvance          = "advance"
	OpNavigate         = "navigate"
	OpTopCut           = "top_cut"
	OpFinish           = "finish"
)

// Operation is one applied change, as journaled by the state container.
//
// Seq is assigned by the store on append; Revision comes from the
// container's clock. Digest identifies the operation and its arguments,
// StateDigest the tournament snapshot it produced (empty after removal).
type Operation struct {
	Seq          int64          `json:"seq"`
	Revision     int64          `json:"revision"`
	TournamentID string         `json:"tournament_id"`
	Op           string         `json:"op"`
	Args         map[string]any `json:"args"`
	Digest       string         `json:"digest"`
	StateDigest  string         `json:"state_digest"`
	AppliedAt    time.Time      `json:"applied_at"`
}

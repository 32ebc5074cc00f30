package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/tiebreak/internal/engine"
	"github.com/roach88/tiebreak/internal/ir"
)

type createRequest struct {
	Name    string    `json:"name"`
	Players []string  `json:"players"`
	Config  ir.Config `json:"config"`
	// Draft creates the tournament in setup instead of pairing round 1.
	Draft bool `json:"draft"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type resultRequest struct {
	// Result is null to clear the match.
	Result *ir.Result `json:"result"`
}

type navigateRequest struct {
	Direction string `json:"direction"`
}

type topCutRequest struct {
	N int `json:"n"`
}

type scoreResponse struct {
	PlayerID  string           `json:"player_id"`
	Score     int64            `json:"score"`
	Breakdown engine.Breakdown `json:"breakdown"`
	Record    ir.Record        `json:"record"`
}

func (s *Server) listTournaments(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, envelope{"tournaments": s.container.Tournaments()})
}

func (s *Server) createTournament(w http.ResponseWriter, r *http.Request) {
	req := createRequest{Config: ir.DefaultConfig()}
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}

	var (
		t   ir.Tournament
		err error
	)
	if req.Draft {
		t, err = s.container.DraftTournament(r.Context(), req.Name, req.Config)
	} else {
		t, err = s.container.CreateTournament(r.Context(), req.Name, req.Players, req.Config)
	}
	if err != nil {
		s.createError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, envelope{"tournament": t})
}

func (s *Server) getTournament(w http.ResponseWriter, r *http.Request) {
	t, ok := s.container.Tournament(chi.URLParam(r, "tournamentID"))
	if !ok {
		s.notFound(w)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"tournament": t})
}

func (s *Server) removeTournament(w http.ResponseWriter, r *http.Request) {
	if !s.container.RemoveTournament(r.Context(), chi.URLParam(r, "tournamentID")) {
		s.notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addPlayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tournamentID")
	var req nameRequest
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	if !s.exists(w, id) {
		return
	}
	playerID, ok := s.container.AddPlayer(r.Context(), id, req.Name)
	if !ok {
		s.notApplied(w, ir.OpAddPlayer)
		return
	}
	t, _ := s.container.Tournament(id)
	s.writeJSON(w, http.StatusCreated, envelope{"player_id": playerID, "tournament": t})
}

func (s *Server) renamePlayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tournamentID")
	var req nameRequest
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	s.apply(w, r, ir.OpRenamePlayer, func() bool {
		return s.container.RenamePlayer(r.Context(), id, chi.URLParam(r, "playerID"), req.Name)
	})
}

func (s *Server) removePlayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tournamentID")
	s.apply(w, r, ir.OpRemovePlayer, func() bool {
		return s.container.RemovePlayer(r.Context(), id, chi.URLParam(r, "playerID"))
	})
}

func (s *Server) startTournament(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tournamentID")
	s.apply(w, r, ir.OpStart, func() bool {
		return s.container.StartTournament(r.Context(), id)
	})
}

func (s *Server) recordResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tournamentID")
	var req resultRequest
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	s.apply(w, r, ir.OpRecordResult, func() bool {
		return s.container.RecordResult(r.Context(), id,
			chi.URLParam(r, "roundID"), chi.URLParam(r, "matchID"), req.Result)
	})
}

func (s *Server) advanceRound(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tournamentID")
	s.apply(w, r, ir.OpAdvance, func() bool {
		return s.container.AdvanceToNextRound(r.Context(), id)
	})
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tournamentID")
	var req navigateRequest
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	dir, err := engine.ParseDirection(req.Direction)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	s.apply(w, r, ir.OpNavigate, func() bool {
		return s.container.Navigate(r.Context(), id, dir)
	})
}

func (s *Server) topCut(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tournamentID")
	var req topCutRequest
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	s.apply(w, r, ir.OpTopCut, func() bool {
		return s.container.TopCut(r.Context(), id, req.N)
	})
}

func (s *Server) finish(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tournamentID")
	s.apply(w, r, ir.OpFinish, func() bool {
		return s.container.Finish(r.Context(), id)
	})
}

func (s *Server) standings(w http.ResponseWriter, r *http.Request) {
	rows, ok := s.container.Standings(chi.URLParam(r, "tournamentID"))
	if !ok {
		s.notFound(w)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"standings": rows})
}

func (s *Server) playerScore(w http.ResponseWriter, r *http.Request) {
	t, ok := s.container.Tournament(chi.URLParam(r, "tournamentID"))
	if !ok {
		s.notFound(w)
		return
	}
	playerID := chi.URLParam(r, "playerID")
	if _, ok := t.Player(playerID); !ok {
		s.notFound(w)
		return
	}
	b := engine.ScoreBreakdown(t, playerID)
	s.writeJSON(w, http.StatusOK, scoreResponse{
		PlayerID:  playerID,
		Score:     b.Pack(),
		Breakdown: b,
		Record:    engine.WinsLossesDraws(t, playerID),
	})
}

func (s *Server) tournamentHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.notFound(w)
		return
	}
	id := chi.URLParam(r, "tournamentID")
	ops, err := s.history.ReadOperations(r.Context(), id)
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"operations": ops})
}

func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tournamentID")
	if !s.exists(w, id) {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "tournament_id", id, "error", err)
		return
	}

	client := s.hub.NewClient(conn, id)
	if !s.hub.Register(client) {
		conn.Close()
		return
	}
	go client.writePump()
	go client.readPump()

	// Registered first, so no update between the snapshot and the
	// subscription is lost.
	if t, ok := s.container.Tournament(id); ok {
		s.hub.SendTo(client, Message{Type: TypeTournamentUpdated, RoomID: id, Payload: t})
	}
}

// exists writes 404 and reports false when the tournament is unknown.
func (s *Server) exists(w http.ResponseWriter, id string) bool {
	if _, ok := s.container.Tournament(id); !ok {
		s.notFound(w)
		return false
	}
	return true
}

// apply runs a container operation and answers with the updated
// tournament, 404 for an unknown tournament or 409 when it did not apply.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, op string, fn func() bool) {
	id := chi.URLParam(r, "tournamentID")
	if !s.exists(w, id) {
		return
	}
	if !fn() {
		s.notApplied(w, op)
		return
	}
	t, _ := s.container.Tournament(id)
	s.writeJSON(w, http.StatusOK, envelope{"tournament": t})
}

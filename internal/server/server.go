package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/tiebreak/internal/ir"
	"github.com/roach88/tiebreak/internal/state"
)

const shutdownTimeout = 15 * time.Second

// History reads the operation journal. *store.Store implements it.
type History interface {
	ReadOperations(ctx context.Context, tournamentID string) ([]ir.Operation, error)
}

// Server serves one container over HTTP and websockets.
type Server struct {
	container   *state.Container
	hub         *Hub
	history     History
	logger      *slog.Logger
	corsOrigins []string
	upgrader    websocket.Upgrader
	unsubscribe func()
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithHistory enables GET /tournaments/{id}/history.
func WithHistory(h History) Option {
	return func(s *Server) {
		s.history = h
	}
}

// WithCORSOrigins sets the allowed browser origins. Default: any origin.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// New creates a Server and subscribes its hub to the container.
// Call Close to unsubscribe.
func New(c *state.Container, opts ...Option) *Server {
	s := &Server{container: c}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if len(s.corsOrigins) == 0 {
		s.corsOrigins = []string{"*"}
	}
	s.hub = NewHub(s.logger)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.unsubscribe = c.Subscribe(s.publish)
	return s
}

// Hub returns the server's websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Close unsubscribes from the container and disconnects websocket clients.
func (s *Server) Close() {
	s.unsubscribe()
	s.hub.Close()
}

// publish forwards container events to the tournament's room.
func (s *Server) publish(ev state.Event) {
	if ev.Removed {
		s.hub.BroadcastToRoom(ev.TournamentID, Message{
			Type:    TypeTournamentRemoved,
			RoomID:  ev.TournamentID,
			Payload: map[string]string{"id": ev.TournamentID},
		})
		return
	}
	s.hub.BroadcastToRoom(ev.TournamentID, Message{
		Type:    TypeTournamentUpdated,
		RoomID:  ev.TournamentID,
		Payload: ev.Tournament,
	})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.corsOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/tournaments", func(r chi.Router) {
		r.Get("/", s.listTournaments)
		r.Post("/", s.createTournament)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", s.getTournament)
			r.Delete("/", s.removeTournament)

			r.Post("/players", s.addPlayer)
			r.Patch("/players/{playerID}", s.renamePlayer)
			r.Delete("/players/{playerID}", s.removePlayer)
			r.Get("/players/{playerID}/score", s.playerScore)

			r.Post("/start", s.startTournament)
			r.Put("/rounds/{roundID}/matches/{matchID}/result", s.recordResult)
			r.Post("/advance", s.advanceRound)
			r.Post("/navigate", s.navigate)
			r.Post("/top-cut", s.topCut)
			r.Post("/finish", s.finish)

			r.Get("/standings", s.standings)
			r.Get("/history", s.tournamentHistory)
			r.Get("/ws", s.serveWs)
		})
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled or the server fails.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("starting server", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server", "timeout", shutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.hub.Close()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

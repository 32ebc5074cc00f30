package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/tiebreak/internal/engine"
	"github.com/roach88/tiebreak/internal/server"
	"github.com/roach88/tiebreak/internal/state"
	"github.com/roach88/tiebreak/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve tournaments over HTTP and websockets",
		Long: `Serve the tournament database as a JSON API under /tournaments, with a
websocket feed of updates at /tournaments/{id}/ws.

Every applied operation is journaled and the tournament list is saved
after each change. The server stops gracefully on SIGINT or SIGTERM.

Examples:
  tiebreak serve --db ./tiebreak.db
  tiebreak serve --addr 127.0.0.1:9000`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", rootOpts.Config.Addr, "listen address")
	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	logger := opts.Logger

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	st, err := store.Open(opts.DB)
	if err != nil {
		return storageError("failed to open database", err)
	}
	defer st.Close()

	snapshots := st.Snapshots(opts.StorageKey, time.Now)
	tournaments, err := snapshots.Load(ctx)
	if err != nil {
		return storageError("failed to load tournaments", err)
	}
	rev, err := st.LastRevision(ctx)
	if err != nil {
		return storageError("failed to read journal", err)
	}

	var engineOpts []engine.Option
	if opts.Seed != nil {
		engineOpts = append(engineOpts, engine.WithSeed(*opts.Seed))
	}
	c := state.New(
		state.WithEngine(engine.New(engineOpts...)),
		state.WithTournaments(tournaments),
		state.WithRevision(rev),
		state.WithJournal(st),
		state.WithPersister(snapshots),
		state.WithLogger(logger),
	)

	srv := server.New(c,
		server.WithLogger(logger),
		server.WithHistory(st),
		server.WithCORSOrigins(opts.Config.CORSOrigins),
	)
	defer srv.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info("serving tournaments", "db", opts.DB, "tournaments", len(tournaments), "revision", rev)
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s. Press Ctrl-C to stop.\n", opts.Addr)

	if err := srv.Serve(ctx, opts.Addr); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	return nil
}

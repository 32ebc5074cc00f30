package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/tiebreak/internal/ir"
)

// AppendOperation writes an operation to the journal and returns its seq.
func (s *Store) AppendOperation(ctx context.Context, op ir.Operation) (int64, error) {
	args, err := marshalArgs(op.Args)
	if err != nil {
		return 0, fmt.Errorf("append operation: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO operations
		(revision, tournament_id, op, args, digest, state_digest, applied_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		op.Revision,
		op.TournamentID,
		op.Op,
		args,
		op.Digest,
		op.StateDigest,
		formatTime(op.AppliedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("append operation: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append operation: %w", err)
	}
	return seq, nil
}

// ReadOperations returns journaled operations in seq order. An empty
// tournamentID returns the whole journal.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ReadOperations(ctx context.Context, tournamentID string) ([]ir.Operation, error) {
	var (
		rows *sql.Rows
		err  error
	)
	const cols = `seq, revision, tournament_id, op, args, digest, state_digest, applied_at`
	if tournamentID == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT `+cols+` FROM operations ORDER BY seq ASC`)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+cols+` FROM operations WHERE tournament_id = ? ORDER BY seq ASC`, tournamentID)
	}
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	ops := []ir.Operation{}
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}
	return ops, nil
}

// LastRevision returns the highest journaled revision, or 0 for an
// empty journal.
func (s *Store) LastRevision(ctx context.Context) (int64, error) {
	var rev sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(revision) FROM operations`).Scan(&rev); err != nil {
		return 0, fmt.Errorf("last revision: %w", err)
	}
	return rev.Int64, nil
}

func scanOperation(rows *sql.Rows) (ir.Operation, error) {
	var (
		op        ir.Operation
		args      string
		appliedAt string
	)
	if err := rows.Scan(&op.Seq, &op.Revision, &op.TournamentID, &op.Op, &args, &op.Digest, &op.StateDigest, &appliedAt); err != nil {
		return ir.Operation{}, fmt.Errorf("scan operation: %w", err)
	}

	var err error
	if op.Args, err = unmarshalArgs(args); err != nil {
		return ir.Operation{}, err
	}
	if op.AppliedAt, err = parseTime(appliedAt); err != nil {
		return ir.Operation{}, err
	}
	return op, nil
}

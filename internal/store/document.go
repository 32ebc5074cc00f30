package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/tiebreak/internal/ir"
)

// DefaultKey is the storage key the tournament document lives under.
const DefaultKey = "tiebreakers-storage"

// SaveDocument replaces the document stored under key.
// The document is written as canonical JSON.
func (s *Store) SaveDocument(ctx context.Context, key string, doc ir.Document) error {
	data, err := ir.MarshalCanonical(doc)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (key, version, document, saved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			version = excluded.version,
			document = excluded.document,
			saved_at = excluded.saved_at
	`, key, doc.Version, string(data), formatTime(doc.SavedAt))
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// LoadDocument reads the document stored under key, migrating older
// versions to the current shape. found is false when nothing is stored.
func (s *Store) LoadDocument(ctx context.Context, key string, loadedAt time.Time) (doc ir.Document, found bool, err error) {
	var raw string
	err = s.db.QueryRowContext(ctx, `
		SELECT document FROM documents WHERE key = ?
	`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.NewDocument(nil, loadedAt), false, nil
	}
	if err != nil {
		return ir.Document{}, false, fmt.Errorf("load document: %w", err)
	}

	doc, err = MigrateDocument([]byte(raw), loadedAt)
	if err != nil {
		return ir.Document{}, true, fmt.Errorf("load document %q: %w", key, err)
	}
	return doc, true, nil
}

// Snapshots binds a store to one document key. It satisfies the state
// container's persistence interface.
type Snapshots struct {
	store *Store
	key   string
	now   func() time.Time
}

// Snapshots returns a handle for the document under key.
// An empty key uses DefaultKey.
func (s *Store) Snapshots(key string, now func() time.Time) *Snapshots {
	if key == "" {
		key = DefaultKey
	}
	if now == nil {
		now = time.Now
	}
	return &Snapshots{store: s, key: key, now: now}
}

// Save writes the tournaments as a current-version document.
func (p *Snapshots) Save(ctx context.Context, tournaments []ir.Tournament) error {
	return p.store.SaveDocument(ctx, p.key, ir.NewDocument(tournaments, p.now()))
}

// Load returns the stored tournaments, or an empty list if none are saved.
func (p *Snapshots) Load(ctx context.Context) ([]ir.Tournament, error) {
	doc, _, err := p.store.LoadDocument(ctx, p.key, p.now())
	if err != nil {
		return nil, err
	}
	return doc.Tournaments, nil
}

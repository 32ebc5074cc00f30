package ir

import "time"

// Document is the persisted form of the whole tournament list.
// Version tags the shape so older documents can be migrated on load.
type Document struct {
	Version     int          `json:"version"`
	SavedAt     time.Time    `json:"saved_at"`
	Tournaments []Tournament `json:"tournaments"`
}

// NewDocument wraps tournaments in a current-version document.
func NewDocument(tournaments []Tournament, savedAt time.Time) Document {
	if tournaments == nil {
		tournaments = []Tournament{}
	}
	return Document{
		Version:     DocumentVersion,
		SavedAt:     savedAt.UTC(),
		Tournaments: tournaments,
	}
}

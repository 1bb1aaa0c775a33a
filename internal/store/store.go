package store

import (
	"time"

	"markbook/internal/record"
)

// Document is the persisted shape of the whole registry: every student
// record plus the time of the last write. Students are kept sorted by
// student number so repeated saves of the same state are identical.
type Document struct {
	Students    []*record.StudentRecord `json:"students"`
	LastUpdated time.Time               `json:"lastUpdated"`
}

// Store persists the full registry state. Load returns an empty document
// when no prior state exists; Save replaces the backing state wholesale.
type Store interface {
	Load() (Document, error)
	Save(Document) error
}

// Package store persists layout documents under stable IDs.
//
// A store holds documents only. Computed layouts and rendered artifacts
// belong in a [cache.Cache] since they can always be recomputed.
//
// Three backends implement [Store]:
//   - [MemoryStore]: in-process map, for tests and single-process servers
//   - [FileStore]: one JSON file per document, for the CLI and small servers
//   - [MongoStore]: a MongoDB collection, for replicated servers
//
// # Usage
//
//	st, err := store.NewFileStore("")  // Uses ~/.config/tablelayout/programs/
//	rec, err := st.Put(ctx, store.NewID(), doc)
//	rec, err = st.Get(ctx, rec.ID)
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/tablelayout/pkg/errors"
	"github.com/matzehuels/tablelayout/pkg/program"
)

// Record is a stored document with its bookkeeping fields.
type Record struct {
	ID        string            `json:"id" bson:"_id"`
	Document  *program.Document `json:"document" bson:"document"`
	Hash      string            `json:"hash" bson:"hash"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" bson:"updated_at"`
}

// Store is the interface for document storage backends.
type Store interface {
	// Get returns the record for id, or an error with code
	// PROGRAM_NOT_FOUND.
	Get(ctx context.Context, id string) (*Record, error)

	// Put validates doc and stores it under id, keeping the creation time
	// of any record it replaces.
	Put(ctx context.Context, id string, doc *program.Document) (*Record, error)

	// Delete removes the record for id, or returns an error with code
	// PROGRAM_NOT_FOUND.
	Delete(ctx context.Context, id string) error

	// List returns all records ordered by ID.
	List(ctx context.Context) ([]*Record, error)

	// Close releases any resources held by the store.
	Close() error
}

// NewID returns a fresh random document ID.
func NewID() string {
	return uuid.NewString()
}

// newRecord validates its inputs and builds the record that replaces prev,
// which may be nil.
func newRecord(prev *Record, id string, doc *program.Document, now time.Time) (*Record, error) {
	if err := errors.ValidateProgramID(id); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document is required")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	doc, err := cloneDocument(doc)
	if err != nil {
		return nil, err
	}
	rec := &Record{
		ID:        id,
		Document:  doc,
		Hash:      program.Hash(doc),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if prev != nil {
		rec.CreatedAt = prev.CreatedAt
	}
	return rec, nil
}

// cloneDocument deep-copies a document so stored records never alias
// caller-owned slices or maps.
func cloneDocument(doc *program.Document) (*program.Document, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProgram, err, "encode document")
	}
	var out program.Document
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode document")
	}
	return &out, nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeProgramNotFound, "program %q not found", id)
}

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/tablelayout/pkg/errors"
	"github.com/matzehuels/tablelayout/pkg/program"
)

func sampleDoc(label string) *program.Document {
	return &program.Document{
		Name: "sample",
		Rows: []program.Row{{Cells: []program.CellSpec{
			{ID: "a", Label: label, Preferred: []float64{40, 20}},
		}}},
	}
}

// testStore runs the behaviour every backend shares.
func testStore(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		_, err := s.Get(ctx, "missing")
		if !errors.Is(err, errors.ErrCodeProgramNotFound) {
			t.Errorf("Get(missing) error = %v, want PROGRAM_NOT_FOUND", err)
		}
	})

	t.Run("put and get", func(t *testing.T) {
		doc := sampleDoc("first")
		rec, err := s.Put(ctx, "alpha", doc)
		if err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if rec.ID != "alpha" || rec.Hash != program.Hash(doc) {
			t.Errorf("Put() = %+v", rec)
		}

		// Mutating the caller's document must not change the stored one.
		doc.Rows[0].Cells[0].Label = "mutated"

		got, err := s.Get(ctx, "alpha")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Document.Rows[0].Cells[0].Label != "first" {
			t.Errorf("stored label = %q, want first", got.Document.Rows[0].Cells[0].Label)
		}
	})

	t.Run("replace keeps created time", func(t *testing.T) {
		before, err := s.Get(ctx, "alpha")
		if err != nil {
			t.Fatal(err)
		}
		time.Sleep(2 * time.Millisecond)
		after, err := s.Put(ctx, "alpha", sampleDoc("second"))
		if err != nil {
			t.Fatal(err)
		}
		if !after.CreatedAt.Equal(before.CreatedAt) {
			t.Errorf("CreatedAt changed: %v -> %v", before.CreatedAt, after.CreatedAt)
		}
		if !after.UpdatedAt.After(before.UpdatedAt) {
			t.Errorf("UpdatedAt did not advance: %v -> %v", before.UpdatedAt, after.UpdatedAt)
		}
		if after.Hash == before.Hash {
			t.Error("Hash should change with the document")
		}
	})

	t.Run("list", func(t *testing.T) {
		if _, err := s.Put(ctx, "beta", sampleDoc("b")); err != nil {
			t.Fatal(err)
		}
		recs, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(recs) != 2 || recs[0].ID != "alpha" || recs[1].ID != "beta" {
			ids := make([]string, len(recs))
			for i, r := range recs {
				ids[i] = r.ID
			}
			t.Errorf("List() ids = %v, want [alpha beta]", ids)
		}
	})

	t.Run("rejects invalid", func(t *testing.T) {
		tests := []struct {
			name string
			id   string
			doc  *program.Document
			code errors.Code
		}{
			{"bad id", "../etc", sampleDoc("x"), errors.ErrCodeInvalidID},
			{"nil document", "gamma", nil, errors.ErrCodeInvalidInput},
			{"bad span", "gamma", &program.Document{Rows: []program.Row{{Cells: []program.CellSpec{{Colspan: ptr(999)}}}}}, errors.ErrCodeInvalidSpan},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := s.Put(ctx, tt.id, tt.doc)
				if !errors.Is(err, tt.code) {
					t.Errorf("Put() error = %v, want %s", err, tt.code)
				}
			})
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := s.Delete(ctx, "beta"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if err := s.Delete(ctx, "beta"); !errors.Is(err, errors.ErrCodeProgramNotFound) {
			t.Errorf("second Delete() error = %v, want PROGRAM_NOT_FOUND", err)
		}
	})
}

func ptr(v int) *int { return &v }

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	testStore(t, s)
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer s.Close()
	if s.Path() != dir {
		t.Errorf("Path() = %q, want %q", s.Path(), dir)
	}
	testStore(t, s)

	// Stray files are ignored by List.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	recs, err := s.List(context.Background())
	if err != nil || len(recs) != 1 {
		t.Errorf("List() = %d records, %v; want 1", len(recs), err)
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("TABLELAYOUT_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TABLELAYOUT_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoOptions{
		URI:        uri,
		Database:   "tablelayout_test",
		Collection: "programs_" + uuid.NewString()[:8],
	})
	if err != nil {
		t.Fatalf("NewMongoStore() error = %v", err)
	}
	defer func() {
		_ = s.coll.Drop(ctx)
		_ = s.Close()
	}()
	testStore(t, s)
}

func TestNewMongoStoreRequiresURI(t *testing.T) {
	_, err := NewMongoStore(context.Background(), MongoOptions{})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if a == b {
		t.Error("NewID() returned the same id twice")
	}
	if err := errors.ValidateProgramID(a); err != nil {
		t.Errorf("NewID() = %q is not a valid program id: %v", a, err)
	}
}

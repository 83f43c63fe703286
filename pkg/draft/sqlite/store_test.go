package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-census/pkg/draft"
	"github.com/goliatone/go-census/pkg/model"
)

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDraftRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drafts.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})

	ctx := context.Background()
	manager := draft.NewManager(store)
	snapshot := draft.Snapshot{
		Step:      2,
		Timestamp: time.Date(2024, time.May, 4, 8, 0, 0, 0, time.UTC),
		Values:    map[string]model.Value{"head_firstname": model.Text("Asha")},
		Counts:    map[model.Group]int{model.GroupChild: 1},
	}
	if !manager.Save(ctx, snapshot) {
		t.Fatalf("save failed")
	}
	snapshot.Step = 3
	if !manager.Save(ctx, snapshot) {
		t.Fatalf("overwrite failed")
	}

	got, ok := manager.Load(ctx)
	if !ok {
		t.Fatalf("load failed")
	}
	if diff := cmp.Diff(snapshot, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	if err := store.Clear(ctx, draft.DefaultKey); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := store.Load(ctx, draft.DefaultKey); !errors.Is(err, draft.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReopenSkipsAppliedMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drafts.db")
	for i := 0; i < 2; i++ {
		store, err := Open(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := store.Save(context.Background(), "k", []byte("{}")); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}
}

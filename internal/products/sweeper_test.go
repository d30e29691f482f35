package products

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/catalogo-backend/pkg/db/models"
	"github.com/angelmondragon/catalogo-backend/pkg/storage/disk"
)

func newTestSweeper(t *testing.T, repo *fakeRepo, grace time.Duration) (*Sweeper, *disk.Store) {
	t.Helper()
	store, err := disk.NewStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	sweeper, err := NewSweeper(repo, store, testLogger(), grace)
	if err != nil {
		t.Fatalf("NewSweeper failed: %v", err)
	}
	return sweeper, store
}

func saveAsset(t *testing.T, store *disk.Store, content string) string {
	t.Helper()
	name, err := store.Save(context.Background(), strings.NewReader(content), "img.png")
	if err != nil {
		t.Fatalf("saving asset: %v", err)
	}
	return name
}

func TestSweepRemovesUnreferencedAssets(t *testing.T) {
	repo := newFakeRepo()
	sweeper, store := newTestSweeper(t, repo, 0)
	ctx := context.Background()

	kept := saveAsset(t, store, "kept")
	seedRow(t, repo, "Lamp", kept)
	orphanA := saveAsset(t, store, "a")
	orphanB := saveAsset(t, store, "b")

	report, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if report.Scanned != 3 || report.Orphans != 2 || report.Removed != 2 {
		t.Fatalf("unexpected report %+v", report)
	}

	names := storedFileNames(t, store)
	if len(names) != 1 || names[0] != kept {
		t.Fatalf("expected only the referenced asset to survive, found %v", names)
	}
	for _, orphan := range []string{orphanA, orphanB} {
		if err := store.Remove(ctx, orphan); !errors.Is(err, disk.ErrNotFound) {
			t.Fatalf("orphan %s should be gone, remove err=%v", orphan, err)
		}
	}
}

func TestSweepKeepsOrphansInsideGracePeriod(t *testing.T) {
	repo := newFakeRepo()
	sweeper, store := newTestSweeper(t, repo, time.Hour)

	saveAsset(t, store, "fresh upload")

	report, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if report.Scanned != 1 || report.Orphans != 1 || report.Removed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if names := storedFileNames(t, store); len(names) != 1 {
		t.Fatalf("fresh orphan must be kept, found %v", names)
	}
}

func TestSweepAggregatesRemovalFailures(t *testing.T) {
	repo := newFakeRepo()
	store := &failingLister{
		entries:   []disk.Entry{{Name: "a.png"}, {Name: "b.png"}},
		removeErr: errors.New("permission denied"),
	}
	sweeper, err := NewSweeper(repo, store, testLogger(), 0)
	if err != nil {
		t.Fatalf("NewSweeper failed: %v", err)
	}

	report, err := sweeper.Sweep(context.Background())
	if err == nil {
		t.Fatal("expected aggregated removal error")
	}
	if report.Orphans != 2 || report.Removed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if got := len(store.removed); got != 2 {
		t.Fatalf("expected both removals attempted, got %d", got)
	}
}

func seedRow(t *testing.T, repo *fakeRepo, nombre, imagenURL string) {
	t.Helper()
	row := models.Producto{Nombre: nombre, ImagenURL: imagenURL}
	if _, err := repo.Insert(context.Background(), &row); err != nil {
		t.Fatalf("seeding row: %v", err)
	}
}

// failingLister reports fixed entries and fails every removal.
type failingLister struct {
	entries   []disk.Entry
	removeErr error
	removed   []string
}

func (f *failingLister) List(_ context.Context) ([]disk.Entry, error) {
	return f.entries, nil
}

func (f *failingLister) Remove(_ context.Context, storedName string) error {
	f.removed = append(f.removed, storedName)
	return f.removeErr
}

func (f *failingLister) URL(storedName string) string {
	return "/uploads/" + storedName
}

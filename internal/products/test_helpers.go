package products

import (
	"context"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"testing"

	"github.com/angelmondragon/catalogo-backend/pkg/db/models"
	"github.com/angelmondragon/catalogo-backend/pkg/logger"
	"github.com/angelmondragon/catalogo-backend/pkg/storage/disk"
	"gorm.io/gorm"
)

// fakeRepo is an in-memory repository with per-operation failure injection.
type fakeRepo struct {
	rows   map[uint]models.Producto
	nextID uint

	insertErr error
	updateErr error
	deleteErr error
	findErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[uint]models.Producto{}}
}

func (f *fakeRepo) Insert(_ context.Context, producto *models.Producto) (*models.Producto, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.nextID++
	producto.ID = f.nextID
	f.rows[producto.ID] = *producto
	return producto, nil
}

func (f *fakeRepo) FindByID(_ context.Context, id uint) (*models.Producto, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := row
	return &copied, nil
}

func (f *fakeRepo) List(_ context.Context, nameFilter string) ([]models.Producto, error) {
	filter := strings.ToLower(strings.TrimSpace(nameFilter))
	out := make([]models.Producto, 0, len(f.rows))
	for _, row := range f.rows {
		if filter != "" && !strings.Contains(strings.ToLower(row.Nombre), filter) {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, producto *models.Producto) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.rows[producto.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.rows[producto.ID] = *producto
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uint) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.rows, id)
	return nil
}

// stubStore records calls without touching the filesystem.
type stubStore struct {
	saveName  string
	saveErr   error
	removeErr error

	saved   []string
	removed []string
}

func (s *stubStore) Save(_ context.Context, r io.Reader, originalName string) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	if r != nil {
		_, _ = io.Copy(io.Discard, r)
	}
	name := s.saveName
	if name == "" {
		name = "stub-" + originalName
	}
	s.saved = append(s.saved, name)
	return name, nil
}

func (s *stubStore) Remove(_ context.Context, storedName string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	s.removed = append(s.removed, storedName)
	return nil
}

func (s *stubStore) URL(storedName string) string {
	return path.Join("/uploads", storedName)
}

func newTestService(t *testing.T, repo *fakeRepo) (Service, *disk.Store) {
	t.Helper()
	store, err := disk.NewStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	svc, err := NewService(repo, store, testLogger())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc, store
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func storedFileNames(t *testing.T, store *disk.Store) []string {
	t.Helper()
	dirEntries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatalf("reading store dir: %v", err)
	}
	names := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		names = append(names, de.Name())
	}
	return names
}

func strPtr(v string) *string {
	return &v
}

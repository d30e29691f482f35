package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// ErrNotFound reports that the named asset does not exist. Callers may treat
// it as non-fatal: removing an already-absent asset is idempotent.
var ErrNotFound = errors.New("asset not found")

const maxExtensionLen = 10

// Store persists product images under a single content directory. Stored
// names are generated server-side; the client-supplied filename only
// contributes its extension.
type Store struct {
	dir      string
	basePath string
}

// Entry describes one stored asset.
type Entry struct {
	Name    string
	ModTime time.Time
}

// NewStore creates the content directory if needed and returns a store
// rooted at it.
func NewStore(dir, basePath string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("uploads directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}
	if basePath == "" {
		basePath = "/uploads"
	}
	return &Store{dir: dir, basePath: basePath}, nil
}

// Dir returns the content directory the store writes to.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the reader's contents under a fresh collision-resistant name
// and returns that name. A partial file is removed on write failure.
func (s *Store) Save(ctx context.Context, r io.Reader, originalName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r == nil {
		return "", fmt.Errorf("nil reader")
	}

	storedName := uuid.NewString() + sanitizeExtension(originalName)
	fullPath := filepath.Join(s.dir, storedName)

	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating asset file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("writing asset file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("closing asset file: %w", err)
	}

	return storedName, nil
}

// Remove deletes the named asset. Absence is reported as ErrNotFound,
// distinct from other I/O failures.
func (s *Store) Remove(ctx context.Context, storedName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validStoredName(storedName) {
		return fmt.Errorf("invalid stored name %q", storedName)
	}
	err := os.Remove(filepath.Join(s.dir, storedName))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

// URL maps a stored name to its public locator. Pure; does not check
// existence.
func (s *Store) URL(storedName string) string {
	return path.Join(s.basePath, storedName)
}

// List enumerates stored assets with their modification times.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading uploads directory: %w", err)
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Name: de.Name(), ModTime: info.ModTime()})
	}
	return entries, nil
}

// validStoredName rejects anything that could escape the content directory.
func validStoredName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return filepath.Base(name) == name
}

// sanitizeExtension keeps a short alphanumeric extension from the client
// name, lowercased. Anything else is dropped.
func sanitizeExtension(originalName string) string {
	ext := path.Ext(path.Base(strings.TrimSpace(originalName)))
	if ext == "" || ext == "." {
		return ""
	}
	ext = strings.ToLower(ext)
	if len(ext) > maxExtensionLen {
		return ""
	}
	for _, r := range ext[1:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return ""
		}
	}
	return ext
}

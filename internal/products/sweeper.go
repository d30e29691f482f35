package products

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/catalogo-backend/pkg/db/models"
	"github.com/angelmondragon/catalogo-backend/pkg/logger"
	"github.com/angelmondragon/catalogo-backend/pkg/storage/disk"
	"go.uber.org/multierr"
)

type assetLister interface {
	List(ctx context.Context) ([]disk.Entry, error)
	Remove(ctx context.Context, storedName string) error
	URL(storedName string) string
}

type rowLister interface {
	List(ctx context.Context, nameFilter string) ([]models.Producto, error)
}

// Sweeper reconciles the uploads directory against the rows that reference
// it. Files no row points at are orphans; those older than the grace period
// get removed. Files inside the grace period are only reported, since an
// in-flight create may not have committed its row yet.
type Sweeper struct {
	repo  rowLister
	store assetLister
	logg  *logger.Logger
	grace time.Duration
}

// SweepReport summarizes one pass.
type SweepReport struct {
	Scanned int
	Orphans int
	Removed int
}

// NewSweeper constructs the orphan sweeper.
func NewSweeper(repo rowLister, store assetLister, logg *logger.Logger, grace time.Duration) (*Sweeper, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("asset store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if grace < 0 {
		return nil, fmt.Errorf("grace period must not be negative")
	}
	return &Sweeper{repo: repo, store: store, logg: logg, grace: grace}, nil
}

// Sweep runs one pass. Removal failures are aggregated but the pass keeps
// going; the report always reflects what was actually done.
func (s *Sweeper) Sweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	rows, err := s.repo.List(ctx, "")
	if err != nil {
		return report, fmt.Errorf("listing productos: %w", err)
	}
	referenced := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		referenced[row.ImagenURL] = struct{}{}
	}

	entries, err := s.store.List(ctx)
	if err != nil {
		return report, fmt.Errorf("listing assets: %w", err)
	}

	cutoff := time.Now().Add(-s.grace)
	var removeErrs error
	for _, entry := range entries {
		report.Scanned++
		if _, ok := referenced[entry.Name]; ok {
			continue
		}
		report.Orphans++

		entryCtx := s.logg.WithFields(ctx, map[string]any{
			"stored":     entry.Name,
			"stored_url": s.store.URL(entry.Name),
			"mod_time":   entry.ModTime,
		})
		if entry.ModTime.After(cutoff) {
			s.logg.Info(entryCtx, "orphan asset inside grace period, keeping")
			continue
		}

		if err := s.store.Remove(ctx, entry.Name); err != nil {
			if errors.Is(err, disk.ErrNotFound) {
				continue
			}
			removeErrs = multierr.Append(removeErrs, fmt.Errorf("removing %s: %w", entry.Name, err))
			s.logg.Error(entryCtx, "orphan removal failed", err)
			continue
		}
		report.Removed++
		s.logg.Info(entryCtx, "orphan asset removed")
	}

	return report, removeErrs
}

package products

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/angelmondragon/catalogo-backend/pkg/db"
	"github.com/angelmondragon/catalogo-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalogo-backend/pkg/errors"
	"github.com/angelmondragon/catalogo-backend/pkg/logger"
	"github.com/angelmondragon/catalogo-backend/pkg/storage/disk"
)

// Service exposes catalog product management. All writes go through here so
// that row and asset mutations stay sequenced: a committed row never points
// at a missing file, and a failed insert never strands a fresh upload.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*ProductoDTO, error)
	Update(ctx context.Context, id uint, input UpdateInput) (*ProductoDTO, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, nameFilter string) ([]ListItemDTO, error)
	GetByID(ctx context.Context, id uint) (*DetailDTO, error)
}

// ImageUpload carries one uploaded image. Filename only contributes its
// extension to the stored name.
type ImageUpload struct {
	Reader   io.Reader
	Filename string
}

// CreateInput holds the payload to create a product. Image is mandatory.
type CreateInput struct {
	Nombre      string
	Descripcion *string
	Image       *ImageUpload
}

// UpdateInput holds optional mutation values. Nil fields are left
// unchanged; a non-nil empty Descripcion clears the stored value.
type UpdateInput struct {
	Nombre      *string
	Descripcion *string
	Image       *ImageUpload
}

type repository interface {
	Insert(ctx context.Context, producto *models.Producto) (*models.Producto, error)
	FindByID(ctx context.Context, id uint) (*models.Producto, error)
	List(ctx context.Context, nameFilter string) ([]models.Producto, error)
	Update(ctx context.Context, producto *models.Producto) error
	Delete(ctx context.Context, id uint) error
}

type assetStore interface {
	Save(ctx context.Context, r io.Reader, originalName string) (string, error)
	Remove(ctx context.Context, storedName string) error
	URL(storedName string) string
}

type service struct {
	repo  repository
	store assetStore
	logg  *logger.Logger
}

// NewService constructs the product service.
func NewService(repo repository, store assetStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("asset store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, store: store, logg: logg}, nil
}

// Create validates, stores the image, then inserts the row. If the insert
// fails the stored image is removed again so no file is left without a row.
func (s *service) Create(ctx context.Context, input CreateInput) (*ProductoDTO, error) {
	nombre := strings.TrimSpace(input.Nombre)
	if nombre == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Product name is required")
	}
	if input.Image == nil || input.Image.Reader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Product image is required")
	}

	storedName, err := s.store.Save(ctx, input.Image.Reader, input.Image.Filename)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store: save image")
	}

	producto := &models.Producto{
		Nombre:      nombre,
		Descripcion: normalizeDescripcion(input.Descripcion),
		ImagenURL:   storedName,
	}

	created, err := s.repo.Insert(ctx, producto)
	if err != nil {
		s.compensateRemove(ctx, storedName, "create.insert_failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert producto")
	}

	return newProductoDTO(created), nil
}

// Update applies the supplied fields. When a new image arrives it is stored
// first, the row is pointed at it, and only then is the previous asset
// removed, best-effort.
func (s *service) Update(ctx context.Context, id uint, input UpdateInput) (*ProductoDTO, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find producto")
	}

	nombre := existing.Nombre
	if input.Nombre != nil {
		nombre = strings.TrimSpace(*input.Nombre)
		if nombre == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Product name cannot be empty")
		}
	}

	descripcion := existing.Descripcion
	if input.Descripcion != nil {
		descripcion = normalizeDescripcion(input.Descripcion)
	}

	previousRef := existing.ImagenURL
	newRef := previousRef
	if input.Image != nil && input.Image.Reader != nil {
		newRef, err = s.store.Save(ctx, input.Image.Reader, input.Image.Filename)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store: save image")
		}
	}

	updated := &models.Producto{
		ID:          existing.ID,
		Nombre:      nombre,
		Descripcion: descripcion,
		ImagenURL:   newRef,
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		if newRef != previousRef {
			s.compensateRemove(ctx, newRef, "update.row_update_failed")
		}
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update producto")
	}

	// The row now references the new asset; the old file is just cleanup.
	if newRef != previousRef {
		s.compensateRemove(ctx, previousRef, "update.replace_old_image")
	}

	return newProductoDTO(updated), nil
}

// Delete removes the row first. The row is authoritative: a failed asset
// removal is logged, never surfaced.
func (s *service) Delete(ctx context.Context, id uint) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find producto")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete producto")
	}

	s.compensateRemove(ctx, existing.ImagenURL, "delete.remove_image")
	return nil
}

// List is a pure read.
func (s *service) List(ctx context.Context, nameFilter string) ([]ListItemDTO, error) {
	rows, err := s.repo.List(ctx, nameFilter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list productos")
	}
	return newListItemDTOs(rows), nil
}

// GetByID is a pure read.
func (s *service) GetByID(ctx context.Context, id uint) (*DetailDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find producto")
	}
	return newDetailDTO(row), nil
}

// compensateRemove deletes an asset after the primary mutation already
// settled. Its failure is logged, never joined into the caller's result.
// An already-absent asset counts as success.
func (s *service) compensateRemove(ctx context.Context, storedName, step string) {
	if storedName == "" {
		return
	}
	if err := s.store.Remove(ctx, storedName); err != nil && !errors.Is(err, disk.ErrNotFound) {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"step":       step,
			"stored":     storedName,
			"stored_url": s.store.URL(storedName),
		})
		s.logg.Error(ctx, "orphan cleanup failed", err)
	}
}

func normalizeDescripcion(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

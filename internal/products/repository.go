package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/catalogo-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists productos rows. It enforces no catalog invariants;
// sequencing against the asset store is the service's job.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores a new row and returns it with the assigned id.
func (r *Repository) Insert(ctx context.Context, producto *models.Producto) (*models.Producto, error) {
	if err := r.db.WithContext(ctx).Create(producto).Error; err != nil {
		return nil, err
	}
	return producto, nil
}

// FindByID loads a single row.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Producto, error) {
	var producto models.Producto
	if err := r.db.WithContext(ctx).First(&producto, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &producto, nil
}

// List returns rows newest-first. A non-empty filter applies a
// case-insensitive substring match on nombre.
func (r *Repository) List(ctx context.Context, nameFilter string) ([]models.Producto, error) {
	query := r.db.WithContext(ctx).Model(&models.Producto{})

	filter := strings.TrimSpace(nameFilter)
	if filter != "" {
		query = query.Where("LOWER(nombre) LIKE LOWER(?)", "%"+filter+"%")
	}

	var productos []models.Producto
	if err := query.Order("id DESC").Find(&productos).Error; err != nil {
		return nil, err
	}
	return productos, nil
}

// Update saves the full row. Missing ids surface as gorm.ErrRecordNotFound.
func (r *Repository) Update(ctx context.Context, producto *models.Producto) error {
	if producto.ID == 0 {
		return fmt.Errorf("producto id required")
	}
	result := r.db.WithContext(ctx).
		Model(&models.Producto{}).
		Where("id = ?", producto.ID).
		Updates(map[string]any{
			"nombre":      producto.Nombre,
			"descripcion": producto.Descripcion,
			"imagen_url":  producto.ImagenURL,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the row. Missing ids surface as gorm.ErrRecordNotFound.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Producto{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

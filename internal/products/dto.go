package products

import "github.com/angelmondragon/catalogo-backend/pkg/db/models"

// ProductoDTO is the payload echoed by create/update. The camelCase
// imagenUrl key is what the legacy frontend reads.
type ProductoDTO struct {
	ID        uint   `json:"id"`
	Nombre    string `json:"nombre"`
	ImagenURL string `json:"imagenUrl"`
}

// ListItemDTO is one row of the list endpoint.
type ListItemDTO struct {
	ID        uint   `json:"id"`
	Nombre    string `json:"nombre"`
	ImagenURL string `json:"imagen_url"`
}

// DetailDTO is the full row returned by the detail endpoint.
type DetailDTO struct {
	ID          uint    `json:"id"`
	Nombre      string  `json:"nombre"`
	Descripcion *string `json:"descripcion"`
	ImagenURL   string  `json:"imagen_url"`
}

func newProductoDTO(row *models.Producto) *ProductoDTO {
	return &ProductoDTO{
		ID:        row.ID,
		Nombre:    row.Nombre,
		ImagenURL: row.ImagenURL,
	}
}

func newDetailDTO(row *models.Producto) *DetailDTO {
	return &DetailDTO{
		ID:          row.ID,
		Nombre:      row.Nombre,
		Descripcion: row.Descripcion,
		ImagenURL:   row.ImagenURL,
	}
}

func newListItemDTOs(rows []models.Producto) []ListItemDTO {
	items := make([]ListItemDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, ListItemDTO{
			ID:        row.ID,
			Nombre:    row.Nombre,
			ImagenURL: row.ImagenURL,
		})
	}
	return items
}

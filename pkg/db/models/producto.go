package models

// Producto represents a catalog row. Column names keep the legacy Spanish
// schema the frontend already depends on.
type Producto struct {
	ID          uint    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Nombre      string  `gorm:"column:nombre;not null" json:"nombre"`
	Descripcion *string `gorm:"column:descripcion" json:"descripcion"`
	ImagenURL   string  `gorm:"column:imagen_url;not null" json:"imagen_url"`
}

// TableName pins the legacy table name.
func (Producto) TableName() string {
	return "productos"
}

package entity

import "time"

// Item representa un artículo de inventario, global a todas las ubicaciones.
type Item struct {
	ID        string
	Code      string // código único
	Name      string
	Unit      string
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Supplier proveedor de entregas (dato maestro de solo lectura).
type Supplier struct {
	ID     string
	Code   string
	Name   string
	Active bool
}

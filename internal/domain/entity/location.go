package entity

import "time"

// LocationType clasifica la ubicación física.
type LocationType string

// Tipos de ubicación.
const (
	LocationKitchen   LocationType = "KITCHEN"
	LocationStore     LocationType = "STORE"
	LocationCentral   LocationType = "CENTRAL"
	LocationWarehouse LocationType = "WAREHOUSE"
)

// Location representa una cocina, tienda, central o bodega (dato maestro de solo lectura).
type Location struct {
	ID        string
	Code      string
	Name      string
	Type      LocationType
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

package dto

// Roles reconocidos en el contexto de identidad.
const (
	RoleAdmin       = "admin"
	RoleController  = "controller"
	RoleManager     = "manager"
	RoleStorekeeper = "storekeeper"
)

// Identity contexto ya autenticado: usuario, rol y ubicaciones accesibles.
type Identity struct {
	UserID      string
	Role        string
	LocationIDs []string
}

// IsElevated roles que aprueban traslados y cierran periodos.
func (i Identity) IsElevated() bool {
	switch i.Role {
	case RoleAdmin, RoleController, RoleManager:
		return true
	}
	return false
}

// CanAccess los administradores acceden a todas las ubicaciones.
func (i Identity) CanAccess(locationID string) bool {
	if i.Role == RoleAdmin {
		return true
	}
	for _, id := range i.LocationIDs {
		if id == locationID {
			return true
		}
	}
	return false
}

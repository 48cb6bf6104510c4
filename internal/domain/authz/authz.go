// Package authz evalúa capacidades de un actor sin depender de la capa web.
package authz

// Roles reconocidos en el token.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleBodeguero  = "bodeguero"
	RoleVendedor   = "vendedor"
)

// Capability es una acción protegida del núcleo de inventario.
type Capability string

const (
	CapViewInventory      Capability = "inventory.view"
	CapAdjustStock        Capability = "inventory.adjust"
	CapForceNegativeStock Capability = "inventory.force_negative"
	CapManageDispatches   Capability = "dispatch.manage"
	CapApproveDispatches  Capability = "dispatch.approve"
	CapQuickDispatch      Capability = "dispatch.quick"
	CapManageDonations    Capability = "donation.manage"
	CapApproveDonations   Capability = "donation.approve"
	CapManageTransfers    Capability = "transfer.manage"
	CapApproveTransfers   Capability = "transfer.approve"
	CapReceiveTransfers   Capability = "transfer.receive"
)

// Actor es el usuario autenticado que entrega la capa de auth externa.
type Actor struct {
	UserID    string
	CompanyID string
	Role      string
}

var grants = map[string]map[Capability]bool{
	RoleAdmin: {
		CapViewInventory:      true,
		CapAdjustStock:        true,
		CapForceNegativeStock: true,
		CapManageDispatches:   true,
		CapApproveDispatches:  true,
		CapQuickDispatch:      true,
		CapManageDonations:    true,
		CapApproveDonations:   true,
		CapManageTransfers:    true,
		CapApproveTransfers:   true,
		CapReceiveTransfers:   true,
	},
	RoleBodeguero: {
		CapViewInventory:    true,
		CapAdjustStock:      true,
		CapManageDispatches: true,
		CapManageDonations:  true,
		CapManageTransfers:  true,
		CapReceiveTransfers: true,
	},
	RoleVendedor: {
		CapViewInventory:    true,
		CapManageDispatches: true,
	},
}

// Can evalúa primero el rol super administrador, que habilita todo, y luego la tabla de permisos del rol.
func Can(actor Actor, capability Capability) bool {
	if actor.Role == RoleSuperAdmin {
		return true
	}
	return grants[actor.Role][capability]
}

// CanOn agrega la verificación de recurso: fuera del super administrador,
// el documento debe pertenecer a la empresa del actor.
func CanOn(actor Actor, capability Capability, resourceCompanyID string) bool {
	if actor.Role == RoleSuperAdmin {
		return true
	}
	if resourceCompanyID != "" && resourceCompanyID != actor.CompanyID {
		return false
	}
	return Can(actor, capability)
}

var manageByKind = map[string]Capability{
	"dispatch": CapManageDispatches,
	"donation": CapManageDonations,
	"transfer": CapManageTransfers,
}

var transitionCaps = map[string]map[string]Capability{
	"dispatch": {
		"submit":   CapManageDispatches,
		"approve":  CapApproveDispatches,
		"dispatch": CapManageDispatches,
		"deliver":  CapManageDispatches,
		"cancel":   CapManageDispatches,
	},
	"donation": {
		"submit":  CapManageDonations,
		"approve": CapApproveDonations,
		"receive": CapManageDonations,
		"cancel":  CapManageDonations,
	},
	"transfer": {
		"approve": CapApproveTransfers,
		"ship":    CapManageTransfers,
		"receive": CapReceiveTransfers,
		"cancel":  CapManageTransfers,
	},
}

// ForManage es la capacidad para crear, editar y consultar documentos de un tipo.
func ForManage(kind string) (Capability, bool) {
	c, ok := manageByKind[kind]
	return c, ok
}

// ForTransition es la capacidad requerida por una transición; false si la transición no existe para el tipo.
func ForTransition(kind, transition string) (Capability, bool) {
	c, ok := transitionCaps[kind][transition]
	return c, ok
}

package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCan_SuperAdminHabilitaTodo(t *testing.T) {
	actor := Actor{UserID: "u", CompanyID: "c1", Role: RoleSuperAdmin}
	for _, c := range []Capability{CapForceNegativeStock, CapApproveTransfers, CapQuickDispatch} {
		assert.True(t, Can(actor, c))
	}
	// También ignora la empresa del recurso.
	assert.True(t, CanOn(actor, CapManageDispatches, "otra"))
}

func TestCan_TablaPorRol(t *testing.T) {
	bodeguero := Actor{Role: RoleBodeguero, CompanyID: "c1"}
	vendedor := Actor{Role: RoleVendedor, CompanyID: "c1"}
	admin := Actor{Role: RoleAdmin, CompanyID: "c1"}

	assert.True(t, Can(bodeguero, CapReceiveTransfers))
	assert.False(t, Can(bodeguero, CapApproveTransfers))
	assert.False(t, Can(bodeguero, CapForceNegativeStock))

	assert.True(t, Can(vendedor, CapManageDispatches))
	assert.False(t, Can(vendedor, CapAdjustStock))

	assert.True(t, Can(admin, CapForceNegativeStock))
	assert.False(t, Can(Actor{Role: "desconocido"}, CapViewInventory))
}

func TestCanOn_OtraEmpresaDenegada(t *testing.T) {
	admin := Actor{Role: RoleAdmin, CompanyID: "c1"}
	assert.True(t, CanOn(admin, CapApproveDispatches, "c1"))
	assert.False(t, CanOn(admin, CapApproveDispatches, "c2"))
}

func TestForTransition(t *testing.T) {
	c, ok := ForTransition("transfer", "receive")
	assert.True(t, ok)
	assert.Equal(t, CapReceiveTransfers, c)

	c, ok = ForTransition("dispatch", "approve")
	assert.True(t, ok)
	assert.Equal(t, CapApproveDispatches, c)

	_, ok = ForTransition("donation", "ship")
	assert.False(t, ok)

	m, ok := ForManage("donation")
	assert.True(t, ok)
	assert.Equal(t, CapManageDonations, m)
}

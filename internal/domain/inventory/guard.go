package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// GuardPolicy define si el control de disponibilidad bloquea la escritura.
type GuardPolicy int

const (
	// GuardMandatory: despachos y envíos de traslado nunca dejan disponible negativo.
	GuardMandatory GuardPolicy = iota
	// GuardAdvisory: ajustes manuales; un administrador puede forzar stock negativo.
	GuardAdvisory
)

// CheckAvailable valida una salida contra la fila de existencias.
// Una fila inexistente (nil) equivale a disponibilidad cero, no es error.
func CheckAvailable(snap *entity.StockSnapshot, key entity.StockKey, requested decimal.Decimal) error {
	available := decimal.Zero
	if snap != nil {
		available = snap.Available
	}
	if requested.GreaterThan(available) {
		return &domain.InsufficientStockError{
			WarehouseID: key.WarehouseID,
			ProductID:   key.ProductID,
			Requested:   requested,
			Available:   available,
		}
	}
	return nil
}

// Enforce aplica CheckAvailable según la política; con GuardAdvisory y force=true la salida se permite.
func Enforce(policy GuardPolicy, force bool, snap *entity.StockSnapshot, key entity.StockKey, requested decimal.Decimal) error {
	err := CheckAvailable(snap, key, requested)
	if err == nil {
		return nil
	}
	if policy == GuardAdvisory && force {
		return nil
	}
	return err
}

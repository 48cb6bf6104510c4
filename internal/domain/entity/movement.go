package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType clasifica cada registro del kardex.
type MovementType string

const (
	MovementReceipt            MovementType = "receipt"             // entrada (donación, compra)
	MovementIssue              MovementType = "issue"               // salida (despacho)
	MovementTransferOut        MovementType = "transfer_out"        // salida por traslado (bodega origen)
	MovementTransferIn         MovementType = "transfer_in"         // entrada por traslado (bodega destino)
	MovementAdjustmentIncrease MovementType = "adjustment_increase" // ajuste manual positivo
	MovementAdjustmentDecrease MovementType = "adjustment_decrease" // ajuste manual negativo
)

// IsValid indica si el tipo pertenece al catálogo.
func (t MovementType) IsValid() bool {
	switch t {
	case MovementReceipt, MovementIssue, MovementTransferOut, MovementTransferIn,
		MovementAdjustmentIncrease, MovementAdjustmentDecrease:
		return true
	}
	return false
}

// IsIncrease es true para los tipos que suman existencias.
func (t MovementType) IsIncrease() bool {
	switch t {
	case MovementReceipt, MovementTransferIn, MovementAdjustmentIncrease:
		return true
	}
	return false
}

// OriginKind identifica el documento que originó un movimiento.
type OriginKind string

const (
	OriginDispatch   OriginKind = "dispatch"
	OriginDonation   OriginKind = "donation"
	OriginTransfer   OriginKind = "transfer"
	OriginAdjustment OriginKind = "adjustment"
)

// MovementRecord es un registro inmutable del kardex por (empresa, bodega, producto).
// Balance es el saldo corrido después de aplicar este registro.
// Las correcciones se hacen con registros compensatorios, nunca editando el historial.
type MovementRecord struct {
	ID           int64
	CompanyID    string
	WarehouseID  string
	ProductID    string
	Type         MovementType
	QuantityIn   decimal.Decimal
	QuantityOut  decimal.Decimal
	Balance      decimal.Decimal
	UnitCost     decimal.Decimal
	TotalCost    decimal.Decimal
	MovementDate time.Time
	OriginKind   OriginKind
	OriginID     string
	ReasonCode   string
	CreatedBy    string
	CreatedAt    time.Time
}

// Key devuelve la clave de stock del registro.
func (m *MovementRecord) Key() StockKey {
	return StockKey{CompanyID: m.CompanyID, WarehouseID: m.WarehouseID, ProductID: m.ProductID}
}

// Delta es quantity_in - quantity_out.
func (m *MovementRecord) Delta() decimal.Decimal {
	return m.QuantityIn.Sub(m.QuantityOut)
}

// Before ordena por (movement_date, id), el orden canónico del kardex.
func (m *MovementRecord) Before(o *MovementRecord) bool {
	if !m.MovementDate.Equal(o.MovementDate) {
		return m.MovementDate.Before(o.MovementDate)
	}
	return m.ID < o.ID
}

// MovementCursor permite reanudar un listado del kardex después del último registro leído.
type MovementCursor struct {
	MovementDate time.Time
	ID           int64
}

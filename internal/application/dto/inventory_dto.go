package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentRequest body para POST /api/inventory/adjustments.
// force solo se acepta si el actor puede forzar existencias negativas.
type AdjustmentRequest struct {
	WarehouseID  string           `json:"warehouse_id" validate:"required,max=64"`
	ProductID    string           `json:"product_id" validate:"required,max=64"`
	Type         string           `json:"type" validate:"required,oneof=adjustment_increase adjustment_decrease"`
	Quantity     decimal.Decimal  `json:"quantity"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	MovementDate *time.Time       `json:"movement_date,omitempty"`
	ReasonCode   string           `json:"reason_code" validate:"required,max=50"`
	Force        bool             `json:"force,omitempty"`
}

// MovementResponse registro del kardex.
type MovementResponse struct {
	ID           int64           `json:"id"`
	WarehouseID  string          `json:"warehouse_id"`
	ProductID    string          `json:"product_id"`
	Type         string          `json:"type"`
	QuantityIn   decimal.Decimal `json:"quantity_in"`
	QuantityOut  decimal.Decimal `json:"quantity_out"`
	Balance      decimal.Decimal `json:"balance"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	MovementDate time.Time       `json:"movement_date"`
	OriginKind   string          `json:"origin_kind"`
	OriginID     string          `json:"origin_id,omitempty"`
	ReasonCode   string          `json:"reason_code,omitempty"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
}

// KardexResponse página del kardex; next_cursor se envía en ?after= para continuar.
type KardexResponse struct {
	Items      []MovementResponse `json:"items"`
	Balance    decimal.Decimal    `json:"balance"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

// SnapshotResponse existencias actuales.
type SnapshotResponse struct {
	WarehouseID string          `json:"warehouse_id"`
	ProductID   string          `json:"product_id"`
	OnHand      decimal.Decimal `json:"on_hand"`
	Reserved    decimal.Decimal `json:"reserved"`
	Available   decimal.Decimal `json:"available"`
	Active      bool            `json:"active"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BalanceMismatchResponse registro con saldo almacenado distinto del recalculado.
type BalanceMismatchResponse struct {
	RecordID int64           `json:"record_id"`
	Stored   decimal.Decimal `json:"stored"`
	Expected decimal.Decimal `json:"expected"`
}

// ReconcileResponse resultado de la conciliación de una fila.
type ReconcileResponse struct {
	WarehouseID       string                    `json:"warehouse_id"`
	ProductID         string                    `json:"product_id"`
	Consistent        bool                      `json:"consistent"`
	Records           int                       `json:"records"`
	StoredHead        decimal.Decimal           `json:"stored_head"`
	RecomputedBalance decimal.Decimal           `json:"recomputed_balance"`
	SnapshotOnHand    decimal.Decimal           `json:"snapshot_on_hand"`
	Mismatches        []BalanceMismatchResponse `json:"mismatches"`
}

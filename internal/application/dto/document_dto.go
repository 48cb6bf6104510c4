package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineRequest línea de un documento. Cantidad > 0 y precio >= 0 se validan en el motor.
type LineRequest struct {
	ProductID string          `json:"product_id" validate:"required,max=64"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Notes     string          `json:"notes,omitempty" validate:"max=500"`
}

// DocumentRequest body de creación y edición de despachos, donaciones y traslados.
// warehouse_id aplica a despacho y donación; from/to a traslados. version es obligatorio en PUT.
type DocumentRequest struct {
	WarehouseID     string          `json:"warehouse_id,omitempty" validate:"max=64"`
	FromWarehouseID string          `json:"from_warehouse_id,omitempty" validate:"max=64"`
	ToWarehouseID   string          `json:"to_warehouse_id,omitempty" validate:"max=64"`
	CustomerID      string          `json:"customer_id,omitempty" validate:"max=64"`
	DonorID         string          `json:"donor_id,omitempty" validate:"max=64"`
	Date            *time.Time      `json:"date,omitempty"`
	Notes           string          `json:"notes,omitempty" validate:"max=1000"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	Version         int64           `json:"version,omitempty" validate:"min=0"`
	Lines           []LineRequest   `json:"lines" validate:"max=500,dive"`
}

// DiscrepancyRequest cantidad realmente recibida de un producto del traslado.
type DiscrepancyRequest struct {
	ProductID string          `json:"product_id" validate:"required,max=64"`
	Received  decimal.Decimal `json:"received"`
	Reason    string          `json:"reason,omitempty" validate:"max=500"`
}

// TransitionRequest campos opcionales de POST /:id/transitions/:name.
type TransitionRequest struct {
	ReceivedByName string               `json:"received_by_name,omitempty" validate:"max=200"`
	Notes          string               `json:"notes,omitempty" validate:"max=1000"`
	TrackingNumber string               `json:"tracking_number,omitempty" validate:"max=100"`
	Carrier        string               `json:"carrier,omitempty" validate:"max=100"`
	Reason         string               `json:"reason,omitempty" validate:"max=500"`
	Discrepancies  []DiscrepancyRequest `json:"discrepancies,omitempty" validate:"dive"`
}

// LineResponse línea en la respuesta.
type LineResponse struct {
	ID               string           `json:"id"`
	ProductID        string           `json:"product_id"`
	Quantity         decimal.Decimal  `json:"quantity"`
	UnitPrice        decimal.Decimal  `json:"unit_price"`
	Subtotal         decimal.Decimal  `json:"subtotal"`
	Notes            string           `json:"notes,omitempty"`
	ReceivedQuantity *decimal.Decimal `json:"received_quantity,omitempty"`
}

// TotalsResponse totales del documento.
type TotalsResponse struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	Total          decimal.Decimal `json:"total"`
}

// StampResponse quién y cuándo alcanzó una etapa.
type StampResponse struct {
	At time.Time `json:"at"`
	By string    `json:"by"`
}

// DiscrepancyResponse discrepancia registrada al recibir un traslado.
type DiscrepancyResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Expected  decimal.Decimal `json:"expected"`
	Received  decimal.Decimal `json:"received"`
	Reason    string          `json:"reason,omitempty"`
}

// DocumentResponse vista común de los tres tipos de documento.
type DocumentResponse struct {
	ID                 string                   `json:"id"`
	Kind               string                   `json:"kind"`
	Number             string                   `json:"number"`
	Status             string                   `json:"status"`
	StatusLabel        string                   `json:"status_label"`
	Editable           bool                     `json:"editable"`
	AllowedTransitions []string                 `json:"allowed_transitions"`
	WarehouseID        string                   `json:"warehouse_id,omitempty"`
	FromWarehouseID    string                   `json:"from_warehouse_id,omitempty"`
	ToWarehouseID      string                   `json:"to_warehouse_id,omitempty"`
	CustomerID         string                   `json:"customer_id,omitempty"`
	DonorID            string                   `json:"donor_id,omitempty"`
	Date               time.Time                `json:"date"`
	Notes              string                   `json:"notes,omitempty"`
	ApprovalNotes      string                   `json:"approval_notes,omitempty"`
	ReceiptNotes       string                   `json:"receipt_notes,omitempty"`
	TrackingNumber     string                   `json:"tracking_number,omitempty"`
	Carrier            string                   `json:"carrier,omitempty"`
	ReceivedByName     string                   `json:"received_by_name,omitempty"`
	CancelReason       string                   `json:"cancel_reason,omitempty"`
	Quick              bool                     `json:"quick,omitempty"`
	Lines              []LineResponse           `json:"lines"`
	Totals             TotalsResponse           `json:"totals"`
	Discrepancies      []DiscrepancyResponse    `json:"discrepancies,omitempty"`
	Stamps             map[string]StampResponse `json:"stamps"`
	Version            int64                    `json:"version"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind distingue los documentos con flujo de aprobación.
type DocumentKind string

const (
	KindDispatch DocumentKind = "dispatch"
	KindDonation DocumentKind = "donation"
	KindTransfer DocumentKind = "transfer"
)

// Prefix es el prefijo del número humano del documento (DESP-000123).
func (k DocumentKind) Prefix() string {
	switch k {
	case KindDispatch:
		return "DESP"
	case KindDonation:
		return "DON"
	case KindTransfer:
		return "TRF"
	}
	return "DOC"
}

// IsValid indica si el tipo de documento existe.
func (k DocumentKind) IsValid() bool {
	return k == KindDispatch || k == KindDonation || k == KindTransfer
}

// Transition es el nombre de una transición de flujo.
type Transition string

const (
	TransitionSubmit   Transition = "submit"
	TransitionApprove  Transition = "approve"
	TransitionDispatch Transition = "dispatch"
	TransitionShip     Transition = "ship"
	TransitionDeliver  Transition = "deliver"
	TransitionReceive  Transition = "receive"
	TransitionCancel   Transition = "cancel"
)

// LineItem es una línea propiedad exclusiva de su documento.
// UnitPrice es el precio (despacho), el valor estimado (donación) o el costo unitario (traslado).
type LineItem struct {
	ID        string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	Notes     string
	// ReceivedQuantity solo aplica a traslados recibidos.
	ReceivedQuantity *decimal.Decimal
}

// Totals agrupa los montos calculados del documento.
type Totals struct {
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	ShippingCost   decimal.Decimal
	Total          decimal.Decimal
}

// Stamp registra cuándo y quién ejecutó una etapa del ciclo de vida.
type Stamp struct {
	At time.Time
	By string
}

// stampOnce fija la marca una sola vez; las marcas nunca se borran ni se reescriben.
func stampOnce(s **Stamp, actor string, at time.Time) {
	if *s != nil {
		return
	}
	*s = &Stamp{At: at, By: actor}
}

// Document es la forma común de Dispatch, Donation e InventoryTransfer.
type Document interface {
	Kind() DocumentKind
	DocumentID() string
	DocumentNumber() string
	StatusCode() string
	DocumentVersion() int64
	Items() []LineItem
}

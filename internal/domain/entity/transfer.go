package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus estados del traslado entre bodegas.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferApproved  TransferStatus = "approved"
	TransferInTransit TransferStatus = "in_transit"
	TransferReceived  TransferStatus = "received"
	TransferCancelled TransferStatus = "cancelled"
)

// TransferFlow: pending → approved → in_transit → received; cancelled solo antes de enviar.
var TransferFlow = StateMachine[TransferStatus]{
	kind: KindTransfer,
	edges: map[TransferStatus]map[Transition]TransferStatus{
		TransferPending: {
			TransitionApprove: TransferApproved,
			TransitionCancel:  TransferCancelled,
		},
		TransferApproved: {
			TransitionShip:   TransferInTransit,
			TransitionCancel: TransferCancelled,
		},
		TransferInTransit: {
			TransitionReceive: TransferReceived,
		},
	},
	editable: map[TransferStatus]bool{TransferPending: true},
}

// Discrepancy registra la diferencia entre lo enviado y lo recibido de un producto.
type Discrepancy struct {
	ID        string
	ProductID string
	Expected  decimal.Decimal
	Received  decimal.Decimal
	Reason    string
}

// InventoryTransfer mueve mercancía de FromWarehouseID a ToWarehouseID.
// LineItem.UnitPrice guarda el costo unitario enviado.
type InventoryTransfer struct {
	ID              string
	CompanyID       string
	Number          string
	FromWarehouseID string
	ToWarehouseID   string
	Status          TransferStatus
	TransferDate    time.Time
	Notes           string
	ApprovalNotes   string
	ReceiptNotes    string
	TrackingNumber  string
	Carrier         string
	CancelReason    string
	Lines           []LineItem
	Totals          Totals
	Discrepancies   []Discrepancy
	Requested       *Stamp
	Approved        *Stamp
	Shipped         *Stamp
	Received        *Stamp
	Cancelled       *Stamp
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (t *InventoryTransfer) Kind() DocumentKind     { return KindTransfer }
func (t *InventoryTransfer) DocumentID() string     { return t.ID }
func (t *InventoryTransfer) DocumentNumber() string { return t.Number }
func (t *InventoryTransfer) StatusCode() string     { return string(t.Status) }
func (t *InventoryTransfer) DocumentVersion() int64 { return t.Version }
func (t *InventoryTransfer) Items() []LineItem      { return t.Lines }

// Advance aplica la transición y estampa la etapa alcanzada.
func (t *InventoryTransfer) Advance(tr Transition, actor string, at time.Time) error {
	next, err := TransferFlow.Next(t.Status, tr)
	if err != nil {
		return err
	}
	switch next {
	case TransferApproved:
		stampOnce(&t.Approved, actor, at)
	case TransferInTransit:
		stampOnce(&t.Shipped, actor, at)
	case TransferReceived:
		stampOnce(&t.Received, actor, at)
	case TransferCancelled:
		stampOnce(&t.Cancelled, actor, at)
	}
	t.Status = next
	t.UpdatedAt = at
	return nil
}

package entity

import "time"

// DispatchStatus estados del despacho.
type DispatchStatus string

const (
	DispatchDraft      DispatchStatus = "borrador"
	DispatchPending    DispatchStatus = "pendiente"
	DispatchApproved   DispatchStatus = "aprobado"
	DispatchDispatched DispatchStatus = "despachado"
	DispatchDelivered  DispatchStatus = "entregado"
	DispatchCancelled  DispatchStatus = "cancelado"
)

// DispatchFlow: borrador → pendiente → aprobado → despachado → entregado; cancelado desde los tres primeros.
var DispatchFlow = StateMachine[DispatchStatus]{
	kind: KindDispatch,
	edges: map[DispatchStatus]map[Transition]DispatchStatus{
		DispatchDraft: {
			TransitionSubmit: DispatchPending,
			TransitionCancel: DispatchCancelled,
		},
		DispatchPending: {
			TransitionApprove: DispatchApproved,
			TransitionCancel:  DispatchCancelled,
		},
		DispatchApproved: {
			TransitionDispatch: DispatchDispatched,
			TransitionCancel:   DispatchCancelled,
		},
		DispatchDispatched: {
			TransitionDeliver: DispatchDelivered,
		},
	},
	editable: map[DispatchStatus]bool{DispatchDraft: true, DispatchPending: true},
}

// Dispatch es una salida de mercancía de una bodega hacia un cliente.
type Dispatch struct {
	ID             string
	CompanyID      string
	Number         string
	WarehouseID    string
	CustomerID     string
	Status         DispatchStatus
	DispatchDate   time.Time
	Notes          string
	Lines          []LineItem
	Totals         Totals
	ReceivedByName string
	CancelReason   string
	// Quick indica que se creó directamente en despachado (despacho rápido).
	Quick      bool
	Created    *Stamp
	Approved   *Stamp
	Dispatched *Stamp
	Delivered  *Stamp
	Cancelled  *Stamp
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (d *Dispatch) Kind() DocumentKind     { return KindDispatch }
func (d *Dispatch) DocumentID() string     { return d.ID }
func (d *Dispatch) DocumentNumber() string { return d.Number }
func (d *Dispatch) StatusCode() string     { return string(d.Status) }
func (d *Dispatch) DocumentVersion() int64 { return d.Version }
func (d *Dispatch) Items() []LineItem      { return d.Lines }

// Advance aplica la transición y estampa actor y fecha de la etapa alcanzada.
func (d *Dispatch) Advance(t Transition, actor string, at time.Time) error {
	next, err := DispatchFlow.Next(d.Status, t)
	if err != nil {
		return err
	}
	switch next {
	case DispatchApproved:
		stampOnce(&d.Approved, actor, at)
	case DispatchDispatched:
		stampOnce(&d.Dispatched, actor, at)
	case DispatchDelivered:
		stampOnce(&d.Delivered, actor, at)
	case DispatchCancelled:
		stampOnce(&d.Cancelled, actor, at)
	}
	d.Status = next
	d.UpdatedAt = at
	return nil
}

// MarkPreDispatched deja el documento en despachado sin pasar por las etapas intermedias (despacho rápido).
func (d *Dispatch) MarkPreDispatched(actor string, at time.Time) {
	d.Quick = true
	d.Status = DispatchDispatched
	stampOnce(&d.Created, actor, at)
	stampOnce(&d.Dispatched, actor, at)
	d.UpdatedAt = at
}

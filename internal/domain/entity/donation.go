package entity

import "time"

// DonationStatus estados de la donación.
type DonationStatus string

const (
	DonationDraft     DonationStatus = "borrador"
	DonationPending   DonationStatus = "pendiente"
	DonationApproved  DonationStatus = "aprobado"
	DonationReceived  DonationStatus = "recibido"
	DonationCancelled DonationStatus = "cancelado"
)

// DonationFlow: borrador → pendiente → aprobado → recibido; cancelado desde cualquier estado no terminal.
var DonationFlow = StateMachine[DonationStatus]{
	kind: KindDonation,
	edges: map[DonationStatus]map[Transition]DonationStatus{
		DonationDraft: {
			TransitionSubmit: DonationPending,
			TransitionCancel: DonationCancelled,
		},
		DonationPending: {
			TransitionApprove: DonationApproved,
			TransitionCancel:  DonationCancelled,
		},
		DonationApproved: {
			TransitionReceive: DonationReceived,
			TransitionCancel:  DonationCancelled,
		},
	},
	editable: map[DonationStatus]bool{DonationDraft: true, DonationPending: true},
}

// Donation es una entrada de mercancía donada a una bodega.
// LineItem.UnitPrice guarda el valor unitario estimado.
type Donation struct {
	ID           string
	CompanyID    string
	Number       string
	WarehouseID  string
	DonorID      string
	Status       DonationStatus
	DonationDate time.Time
	Notes        string
	Lines        []LineItem
	Totals       Totals
	CancelReason string
	Created      *Stamp
	Approved     *Stamp
	Received     *Stamp
	Cancelled    *Stamp
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (d *Donation) Kind() DocumentKind     { return KindDonation }
func (d *Donation) DocumentID() string     { return d.ID }
func (d *Donation) DocumentNumber() string { return d.Number }
func (d *Donation) StatusCode() string     { return string(d.Status) }
func (d *Donation) DocumentVersion() int64 { return d.Version }
func (d *Donation) Items() []LineItem      { return d.Lines }

// Advance aplica la transición y estampa la etapa alcanzada.
func (d *Donation) Advance(t Transition, actor string, at time.Time) error {
	next, err := DonationFlow.Next(d.Status, t)
	if err != nil {
		return err
	}
	switch next {
	case DonationApproved:
		stampOnce(&d.Approved, actor, at)
	case DonationReceived:
		stampOnce(&d.Received, actor, at)
	case DonationCancelled:
		stampOnce(&d.Cancelled, actor, at)
	}
	d.Status = next
	d.UpdatedAt = at
	return nil
}

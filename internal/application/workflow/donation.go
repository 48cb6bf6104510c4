package workflow

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	invdomain "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// CreateDonation crea una donación en borrador con su consecutivo DON-NNNNNN.
func (e *Engine) CreateDonation(ctx context.Context, in DocumentInput) (*entity.Donation, error) {
	if err := validateHeader(in); err != nil {
		return nil, err
	}
	if in.WarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	lines, err := buildLines(in.Lines)
	if err != nil {
		return nil, err
	}
	now := e.now()
	d := &entity.Donation{
		ID:           uuid.New().String(),
		CompanyID:    in.CompanyID,
		WarehouseID:  in.WarehouseID,
		DonorID:      in.PartyID,
		Status:       entity.DonationDraft,
		DonationDate: documentDate(in.Date, now),
		Notes:        in.Notes,
		Lines:        lines,
		Created:      &entity.Stamp{At: now, By: in.ActorID},
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	d.Totals = invdomain.CalculateTotals(d.Lines, charges(in))

	err = e.run(ctx, func(ctx context.Context, repos repository.Repositories, _ *[]*entity.MovementRecord) error {
		number, err := nextNumber(ctx, repos, d.CompanyID, entity.KindDonation)
		if err != nil {
			return err
		}
		d.Number = number
		return repos.Donations.Create(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateDonation reemplaza cabecera y líneas de una donación en borrador o pendiente.
func (e *Engine) UpdateDonation(ctx context.Context, id string, expectedVersion int64, in DocumentInput) (*entity.Donation, error) {
	if err := validateHeader(in); err != nil {
		return nil, err
	}
	if in.WarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	lines, err := buildLines(in.Lines)
	if err != nil {
		return nil, err
	}

	var out *entity.Donation
	err = e.run(ctx, func(ctx context.Context, repos repository.Repositories, _ *[]*entity.MovementRecord) error {
		d, err := repos.Donations.GetForUpdate(ctx, in.CompanyID, id)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrNotFound
		}
		if d.Version != expectedVersion {
			return domain.ErrConcurrentModification
		}
		if !entity.DonationFlow.Editable(d.Status) {
			return notEditable(entity.KindDonation, string(d.Status))
		}
		d.WarehouseID = in.WarehouseID
		d.DonorID = in.PartyID
		d.DonationDate = documentDate(in.Date, d.DonationDate)
		d.Notes = in.Notes
		d.Lines = lines
		d.Totals = invdomain.CalculateTotals(d.Lines, charges(in))
		d.UpdatedAt = e.now()
		if err := repos.Donations.Update(ctx, d, expectedVersion); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TransitionDonation ejecuta submit, approve, receive o cancel.
// receive registra una entrada por línea al valor unitario estimado; las entradas no pasan por el control.
func (e *Engine) TransitionDonation(ctx context.Context, companyID, id, actorID string, t entity.Transition, f TransitionFields) (*entity.Donation, error) {
	var out *entity.Donation
	err := e.run(ctx, func(ctx context.Context, repos repository.Repositories, records *[]*entity.MovementRecord) error {
		d, err := repos.Donations.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrNotFound
		}
		if _, err := entity.DonationFlow.Next(d.Status, t); err != nil {
			return err
		}
		version := d.Version

		switch t {
		case entity.TransitionSubmit, entity.TransitionApprove:
			if len(d.Lines) == 0 {
				return domain.ErrEmptyLineItems
			}
		case entity.TransitionReceive:
			if len(d.Lines) == 0 {
				return domain.ErrEmptyLineItems
			}
			received, err := receiveDonationLines(ctx, repos, d, actorID, e.now)
			if err != nil {
				return err
			}
			*records = received
		case entity.TransitionCancel:
			d.CancelReason = f.Reason
		}

		if err := d.Advance(t, actorID, e.now()); err != nil {
			return err
		}
		if err := repos.Donations.Update(ctx, d, version); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func receiveDonationLines(ctx context.Context, repos repository.Repositories, d *entity.Donation, actorID string, clock inventory.Clock) ([]*entity.MovementRecord, error) {
	locked, err := lockLines(ctx, repos, d.CompanyID, d.WarehouseID, d.Lines)
	if err != nil {
		return nil, err
	}
	now := clock()
	records := make([]*entity.MovementRecord, 0, len(d.Lines))
	for _, line := range d.Lines {
		key := lineKey(d.CompanyID, d.WarehouseID, line)
		cost := line.UnitPrice
		rec, err := inventory.Post(ctx, repos, locked[key], inventory.PostInput{
			Key:          key,
			Type:         entity.MovementReceipt,
			Quantity:     line.Quantity,
			UnitCost:     &cost,
			MovementDate: now,
			OriginKind:   entity.OriginDonation,
			OriginID:     d.ID,
			ActorID:      actorID,
		}, now)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

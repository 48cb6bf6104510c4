package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	invdomain "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// CreateDispatch crea un despacho en borrador con su consecutivo DESP-NNNNNN.
func (e *Engine) CreateDispatch(ctx context.Context, in DocumentInput) (*entity.Dispatch, error) {
	d, err := e.newDispatch(in)
	if err != nil {
		return nil, err
	}
	err = e.run(ctx, func(ctx context.Context, repos repository.Repositories, _ *[]*entity.MovementRecord) error {
		number, err := nextNumber(ctx, repos, d.CompanyID, entity.KindDispatch)
		if err != nil {
			return err
		}
		d.Number = number
		return repos.Dispatches.Create(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// CreatePreDispatched crea un despacho directamente en despachado: numera, valida disponibilidad
// y registra las salidas en una sola transacción.
func (e *Engine) CreatePreDispatched(ctx context.Context, in DocumentInput) (*entity.Dispatch, error) {
	d, err := e.newDispatch(in)
	if err != nil {
		return nil, err
	}
	if len(d.Lines) == 0 {
		return nil, domain.ErrEmptyLineItems
	}
	d.MarkPreDispatched(in.ActorID, d.CreatedAt)

	err = e.run(ctx, func(ctx context.Context, repos repository.Repositories, records *[]*entity.MovementRecord) error {
		number, err := nextNumber(ctx, repos, d.CompanyID, entity.KindDispatch)
		if err != nil {
			return err
		}
		d.Number = number
		issued, err := e.issueDispatchLines(ctx, repos, d, in.ActorID)
		if err != nil {
			return err
		}
		*records = issued
		return repos.Dispatches.Create(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateDispatch reemplaza cabecera y líneas de un despacho en borrador o pendiente.
func (e *Engine) UpdateDispatch(ctx context.Context, id string, expectedVersion int64, in DocumentInput) (*entity.Dispatch, error) {
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

	var out *entity.Dispatch
	err = e.run(ctx, func(ctx context.Context, repos repository.Repositories, _ *[]*entity.MovementRecord) error {
		d, err := repos.Dispatches.GetForUpdate(ctx, in.CompanyID, id)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrNotFound
		}
		if d.Version != expectedVersion {
			return domain.ErrConcurrentModification
		}
		if !entity.DispatchFlow.Editable(d.Status) {
			return notEditable(entity.KindDispatch, string(d.Status))
		}
		now := e.now()
		d.WarehouseID = in.WarehouseID
		d.CustomerID = in.PartyID
		d.DispatchDate = documentDate(in.Date, d.DispatchDate)
		d.Notes = in.Notes
		d.Lines = lines
		d.Totals = invdomain.CalculateTotals(d.Lines, charges(in))
		d.UpdatedAt = now
		if err := repos.Dispatches.Update(ctx, d, expectedVersion); err != nil {
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

// TransitionDispatch ejecuta submit, approve, dispatch, deliver o cancel.
// dispatch valida disponibilidad de todas las líneas y registra una salida por línea;
// si alguna falla no se registra ninguna y el estado no cambia.
func (e *Engine) TransitionDispatch(ctx context.Context, companyID, id, actorID string, t entity.Transition, f TransitionFields) (*entity.Dispatch, error) {
	var out *entity.Dispatch
	err := e.run(ctx, func(ctx context.Context, repos repository.Repositories, records *[]*entity.MovementRecord) error {
		d, err := repos.Dispatches.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrNotFound
		}
		if _, err := entity.DispatchFlow.Next(d.Status, t); err != nil {
			return err
		}
		version := d.Version

		switch t {
		case entity.TransitionSubmit, entity.TransitionApprove:
			if len(d.Lines) == 0 {
				return domain.ErrEmptyLineItems
			}
		case entity.TransitionDispatch:
			if len(d.Lines) == 0 {
				return domain.ErrEmptyLineItems
			}
			issued, err := e.issueDispatchLines(ctx, repos, d, actorID)
			if err != nil {
				return err
			}
			*records = issued
		case entity.TransitionDeliver:
			if f.ReceivedByName == "" {
				return fmt.Errorf("%w: nombre de quien recibe requerido", domain.ErrInvalidInput)
			}
			d.ReceivedByName = f.ReceivedByName
		case entity.TransitionCancel:
			d.CancelReason = f.Reason
		}

		if err := d.Advance(t, actorID, e.now()); err != nil {
			return err
		}
		if err := repos.Dispatches.Update(ctx, d, version); err != nil {
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

// issueDispatchLines bloquea las filas en orden y registra una salida por línea con control obligatorio.
func (e *Engine) issueDispatchLines(ctx context.Context, repos repository.Repositories, d *entity.Dispatch, actorID string) ([]*entity.MovementRecord, error) {
	locked, err := lockLines(ctx, repos, d.CompanyID, d.WarehouseID, d.Lines)
	if err != nil {
		return nil, err
	}
	now := e.now()
	records := make([]*entity.MovementRecord, 0, len(d.Lines))
	for _, line := range d.Lines {
		key := lineKey(d.CompanyID, d.WarehouseID, line)
		rec, err := inventory.Post(ctx, repos, locked[key], inventory.PostInput{
			Key:          key,
			Type:         entity.MovementIssue,
			Quantity:     line.Quantity,
			MovementDate: now,
			OriginKind:   entity.OriginDispatch,
			OriginID:     d.ID,
			ActorID:      actorID,
			Policy:       invdomain.GuardMandatory,
		}, now)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (e *Engine) newDispatch(in DocumentInput) (*entity.Dispatch, error) {
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
	d := &entity.Dispatch{
		ID:           uuid.New().String(),
		CompanyID:    in.CompanyID,
		WarehouseID:  in.WarehouseID,
		CustomerID:   in.PartyID,
		Status:       entity.DispatchDraft,
		DispatchDate: documentDate(in.Date, now),
		Notes:        in.Notes,
		Lines:        lines,
		Created:      &entity.Stamp{At: now, By: in.ActorID},
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	d.Totals = invdomain.CalculateTotals(d.Lines, charges(in))
	return d, nil
}

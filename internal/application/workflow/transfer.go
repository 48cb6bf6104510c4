package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	invdomain "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// CreateTransfer crea un traslado en pending con su consecutivo TRF-NNNNNN.
func (e *Engine) CreateTransfer(ctx context.Context, in DocumentInput) (*entity.InventoryTransfer, error) {
	lines, err := validateTransferInput(in)
	if err != nil {
		return nil, err
	}
	now := e.now()
	t := &entity.InventoryTransfer{
		ID:              uuid.New().String(),
		CompanyID:       in.CompanyID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Status:          entity.TransferPending,
		TransferDate:    documentDate(in.Date, now),
		Notes:           in.Notes,
		Lines:           lines,
		Requested:       &entity.Stamp{At: now, By: in.ActorID},
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	t.Totals = invdomain.CalculateTotals(t.Lines, charges(in))

	err = e.run(ctx, func(ctx context.Context, repos repository.Repositories, _ *[]*entity.MovementRecord) error {
		number, err := nextNumber(ctx, repos, t.CompanyID, entity.KindTransfer)
		if err != nil {
			return err
		}
		t.Number = number
		return repos.Transfers.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTransfer reemplaza cabecera y líneas mientras el traslado sigue en pending.
func (e *Engine) UpdateTransfer(ctx context.Context, id string, expectedVersion int64, in DocumentInput) (*entity.InventoryTransfer, error) {
	lines, err := validateTransferInput(in)
	if err != nil {
		return nil, err
	}

	var out *entity.InventoryTransfer
	err = e.run(ctx, func(ctx context.Context, repos repository.Repositories, _ *[]*entity.MovementRecord) error {
		t, err := repos.Transfers.GetForUpdate(ctx, in.CompanyID, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if t.Version != expectedVersion {
			return domain.ErrConcurrentModification
		}
		if !entity.TransferFlow.Editable(t.Status) {
			return notEditable(entity.KindTransfer, string(t.Status))
		}
		t.FromWarehouseID = in.FromWarehouseID
		t.ToWarehouseID = in.ToWarehouseID
		t.TransferDate = documentDate(in.Date, t.TransferDate)
		t.Notes = in.Notes
		t.Lines = lines
		t.Totals = invdomain.CalculateTotals(t.Lines, charges(in))
		t.UpdatedAt = e.now()
		if err := repos.Transfers.Update(ctx, t, expectedVersion); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TransitionTransfer ejecuta approve, ship, receive o cancel.
// ship valida disponibilidad en la bodega origen y registra transfer_out por línea;
// receive registra transfer_in en destino por la cantidad recibida y guarda las discrepancias.
func (e *Engine) TransitionTransfer(ctx context.Context, companyID, id, actorID string, tr entity.Transition, f TransitionFields) (*entity.InventoryTransfer, error) {
	var out *entity.InventoryTransfer
	err := e.run(ctx, func(ctx context.Context, repos repository.Repositories, records *[]*entity.MovementRecord) error {
		t, err := repos.Transfers.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if _, err := entity.TransferFlow.Next(t.Status, tr); err != nil {
			return err
		}
		version := t.Version

		switch tr {
		case entity.TransitionApprove:
			if len(t.Lines) == 0 {
				return domain.ErrEmptyLineItems
			}
			t.ApprovalNotes = f.Notes
		case entity.TransitionShip:
			if len(t.Lines) == 0 {
				return domain.ErrEmptyLineItems
			}
			t.TrackingNumber = f.TrackingNumber
			t.Carrier = f.Carrier
			shipped, err := shipTransferLines(ctx, repos, t, actorID, e.now)
			if err != nil {
				return err
			}
			*records = shipped
		case entity.TransitionReceive:
			received, err := receiveTransferLines(ctx, repos, t, actorID, f.Discrepancies, e.now)
			if err != nil {
				return err
			}
			t.ReceiptNotes = f.Notes
			*records = received
		case entity.TransitionCancel:
			t.CancelReason = f.Reason
		}

		if err := t.Advance(tr, actorID, e.now()); err != nil {
			return err
		}
		if err := repos.Transfers.Update(ctx, t, version); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func shipTransferLines(ctx context.Context, repos repository.Repositories, t *entity.InventoryTransfer, actorID string, clock inventory.Clock) ([]*entity.MovementRecord, error) {
	locked, err := lockLines(ctx, repos, t.CompanyID, t.FromWarehouseID, t.Lines)
	if err != nil {
		return nil, err
	}
	now := clock()
	records := make([]*entity.MovementRecord, 0, len(t.Lines))
	for _, line := range t.Lines {
		key := lineKey(t.CompanyID, t.FromWarehouseID, line)
		rec, err := inventory.Post(ctx, repos, locked[key], inventory.PostInput{
			Key:          key,
			Type:         entity.MovementTransferOut,
			Quantity:     line.Quantity,
			MovementDate: now,
			OriginKind:   entity.OriginTransfer,
			OriginID:     t.ID,
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

// receiveTransferLines aplica la cantidad recibida de cada línea (la enviada salvo discrepancia).
// El costo de entrada es el de la salida registrada en origen para el mismo traslado.
func receiveTransferLines(ctx context.Context, repos repository.Repositories, t *entity.InventoryTransfer, actorID string, in []DiscrepancyInput, clock inventory.Clock) ([]*entity.MovementRecord, error) {
	shipped := make(map[string]decimal.Decimal, len(t.Lines))
	for _, line := range t.Lines {
		shipped[line.ProductID] = line.Quantity
	}
	received := make(map[string]DiscrepancyInput, len(in))
	for _, d := range in {
		expected, ok := shipped[d.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: el producto %s no está en el traslado", domain.ErrInvalidInput, d.ProductID)
		}
		if _, dup := received[d.ProductID]; dup {
			return nil, fmt.Errorf("%w: discrepancia repetida para %s", domain.ErrInvalidInput, d.ProductID)
		}
		if d.Received.IsNegative() || d.Received.GreaterThan(expected) || !invdomain.WithinScale(d.Received) {
			return nil, fmt.Errorf("%w: cantidad recibida fuera de rango para %s", domain.ErrInvalidInput, d.ProductID)
		}
		received[d.ProductID] = d
	}

	locked, err := lockLines(ctx, repos, t.CompanyID, t.ToWarehouseID, t.Lines)
	if err != nil {
		return nil, err
	}
	now := clock()
	records := make([]*entity.MovementRecord, 0, len(t.Lines))
	t.Discrepancies = t.Discrepancies[:0]
	for i := range t.Lines {
		line := &t.Lines[i]
		qty := line.Quantity
		if d, ok := received[line.ProductID]; ok {
			qty = d.Received
			if !d.Received.Equal(line.Quantity) {
				t.Discrepancies = append(t.Discrepancies, entity.Discrepancy{
					ID:        uuid.New().String(),
					ProductID: line.ProductID,
					Expected:  line.Quantity,
					Received:  d.Received,
					Reason:    d.Reason,
				})
			}
		}
		line.ReceivedQuantity = &qty
		if qty.IsZero() {
			continue
		}

		cost, err := shippedUnitCost(ctx, repos, t, line.ProductID)
		if err != nil {
			return nil, err
		}
		key := lineKey(t.CompanyID, t.ToWarehouseID, *line)
		rec, err := inventory.Post(ctx, repos, locked[key], inventory.PostInput{
			Key:          key,
			Type:         entity.MovementTransferIn,
			Quantity:     qty,
			UnitCost:     cost,
			MovementDate: now,
			OriginKind:   entity.OriginTransfer,
			OriginID:     t.ID,
			ActorID:      actorID,
		}, now)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// shippedUnitCost busca el transfer_out del traslado en la bodega origen; nil si no hay.
func shippedUnitCost(ctx context.Context, repos repository.Repositories, t *entity.InventoryTransfer, productID string) (*decimal.Decimal, error) {
	key := entity.StockKey{CompanyID: t.CompanyID, WarehouseID: t.FromWarehouseID, ProductID: productID}
	out, err := repos.Movements.List(ctx, key, repository.MovementFilter{
		Types:    []entity.MovementType{entity.MovementTransferOut},
		OriginID: t.ID,
		Limit:    1,
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	cost := out[0].UnitCost
	return &cost, nil
}

func validateTransferInput(in DocumentInput) ([]entity.LineItem, error) {
	if err := validateHeader(in); err != nil {
		return nil, err
	}
	if in.FromWarehouseID == "" || in.ToWarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.FromWarehouseID == in.ToWarehouseID {
		return nil, fmt.Errorf("%w: bodega origen y destino deben ser distintas", domain.ErrInvalidInput)
	}
	seen := make(map[string]bool, len(in.Lines))
	for _, l := range in.Lines {
		if seen[l.ProductID] {
			return nil, fmt.Errorf("%w: producto %s repetido en el traslado", domain.ErrInvalidInput, l.ProductID)
		}
		seen[l.ProductID] = true
	}
	return buildLines(in.Lines)
}

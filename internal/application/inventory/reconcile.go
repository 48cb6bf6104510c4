package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// BalanceMismatch es un registro cuyo saldo almacenado difiere del recalculado en orden (movement_date, id).
type BalanceMismatch struct {
	RecordID int64
	Stored   decimal.Decimal
	Expected decimal.Decimal
}

// ReconcileReport compara el kardex recalculado con los saldos almacenados y con las existencias.
type ReconcileReport struct {
	Key               entity.StockKey
	Records           int
	StoredHead        decimal.Decimal
	RecomputedBalance decimal.Decimal
	SnapshotOnHand    decimal.Decimal
	Mismatches        []BalanceMismatch
}

// Consistent es true cuando no hay saldos divergentes y las existencias coinciden con el kardex.
func (r ReconcileReport) Consistent() bool {
	return len(r.Mismatches) == 0 &&
		r.StoredHead.Equal(r.RecomputedBalance) &&
		r.SnapshotOnHand.Equal(r.RecomputedBalance)
}

// ReconcileUseCase detecta las divergencias que dejan los registros retroactivos.
// Solo reporta: el historial es inmutable y no se reescriben saldos.
type ReconcileUseCase struct {
	movements repository.MovementRepository
	stock     repository.StockRepository
	pageSize  int
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(movements repository.MovementRepository, stock repository.StockRepository) *ReconcileUseCase {
	return &ReconcileUseCase{movements: movements, stock: stock, pageSize: MaxKardexLimit}
}

// Check recorre el kardex completo de la clave por páginas.
func (uc *ReconcileUseCase) Check(ctx context.Context, key entity.StockKey) (*ReconcileReport, error) {
	if key.CompanyID == "" || key.WarehouseID == "" || key.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	report := &ReconcileReport{Key: key}
	running := decimal.Zero
	filter := repository.MovementFilter{Limit: uc.pageSize}
	for {
		page, err := uc.movements.List(ctx, key, filter)
		if err != nil {
			return nil, err
		}
		for _, rec := range page {
			running = running.Add(rec.Delta())
			if !rec.Balance.Equal(running) {
				report.Mismatches = append(report.Mismatches, BalanceMismatch{RecordID: rec.ID, Stored: rec.Balance, Expected: running})
			}
		}
		report.Records += len(page)
		if len(page) < filter.Limit {
			break
		}
		filter.After = NextCursor(page)
	}
	report.RecomputedBalance = running

	head, err := uc.movements.Head(ctx, key)
	if err != nil {
		return nil, err
	}
	if head != nil {
		report.StoredHead = head.Balance
	}
	snap, err := uc.stock.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		report.SnapshotOnHand = snap.OnHand
	}
	return report, nil
}

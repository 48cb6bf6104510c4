package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// Tamaño de página del kardex.
const (
	DefaultKardexLimit = 100
	MaxKardexLimit     = 1000
)

// KardexLimit normaliza el tamaño de página pedido: cero o negativo usa el valor por defecto.
func KardexLimit(requested int) int {
	if requested <= 0 {
		return DefaultKardexLimit
	}
	return min(requested, MaxKardexLimit)
}

// QueryUseCase expone las lecturas del kardex y de existencias (solo lectura, fuera de transacción).
type QueryUseCase struct {
	movements repository.MovementRepository
	stock     repository.StockRepository
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(movements repository.MovementRepository, stock repository.StockRepository) *QueryUseCase {
	return &QueryUseCase{movements: movements, stock: stock}
}

// LatestBalance devuelve el saldo del último registro (movement_date desc, id desc) o cero.
func (uc *QueryUseCase) LatestBalance(ctx context.Context, key entity.StockKey) (decimal.Decimal, error) {
	head, err := uc.movements.Head(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	if head == nil {
		return decimal.Zero, nil
	}
	return head.Balance, nil
}

// History devuelve el kardex en orden (movement_date, id) ascendente. Para continuar un listado
// se pasa en filter.After el cursor del último registro recibido.
func (uc *QueryUseCase) History(ctx context.Context, key entity.StockKey, filter repository.MovementFilter) ([]*entity.MovementRecord, error) {
	if key.CompanyID == "" || key.WarehouseID == "" || key.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, domain.ErrInvalidInput
	}
	for _, t := range filter.Types {
		if !t.IsValid() {
			return nil, domain.ErrInvalidInput
		}
	}
	filter.Limit = KardexLimit(filter.Limit)
	return uc.movements.List(ctx, key, filter)
}

// Snapshot devuelve las existencias actuales; una fila inexistente se devuelve en cero.
func (uc *QueryUseCase) Snapshot(ctx context.Context, key entity.StockKey) (*entity.StockSnapshot, error) {
	if key.CompanyID == "" || key.WarehouseID == "" || key.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	snap, err := uc.stock.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return entity.NewStockSnapshot(key), nil
	}
	return snap, nil
}

// NextCursor devuelve el cursor para continuar después del último registro de la página.
func NextCursor(page []*entity.MovementRecord) *entity.MovementCursor {
	if len(page) == 0 {
		return nil
	}
	last := page[len(page)-1]
	return &entity.MovementCursor{MovementDate: last.MovementDate, ID: last.ID}
}

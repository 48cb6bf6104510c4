package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo existencias por empresa+bodega+producto sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockSelect = `
	SELECT company_id, warehouse_id, product_id, on_hand, reserved, available, active, updated_at
	FROM stock_snapshots WHERE company_id = $1 AND warehouse_id = $2 AND product_id = $3`

// Get obtiene la fila actual o nil si nunca hubo movimientos.
func (r *StockRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockSnapshot, error) {
	s, err := scanStock(r.q.QueryRow(ctx, stockSelect, key.CompanyID, key.WarehouseID, key.ProductID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// GetForUpdate crea las filas que falten y las bloquea (SELECT FOR UPDATE) en orden de clave.
func (r *StockRepo) GetForUpdate(ctx context.Context, keys ...entity.StockKey) (map[entity.StockKey]*entity.StockSnapshot, error) {
	out := make(map[entity.StockKey]*entity.StockSnapshot, len(keys))
	for _, k := range entity.SortedKeys(keys) {
		_, err := r.q.Exec(ctx, `
			INSERT INTO stock_snapshots (company_id, warehouse_id, product_id, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (company_id, warehouse_id, product_id) DO NOTHING`,
			k.CompanyID, k.WarehouseID, k.ProductID)
		if err != nil {
			return nil, fmt.Errorf("ensure stock row: %w", err)
		}
		s, err := scanStock(r.q.QueryRow(ctx, stockSelect+" FOR UPDATE", k.CompanyID, k.WarehouseID, k.ProductID))
		if err != nil {
			return nil, fmt.Errorf("get stock for update: %w", err)
		}
		out[k] = s
	}
	return out, nil
}

// Save escribe la fila completa (la fila ya existe y está bloqueada por GetForUpdate).
func (r *StockRepo) Save(ctx context.Context, s *entity.StockSnapshot) error {
	query := `
		INSERT INTO stock_snapshots (company_id, warehouse_id, product_id, on_hand, reserved, available, active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (company_id, warehouse_id, product_id)
		DO UPDATE SET on_hand = EXCLUDED.on_hand, reserved = EXCLUDED.reserved, available = EXCLUDED.available,
			active = EXCLUDED.active, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, s.CompanyID, s.WarehouseID, s.ProductID, s.OnHand, s.Reserved, s.Available, s.Active, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save stock: %w", err)
	}
	return nil
}

func scanStock(row pgx.Row) (*entity.StockSnapshot, error) {
	var s entity.StockSnapshot
	if err := row.Scan(&s.CompanyID, &s.WarehouseID, &s.ProductID, &s.OnHand, &s.Reserved, &s.Available, &s.Active, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*InventoryMovementRepo)(nil)

const movementColumns = `id, company_id, warehouse_id, product_id, type, quantity_in, quantity_out, balance,
	unit_cost, total_cost, movement_date, origin_kind, origin_id, reason_code, created_by, created_at`

// InventoryMovementRepo kardex sobre PostgreSQL (usable con pool o tx). Solo inserta y lee.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste el registro y le asigna el ID de la secuencia.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.MovementRecord) error {
	query := `
		INSERT INTO inventory_movements (company_id, warehouse_id, product_id, type, quantity_in, quantity_out, balance,
			unit_cost, total_cost, movement_date, origin_kind, origin_id, reason_code, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		m.CompanyID, m.WarehouseID, m.ProductID, string(m.Type), m.QuantityIn, m.QuantityOut, m.Balance,
		m.UnitCost, m.TotalCost, m.MovementDate, string(m.OriginKind), m.OriginID, m.ReasonCode, m.CreatedBy, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// Head devuelve el último registro de la clave por (movement_date, id).
func (r *InventoryMovementRepo) Head(ctx context.Context, key entity.StockKey) (*entity.MovementRecord, error) {
	query := `SELECT ` + movementColumns + `
		FROM inventory_movements
		WHERE company_id = $1 AND warehouse_id = $2 AND product_id = $3
		ORDER BY movement_date DESC, id DESC
		LIMIT 1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, key.CompanyID, key.WarehouseID, key.ProductID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("movement head: %w", err)
	}
	return m, nil
}

// List devuelve el historial filtrado en orden (movement_date, id) ascendente.
func (r *InventoryMovementRepo) List(ctx context.Context, key entity.StockKey, f repository.MovementFilter) ([]*entity.MovementRecord, error) {
	query := `SELECT ` + movementColumns + `
		FROM inventory_movements
		WHERE company_id = $1 AND warehouse_id = $2 AND product_id = $3`
	args := []any{key.CompanyID, key.WarehouseID, key.ProductID}
	pos := 4
	if f.From != nil {
		query += fmt.Sprintf(" AND movement_date >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND movement_date <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	if len(f.Types) > 0 {
		types := make([]string, 0, len(f.Types))
		for _, t := range f.Types {
			types = append(types, string(t))
		}
		query += fmt.Sprintf(" AND type = ANY($%d)", pos)
		args = append(args, types)
		pos++
	}
	if f.OriginID != "" {
		query += fmt.Sprintf(" AND origin_id = $%d", pos)
		args = append(args, f.OriginID)
		pos++
	}
	if f.After != nil {
		query += fmt.Sprintf(" AND (movement_date, id) > ($%d, $%d)", pos, pos+1)
		args = append(args, f.After.MovementDate, f.After.ID)
		pos += 2
	}
	query += " ORDER BY movement_date ASC, id ASC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, f.Limit)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.MovementRecord, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.MovementRecord, error) {
	var (
		m          entity.MovementRecord
		typ, okind string
	)
	err := row.Scan(&m.ID, &m.CompanyID, &m.WarehouseID, &m.ProductID, &typ, &m.QuantityIn, &m.QuantityOut, &m.Balance,
		&m.UnitCost, &m.TotalCost, &m.MovementDate, &okind, &m.OriginID, &m.ReasonCode, &m.CreatedBy, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(typ)
	m.OriginKind = entity.OriginKind(okind)
	m.MovementDate = m.MovementDate.UTC()
	m.CreatedAt = m.CreatedAt.UTC()
	return &m, nil
}

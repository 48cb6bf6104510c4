package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traslados sobre PostgreSQL; las discrepancias van en transfer_discrepancies.
type TransferRepo struct {
	docs documentStore
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{docs: documentStore{q: q}}
}

func transferRow(t *entity.InventoryTransfer) documentRow {
	header := *t
	header.Lines = nil
	header.Discrepancies = nil
	return documentRow{
		id: t.ID, companyID: t.CompanyID, kind: entity.KindTransfer, number: t.Number, status: string(t.Status),
		header: header, totals: t.Totals, version: t.Version, createdAt: t.CreatedAt, updatedAt: t.UpdatedAt, lines: t.Lines,
	}
}

func (r *TransferRepo) Create(ctx context.Context, t *entity.InventoryTransfer) error {
	if err := r.docs.insert(ctx, transferRow(t)); err != nil {
		return err
	}
	return r.saveDiscrepancies(ctx, t)
}

func (r *TransferRepo) GetByID(ctx context.Context, companyID, id string) (*entity.InventoryTransfer, error) {
	return r.get(ctx, companyID, id, false)
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.InventoryTransfer, error) {
	return r.get(ctx, companyID, id, true)
}

func (r *TransferRepo) Update(ctx context.Context, t *entity.InventoryTransfer, expectedVersion int64) error {
	if err := r.docs.update(ctx, transferRow(t), expectedVersion); err != nil {
		return err
	}
	if _, err := r.docs.q.Exec(ctx, `DELETE FROM transfer_discrepancies WHERE transfer_id = $1`, t.ID); err != nil {
		return fmt.Errorf("delete discrepancies: %w", err)
	}
	if err := r.saveDiscrepancies(ctx, t); err != nil {
		return err
	}
	t.Version = expectedVersion + 1
	return nil
}

func (r *TransferRepo) saveDiscrepancies(ctx context.Context, t *entity.InventoryTransfer) error {
	for _, d := range t.Discrepancies {
		_, err := r.docs.q.Exec(ctx, `
			INSERT INTO transfer_discrepancies (id, transfer_id, product_id, expected, received, reason)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			d.ID, t.ID, d.ProductID, d.Expected, d.Received, d.Reason)
		if err != nil {
			return fmt.Errorf("insert discrepancy: %w", err)
		}
	}
	return nil
}

func (r *TransferRepo) get(ctx context.Context, companyID, id string, forUpdate bool) (*entity.InventoryTransfer, error) {
	doc, err := r.docs.load(ctx, entity.KindTransfer, companyID, id, forUpdate)
	if err != nil || doc == nil {
		return nil, err
	}
	var t entity.InventoryTransfer
	if err := json.Unmarshal(doc.header, &t); err != nil {
		return nil, fmt.Errorf("decode transfer: %w", err)
	}
	t.Version = doc.version
	t.Lines = doc.lines

	rows, err := r.docs.q.Query(ctx, `
		SELECT id, product_id, expected, received, reason
		FROM transfer_discrepancies WHERE transfer_id = $1 ORDER BY product_id`, id)
	if err != nil {
		return nil, fmt.Errorf("list discrepancies: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d entity.Discrepancy
		if err := rows.Scan(&d.ID, &d.ProductID, &d.Expected, &d.Received, &d.Reason); err != nil {
			return nil, fmt.Errorf("scan discrepancy: %w", err)
		}
		t.Discrepancies = append(t.Discrepancies, d)
	}
	return &t, rows.Err()
}

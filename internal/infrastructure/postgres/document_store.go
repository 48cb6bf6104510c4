package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// documentStore persiste los tres tipos de documento en workflow_documents:
// columnas comunes, campos propios en header (JSONB) y líneas en workflow_document_lines.
type documentStore struct {
	q Querier
}

type documentRow struct {
	id        string
	companyID string
	kind      entity.DocumentKind
	number    string
	status    string
	header    any
	totals    entity.Totals
	version   int64
	createdAt time.Time
	updatedAt time.Time
	lines     []entity.LineItem
}

type loadedDocument struct {
	header  []byte
	version int64
	lines   []entity.LineItem
}

func (s documentStore) insert(ctx context.Context, row documentRow) error {
	header, err := json.Marshal(row.header)
	if err != nil {
		return fmt.Errorf("marshal header: %w", err)
	}
	query := `
		INSERT INTO workflow_documents (id, company_id, kind, number, status, header, subtotal, tax_amount,
			discount_amount, shipping_cost, total, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = s.q.Exec(ctx, query, row.id, row.companyID, string(row.kind), row.number, row.status, header,
		row.totals.Subtotal, row.totals.TaxAmount, row.totals.DiscountAmount, row.totals.ShippingCost, row.totals.Total,
		row.version, row.createdAt, row.updatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s %s ya existe", domain.ErrInvalidInput, row.kind, row.number)
		}
		return fmt.Errorf("insert %s: %w", row.kind, err)
	}
	return s.insertLines(ctx, row.id, row.lines)
}

// update aplica el cambio solo si la versión almacenada es expectedVersion.
func (s documentStore) update(ctx context.Context, row documentRow, expectedVersion int64) error {
	header, err := json.Marshal(row.header)
	if err != nil {
		return fmt.Errorf("marshal header: %w", err)
	}
	query := `
		UPDATE workflow_documents SET status = $1, header = $2, subtotal = $3, tax_amount = $4, discount_amount = $5,
			shipping_cost = $6, total = $7, version = version + 1, updated_at = $8
		WHERE id = $9 AND company_id = $10 AND kind = $11 AND version = $12`
	tag, err := s.q.Exec(ctx, query, row.status, header, row.totals.Subtotal, row.totals.TaxAmount,
		row.totals.DiscountAmount, row.totals.ShippingCost, row.totals.Total, row.updatedAt,
		row.id, row.companyID, string(row.kind), expectedVersion)
	if err != nil {
		return fmt.Errorf("update %s: %w", row.kind, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.q.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM workflow_documents WHERE id = $1 AND company_id = $2 AND kind = $3)`,
			row.id, row.companyID, string(row.kind)).Scan(&exists); err != nil {
			return fmt.Errorf("check %s: %w", row.kind, err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrConcurrentModification
	}
	if _, err := s.q.Exec(ctx, `DELETE FROM workflow_document_lines WHERE document_id = $1`, row.id); err != nil {
		return fmt.Errorf("delete lines: %w", err)
	}
	return s.insertLines(ctx, row.id, row.lines)
}

func (s documentStore) insertLines(ctx context.Context, documentID string, lines []entity.LineItem) error {
	query := `
		INSERT INTO workflow_document_lines (id, document_id, position, product_id, quantity, unit_price, subtotal, notes, received_quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for i, l := range lines {
		if _, err := s.q.Exec(ctx, query, l.ID, documentID, i, l.ProductID, l.Quantity, l.UnitPrice, l.Subtotal, l.Notes, l.ReceivedQuantity); err != nil {
			return fmt.Errorf("insert line: %w", err)
		}
	}
	return nil
}

// load devuelve nil si el documento no existe en la empresa.
func (s documentStore) load(ctx context.Context, kind entity.DocumentKind, companyID, id string, forUpdate bool) (*loadedDocument, error) {
	query := `SELECT header, version FROM workflow_documents WHERE id = $1 AND company_id = $2 AND kind = $3`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var doc loadedDocument
	err := s.q.QueryRow(ctx, query, id, companyID, string(kind)).Scan(&doc.header, &doc.version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}

	rows, err := s.q.Query(ctx, `
		SELECT id, product_id, quantity, unit_price, subtotal, notes, received_quantity
		FROM workflow_document_lines WHERE document_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("list lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			l        entity.LineItem
			received decimal.NullDecimal
		)
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.Subtotal, &l.Notes, &received); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		if received.Valid {
			q := received.Decimal
			l.ReceivedQuantity = &q
		}
		doc.lines = append(doc.lines, l)
	}
	return &doc, rows.Err()
}

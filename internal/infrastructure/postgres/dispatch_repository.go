package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.DispatchRepository = (*DispatchRepo)(nil)

// DispatchRepo despachos sobre PostgreSQL.
type DispatchRepo struct {
	docs documentStore
}

// NewDispatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDispatchRepository(q Querier) *DispatchRepo {
	return &DispatchRepo{docs: documentStore{q: q}}
}

func dispatchRow(d *entity.Dispatch) documentRow {
	header := *d
	header.Lines = nil
	return documentRow{
		id: d.ID, companyID: d.CompanyID, kind: entity.KindDispatch, number: d.Number, status: string(d.Status),
		header: header, totals: d.Totals, version: d.Version, createdAt: d.CreatedAt, updatedAt: d.UpdatedAt, lines: d.Lines,
	}
}

func (r *DispatchRepo) Create(ctx context.Context, d *entity.Dispatch) error {
	return r.docs.insert(ctx, dispatchRow(d))
}

func (r *DispatchRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Dispatch, error) {
	return r.get(ctx, companyID, id, false)
}

func (r *DispatchRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Dispatch, error) {
	return r.get(ctx, companyID, id, true)
}

func (r *DispatchRepo) Update(ctx context.Context, d *entity.Dispatch, expectedVersion int64) error {
	if err := r.docs.update(ctx, dispatchRow(d), expectedVersion); err != nil {
		return err
	}
	d.Version = expectedVersion + 1
	return nil
}

func (r *DispatchRepo) get(ctx context.Context, companyID, id string, forUpdate bool) (*entity.Dispatch, error) {
	doc, err := r.docs.load(ctx, entity.KindDispatch, companyID, id, forUpdate)
	if err != nil || doc == nil {
		return nil, err
	}
	var d entity.Dispatch
	if err := json.Unmarshal(doc.header, &d); err != nil {
		return nil, fmt.Errorf("decode dispatch: %w", err)
	}
	d.Version = doc.version
	d.Lines = doc.lines
	return &d, nil
}

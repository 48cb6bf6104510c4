package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.DonationRepository = (*DonationRepo)(nil)

// DonationRepo donaciones sobre PostgreSQL.
type DonationRepo struct {
	docs documentStore
}

// NewDonationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDonationRepository(q Querier) *DonationRepo {
	return &DonationRepo{docs: documentStore{q: q}}
}

func donationRow(d *entity.Donation) documentRow {
	header := *d
	header.Lines = nil
	return documentRow{
		id: d.ID, companyID: d.CompanyID, kind: entity.KindDonation, number: d.Number, status: string(d.Status),
		header: header, totals: d.Totals, version: d.Version, createdAt: d.CreatedAt, updatedAt: d.UpdatedAt, lines: d.Lines,
	}
}

func (r *DonationRepo) Create(ctx context.Context, d *entity.Donation) error {
	return r.docs.insert(ctx, donationRow(d))
}

func (r *DonationRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Donation, error) {
	return r.get(ctx, companyID, id, false)
}

func (r *DonationRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Donation, error) {
	return r.get(ctx, companyID, id, true)
}

func (r *DonationRepo) Update(ctx context.Context, d *entity.Donation, expectedVersion int64) error {
	if err := r.docs.update(ctx, donationRow(d), expectedVersion); err != nil {
		return err
	}
	d.Version = expectedVersion + 1
	return nil
}

func (r *DonationRepo) get(ctx context.Context, companyID, id string, forUpdate bool) (*entity.Donation, error) {
	doc, err := r.docs.load(ctx, entity.KindDonation, companyID, id, forUpdate)
	if err != nil || doc == nil {
		return nil, err
	}
	var d entity.Donation
	if err := json.Unmarshal(doc.header, &d); err != nil {
		return nil, fmt.Errorf("decode donation: %w", err)
	}
	d.Version = doc.version
	d.Lines = doc.lines
	return &d, nil
}

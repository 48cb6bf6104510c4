package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func docLockName(kind entity.DocumentKind, id string) string {
	return string(kind) + ":" + id
}

type dispatchRepo struct {
	tx *tx
}

func (r *dispatchRepo) lookup(companyID, id string) *entity.Dispatch {
	d, ok := r.tx.dispatches[id]
	if !ok {
		s := r.tx.store
		s.mu.RLock()
		d = s.dispatches[id]
		s.mu.RUnlock()
	}
	if d == nil || d.CompanyID != companyID {
		return nil
	}
	return cloneDispatch(d)
}

func (r *dispatchRepo) Create(_ context.Context, d *entity.Dispatch) error {
	if r.tx.readOnly {
		return errReadOnly
	}
	if r.lookup(d.CompanyID, d.ID) != nil {
		return fmt.Errorf("%w: despacho %s ya existe", domain.ErrInvalidInput, d.ID)
	}
	r.tx.dispatches[d.ID] = cloneDispatch(d)
	return nil
}

func (r *dispatchRepo) GetByID(_ context.Context, companyID, id string) (*entity.Dispatch, error) {
	return r.lookup(companyID, id), nil
}

func (r *dispatchRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Dispatch, error) {
	if err := r.tx.lock(ctx, docLockName(entity.KindDispatch, id)); err != nil {
		return nil, err
	}
	return r.lookup(companyID, id), nil
}

func (r *dispatchRepo) Update(_ context.Context, d *entity.Dispatch, expectedVersion int64) error {
	if r.tx.readOnly {
		return errReadOnly
	}
	cur := r.lookup(d.CompanyID, d.ID)
	if cur == nil {
		return domain.ErrNotFound
	}
	if cur.Version != expectedVersion {
		return domain.ErrConcurrentModification
	}
	d.Version = expectedVersion + 1
	r.tx.dispatches[d.ID] = cloneDispatch(d)
	return nil
}

type donationRepo struct {
	tx *tx
}

func (r *donationRepo) lookup(companyID, id string) *entity.Donation {
	d, ok := r.tx.donations[id]
	if !ok {
		s := r.tx.store
		s.mu.RLock()
		d = s.donations[id]
		s.mu.RUnlock()
	}
	if d == nil || d.CompanyID != companyID {
		return nil
	}
	return cloneDonation(d)
}

func (r *donationRepo) Create(_ context.Context, d *entity.Donation) error {
	if r.tx.readOnly {
		return errReadOnly
	}
	if r.lookup(d.CompanyID, d.ID) != nil {
		return fmt.Errorf("%w: donación %s ya existe", domain.ErrInvalidInput, d.ID)
	}
	r.tx.donations[d.ID] = cloneDonation(d)
	return nil
}

func (r *donationRepo) GetByID(_ context.Context, companyID, id string) (*entity.Donation, error) {
	return r.lookup(companyID, id), nil
}

func (r *donationRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Donation, error) {
	if err := r.tx.lock(ctx, docLockName(entity.KindDonation, id)); err != nil {
		return nil, err
	}
	return r.lookup(companyID, id), nil
}

func (r *donationRepo) Update(_ context.Context, d *entity.Donation, expectedVersion int64) error {
	if r.tx.readOnly {
		return errReadOnly
	}
	cur := r.lookup(d.CompanyID, d.ID)
	if cur == nil {
		return domain.ErrNotFound
	}
	if cur.Version != expectedVersion {
		return domain.ErrConcurrentModification
	}
	d.Version = expectedVersion + 1
	r.tx.donations[d.ID] = cloneDonation(d)
	return nil
}

type transferRepo struct {
	tx *tx
}

func (r *transferRepo) lookup(companyID, id string) *entity.InventoryTransfer {
	t, ok := r.tx.transfers[id]
	if !ok {
		s := r.tx.store
		s.mu.RLock()
		t = s.transfers[id]
		s.mu.RUnlock()
	}
	if t == nil || t.CompanyID != companyID {
		return nil
	}
	return cloneTransfer(t)
}

func (r *transferRepo) Create(_ context.Context, t *entity.InventoryTransfer) error {
	if r.tx.readOnly {
		return errReadOnly
	}
	if r.lookup(t.CompanyID, t.ID) != nil {
		return fmt.Errorf("%w: traslado %s ya existe", domain.ErrInvalidInput, t.ID)
	}
	r.tx.transfers[t.ID] = cloneTransfer(t)
	return nil
}

func (r *transferRepo) GetByID(_ context.Context, companyID, id string) (*entity.InventoryTransfer, error) {
	return r.lookup(companyID, id), nil
}

func (r *transferRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.InventoryTransfer, error) {
	if err := r.tx.lock(ctx, docLockName(entity.KindTransfer, id)); err != nil {
		return nil, err
	}
	return r.lookup(companyID, id), nil
}

func (r *transferRepo) Update(_ context.Context, t *entity.InventoryTransfer, expectedVersion int64) error {
	if r.tx.readOnly {
		return errReadOnly
	}
	cur := r.lookup(t.CompanyID, t.ID)
	if cur == nil {
		return domain.ErrNotFound
	}
	if cur.Version != expectedVersion {
		return domain.ErrConcurrentModification
	}
	t.Version = expectedVersion + 1
	r.tx.transfers[t.ID] = cloneTransfer(t)
	return nil
}

type sequenceRepo struct {
	tx *tx
}

// Next mantiene bloqueado el consecutivo hasta el fin de la transacción: un rollback no deja huecos.
func (r *sequenceRepo) Next(ctx context.Context, companyID string, kind entity.DocumentKind) (int64, error) {
	if r.tx.readOnly {
		return 0, errReadOnly
	}
	k := seqKey{companyID: companyID, kind: kind}
	if err := r.tx.lock(ctx, "seq:"+companyID+":"+string(kind)); err != nil {
		return 0, err
	}
	cur, ok := r.tx.sequences[k]
	if !ok {
		s := r.tx.store
		s.mu.RLock()
		cur = s.sequences[k]
		s.mu.RUnlock()
	}
	cur++
	r.tx.sequences[k] = cur
	return cur, nil
}

package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

type movementRepo struct {
	tx *tx
}

func (r *movementRepo) Create(_ context.Context, m *entity.MovementRecord) error {
	if r.tx.readOnly {
		return errReadOnly
	}
	m.ID = r.tx.store.nextID.Add(1)
	cp := *m
	r.tx.movements = append(r.tx.movements, &cp)
	return nil
}

// records devuelve copias de lo confirmado más lo pendiente de esta transacción, sin ordenar.
func (r *movementRepo) records(key entity.StockKey) []*entity.MovementRecord {
	s := r.tx.store
	s.mu.RLock()
	committed := s.movements[key]
	out := make([]*entity.MovementRecord, 0, len(committed))
	for _, m := range committed {
		cp := *m
		out = append(out, &cp)
	}
	s.mu.RUnlock()
	for _, m := range r.tx.movements {
		if m.Key() == key {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out
}

func (r *movementRepo) Head(_ context.Context, key entity.StockKey) (*entity.MovementRecord, error) {
	var head *entity.MovementRecord
	for _, m := range r.records(key) {
		if head == nil || head.Before(m) {
			head = m
		}
	}
	return head, nil
}

func (r *movementRepo) List(_ context.Context, key entity.StockKey, f repository.MovementFilter) ([]*entity.MovementRecord, error) {
	all := r.records(key)
	sort.Slice(all, func(i, j int) bool { return all[i].Before(all[j]) })

	var types map[entity.MovementType]bool
	if len(f.Types) > 0 {
		types = make(map[entity.MovementType]bool, len(f.Types))
		for _, t := range f.Types {
			types[t] = true
		}
	}
	var after *entity.MovementRecord
	if f.After != nil {
		after = &entity.MovementRecord{MovementDate: f.After.MovementDate, ID: f.After.ID}
	}

	out := make([]*entity.MovementRecord, 0)
	for _, m := range all {
		switch {
		case f.From != nil && m.MovementDate.Before(*f.From):
			continue
		case f.To != nil && m.MovementDate.After(*f.To):
			continue
		case types != nil && !types[m.Type]:
			continue
		case f.OriginID != "" && m.OriginID != f.OriginID:
			continue
		case after != nil && !after.Before(m):
			continue
		}
		out = append(out, m)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

type stockRepo struct {
	tx *tx
}

func stockLockName(k entity.StockKey) string {
	return "stock:" + k.String()
}

func (r *stockRepo) current(key entity.StockKey) *entity.StockSnapshot {
	if snap, ok := r.tx.stock[key]; ok {
		cp := *snap
		return &cp
	}
	s := r.tx.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	if snap, ok := s.stock[key]; ok {
		cp := *snap
		return &cp
	}
	return nil
}

func (r *stockRepo) Get(_ context.Context, key entity.StockKey) (*entity.StockSnapshot, error) {
	return r.current(key), nil
}

func (r *stockRepo) GetForUpdate(ctx context.Context, keys ...entity.StockKey) (map[entity.StockKey]*entity.StockSnapshot, error) {
	out := make(map[entity.StockKey]*entity.StockSnapshot, len(keys))
	for _, k := range entity.SortedKeys(keys) {
		if err := r.tx.lock(ctx, stockLockName(k)); err != nil {
			return nil, err
		}
		snap := r.current(k)
		if snap == nil {
			snap = entity.NewStockSnapshot(k)
		}
		out[k] = snap
	}
	return out, nil
}

func (r *stockRepo) Save(_ context.Context, snap *entity.StockSnapshot) error {
	if r.tx.readOnly {
		return errReadOnly
	}
	cp := *snap
	r.tx.stock[snap.Key()] = &cp
	return nil
}

package memory

import (
	"context"
	"errors"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var errReadOnly = errors.New("memory: repositorio de solo lectura")

// tx acumula las escrituras de una transacción y los bloqueos tomados.
// Los bloqueos se liberan al confirmar o descartar.
type tx struct {
	store    *Store
	readOnly bool
	held     map[string]bool
	order    []string

	movements  []*entity.MovementRecord
	stock      map[entity.StockKey]*entity.StockSnapshot
	dispatches map[string]*entity.Dispatch
	donations  map[string]*entity.Donation
	transfers  map[string]*entity.InventoryTransfer
	sequences  map[seqKey]int64
}

func newTx(s *Store, readOnly bool) *tx {
	return &tx{
		store:      s,
		readOnly:   readOnly,
		held:       make(map[string]bool),
		stock:      make(map[entity.StockKey]*entity.StockSnapshot),
		dispatches: make(map[string]*entity.Dispatch),
		donations:  make(map[string]*entity.Donation),
		transfers:  make(map[string]*entity.InventoryTransfer),
		sequences:  make(map[seqKey]int64),
	}
}

func (t *tx) repositories() repository.Repositories {
	return repository.Repositories{
		Movements:  &movementRepo{tx: t},
		Stock:      &stockRepo{tx: t},
		Dispatches: &dispatchRepo{tx: t},
		Donations:  &donationRepo{tx: t},
		Transfers:  &transferRepo{tx: t},
		Sequences:  &sequenceRepo{tx: t},
	}
}

// lock es reentrante dentro de la misma transacción; en modo lectura no bloquea.
func (t *tx) lock(ctx context.Context, name string) error {
	if t.readOnly || t.held[name] {
		return nil
	}
	if err := t.store.locks.acquire(ctx, name, t.store.lockTimeout); err != nil {
		return err
	}
	t.held[name] = true
	t.order = append(t.order, name)
	return nil
}

func (t *tx) release() {
	for i := len(t.order) - 1; i >= 0; i-- {
		t.store.locks.release(t.order[i])
	}
	t.order = nil
	t.held = make(map[string]bool)
}

func (t *tx) commit() {
	s := t.store
	s.mu.Lock()
	for _, m := range t.movements {
		k := m.Key()
		s.movements[k] = append(s.movements[k], m)
	}
	for k, snap := range t.stock {
		s.stock[k] = snap
	}
	for id, d := range t.dispatches {
		s.dispatches[id] = d
	}
	for id, d := range t.donations {
		s.donations[id] = d
	}
	for id, tr := range t.transfers {
		s.transfers[id] = tr
	}
	for k, v := range t.sequences {
		s.sequences[k] = v
	}
	s.mu.Unlock()
	t.release()
}

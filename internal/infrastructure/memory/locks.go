package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// lockTable es un conjunto de bloqueos exclusivos por nombre, con espera acotada.
type lockTable struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{slots: make(map[string]chan struct{})}
}

func (t *lockTable) slot(name string) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch, ok := t.slots[name]
	if !ok {
		ch = make(chan struct{}, 1)
		t.slots[name] = ch
	}
	return ch
}

func (t *lockTable) acquire(ctx context.Context, name string, timeout time.Duration) error {
	ch := t.slot(name)
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("%w: tiempo de espera agotado bloqueando %s", domain.ErrConcurrentModification, name)
	}
}

func (t *lockTable) release(name string) {
	<-t.slot(name)
}

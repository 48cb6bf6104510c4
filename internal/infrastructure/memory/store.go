// Package memory implementa los repositorios y el TxRunner en memoria.
// Sirve para desarrollo local (STORAGE_DRIVER=memory) y para las pruebas de los casos de uso.
package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

const defaultLockTimeout = 5 * time.Second

type seqKey struct {
	companyID string
	kind      entity.DocumentKind
}

// Store guarda el estado confirmado. Las escrituras de una transacción se acumulan aparte
// y se aplican juntas en el commit; un rollback las descarta.
type Store struct {
	mu         sync.RWMutex
	movements  map[entity.StockKey][]*entity.MovementRecord
	stock      map[entity.StockKey]*entity.StockSnapshot
	dispatches map[string]*entity.Dispatch
	donations  map[string]*entity.Donation
	transfers  map[string]*entity.InventoryTransfer
	sequences  map[seqKey]int64

	nextID      atomic.Int64
	locks       *lockTable
	lockTimeout time.Duration
}

// NewStore crea un almacén vacío. lockTimeout <= 0 usa el valor por defecto.
func NewStore(lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = defaultLockTimeout
	}
	return &Store{
		movements:   make(map[entity.StockKey][]*entity.MovementRecord),
		stock:       make(map[entity.StockKey]*entity.StockSnapshot),
		dispatches:  make(map[string]*entity.Dispatch),
		donations:   make(map[string]*entity.Donation),
		transfers:   make(map[string]*entity.InventoryTransfer),
		sequences:   make(map[seqKey]int64),
		locks:       newLockTable(),
		lockTimeout: lockTimeout,
	}
}

// Repositories devuelve repositorios de solo lectura sobre el estado confirmado.
func (s *Store) Repositories() repository.Repositories {
	return newTx(s, true).repositories()
}

// TxRunner ejecuta fn con repositorios atados a una transacción del Store.
type TxRunner struct {
	store *Store
}

// NewTxRunner crea el runner sobre el almacén.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run hace commit si fn termina sin error y rollback en cualquier otro caso (incluido panic).
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) (err error) {
	tx := newTx(r.store, false)
	defer func() {
		if p := recover(); p != nil {
			tx.release()
			panic(p)
		}
	}()
	if err = fn(ctx, tx.repositories()); err != nil {
		tx.release()
		return err
	}
	tx.commit()
	return nil
}

package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace rollback y nada de lo escrito queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error
}

// EventPublisher publica los movimientos ya confirmados (después del commit).
type EventPublisher interface {
	PublishMovements(ctx context.Context, records []*entity.MovementRecord) error
}

// Clock devuelve la hora actual; se inyecta para pruebas.
type Clock func() time.Time

// SystemClock es la hora UTC truncada a microsegundos (precisión de timestamptz).
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

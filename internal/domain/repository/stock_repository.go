package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar existencias por empresa+bodega+producto.
// Usado dentro de transacciones para garantizar consistencia con el kardex.
type StockRepository interface {
	// Get devuelve nil, nil si la fila no existe.
	Get(ctx context.Context, key entity.StockKey) (*entity.StockSnapshot, error)
	// GetForUpdate bloquea las filas (en el orden de entity.SortedKeys) hasta el fin de la transacción.
	// Las filas inexistentes se devuelven en cero.
	GetForUpdate(ctx context.Context, keys ...entity.StockKey) (map[entity.StockKey]*entity.StockSnapshot, error)
	Save(ctx context.Context, snap *entity.StockSnapshot) error
}

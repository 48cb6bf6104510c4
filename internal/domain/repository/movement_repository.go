package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// MovementFilter acota una consulta del kardex. Los resultados salen en orden (movement_date, id) ascendente.
type MovementFilter struct {
	From     *time.Time
	To       *time.Time
	Types    []entity.MovementType
	OriginID string
	After    *entity.MovementCursor
	Limit    int
}

// MovementRepository es el puerto del kardex (solo inserción).
type MovementRepository interface {
	// Create persiste el registro y le asigna ID.
	Create(ctx context.Context, m *entity.MovementRecord) error
	// Head devuelve el último registro por (movement_date desc, id desc) o nil si no hay.
	Head(ctx context.Context, key entity.StockKey) (*entity.MovementRecord, error)
	List(ctx context.Context, key entity.StockKey, filter MovementFilter) ([]*entity.MovementRecord, error)
}

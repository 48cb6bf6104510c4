package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Los repositorios de documentos devuelven nil, nil cuando el documento no existe en la empresa.
// Update reemplaza las líneas (borrar y recrear) y falla con domain.ErrConcurrentModification
// si la versión almacenada no coincide con expectedVersion; en éxito deja Version = expectedVersion+1.

// DispatchRepository puerto de persistencia de despachos.
type DispatchRepository interface {
	Create(ctx context.Context, d *entity.Dispatch) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Dispatch, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Dispatch, error)
	Update(ctx context.Context, d *entity.Dispatch, expectedVersion int64) error
}

// DonationRepository puerto de persistencia de donaciones.
type DonationRepository interface {
	Create(ctx context.Context, d *entity.Donation) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Donation, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Donation, error)
	Update(ctx context.Context, d *entity.Donation, expectedVersion int64) error
}

// TransferRepository puerto de persistencia de traslados.
type TransferRepository interface {
	Create(ctx context.Context, t *entity.InventoryTransfer) error
	GetByID(ctx context.Context, companyID, id string) (*entity.InventoryTransfer, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.InventoryTransfer, error)
	Update(ctx context.Context, t *entity.InventoryTransfer, expectedVersion int64) error
}

// SequenceRepository entrega consecutivos por empresa y tipo de documento.
// Next debe serializarse con la misma transacción que crea el documento: un rollback no deja huecos.
type SequenceRepository interface {
	Next(ctx context.Context, companyID string, kind entity.DocumentKind) (int64, error)
}

// Repositories agrupa los puertos atados a una misma transacción (o al pool para lecturas).
type Repositories struct {
	Movements  MovementRepository
	Stock      StockRepository
	Dispatches DispatchRepository
	Donations  DonationRepository
	Transfers  TransferRepository
	Sequences  SequenceRepository
}

package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	invdomain "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// RegisterMovementUseCase registra ajustes manuales de inventario de forma transaccional,
// con bloqueo de fila (SELECT FOR UPDATE) sobre las existencias y Commit/Rollback.
type RegisterMovementUseCase struct {
	txRunner  TxRunner
	publisher EventPublisher
	now       Clock
}

// NewRegisterMovementUseCase construye el caso de uso. publisher puede ser nil.
func NewRegisterMovementUseCase(txRunner TxRunner, publisher EventPublisher) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{txRunner: txRunner, publisher: publisher, now: SystemClock}
}

// WithClock reemplaza el reloj (pruebas).
func (uc *RegisterMovementUseCase) WithClock(c Clock) *RegisterMovementUseCase {
	uc.now = c
	return uc
}

// MovementInputDTO entrada para registrar un ajuste.
// Type: adjustment_increase | adjustment_decrease. MovementDate vacío = ahora; una fecha anterior
// genera un registro retroactivo que no recalcula saldos posteriores.
// Force solo debe llegar en true si el actor tiene authz.CapForceNegativeStock.
type MovementInputDTO struct {
	CompanyID    string
	UserID       string
	WarehouseID  string
	ProductID    string
	Type         entity.MovementType
	Quantity     decimal.Decimal
	UnitCost     *decimal.Decimal
	MovementDate *time.Time
	ReasonCode   string
	Force        bool
}

// RegisterMovement inicia una transacción, bloquea la fila de existencias, aplica el guard
// consultivo y agrega el registro al kardex.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInputDTO) (*entity.MovementRecord, error) {
	if input.CompanyID == "" || input.WarehouseID == "" || input.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Type != entity.MovementAdjustmentIncrease && input.Type != entity.MovementAdjustmentDecrease {
		return nil, domain.ErrInvalidInput
	}
	if !input.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	if input.UnitCost != nil && input.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if !invdomain.WithinScale(input.Quantity) || (input.UnitCost != nil && !invdomain.WithinScale(*input.UnitCost)) {
		return nil, fmt.Errorf("%w: más de %d decimales", domain.ErrInvalidInput, invdomain.Scale)
	}

	key := entity.StockKey{CompanyID: input.CompanyID, WarehouseID: input.WarehouseID, ProductID: input.ProductID}
	var rec *entity.MovementRecord

	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		// Bloquea la fila de existencias para evitar condiciones de carrera
		locked, err := repos.Stock.GetForUpdate(ctx, key)
		if err != nil {
			return err
		}
		// La hora se toma con la fila ya bloqueada para que el registro quede después de la cabeza.
		now := uc.now()
		in := PostInput{
			Key:        key,
			Type:       input.Type,
			Quantity:   input.Quantity,
			UnitCost:   input.UnitCost,
			OriginKind: entity.OriginAdjustment,
			ReasonCode: input.ReasonCode,
			ActorID:    input.UserID,
			Policy:     invdomain.GuardAdvisory,
			Force:      input.Force,
		}
		if input.MovementDate != nil {
			in.MovementDate = input.MovementDate.UTC().Truncate(time.Microsecond)
		}
		rec, err = Post(ctx, repos, locked[key], in, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	Publish(ctx, uc.publisher, []*entity.MovementRecord{rec})
	return rec, nil
}

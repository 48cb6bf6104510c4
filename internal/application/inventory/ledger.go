package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	invdomain "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// AppendInput es la entrada del kardex: exactamente una de QuantityIn/QuantityOut es distinta de cero.
type AppendInput struct {
	Key          entity.StockKey
	Type         entity.MovementType
	QuantityIn   decimal.Decimal
	QuantityOut  decimal.Decimal
	UnitCost     *decimal.Decimal // nil: se arrastra el costo del último registro
	OriginKind   entity.OriginKind
	OriginID     string
	ReasonCode   string
	ActorID      string
	MovementDate time.Time
}

// Append agrega un registro al kardex con saldo = saldo del último registro + entrada - salida.
// El saldo se fija al insertar y nunca se recalcula; un registro con fecha anterior a la cabeza
// (fecha retroactiva) no reajusta los registros posteriores. Ver ReconcileUseCase.
func Append(ctx context.Context, movements repository.MovementRepository, in AppendInput, now time.Time) (*entity.MovementRecord, error) {
	if !in.Type.IsValid() {
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, in.Type)
	}
	if in.QuantityIn.IsNegative() || in.QuantityOut.IsNegative() {
		return nil, fmt.Errorf("%w: cantidades negativas", domain.ErrInvalidInput)
	}
	if in.QuantityIn.IsZero() == in.QuantityOut.IsZero() {
		return nil, fmt.Errorf("%w: se espera exactamente una cantidad distinta de cero", domain.ErrInvalidInput)
	}
	if in.Type.IsIncrease() != in.QuantityIn.IsPositive() {
		return nil, fmt.Errorf("%w: dirección no corresponde al tipo %q", domain.ErrInvalidInput, in.Type)
	}
	if !invdomain.WithinScale(in.QuantityIn) || !invdomain.WithinScale(in.QuantityOut) ||
		(in.UnitCost != nil && !invdomain.WithinScale(*in.UnitCost)) {
		return nil, fmt.Errorf("%w: más de %d decimales", domain.ErrInvalidInput, invdomain.Scale)
	}

	head, err := movements.Head(ctx, in.Key)
	if err != nil {
		return nil, err
	}
	previous := decimal.Zero
	carried := decimal.Zero
	if head != nil {
		previous = head.Balance
		carried = head.UnitCost
	}
	unitCost := carried
	if in.UnitCost != nil {
		unitCost = *in.UnitCost
	}
	qty := in.QuantityIn.Add(in.QuantityOut)
	movementDate := in.MovementDate
	if movementDate.IsZero() {
		movementDate = now
	}

	rec := &entity.MovementRecord{
		CompanyID:    in.Key.CompanyID,
		WarehouseID:  in.Key.WarehouseID,
		ProductID:    in.Key.ProductID,
		Type:         in.Type,
		QuantityIn:   in.QuantityIn,
		QuantityOut:  in.QuantityOut,
		Balance:      previous.Add(in.QuantityIn).Sub(in.QuantityOut),
		UnitCost:     unitCost,
		TotalCost:    invdomain.RoundScale(qty.Mul(unitCost)),
		MovementDate: movementDate,
		OriginKind:   in.OriginKind,
		OriginID:     in.OriginID,
		ReasonCode:   in.ReasonCode,
		CreatedBy:    in.ActorID,
		CreatedAt:    now,
	}
	if err := movements.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// PostInput describe un movimiento con efecto en existencias.
type PostInput struct {
	Key          entity.StockKey
	Type         entity.MovementType
	Quantity     decimal.Decimal
	UnitCost     *decimal.Decimal
	MovementDate time.Time
	OriginKind   entity.OriginKind
	OriginID     string
	ReasonCode   string
	ActorID      string
	Policy       invdomain.GuardPolicy
	Force        bool
}

// Post ejecuta guard + append + actualización de la fila de existencias sobre snap,
// que el llamador ya bloqueó con StockRepository.GetForUpdate en la misma transacción.
func Post(ctx context.Context, repos repository.Repositories, snap *entity.StockSnapshot, in PostInput, now time.Time) (*entity.MovementRecord, error) {
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	app := AppendInput{
		Key:          in.Key,
		Type:         in.Type,
		UnitCost:     in.UnitCost,
		OriginKind:   in.OriginKind,
		OriginID:     in.OriginID,
		ReasonCode:   in.ReasonCode,
		ActorID:      in.ActorID,
		MovementDate: in.MovementDate,
	}
	if in.Type.IsIncrease() {
		app.QuantityIn = in.Quantity
	} else {
		if err := invdomain.Enforce(in.Policy, in.Force, snap, in.Key, in.Quantity); err != nil {
			return nil, err
		}
		app.QuantityOut = in.Quantity
	}

	rec, err := Append(ctx, repos.Movements, app, now)
	if err != nil {
		return nil, err
	}
	snap.Apply(rec.Delta(), now)
	if err := repos.Stock.Save(ctx, snap); err != nil {
		return nil, err
	}
	return rec, nil
}

// Publish entrega los registros confirmados al publicador; los fallos solo se registran
// porque la transacción ya se confirmó.
func Publish(ctx context.Context, publisher EventPublisher, records []*entity.MovementRecord) {
	if publisher == nil || len(records) == 0 {
		return
	}
	if err := publisher.PublishMovements(ctx, records); err != nil {
		log.Warn().Err(err).Int("records", len(records)).Msg("publicar movimientos de inventario")
	}
}

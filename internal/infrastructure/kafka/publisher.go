// Package kafka publica los movimientos de inventario confirmados.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

var _ inventory.EventPublisher = (*MovementPublisher)(nil)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MovementEvent es el mensaje publicado por cada registro del kardex.
type MovementEvent struct {
	ID           int64           `json:"id"`
	CompanyID    string          `json:"company_id"`
	WarehouseID  string          `json:"warehouse_id"`
	ProductID    string          `json:"product_id"`
	Type         string          `json:"type"`
	QuantityIn   decimal.Decimal `json:"quantity_in"`
	QuantityOut  decimal.Decimal `json:"quantity_out"`
	Balance      decimal.Decimal `json:"balance"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	MovementDate time.Time       `json:"movement_date"`
	OriginKind   string          `json:"origin_kind"`
	OriginID     string          `json:"origin_id"`
	ReasonCode   string          `json:"reason_code,omitempty"`
	CreatedBy    string          `json:"created_by"`
}

// MovementPublisher escribe un mensaje por registro, con clave empresa:bodega:producto
// para conservar el orden por fila de existencias dentro de la partición.
type MovementPublisher struct {
	writer messageWriter
}

// NewMovementPublisher crea el writer de kafka-go sobre los brokers y el tópico.
func NewMovementPublisher(brokers []string, topic string) *MovementPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}
	return &MovementPublisher{writer: writer}
}

// PublishMovements envía todos los registros en una sola escritura.
func (p *MovementPublisher) PublishMovements(ctx context.Context, records []*entity.MovementRecord) error {
	msgs := make([]kafka.Message, 0, len(records))
	for _, r := range records {
		data, err := json.Marshal(toEvent(r))
		if err != nil {
			return fmt.Errorf("marshal movement %d: %w", r.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(r.Key().String()),
			Value: data,
			Time:  r.CreatedAt,
		})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish movements: %w", err)
	}
	return nil
}

// Close cierra el writer.
func (p *MovementPublisher) Close() error {
	return p.writer.Close()
}

func toEvent(r *entity.MovementRecord) MovementEvent {
	return MovementEvent{
		ID:           r.ID,
		CompanyID:    r.CompanyID,
		WarehouseID:  r.WarehouseID,
		ProductID:    r.ProductID,
		Type:         string(r.Type),
		QuantityIn:   r.QuantityIn,
		QuantityOut:  r.QuantityOut,
		Balance:      r.Balance,
		UnitCost:     r.UnitCost,
		TotalCost:    r.TotalCost,
		MovementDate: r.MovementDate,
		OriginKind:   string(r.OriginKind),
		OriginID:     r.OriginID,
		ReasonCode:   r.ReasonCode,
		CreatedBy:    r.CreatedBy,
	}
}

// Package workflow implementa las máquinas de estado de despachos, donaciones y traslados
// y sus efectos sobre el kardex y las existencias.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	invdomain "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// Engine coordina la creación, edición y transiciones de los documentos de flujo.
// Cada transición es su propia transacción: o confirma todas sus líneas o ninguna.
type Engine struct {
	tx        inventory.TxRunner
	read      repository.Repositories
	publisher inventory.EventPublisher
	now       inventory.Clock
}

// NewEngine construye el motor. read son repositorios fuera de transacción para consultas;
// publisher puede ser nil.
func NewEngine(tx inventory.TxRunner, read repository.Repositories, publisher inventory.EventPublisher) *Engine {
	return &Engine{tx: tx, read: read, publisher: publisher, now: inventory.SystemClock}
}

// WithClock reemplaza el reloj (pruebas).
func (e *Engine) WithClock(c inventory.Clock) *Engine {
	e.now = c
	return e
}

// LineInput es una línea ya validada en formato por la capa externa.
type LineInput struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Notes     string
}

// DocumentInput agrupa los campos de cabecera de los tres tipos de documento.
// WarehouseID aplica a despacho y donación; FromWarehouseID/ToWarehouseID a traslados.
// PartyID es el cliente (despacho) o el donante (donación).
type DocumentInput struct {
	CompanyID       string
	ActorID         string
	WarehouseID     string
	FromWarehouseID string
	ToWarehouseID   string
	PartyID         string
	Date            time.Time
	Notes           string
	TaxAmount       decimal.Decimal
	DiscountAmount  decimal.Decimal
	ShippingCost    decimal.Decimal
	Lines           []LineInput
}

// DiscrepancyInput registra lo realmente recibido de un producto al recibir un traslado.
type DiscrepancyInput struct {
	ProductID string
	Received  decimal.Decimal
	Reason    string
}

// TransitionFields son los campos extra que aceptan algunas transiciones.
type TransitionFields struct {
	ReceivedByName string
	Notes          string
	TrackingNumber string
	Carrier        string
	Reason         string
	Discrepancies  []DiscrepancyInput
}

// CreateDocument crea un documento en el estado inicial de su tipo. No toca el kardex.
func (e *Engine) CreateDocument(ctx context.Context, kind entity.DocumentKind, in DocumentInput) (entity.Document, error) {
	switch kind {
	case entity.KindDispatch:
		return e.CreateDispatch(ctx, in)
	case entity.KindDonation:
		return e.CreateDonation(ctx, in)
	case entity.KindTransfer:
		return e.CreateTransfer(ctx, in)
	}
	return nil, fmt.Errorf("%w: tipo de documento %q", domain.ErrInvalidInput, kind)
}

// UpdateDocument reemplaza cabecera y líneas mientras el documento es editable.
// expectedVersion es la última versión que vio el llamador.
func (e *Engine) UpdateDocument(ctx context.Context, kind entity.DocumentKind, id string, expectedVersion int64, in DocumentInput) (entity.Document, error) {
	switch kind {
	case entity.KindDispatch:
		return e.UpdateDispatch(ctx, id, expectedVersion, in)
	case entity.KindDonation:
		return e.UpdateDonation(ctx, id, expectedVersion, in)
	case entity.KindTransfer:
		return e.UpdateTransfer(ctx, id, expectedVersion, in)
	}
	return nil, fmt.Errorf("%w: tipo de documento %q", domain.ErrInvalidInput, kind)
}

// Transition ejecuta una transición por nombre.
func (e *Engine) Transition(ctx context.Context, kind entity.DocumentKind, companyID, id, actorID string, name entity.Transition, fields TransitionFields) (entity.Document, error) {
	switch kind {
	case entity.KindDispatch:
		return e.TransitionDispatch(ctx, companyID, id, actorID, name, fields)
	case entity.KindDonation:
		return e.TransitionDonation(ctx, companyID, id, actorID, name, fields)
	case entity.KindTransfer:
		return e.TransitionTransfer(ctx, companyID, id, actorID, name, fields)
	}
	return nil, fmt.Errorf("%w: tipo de documento %q", domain.ErrInvalidInput, kind)
}

// GetDocument lee un documento confirmado.
func (e *Engine) GetDocument(ctx context.Context, kind entity.DocumentKind, companyID, id string) (entity.Document, error) {
	var (
		doc entity.Document
		err error
	)
	switch kind {
	case entity.KindDispatch:
		var d *entity.Dispatch
		if d, err = e.read.Dispatches.GetByID(ctx, companyID, id); d != nil {
			doc = d
		}
	case entity.KindDonation:
		var d *entity.Donation
		if d, err = e.read.Donations.GetByID(ctx, companyID, id); d != nil {
			doc = d
		}
	case entity.KindTransfer:
		var t *entity.InventoryTransfer
		if t, err = e.read.Transfers.GetByID(ctx, companyID, id); t != nil {
			doc = t
		}
	default:
		return nil, fmt.Errorf("%w: tipo de documento %q", domain.ErrInvalidInput, kind)
	}
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// run ejecuta fn en una transacción y publica los movimientos solo si confirmó.
func (e *Engine) run(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories, records *[]*entity.MovementRecord) error) error {
	var records []*entity.MovementRecord
	err := e.tx.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		records = records[:0]
		return fn(ctx, repos, &records)
	})
	if err != nil {
		return err
	}
	inventory.Publish(ctx, e.publisher, records)
	return nil
}

// buildLines valida formato mínimo y asigna IDs nuevos (las líneas se recrean en cada edición).
func buildLines(in []LineInput) ([]entity.LineItem, error) {
	lines := make([]entity.LineItem, 0, len(in))
	for _, l := range in {
		if l.ProductID == "" || !l.Quantity.IsPositive() || l.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		if !invdomain.WithinScale(l.Quantity) || !invdomain.WithinScale(l.UnitPrice) {
			return nil, fmt.Errorf("%w: producto %s con más de %d decimales", domain.ErrInvalidInput, l.ProductID, invdomain.Scale)
		}
		lines = append(lines, entity.LineItem{
			ID:        uuid.New().String(),
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Notes:     l.Notes,
		})
	}
	return lines, nil
}

func validateHeader(in DocumentInput) error {
	if in.CompanyID == "" || in.ActorID == "" {
		return domain.ErrInvalidInput
	}
	if in.TaxAmount.IsNegative() || in.DiscountAmount.IsNegative() || in.ShippingCost.IsNegative() {
		return domain.ErrInvalidInput
	}
	for _, v := range []decimal.Decimal{in.TaxAmount, in.DiscountAmount, in.ShippingCost} {
		if !invdomain.WithinScale(v) {
			return fmt.Errorf("%w: cargos con más de %d decimales", domain.ErrInvalidInput, invdomain.Scale)
		}
	}
	return nil
}

func charges(in DocumentInput) entity.Totals {
	return entity.Totals{TaxAmount: in.TaxAmount, DiscountAmount: in.DiscountAmount, ShippingCost: in.ShippingCost}
}

// nextNumber toma el consecutivo dentro de la transacción que crea el documento.
func nextNumber(ctx context.Context, repos repository.Repositories, companyID string, kind entity.DocumentKind) (string, error) {
	seq, err := repos.Sequences.Next(ctx, companyID, kind)
	if err != nil {
		return "", err
	}
	return invdomain.FormatDocumentNumber(kind, seq), nil
}

// lockLines bloquea, en orden, las filas de existencias de todas las líneas en una bodega.
func lockLines(ctx context.Context, repos repository.Repositories, companyID, warehouseID string, lines []entity.LineItem) (map[entity.StockKey]*entity.StockSnapshot, error) {
	keys := make([]entity.StockKey, 0, len(lines))
	for _, l := range lines {
		keys = append(keys, lineKey(companyID, warehouseID, l))
	}
	return repos.Stock.GetForUpdate(ctx, entity.SortedKeys(keys)...)
}

func lineKey(companyID, warehouseID string, l entity.LineItem) entity.StockKey {
	return entity.StockKey{CompanyID: companyID, WarehouseID: warehouseID, ProductID: l.ProductID}
}

func notEditable(kind entity.DocumentKind, status string) error {
	return &domain.InvalidTransitionError{Kind: string(kind), From: status, Transition: "update"}
}

func documentDate(d time.Time, now time.Time) time.Time {
	if d.IsZero() {
		return now
	}
	return d.UTC()
}

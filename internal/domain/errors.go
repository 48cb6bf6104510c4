package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrForbidden              = errors.New("acceso denegado")
	ErrInvalidTransition      = errors.New("transición no permitida desde el estado actual")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrEmptyLineItems         = errors.New("el documento debe tener al menos una línea")
	ErrConcurrentModification = errors.New("el recurso fue modificado por otra operación")
	ErrDuplicateRequest       = errors.New("solicitud duplicada")
)

// InsufficientStockError detalla qué línea falló el control de disponibilidad.
type InsufficientStockError struct {
	WarehouseID string
	ProductID   string
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s en bodega %s: solicitado %s, disponible %s",
		e.ProductID, e.WarehouseID, e.Requested.String(), e.Available.String())
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// InvalidTransitionError indica una transición fuera de la tabla del documento.
type InvalidTransitionError struct {
	Kind       string
	From       string
	Transition string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transición %q no permitida para %s en estado %q", e.Transition, e.Kind, e.From)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

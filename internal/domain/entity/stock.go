package entity

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// StockKey identifica una fila de existencias: empresa, bodega y producto.
type StockKey struct {
	CompanyID   string
	WarehouseID string
	ProductID   string
}

func (k StockKey) String() string {
	return k.CompanyID + ":" + k.WarehouseID + ":" + k.ProductID
}

// Less define el orden en que se toman los bloqueos de fila (evita deadlocks entre documentos multi-línea).
func (k StockKey) Less(o StockKey) bool {
	if k.CompanyID != o.CompanyID {
		return k.CompanyID < o.CompanyID
	}
	if k.WarehouseID != o.WarehouseID {
		return k.WarehouseID < o.WarehouseID
	}
	return k.ProductID < o.ProductID
}

// SortedKeys devuelve las claves sin duplicados y en orden de bloqueo.
func SortedKeys(keys []StockKey) []StockKey {
	seen := make(map[StockKey]struct{}, len(keys))
	out := make([]StockKey, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// StockSnapshot es la vista desnormalizada de existencias actuales, derivada del kardex.
// Invariante: Available = OnHand - Reserved.
type StockSnapshot struct {
	CompanyID   string
	WarehouseID string
	ProductID   string
	OnHand      decimal.Decimal
	Reserved    decimal.Decimal
	Available   decimal.Decimal
	Active      bool
	UpdatedAt   time.Time
}

// NewStockSnapshot crea una fila vacía (una fila inexistente equivale a disponibilidad cero).
func NewStockSnapshot(key StockKey) *StockSnapshot {
	return &StockSnapshot{
		CompanyID:   key.CompanyID,
		WarehouseID: key.WarehouseID,
		ProductID:   key.ProductID,
		OnHand:      decimal.Zero,
		Reserved:    decimal.Zero,
		Available:   decimal.Zero,
	}
}

// Key devuelve la clave de la fila.
func (s *StockSnapshot) Key() StockKey {
	return StockKey{CompanyID: s.CompanyID, WarehouseID: s.WarehouseID, ProductID: s.ProductID}
}

// Apply suma delta a las existencias y recalcula el disponible.
func (s *StockSnapshot) Apply(delta decimal.Decimal, at time.Time) {
	s.OnHand = s.OnHand.Add(delta)
	s.Available = s.OnHand.Sub(s.Reserved)
	s.Active = true
	s.UpdatedAt = at
}

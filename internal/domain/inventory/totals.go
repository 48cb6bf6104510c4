package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// CalculateTotals recalcula el subtotal de cada línea y los totales del documento.
// subtotal = Σ(cantidad × precio), cada producto redondeado a Scale; total = subtotal + impuesto − descuento + envío.
// Los cargos (impuesto, descuento, envío) se toman de current y se conservan.
func CalculateTotals(lines []entity.LineItem, current entity.Totals) entity.Totals {
	subtotal := decimal.Zero
	for i := range lines {
		lines[i].Subtotal = RoundScale(lines[i].Quantity.Mul(lines[i].UnitPrice))
		subtotal = subtotal.Add(lines[i].Subtotal)
	}
	return entity.Totals{
		Subtotal:       subtotal,
		TaxAmount:      current.TaxAmount,
		DiscountAmount: current.DiscountAmount,
		ShippingCost:   current.ShippingCost,
		Total:          subtotal.Add(current.TaxAmount).Sub(current.DiscountAmount).Add(current.ShippingCost),
	}
}

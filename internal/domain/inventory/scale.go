package inventory

import "github.com/shopspring/decimal"

// Scale es la cantidad de decimales que se persisten en cantidades, costos y valores (NUMERIC(18,4)).
const Scale int32 = 4

// WithinScale es false si d tiene decimales significativos más allá de Scale.
func WithinScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(Scale))
}

// RoundScale redondea un valor calculado (producto de cantidad por precio o costo) a Scale decimales.
func RoundScale(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

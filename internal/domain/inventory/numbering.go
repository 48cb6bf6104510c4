package inventory

import (
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// FormatDocumentNumber produce el número humano: prefijo del tipo + consecutivo con 6 dígitos (DESP-000123).
func FormatDocumentNumber(kind entity.DocumentKind, seq int64) string {
	return fmt.Sprintf("%s-%06d", kind.Prefix(), seq)
}

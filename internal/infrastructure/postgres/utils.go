package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == "23505"
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapError traduce los errores de contención de PostgreSQL a errores de dominio.
// 55P03 lock_not_available (lock_timeout), 40001 serialization_failure, 40P01 deadlock_detected.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch pgCode(err) {
	case "55P03", "40001", "40P01":
		return fmt.Errorf("%w: %v", domain.ErrConcurrentModification, err)
	case "23505":
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return err
}

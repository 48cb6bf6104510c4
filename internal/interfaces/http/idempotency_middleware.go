package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// HeaderIdempotencyKey identifica una petición que el cliente puede reintentar sin duplicar efectos.
const HeaderIdempotencyKey = "Idempotency-Key"

// IdempotencyStore es el contrato mínimo del almacén de claves (lo implementa redis.IdempotencyStore).
type IdempotencyStore interface {
	CheckAndInsert(ctx context.Context, scope, key string) error
	Delete(ctx context.Context, scope, key string) error
}

// Idempotency rechaza con 409 una segunda petición con la misma Idempotency-Key en la misma empresa y ruta.
// Si la petición falla (error o status >= 400) la clave se libera para permitir el reintento.
// Sin store o sin header no hace nada.
func Idempotency(store IdempotencyStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if store == nil || key == "" {
			return c.Next()
		}
		scope := GetCompanyID(c) + ":" + c.Method() + ":" + c.Path()
		if err := store.CheckAndInsert(c.Context(), scope, key); err != nil {
			if errors.Is(err, domain.ErrDuplicateRequest) {
				return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_REQUEST", Message: "la petición ya fue procesada"})
			}
			// Sin almacén disponible la petición se procesa sin control de duplicados.
			log.Warn().Err(err).Str("path", c.Path()).Msg("idempotencia no disponible")
			return c.Next()
		}

		err := c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			if derr := store.Delete(context.Background(), scope, key); derr != nil {
				log.Warn().Err(derr).Str("path", c.Path()).Msg("liberar clave de idempotencia")
			}
		}
		return err
	}
}

// Package redis guarda las claves Idempotency-Key de las peticiones que mutan documentos.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/pkg/config"
)

const keyPrefix = "idem:"

// NewClient crea el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// IdempotencyStore reserva claves por alcance (empresa + ruta) con expiración.
type IdempotencyStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewIdempotencyStore construye el store. ttl <= 0 usa 24h.
func NewIdempotencyStore(client *goredis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// CheckAndInsert reserva la clave; si ya existe devuelve domain.ErrDuplicateRequest.
func (s *IdempotencyStore) CheckAndInsert(ctx context.Context, scope, key string) error {
	if key == "" || scope == "" {
		return errors.New("idempotency: clave y alcance requeridos")
	}
	ok, err := s.client.SetNX(ctx, keyPrefix+scope+":"+key, time.Now().UTC().Format(time.RFC3339Nano), s.ttl).Result()
	if err != nil {
		return fmt.Errorf("reservar clave de idempotencia: %w", err)
	}
	if !ok {
		return domain.ErrDuplicateRequest
	}
	return nil
}

// Delete libera la clave cuando la petición falló, para que el cliente pueda reintentar.
func (s *IdempotencyStore) Delete(ctx context.Context, scope, key string) error {
	if err := s.client.Del(ctx, keyPrefix+scope+":"+key).Err(); err != nil {
		return fmt.Errorf("liberar clave de idempotencia: %w", err)
	}
	return nil
}

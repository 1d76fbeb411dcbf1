// Package persist keeps small JSON snapshots (session carts, language
// preference) that must survive restarts. Reads and writes are best-effort:
// failures are logged and counted, never returned to callers.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"storefront/internal/logging"
	"storefront/internal/metrics"
)

// ErrMissing is returned by backends when a key has no value.
var ErrMissing = errors.New("persist: key not found")

// Backend stores raw snapshot bytes by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Adapter encodes values as JSON on top of a Backend and swallows failures.
type Adapter struct {
	backend Backend
	logger  *zap.Logger
	timeout time.Duration
}

func NewAdapter(backend Backend, logger *zap.Logger, timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Adapter{backend: backend, logger: logging.OrNop(logger).Named("persist"), timeout: timeout}
}

// Get decodes the value stored under key into dst. It reports false when the
// key is absent or cannot be read or decoded.
func (a *Adapter) Get(key string, dst any) bool {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	raw, err := a.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMissing) {
			a.logger.Error("read snapshot", zap.String("key", key), zap.Error(err))
			metrics.PersistFailuresTotal.WithLabelValues("read").Inc()
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		a.logger.Error("decode snapshot", zap.String("key", key), zap.Error(err))
		metrics.PersistFailuresTotal.WithLabelValues("decode").Inc()
		return false
	}
	return true
}

// Set encodes value and writes it under key.
func (a *Adapter) Set(key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		a.logger.Error("encode snapshot", zap.String("key", key), zap.Error(err))
		metrics.PersistFailuresTotal.WithLabelValues("encode").Inc()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if err := a.backend.Set(ctx, key, raw); err != nil {
		a.logger.Error("write snapshot", zap.String("key", key), zap.Error(err))
		metrics.PersistFailuresTotal.WithLabelValues("write").Inc()
	}
}

// Remove deletes key.
func (a *Adapter) Remove(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if err := a.backend.Delete(ctx, key); err != nil && !errors.Is(err, ErrMissing) {
		a.logger.Error("remove snapshot", zap.String("key", key), zap.Error(err))
		metrics.PersistFailuresTotal.WithLabelValues("remove").Inc()
	}
}

// GetOr returns the value under key, or def when it is absent or unreadable.
func GetOr[T any](a *Adapter, key string, def T) T {
	var v T
	if !a.Get(key, &v) {
		return def
	}
	return v
}

package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const viewKeyPrefix = "paper_views:"

// ViewCounter puffert Seitenaufrufe, bis SyncViews sie in die Datenbank schreibt.
type ViewCounter interface {
	Record(ctx context.Context, paperID uuid.UUID) error
	// Drain liefert alle gepufferten Zählerstände und setzt sie zurück.
	Drain(ctx context.Context) (map[uuid.UUID]int64, error)
}

// MemoryViewCounter zählt im Prozess, wenn kein Redis konfiguriert ist.
type MemoryViewCounter struct {
	mu     sync.Mutex
	counts map[uuid.UUID]int64
}

func NewMemoryViewCounter() *MemoryViewCounter {
	return &MemoryViewCounter{counts: make(map[uuid.UUID]int64)}
}

func (m *MemoryViewCounter) Record(_ context.Context, paperID uuid.UUID) error {
	m.mu.Lock()
	m.counts[paperID]++
	m.mu.Unlock()
	return nil
}

func (m *MemoryViewCounter) Drain(context.Context) (map[uuid.UUID]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.counts
	m.counts = make(map[uuid.UUID]int64)
	return out, nil
}

// RedisViewCounter hält die Zähler unter paper_views:<id>, damit mehrere
// Instanzen denselben Puffer teilen.
type RedisViewCounter struct {
	Client redis.Cmdable
	Logger *zap.Logger
}

func NewRedisViewCounter(client redis.Cmdable, logger *zap.Logger) *RedisViewCounter {
	return &RedisViewCounter{Client: client, Logger: logger}
}

func (r *RedisViewCounter) Record(ctx context.Context, paperID uuid.UUID) error {
	return r.Client.Incr(ctx, viewKeyPrefix+paperID.String()).Err()
}

func (r *RedisViewCounter) Drain(ctx context.Context) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64)
	iter := r.Client.Scan(ctx, 0, viewKeyPrefix+"*", 1000).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id, err := uuid.Parse(strings.TrimPrefix(key, viewKeyPrefix))
		if err != nil {
			r.Logger.Warn("Skipping malformed view counter key", zap.String("key", key))
			continue
		}
		n, err := r.Client.GetDel(ctx, key).Int64()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			r.Logger.Error("Failed to read view counter", zap.String("key", key), zap.Error(err))
			continue
		}
		if n > 0 {
			out[id] += n
		}
	}
	return out, iter.Err()
}

package handler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yieldscope/apy-tracker/internal/store"
)

// memPositionStore backs the position handlers in tests with an in-memory
// metric and position store.
type memPositionStore struct {
	mu        sync.Mutex
	samples   map[string][]store.PoolMetricSample
	positions map[string]*store.UserPosition
}

func newMemPositionStore() *memPositionStore {
	return &memPositionStore{
		samples:   make(map[string][]store.PoolMetricSample),
		positions: make(map[string]*store.UserPosition),
	}
}

func (m *memPositionStore) addSample(poolID string, apy *float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples[poolID] = append(m.samples[poolID], store.PoolMetricSample{
		PoolID:     poolID,
		APY:        apy,
		RecordedAt: time.Now().UTC(),
	})
}

func (m *memPositionStore) History(_ context.Context, poolID string, _, _ *time.Time) ([]store.PoolMetricSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	samples := m.samples[poolID]
	if len(samples) == 0 {
		return nil, store.ErrNoSamples
	}
	return samples, nil
}

func (m *memPositionStore) LatestSample(_ context.Context, poolID string) (*store.PoolMetricSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	samples := m.samples[poolID]
	if len(samples) == 0 {
		return nil, store.ErrNoSamples
	}
	last := samples[len(samples)-1]
	return &last, nil
}

func (m *memPositionStore) AddToPosition(_ context.Context, userID, poolID string, amount float64) (*store.UserPosition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%s/%s", userID, poolID)
	pos, ok := m.positions[key]
	if !ok {
		pos = &store.UserPosition{UserID: userID, PoolID: poolID}
		m.positions[key] = pos
	}
	pos.Amount += amount
	pos.LastUpdated = time.Now().UTC()
	out := *pos
	return &out, nil
}

func (m *memPositionStore) PositionsByUser(_ context.Context, userID string) ([]store.UserPosition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.UserPosition
	for _, pos := range m.positions {
		if pos.UserID == userID {
			out = append(out, *pos)
		}
	}
	return out, nil
}

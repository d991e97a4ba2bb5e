package state

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryEntry struct {
	value   json.RawMessage
	expires time.Time
}

// MemoryRepository keeps state in process. It is used in tests and when
// Valkey is not configured.
type MemoryRepository struct {
	mu   sync.Mutex
	data map[string]memoryEntry
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository(ttl time.Duration) *MemoryRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryRepository{data: map[string]memoryEntry{}, ttl: ttl, now: time.Now}
}

func (m *MemoryRepository) Get(_ context.Context, client string, key Key) (json.RawMessage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[redisKey(client, key)]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.data, redisKey(client, key))
		return nil, false, nil
	}
	return append(json.RawMessage(nil), e.value...), true, nil
}

func (m *MemoryRepository) Set(_ context.Context, client string, key Key, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[redisKey(client, key)] = memoryEntry{
		value:   append(json.RawMessage(nil), value...),
		expires: m.now().Add(m.ttl),
	}
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, client string, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, redisKey(client, key))
	return nil
}

func (m *MemoryRepository) All(ctx context.Context, client string) (map[Key]json.RawMessage, error) {
	out := make(map[Key]json.RawMessage)
	for _, k := range Keys {
		v, ok, _ := m.Get(ctx, client, k)
		if ok {
			out[k] = v
		}
	}
	return out, nil
}

func (m *MemoryRepository) Clear(_ context.Context, client string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range Keys {
		delete(m.data, redisKey(client, k))
	}
	return nil
}

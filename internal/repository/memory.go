package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kitbuilder587/codecritic/internal/domain"
)

// MemoryWeightRepository - потокобезопасная карта весов в памяти.
// FailGet/FailPut позволяют тестам симулировать отказ бэкенда.
type MemoryWeightRepository struct {
	mu      sync.RWMutex
	scopes  map[string]map[string]float64
	FailGet error
	FailPut error
}

func NewMemoryWeightRepository() *MemoryWeightRepository {
	return &MemoryWeightRepository{scopes: make(map[string]map[string]float64)}
}

func (m *MemoryWeightRepository) Get(ctx context.Context, scope string) (map[string]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailGet != nil {
		return nil, m.FailGet
	}
	stored, ok := m.scopes[scope]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make(map[string]float64, len(stored))
	for k, v := range stored {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryWeightRepository) Put(ctx context.Context, scope string, weights map[string]float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailPut != nil {
		return m.FailPut
	}
	copied := make(map[string]float64, len(weights))
	for k, v := range weights {
		copied[k] = v
	}
	m.scopes[scope] = copied
	return nil
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCacheRepository - KV с TTL в памяти, без фоновой очистки:
// протухание проверяется на чтении.
type MemoryCacheRepository struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	FailGet error
	FailSet error
}

func NewMemoryCacheRepository() *MemoryCacheRepository {
	return &MemoryCacheRepository{entries: make(map[string]cacheEntry)}
}

func (m *MemoryCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailGet != nil {
		return nil, m.FailGet
	}
	e, ok := m.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, domain.ErrNotFound
	}
	return e.value, nil
}

func (m *MemoryCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSet != nil {
		return m.FailSet
	}
	m.entries[key] = cacheEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *MemoryCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

type counterEntry struct {
	count     int64
	expiresAt time.Time
}

// MemoryRateCounter - счетчик фиксированного окна в памяти. Истекшие окна
// перезаписываются при следующем Incr; долгоживущим процессам WithCleanup
// добавляет фоновую уборку, чтобы карта не росла на разовых ключах.
type MemoryRateCounter struct {
	mu       sync.Mutex
	counters map[string]counterEntry
	stopCh   chan struct{}
	stopped  bool
	FailIncr error
}

func NewMemoryRateCounter() *MemoryRateCounter {
	return &MemoryRateCounter{counters: make(map[string]counterEntry)}
}

// WithCleanup запускает фоновую уборку истекших окон. Остановка через Stop.
func (m *MemoryRateCounter) WithCleanup() *MemoryRateCounter {
	m.stopCh = make(chan struct{})
	go m.cleanup()
	return m
}

func (m *MemoryRateCounter) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopCh != nil && !m.stopped {
		m.stopped = true
		close(m.stopCh)
	}
}

func (m *MemoryRateCounter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.removeExpired(time.Now())
		}
	}
}

func (m *MemoryRateCounter) removeExpired(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, e := range m.counters {
		if now.After(e.expiresAt) {
			delete(m.counters, k)
		}
	}
}

func (m *MemoryRateCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailIncr != nil {
		return 0, 0, m.FailIncr
	}

	now := time.Now()
	e, ok := m.counters[key]
	if !ok || now.After(e.expiresAt) {
		e = counterEntry{count: 0, expiresAt: now.Add(window)}
	}
	e.count++
	m.counters[key] = e
	return e.count, e.expiresAt.Sub(now), nil
}

type queuedItem struct {
	id        int64
	fb        domain.Feedback
	claimedAt time.Time
	claimed   bool
}

// MemoryFeedbackQueue - очередь с visibility timeout в памяти.
type MemoryFeedbackQueue struct {
	mu         sync.Mutex
	items      map[int64]*queuedItem
	nextID     int64
	Visibility time.Duration
	FailEnq    error
	FailDeq    error
}

func NewMemoryFeedbackQueue() *MemoryFeedbackQueue {
	return &MemoryFeedbackQueue{
		items:      make(map[int64]*queuedItem),
		nextID:     1,
		Visibility: 30 * time.Second,
	}
}

func (m *MemoryFeedbackQueue) Enqueue(ctx context.Context, fb domain.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailEnq != nil {
		return m.FailEnq
	}
	m.items[m.nextID] = &queuedItem{id: m.nextID, fb: fb}
	m.nextID++
	return nil
}

func (m *MemoryFeedbackQueue) Dequeue(ctx context.Context, limit int) ([]QueuedFeedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailDeq != nil {
		return nil, m.FailDeq
	}

	now := time.Now()
	ids := make([]int64, 0, len(m.items))
	for id, it := range m.items {
		if it.claimed && now.Sub(it.claimedAt) < m.Visibility {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > limit {
		ids = ids[:limit]
	}

	out := make([]QueuedFeedback, 0, len(ids))
	for _, id := range ids {
		it := m.items[id]
		it.claimed = true
		it.claimedAt = now
		out = append(out, QueuedFeedback{ID: it.id, Feedback: it.fb})
	}
	return out, nil
}

func (m *MemoryFeedbackQueue) Ack(ctx context.Context, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.items, id)
	}
	return nil
}

// Len - сколько элементов осталось в очереди (включая захваченные).
func (m *MemoryFeedbackQueue) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// entry is a single cached value with its expiry.
type entry struct {
	key       string
	value     string
	expiresAt time.Time
}

// Memory is an in-process LRU cache with per-entry TTL. It is the default
// backend and needs no external services.
type Memory struct {
	mu sync.Mutex

	items      map[string]*list.Element
	evictList  *list.List // front = most recently used
	maxEntries int

	metrics Metrics
}

var _ Cache = (*Memory)(nil)

// NewMemory creates a memory cache holding at most maxEntries values.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Memory{
		items:      make(map[string]*list.Element),
		evictList:  list.New(),
		maxEntries: maxEntries,
	}
}

// Get retrieves a value from cache.
func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		m.metrics.Misses++
		return "", false
	}

	ent := elem.Value.(*entry)
	if time.Now().After(ent.expiresAt) {
		m.removeElement(elem)
		m.metrics.Misses++
		return "", false
	}

	m.evictList.MoveToFront(elem)
	m.metrics.Hits++
	return ent.value, true
}

// Set stores a value in cache with the specified TTL.
func (m *Memory) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.items[key]; ok {
		ent := elem.Value.(*entry)
		ent.value = value
		ent.expiresAt = time.Now().Add(ttl)
		m.evictList.MoveToFront(elem)
		return nil
	}

	ent := &entry{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	m.items[key] = m.evictList.PushFront(ent)
	m.metrics.KeysAdded++

	for m.evictList.Len() > m.maxEntries {
		oldest := m.evictList.Back()
		if oldest == nil {
			break
		}
		m.removeElement(oldest)
		m.metrics.KeysEvicted++
	}

	return nil
}

// Delete removes a value from cache.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.items[key]; ok {
		m.removeElement(elem)
	}
	return nil
}

// Clear removes all entries from cache.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]*list.Element)
	m.evictList.Init()
	return nil
}

// Close releases resources (no-op for memory cache).
func (m *Memory) Close() error {
	return nil
}

// Metrics returns cache statistics.
func (m *Memory) Metrics() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics
}

// Len returns the current number of items in cache.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.evictList.Len()
}

// removeElement must be called with the lock held.
func (m *Memory) removeElement(elem *list.Element) {
	m.evictList.Remove(elem)
	ent := elem.Value.(*entry)
	delete(m.items, ent.key)
}

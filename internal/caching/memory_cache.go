package caching

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryCacheService is the CacheService used when no Redis address is
// configured. Expired entries are hidden on read and removed by Sweep.
type MemoryCacheService struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCacheService() *MemoryCacheService {
	return &MemoryCacheService{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryCacheService) getLocked(key string) (memoryEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if e.expired(m.now()) {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}

func (m *MemoryCacheService) IsRateLimited(ctx context.Context, key string, limit int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.getLocked(rateLimitKey(key))
	if !ok {
		return false, nil
	}
	count, err := strconv.ParseInt(e.value, 10, 64)
	if err != nil {
		return false, err
	}
	return count >= int64(limit), nil
}

func (m *MemoryCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cacheKey := rateLimitKey(key)
	e, ok := m.getLocked(cacheKey)
	if !ok {
		m.entries[cacheKey] = memoryEntry{value: "1", expiresAt: m.now().Add(window)}
		return 1, nil
	}
	count, err := strconv.ParseInt(e.value, 10, 64)
	if err != nil {
		return 0, err
	}
	count++
	e.value = strconv.FormatInt(count, 10)
	m.entries[cacheKey] = e
	return count, nil
}

func (m *MemoryCacheService) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryCacheService) Close() error {
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (m *MemoryCacheService) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (m *MemoryCacheService) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

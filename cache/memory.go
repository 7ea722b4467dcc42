package cache

import (
	"context"
	"time"

	"github.com/zhangyunhao116/skipmap"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process cache on a concurrent skip list. Expired entries
// are dropped on read and by Sweep.
type Memory struct {
	entries *skipmap.StringMap[entry]
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: skipmap.NewString[entry](),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	e, ok := m.entries.Load(key)
	if !ok {
		return nil, false
	}
	if !m.now().Before(e.expiresAt) {
		m.entries.Delete(key)
		return nil, false
	}
	return e.value, true
}

// Put stores value until ttl elapses; the last writer wins.
func (m *Memory) Put(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.entries.Store(key, entry{value: v, expiresAt: m.now().Add(ttl)})
}

// Len reports the number of entries, expired ones included.
func (m *Memory) Len() int {
	return m.entries.Len()
}

// Sweep removes every expired entry and returns how many were dropped.
func (m *Memory) Sweep() int {
	now := m.now()
	var expired []string
	m.entries.Range(func(key string, e entry) bool {
		if !now.Before(e.expiresAt) {
			expired = append(expired, key)
		}
		return true
	})
	for _, key := range expired {
		m.entries.Delete(key)
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (m *Memory) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

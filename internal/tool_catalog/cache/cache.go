// Package cache stores rendered catalog views under logical view names.
package cache

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"
)

// Logical view keys. A trailing "*" in Invalidate matches every key with that prefix.
const (
	KeyTools      = "tools"
	KeyAdminTools = "admin:tools"
	KeyReports    = "reports"
	ComparePrefix = "compare:"
	KeyAllCompare = ComparePrefix + "*"
)

// CatalogViews is every view an import or admin edit can make stale.
var CatalogViews = []string{KeyTools, KeyAdminTools, KeyAllCompare, KeyReports}

// Cache is the view cache. Get reports whether key was present.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Invalidate(ctx context.Context, keys ...string) error
}

// CompareKey is order independent: the ids are sorted.
func CompareKey(ids []string) string {
	s := append([]string(nil), ids...)
	sort.Strings(s)
	return ComparePrefix + strings.Join(s, ",")
}

type entry struct {
	data    []byte
	expires time.Time
}

// Memory is the in-process Cache used when no redis address is configured.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now, entries: make(map[string]entry)}
}

func (m *Memory) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if ok && m.ttl > 0 && m.now().After(e.expires) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(e.data, dst)
}

func (m *Memory) Set(_ context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[key] = entry{data: b, expires: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Invalidate(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		if prefix, ok := strings.CutSuffix(k, "*"); ok {
			for existing := range m.entries {
				if strings.HasPrefix(existing, prefix) {
					delete(m.entries, existing)
				}
			}
			continue
		}
		delete(m.entries, k)
	}
	return nil
}

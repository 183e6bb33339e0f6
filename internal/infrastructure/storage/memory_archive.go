package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
)

// Ensure MemoryWebhookArchive implements WebhookArchive
var _ payment.WebhookArchive = (*MemoryWebhookArchive)(nil)

// MemoryWebhookArchive keeps webhook bodies in process memory.
// Use it for development and tests when no bucket is configured.
type MemoryWebhookArchive struct {
	mu      sync.RWMutex
	prefix  string
	objects map[string][]byte
}

// NewMemoryWebhookArchive creates an empty in-memory archive
func NewMemoryWebhookArchive(prefix string) *MemoryWebhookArchive {
	return &MemoryWebhookArchive{prefix: prefix, objects: make(map[string][]byte)}
}

// Archive stores a copy of body under its object key
func (m *MemoryWebhookArchive) Archive(_ context.Context, provider payment.ProviderName, reference string, body []byte) (string, error) {
	key, err := ObjectKey(m.prefix, provider, reference, body, time.Now())
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), body...)
	return key, nil
}

// Get returns an archived body
func (m *MemoryWebhookArchive) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[key]
	return b, ok
}

// Keys returns every stored key in sorted order
func (m *MemoryWebhookArchive) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

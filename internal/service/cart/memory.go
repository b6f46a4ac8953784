package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"restaurant-ops/internal/domain"
)

// MemoryStore is a process-local Store used when no Redis is configured.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	carts map[string]memoryEntry
}

type memoryEntry struct {
	raw       []byte
	version   int
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, carts: make(map[string]memoryEntry)}
}

func (m *MemoryStore) Get(_ context.Context, establishmentID, id string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := establishmentID + ":" + id
	e, ok := m.carts[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if m.ttl > 0 && m.now().After(e.expiresAt) {
		delete(m.carts, key)
		return nil, domain.ErrNotFound
	}
	var cart domain.Cart
	if err := json.Unmarshal(e.raw, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (m *MemoryStore) Save(_ context.Context, cart *domain.Cart, expectedVersion int) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := cart.EstablishmentID + ":" + cart.ID
	stored := 0
	if e, ok := m.carts[key]; ok && (m.ttl <= 0 || !m.now().After(e.expiresAt)) {
		stored = e.version
	}
	if stored != expectedVersion {
		return fmt.Errorf("cart %s is at version %d, not %d: %w", cart.ID, stored, expectedVersion, domain.ErrConflict)
	}
	m.carts[key] = memoryEntry{raw: raw, version: cart.Version, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, establishmentID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := establishmentID + ":" + id
	if _, ok := m.carts[key]; !ok {
		return domain.ErrNotFound
	}
	delete(m.carts, key)
	return nil
}

// Package session holds the per-user pending order dialogue.
package session

import (
	"context"
	"sync"
	"time"

	"meal-telegram/models"
)

type Step string

const (
	StepIdle              Step = "idle"
	StepAwaitingSweetness Step = "awaiting_sweetness"
	StepAwaitingIce       Step = "awaiting_ice"
	StepAwaitingQuantity  Step = "awaiting_quantity"
)

// Pending is one user's in-progress order. It is created by an item pick and
// removed on commit, on a failed commit check, or when a new pick replaces it.
type Pending struct {
	UserID     string            `json:"user_id"`
	Step       Step              `json:"step"`
	ItemID     int64             `json:"item_id"`
	ItemCode   string            `json:"item_code"`
	ItemName   string            `json:"item_name"`
	Price      int64             `json:"price"`
	VendorID   int64             `json:"vendor_id"`
	VendorCode string            `json:"vendor_code"`
	VendorName string            `json:"vendor_name"`
	Kind       models.VendorKind `json:"kind"`
	Date       string            `json:"date"`
	Slot       models.MealSlot   `json:"slot"`
	Sweetness  string            `json:"sweetness,omitempty"`
	Ice        string            `json:"ice,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Store keeps at most one Pending per user. Delete of a missing session is not an error.
type Store interface {
	Get(ctx context.Context, userID string) (*Pending, bool, error)
	Put(ctx context.Context, p *Pending) error
	Delete(ctx context.Context, userID string) error
}

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Pending
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Pending)}
}

func (m *MemoryStore) Get(_ context.Context, userID string) (*Pending, bool, error) {
	m.mu.RLock()
	p, ok := m.sessions[userID]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return &p, true, nil
}

func (m *MemoryStore) Put(_ context.Context, p *Pending) error {
	m.mu.Lock()
	m.sessions[p.UserID] = *p
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
	return nil
}

// Len is the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Locks serializes work per user without a global lock.
type Locks struct {
	m sync.Map // map[userID]*sync.Mutex
}

// Lock locks by userID and returns the unlock function.
func (l *Locks) Lock(userID string) func() {
	v, _ := l.m.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

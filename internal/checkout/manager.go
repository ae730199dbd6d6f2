package checkout

import (
	"sync"
	"time"
)

// Manager keeps at most one live checkout controller per user, so shipping
// and payment data entered before a login redirect are still there when the
// user comes back. Confirmed sessions are replaced on the next Begin.
type Manager struct {
	carts   CartStore
	orders  OrderPlacer
	timeout time.Duration

	mu       sync.Mutex
	sessions map[string]*Controller // userID -> controller
}

func NewManager(carts CartStore, orders OrderPlacer, timeout time.Duration) *Manager {
	return &Manager{
		carts:    carts,
		orders:   orders,
		timeout:  timeout,
		sessions: make(map[string]*Controller),
	}
}

// Begin returns the user's in-progress checkout, or a fresh one when none
// exists or the previous attempt already confirmed.
func (m *Manager) Begin(userID string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ctrl, exists := m.sessions[userID]; exists && !ctrl.Step().IsTerminal() {
		return ctrl
	}

	ctrl := NewController(userID, m.carts, m.orders, m.timeout)
	m.sessions[userID] = ctrl
	return ctrl
}

// Get returns the user's checkout without creating one.
func (m *Manager) Get(userID string) (*Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctrl, exists := m.sessions[userID]
	return ctrl, exists
}

// Discard drops the user's checkout attempt, abandoned or finished.
func (m *Manager) Discard(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

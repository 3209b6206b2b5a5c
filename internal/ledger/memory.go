package ledger

import (
	"context"
	"sync"

	"github.com/emberhollow/tradepost/internal/domain"
	"github.com/emberhollow/tradepost/internal/port"
)

var _ port.Ledger = (*Memory)(nil)

// Memory is a map-backed resource ledger for tests and standalone runs.
type Memory struct {
	mu       sync.Mutex
	currency string
	balances map[string]map[string]int64
}

func NewMemory(currency string) *Memory {
	return &Memory{
		currency: currency,
		balances: make(map[string]map[string]int64),
	}
}

// Set overwrites a trader's free balance of a resource (test seeding).
func (m *Memory) Set(traderID, resource string, qty int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.account(traderID)[resource] = qty
}

func (m *Memory) Balance(ctx context.Context, traderID, resource string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.account(traderID)[resource], nil
}

func (m *Memory) Modify(ctx context.Context, traderID, resource string, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct := m.account(traderID)
	if next := acct[resource] + delta; next < 0 {
		return insufficiency(resource, m.currency)
	}
	acct[resource] += delta
	return nil
}

// Total sums a resource across all traders (used by conservation tests).
func (m *Memory) Total(resource string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, acct := range m.balances {
		sum += acct[resource]
	}
	return sum
}

func (m *Memory) account(traderID string) map[string]int64 {
	acct, ok := m.balances[traderID]
	if !ok {
		acct = make(map[string]int64)
		m.balances[traderID] = acct
	}
	return acct
}

func insufficiency(resource, currency string) error {
	if resource == currency {
		return domain.ErrInsufficientFunds
	}
	return domain.ErrInsufficientInventory
}

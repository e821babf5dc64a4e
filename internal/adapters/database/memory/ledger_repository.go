package memory

import (
	"context"
	"sync"

	"github.com/tallyfin/tally/internal/core/domain"
	portsrepo "github.com/tallyfin/tally/internal/core/ports/repositories"
)

type balanceKey struct {
	account string
	asset   domain.AssetCode
}

// MemoryLedgerRepository is an in-memory implementation of
// repositories.LedgerRepository. It is the authoritative store for
// deployments without a database and the backing store for tests.
type MemoryLedgerRepository struct {
	mu       sync.RWMutex
	nextID   uint64
	balances map[balanceKey]int64
	logs     map[string][]domain.Entry
}

// NewMemoryLedgerRepository creates an empty in-memory ledger store.
func NewMemoryLedgerRepository() *MemoryLedgerRepository {
	return &MemoryLedgerRepository{
		balances: make(map[balanceKey]int64),
		logs:     make(map[string][]domain.Entry),
	}
}

// Ensure MemoryLedgerRepository implements the LedgerRepository interface
var _ portsrepo.LedgerRepository = (*MemoryLedgerRepository)(nil)

// AppendEntry assigns the next global ID, applies the delta and appends the
// entry under one lock, so readers never observe a partial mutation.
func (m *MemoryLedgerRepository) AppendEntry(ctx context.Context, account string, entry domain.Entry) (domain.Entry, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	entry.ID = m.nextID

	key := balanceKey{account: account, asset: entry.AssetCode}
	newBalance := m.balances[key] + entry.Delta
	m.balances[key] = newBalance
	m.logs[account] = append(m.logs[account], entry)

	return entry, newBalance, nil
}

// Balance returns the current balance, zero for untouched pairs.
func (m *MemoryLedgerRepository) Balance(ctx context.Context, account string, asset domain.AssetCode) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[balanceKey{account: account, asset: asset}], nil
}

// EntriesByAccount returns a copy of the account's log so external code
// can't modify internal state.
func (m *MemoryLedgerRepository) EntriesByAccount(ctx context.Context, account string) ([]domain.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	log := m.logs[account]
	copied := make([]domain.Entry, len(log))
	copy(copied, log)
	return copied, nil
}

// EntryCount returns the last assigned entry ID, which equals the total
// number of entries ever recorded.
func (m *MemoryLedgerRepository) EntryCount(ctx context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nextID, nil
}

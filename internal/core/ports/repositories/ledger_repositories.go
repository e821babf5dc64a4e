package repositories

import (
	"context"

	"github.com/tallyfin/tally/internal/core/domain"
)

// LedgerReader defines read operations for ledger state.
type LedgerReader interface {
	// Balance returns the current balance for an account/asset pair.
	// Accounts or assets that were never touched yield zero, not an error.
	Balance(ctx context.Context, account string, asset domain.AssetCode) (int64, error)

	// EntriesByAccount retrieves the full, creation-ordered entry log for an
	// account. The returned slice is a copy; it is empty for unknown accounts.
	EntriesByAccount(ctx context.Context, account string) ([]domain.Entry, error)

	// EntryCount returns the total number of entries across the whole ledger,
	// which is also the last assigned entry ID.
	EntryCount(ctx context.Context) (uint64, error)
}

// LedgerWriter defines the single mutation path for ledger state.
type LedgerWriter interface {
	// AppendEntry assigns the next global entry ID, applies the delta to the
	// account/asset balance and appends the entry to the account's log as one
	// atomic unit. It returns the stored entry (ID filled in) and the balance
	// after the append. No partial effect is ever observable.
	AppendEntry(ctx context.Context, account string, entry domain.Entry) (domain.Entry, int64, error)
}

// LedgerRepository combines read and write access to ledger state.
type LedgerRepository interface {
	LedgerReader
	LedgerWriter
}

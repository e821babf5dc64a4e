package services

import (
	"context"
	"time"

	"github.com/tallyfin/tally/internal/core/domain"
)

// LedgerReaderSvc defines read operations on the ledger. Reads bypass the
// access guard and never fail on unknown accounts.
type LedgerReaderSvc interface {
	// Balance returns the current balance for an account/asset pair, zero if
	// the pair was never touched.
	Balance(ctx context.Context, account string, asset domain.AssetCode) (int64, error)

	// Entries returns the creation-ordered entry log for an account.
	Entries(ctx context.Context, account string) ([]domain.Entry, error)

	// EntryCount returns the global entry counter, for diagnostics.
	EntryCount(ctx context.Context) (uint64, error)
}

// LedgerWriterSvc defines the owner-gated mutation operations.
type LedgerWriterSvc interface {
	// Credit records a positive adjustment of amount against account/asset.
	// amount must be strictly positive. Returns the created entry and the
	// resulting balance.
	Credit(ctx context.Context, caller, account string, asset domain.AssetCode, amount uint64, note string, now time.Time) (domain.Entry, int64, error)

	// Debit records a negative adjustment of amount against account/asset.
	// amount must be strictly positive. Returns the created entry and the
	// resulting balance.
	Debit(ctx context.Context, caller, account string, asset domain.AssetCode, amount uint64, note string, now time.Time) (domain.Entry, int64, error)
}

// LedgerSvcFacade combines ledger read and write operations.
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}

// GuardSvcFacade restricts privileged calls to a single transferable owner.
type GuardSvcFacade interface {
	// Authorize reports whether caller is the current owner.
	Authorize(caller string) bool

	// Owner returns the current owner principal.
	Owner() string

	// TransferOwnership atomically replaces the owner. Only the current owner
	// may call it; the new owner must be a non-empty principal.
	TransferOwnership(ctx context.Context, caller, newOwner string) error
}

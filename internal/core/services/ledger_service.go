package services

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/tallyfin/tally/internal/apperrors"
	"github.com/tallyfin/tally/internal/core/domain"
	portsevents "github.com/tallyfin/tally/internal/core/ports/events"
	portsrepo "github.com/tallyfin/tally/internal/core/ports/repositories"
	portssvc "github.com/tallyfin/tally/internal/core/ports/services"
)

// ledgerServiceImpl implements the LedgerSvcFacade interface.
//
// All mutations funnel through record, which holds mu for the whole of
// id allocation + balance update + log append, so concurrent callers are
// totally ordered and no reader ever sees a partial mutation. Events are
// published inside the critical section so emission order matches append
// order.
type ledgerServiceImpl struct {
	BaseService
	repo      portsrepo.LedgerRepository
	guard     portssvc.GuardSvcFacade
	publisher portsevents.EventPublisher

	mu sync.Mutex
}

// NewLedgerService creates the ledger service over the given repository.
// publisher may not be nil; use the noop publisher when events are unwanted.
func NewLedgerService(repo portsrepo.LedgerRepository, guard portssvc.GuardSvcFacade, publisher portsevents.EventPublisher) portssvc.LedgerSvcFacade {
	return &ledgerServiceImpl{
		repo:      repo,
		guard:     guard,
		publisher: publisher,
	}
}

// Ensure ledgerServiceImpl implements the LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerServiceImpl)(nil)

// Credit records a positive adjustment against account/asset.
func (s *ledgerServiceImpl) Credit(ctx context.Context, caller, account string, asset domain.AssetCode, amount uint64, note string, now time.Time) (domain.Entry, int64, error) {
	if !s.guard.Authorize(caller) {
		s.LogWarn(ctx, "Unauthorized credit attempt", slog.String("caller", caller), slog.String("account", account))
		return domain.Entry{}, 0, apperrors.ErrNotOwner
	}
	delta, err := signedDelta(amount, false)
	if err != nil {
		return domain.Entry{}, 0, err
	}
	return s.record(ctx, account, asset, delta, note, now)
}

// Debit records a negative adjustment against account/asset.
func (s *ledgerServiceImpl) Debit(ctx context.Context, caller, account string, asset domain.AssetCode, amount uint64, note string, now time.Time) (domain.Entry, int64, error) {
	if !s.guard.Authorize(caller) {
		s.LogWarn(ctx, "Unauthorized debit attempt", slog.String("caller", caller), slog.String("account", account))
		return domain.Entry{}, 0, apperrors.ErrNotOwner
	}
	delta, err := signedDelta(amount, true)
	if err != nil {
		return domain.Entry{}, 0, err
	}
	return s.record(ctx, account, asset, delta, note, now)
}

// signedDelta converts a caller-supplied magnitude into a signed delta.
func signedDelta(amount uint64, negate bool) (int64, error) {
	if amount == 0 || amount > math.MaxInt64 {
		return 0, apperrors.ErrInvalidAmount
	}
	delta := int64(amount)
	if negate {
		delta = -delta
	}
	return delta, nil
}

// record is the sole mutation path. Validation failures reject the call with
// no state change, no id consumption and no event.
func (s *ledgerServiceImpl) record(ctx context.Context, account string, asset domain.AssetCode, delta int64, note string, now time.Time) (domain.Entry, int64, error) {
	if account == "" {
		return domain.Entry{}, 0, apperrors.ErrInvalidAccount
	}
	if asset.IsZero() {
		return domain.Entry{}, 0, apperrors.ErrInvalidAsset
	}
	if delta == 0 {
		return domain.Entry{}, 0, apperrors.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, newBalance, err := s.repo.AppendEntry(ctx, account, domain.NewEntry(asset, delta, note, now))
	if err != nil {
		s.LogError(ctx, err, "Failed to append ledger entry", slog.String("account", account))
		return domain.Entry{}, 0, err
	}

	event := domain.EntryRecorded{
		Account:    account,
		EntryID:    entry.ID,
		AssetCode:  entry.AssetCode,
		Delta:      entry.Delta,
		NewBalance: newBalance,
		Note:       entry.Note,
		Timestamp:  entry.Timestamp,
	}
	if err := s.publisher.Publish(ctx, domain.TopicEntryRecorded, event); err != nil {
		// The append already committed; delivery is fire-and-forget.
		s.LogError(ctx, err, "Failed to publish entry recorded event", slog.Uint64("entry_id", entry.ID))
	}

	s.LogInfo(ctx, "Ledger entry recorded",
		slog.Uint64("entry_id", entry.ID),
		slog.String("account", account),
		slog.Int64("delta", entry.Delta),
		slog.Int64("new_balance", newBalance),
	)
	return entry, newBalance, nil
}

// Balance returns the current balance, zero when the pair was never touched.
func (s *ledgerServiceImpl) Balance(ctx context.Context, account string, asset domain.AssetCode) (int64, error) {
	return s.repo.Balance(ctx, account, asset)
}

// Entries returns the creation-ordered entry log for an account.
func (s *ledgerServiceImpl) Entries(ctx context.Context, account string) ([]domain.Entry, error) {
	return s.repo.EntriesByAccount(ctx, account)
}

// EntryCount returns the global entry counter.
func (s *ledgerServiceImpl) EntryCount(ctx context.Context) (uint64, error) {
	return s.repo.EntryCount(ctx)
}

package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tallyfin/tally/internal/apperrors"
	"github.com/tallyfin/tally/internal/core/domain"
	portsrepo "github.com/tallyfin/tally/internal/core/ports/repositories"
)

// PgxLedgerRepository is the PostgreSQL implementation of
// repositories.LedgerRepository. Every append runs inside one DB transaction
// covering the counter bump, the entry insert and the balance upsert, so the
// stored log and balances can never diverge.
type PgxLedgerRepository struct {
	BaseRepository
}

// NewPgxLedgerRepository creates a new repository for ledger data.
func NewPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepository
var _ portsrepo.LedgerRepository = (*PgxLedgerRepository)(nil)

// AppendEntry allocates the next global entry ID and persists entry and
// balance atomically. The row lock taken by the counter update also totally
// orders concurrent appends at the database level.
func (r *PgxLedgerRepository) AppendEntry(ctx context.Context, account string, entry domain.Entry) (domain.Entry, int64, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return domain.Entry{}, 0, err
	}
	defer r.Rollback(ctx, tx) // No-op once the transaction is committed

	const counterQuery = `
		UPDATE ledger_counter
		SET last_entry_id = last_entry_id + 1
		WHERE id = 1
		RETURNING last_entry_id;
	`
	if err := tx.QueryRow(ctx, counterQuery).Scan(&entry.ID); err != nil {
		return domain.Entry{}, 0, apperrors.NewAppError(500, "failed to allocate entry id", err)
	}

	const entryQuery = `
		INSERT INTO ledger_entries (entry_id, account_id, asset_code, delta, absolute, note, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err = tx.Exec(ctx, entryQuery,
		entry.ID,
		account,
		entry.AssetCode[:],
		entry.Delta,
		entry.Absolute,
		entry.Note,
		entry.Timestamp,
	)
	if err != nil {
		return domain.Entry{}, 0, apperrors.NewAppError(500, fmt.Sprintf("failed to insert ledger entry for account %s", account), err)
	}

	const balanceQuery = `
		INSERT INTO account_balances (account_id, asset_code, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, asset_code)
		DO UPDATE SET balance = account_balances.balance + EXCLUDED.balance
		RETURNING balance;
	`
	var newBalance int64
	if err := tx.QueryRow(ctx, balanceQuery, account, entry.AssetCode[:], entry.Delta).Scan(&newBalance); err != nil {
		return domain.Entry{}, 0, apperrors.NewAppError(500, fmt.Sprintf("failed to update balance for account %s", account), err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return domain.Entry{}, 0, err
	}
	return entry, newBalance, nil
}

// Balance returns the current balance, zero when the pair has no row yet.
func (r *PgxLedgerRepository) Balance(ctx context.Context, account string, asset domain.AssetCode) (int64, error) {
	const query = `
		SELECT balance FROM account_balances
		WHERE account_id = $1 AND asset_code = $2;
	`
	var balance int64
	err := r.Pool.QueryRow(ctx, query, account, asset[:]).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, apperrors.NewAppError(500, fmt.Sprintf("failed to query balance for account %s", account), err)
	}
	return balance, nil
}

// EntriesByAccount returns the account's entries in creation (entry_id) order.
func (r *PgxLedgerRepository) EntriesByAccount(ctx context.Context, account string) ([]domain.Entry, error) {
	const query = `
		SELECT entry_id, asset_code, delta, absolute, note, recorded_at
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY entry_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, account)
	if err != nil {
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to query entries for account %s", account), err)
	}
	defer rows.Close()

	entries := make([]domain.Entry, 0)
	for rows.Next() {
		var (
			entry    domain.Entry
			rawAsset []byte
		)
		if err := rows.Scan(&entry.ID, &rawAsset, &entry.Delta, &entry.Absolute, &entry.Note, &entry.Timestamp); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan ledger entry", err)
		}
		copy(entry.AssetCode[:], rawAsset)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate ledger entries", err)
	}
	return entries, nil
}

// EntryCount returns the last assigned entry ID from the counter row.
func (r *PgxLedgerRepository) EntryCount(ctx context.Context) (uint64, error) {
	const query = `SELECT last_entry_id FROM ledger_counter WHERE id = 1;`

	var count uint64
	if err := r.Pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, apperrors.NewAppError(500, "failed to query entry counter", err)
	}
	return count, nil
}

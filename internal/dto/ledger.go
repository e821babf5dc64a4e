package dto

import (
	"time"

	"github.com/tallyfin/tally/internal/core/domain"
	"github.com/tallyfin/tally/internal/utils"
)

// AdjustmentRequest is the body for credit and debit calls. Asset is the
// human-readable asset name; it is hashed to an asset code server-side.
type AdjustmentRequest struct {
	Asset  string `json:"asset" binding:"required,assetname"`
	Amount uint64 `json:"amount" binding:"required,gt=0"`
	Note   string `json:"note"`
}

// TransferOwnershipRequest is the body for an ownership transfer.
type TransferOwnershipRequest struct {
	NewOwner string `json:"newOwner" binding:"required"`
}

// EntryResponse defines the data returned for a single ledger entry.
type EntryResponse struct {
	ID        uint64    `json:"id"`
	AssetCode string    `json:"assetCode"`
	Delta     int64     `json:"delta"`
	Absolute  uint64    `json:"absolute"`
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
	Display   string    `json:"display"` // Delta rendered in major units
}

// AdjustmentResponse is returned by credit and debit calls.
type AdjustmentResponse struct {
	Account           string        `json:"account"`
	Entry             EntryResponse `json:"entry"`
	NewBalance        int64         `json:"newBalance"`
	NewBalanceDisplay string        `json:"newBalanceDisplay"`
}

// BalanceResponse is returned by the balance query.
type BalanceResponse struct {
	Account        string `json:"account"`
	Asset          string `json:"asset"`
	AssetCode      string `json:"assetCode"`
	Balance        int64  `json:"balance"`
	BalanceDisplay string `json:"balanceDisplay"`
}

// EntriesResponse is returned by the entry-log query.
type EntriesResponse struct {
	Account string          `json:"account"`
	Entries []EntryResponse `json:"entries"`
}

// StatsResponse exposes the diagnostics surface: the global entry counter
// and the current owner principal.
type StatsResponse struct {
	EntryCount uint64 `json:"entryCount"`
	Owner      string `json:"owner"`
}

// ToEntryResponse converts a domain.Entry to EntryResponse DTO.
func ToEntryResponse(e domain.Entry, precision int) EntryResponse {
	return EntryResponse{
		ID:        e.ID,
		AssetCode: e.AssetCode.String(),
		Delta:     e.Delta,
		Absolute:  e.Absolute,
		Note:      e.Note,
		Timestamp: e.Timestamp,
		Display:   utils.FormatMinorUnits(e.Delta, precision),
	}
}

// ToEntryResponses converts a slice of domain.Entry to []EntryResponse.
func ToEntryResponses(entries []domain.Entry, precision int) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = ToEntryResponse(e, precision)
	}
	return responses
}

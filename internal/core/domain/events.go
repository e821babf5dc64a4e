package domain

import "time"

// Event topics, in the sense of the publisher's routing key.
const (
	TopicEntryRecorded        = "ledger.entry_recorded"
	TopicOwnershipTransferred = "ledger.ownership_transferred"
)

// EntryRecorded is emitted after every successful record operation.
// Emission order matches record order.
type EntryRecorded struct {
	Account    string    `json:"account"`
	EntryID    uint64    `json:"entryID"`
	AssetCode  AssetCode `json:"assetCode"`
	Delta      int64     `json:"delta"`
	NewBalance int64     `json:"newBalance"`
	Note       string    `json:"note"`
	Timestamp  time.Time `json:"timestamp"`
}

// OwnershipTransferred is emitted after a successful ownership transfer.
type OwnershipTransferred struct {
	PreviousOwner string    `json:"previousOwner"`
	NewOwner      string    `json:"newOwner"`
	Timestamp     time.Time `json:"timestamp"`
}

package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// AssetCode identifies one independent balance track within an account.
// It is the SHA-256 of the human-readable asset name; the zero value is invalid.
type AssetCode [32]byte

// AssetCodeFor derives the code for a human-readable asset name such as "USD".
func AssetCodeFor(name string) AssetCode {
	return AssetCode(sha256.Sum256([]byte(name)))
}

// IsZero reports whether the code is the invalid all-zero value.
func (c AssetCode) IsZero() bool {
	return c == AssetCode{}
}

// String returns the lowercase hex form of the code.
func (c AssetCode) String() string {
	return hex.EncodeToString(c[:])
}

// MarshalJSON encodes the code as a lowercase hex string.
func (c AssetCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a lowercase hex string into the code.
func (c *AssetCode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("asset code is not valid hex: %w", err)
	}
	if len(decoded) != len(c) {
		return fmt.Errorf("asset code must be %d bytes, got %d", len(c), len(decoded))
	}
	copy(c[:], decoded)
	return nil
}

// ParseAssetCode parses the hex form produced by String.
func ParseAssetCode(s string) (AssetCode, error) {
	var c AssetCode
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return c, fmt.Errorf("asset code is not valid hex: %w", err)
	}
	if len(decoded) != len(c) {
		return c, fmt.Errorf("asset code must be %d bytes, got %d", len(c), len(decoded))
	}
	copy(c[:], decoded)
	return c, nil
}

// Entry is an immutable record of one signed balance adjustment.
// Entries are never modified or removed once appended; IDs are unique and
// strictly increasing across the whole ledger, not per account.
type Entry struct {
	ID        uint64    `json:"id"`
	AssetCode AssetCode `json:"assetCode"`
	Delta     int64     `json:"delta"`    // positive = credit, negative = debit; never zero
	Absolute  uint64    `json:"absolute"` // always |Delta|
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEntry builds an entry for the given signed delta. The ID is assigned by
// the repository at append time.
func NewEntry(asset AssetCode, delta int64, note string, now time.Time) Entry {
	abs := delta
	if abs < 0 {
		abs = -abs
	}
	return Entry{
		AssetCode: asset,
		Delta:     delta,
		Absolute:  uint64(abs),
		Note:      note,
		Timestamp: now,
	}
}

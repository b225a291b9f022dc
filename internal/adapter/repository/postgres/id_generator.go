package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator issues ids for accounts, entries, orders and conversions.
// ULIDs sort by creation time, which keeps the `ORDER BY created_at, id`
// ledger listings stable when entries share a timestamp.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate returns a fresh ULID. Safe for concurrent use.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}

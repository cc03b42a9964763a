package postgres

import "github.com/oklog/ulid/v2"

// ULIDGenerator issues lexicographically sortable ids for withdrawal
// requests and audit entries.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate returns a new ULID string.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}

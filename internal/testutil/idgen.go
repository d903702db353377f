package testutil

import "github.com/roach88/todoflux/internal/ir"

// ConstantIDGenerator returns the same item id every time.
//
// It breaks the uniqueness contract on purpose: feeding it to an engine is
// how tests reach the ID_COLLISION path. For predetermined distinct ids use
// engine.FixedGenerator.
//
// Thread-safety: ConstantIDGenerator is stateless and safe for concurrent use.
type ConstantIDGenerator struct {
	id ir.ItemID
}

// NewConstantIDGenerator creates a generator that always returns id.
// If id is empty, Generate() returns "test-item".
func NewConstantIDGenerator(id ir.ItemID) *ConstantIDGenerator {
	if id == "" {
		id = "test-item"
	}
	return &ConstantIDGenerator{id: id}
}

// Generate returns the constant id.
//
// Implements engine.IDGenerator interface.
func (g *ConstantIDGenerator) Generate() ir.ItemID {
	return g.id
}

package engine

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/todoflux/internal/ir"
)

// IDGenerator issues item ids.
//
// Implementations must never return the same id twice over their lifetime.
// Implemented by UUIDv4Generator (default), UUIDv7Generator, CounterGenerator
// and FixedGenerator (tests, replay).
type IDGenerator interface {
	Generate() ir.ItemID
}

// Strategy names an IDGenerator implementation for configuration.
type Strategy string

const (
	StrategyUUIDv4  Strategy = "uuid4"
	StrategyUUIDv7  Strategy = "uuid7"
	StrategyCounter Strategy = "counter"
)

// DefaultCounterPrefix is used by NewGenerator when no prefix is given.
const DefaultCounterPrefix = "todo-"

// NewGenerator builds the generator for a strategy name.
// An empty strategy selects uuid4. The prefix only applies to counter ids.
func NewGenerator(strategy Strategy, prefix string) (IDGenerator, error) {
	switch strategy {
	case "", StrategyUUIDv4:
		return UUIDv4Generator{}, nil
	case StrategyUUIDv7:
		return UUIDv7Generator{}, nil
	case StrategyCounter:
		if prefix == "" {
			prefix = DefaultCounterPrefix
		}
		return NewCounterGenerator(prefix), nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q: must be one of uuid4, uuid7, counter", strategy)
	}
}

// UUIDv4Generator generates random 128-bit ids.
//
// Format: "550e8400-e29b-41d4-a716-446655440000" (36 characters)
//
// Thread-safety: UUIDv4Generator is stateless and safe for concurrent use.
type UUIDv4Generator struct{}

// Generate returns a new random UUID.
func (UUIDv4Generator) Generate() ir.ItemID {
	return ir.ItemID(uuid.NewString())
}

// UUIDv7Generator generates time-sortable UUIDv7 ids.
//
// UUIDv7 embeds a millisecond timestamp in the most significant bits, so ids
// sort by creation time, which helps when reading traces.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7.
// Panics if the system random source fails (should never happen in practice).
func (UUIDv7Generator) Generate() ir.ItemID {
	return ir.ItemID(uuid.Must(uuid.NewV7()).String())
}

// CounterGenerator issues prefix+N ids from a logical clock: todo-1, todo-2, ...
//
// Deterministic across runs, which is what scenarios and golden traces need.
//
// Thread-safety: safe for concurrent use (the clock is atomic).
type CounterGenerator struct {
	prefix string
	clock  *Clock
}

// NewCounterGenerator creates a counter generator whose first id is prefix+"1".
func NewCounterGenerator(prefix string) *CounterGenerator {
	return &CounterGenerator{prefix: prefix, clock: NewClock()}
}

// Generate returns the next id.
func (g *CounterGenerator) Generate() ir.ItemID {
	return ir.ItemID(g.prefix + strconv.FormatInt(g.clock.Next(), 10))
}

// Issued returns how many ids this generator has handed out.
func (g *CounterGenerator) Issued() int64 {
	return g.clock.Current()
}

// FixedGenerator returns predetermined ids.
//
// Used by tests and by journal replay, where the ids a previous run assigned
// must be handed out again in the same order.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []ir.ItemID
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
//
//	gen := NewFixedGenerator("a", "b")
//	gen.Generate() // "a"
//	gen.Generate() // "b"
//	gen.Generate() // panic: all ids exhausted
func NewFixedGenerator(ids ...ir.ItemID) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
//
// Panics if all ids have been consumed: the caller created more items than
// it planned for, which is a test or replay bug.
func (g *FixedGenerator) Generate() ir.ItemID {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Remaining returns how many ids are left.
func (g *FixedGenerator) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.ids) - g.idx
}

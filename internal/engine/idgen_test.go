package engine

import (
	"regexp"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todoflux/internal/ir"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestUUIDv4Generator_Format(t *testing.T) {
	id := UUIDv4Generator{}.Generate()
	require.Regexp(t, uuidPattern, string(id))

	parsed, err := uuid.Parse(string(id))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}

func TestUUIDv7Generator_Format(t *testing.T) {
	id := UUIDv7Generator{}.Generate()
	require.Regexp(t, uuidPattern, string(id))

	parsed, err := uuid.Parse(string(id))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestUUIDv7Generator_Sortable(t *testing.T) {
	gen := UUIDv7Generator{}
	prev := gen.Generate()
	for i := 0; i < 100; i++ {
		next := gen.Generate()
		assert.Less(t, string(prev), string(next))
		prev = next
	}
}

func TestUUIDGenerators_Unique(t *testing.T) {
	for _, gen := range []IDGenerator{UUIDv4Generator{}, UUIDv7Generator{}} {
		seen := make(map[ir.ItemID]bool)
		for i := 0; i < 1000; i++ {
			id := gen.Generate()
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	}
}

func TestCounterGenerator(t *testing.T) {
	gen := NewCounterGenerator("todo-")
	assert.Equal(t, ir.ItemID("todo-1"), gen.Generate())
	assert.Equal(t, ir.ItemID("todo-2"), gen.Generate())
	assert.Equal(t, int64(2), gen.Issued())
}

func TestCounterGenerator_ConcurrentUnique(t *testing.T) {
	gen := NewCounterGenerator("c")
	var mu sync.Mutex
	seen := make(map[ir.ItemID]bool)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := gen.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1000)
}

func TestFixedGenerator(t *testing.T) {
	gen := NewFixedGenerator("a", "b")
	assert.Equal(t, 2, gen.Remaining())
	assert.Equal(t, ir.ItemID("a"), gen.Generate())
	assert.Equal(t, ir.ItemID("b"), gen.Generate())
	assert.Equal(t, 0, gen.Remaining())

	assert.PanicsWithValue(t, "FixedGenerator: all ids exhausted", func() {
		gen.Generate()
	})
}

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		strategy Strategy
		prefix   string
		check    func(t *testing.T, g IDGenerator)
	}{
		{"", "", func(t *testing.T, g IDGenerator) { assert.IsType(t, UUIDv4Generator{}, g) }},
		{StrategyUUIDv4, "", func(t *testing.T, g IDGenerator) { assert.IsType(t, UUIDv4Generator{}, g) }},
		{StrategyUUIDv7, "ignored-", func(t *testing.T, g IDGenerator) { assert.IsType(t, UUIDv7Generator{}, g) }},
		{StrategyCounter, "", func(t *testing.T, g IDGenerator) { assert.Equal(t, ir.ItemID("todo-1"), g.Generate()) }},
		{StrategyCounter, "n", func(t *testing.T, g IDGenerator) { assert.Equal(t, ir.ItemID("n1"), g.Generate()) }},
	}

	for _, tt := range tests {
		t.Run(string(tt.strategy)+"/"+tt.prefix, func(t *testing.T) {
			g, err := NewGenerator(tt.strategy, tt.prefix)
			require.NoError(t, err)
			tt.check(t, g)
		})
	}
}

func TestNewGenerator_Unknown(t *testing.T) {
	_, err := NewGenerator("snowflake", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown id strategy "snowflake"`)
}

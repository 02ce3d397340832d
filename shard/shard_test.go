package shard

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/policycache/eviction"
	"github.com/krisalay/policycache/types"
)

func TestRoundShards(t *testing.T) {
	cases := map[int]int{-3: 1, 0: 1, 1: 1, 2: 2, 3: 4, 8: 8, 9: 16, 1000: 1024}
	for in, want := range cases {
		assert.Equal(t, want, RoundShards(in), "RoundShards(%d)", in)
	}
}

func TestMaskSelector_Range(t *testing.T) {
	s := NewMaskSelector[string](nil)
	for i := 0; i < 1000; i++ {
		idx := s.Index(fmt.Sprintf("key-%d", i), 8)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 8)
	}
}

func TestMaskSelector_Stable(t *testing.T) {
	s := NewMaskSelector[string](nil)
	assert.Equal(t, s.Index("same", 16), s.Index("same", 16))

	type point struct{ x, y int }
	p := NewMaskSelector[point](nil)
	assert.Equal(t, p.Index(point{1, 2}, 16), p.Index(point{1, 2}, 16))
}

func TestMaskSelector_Spread(t *testing.T) {
	s := NewMaskSelector[int](nil)
	counts := make([]int, 4)
	for i := 0; i < 4000; i++ {
		counts[s.Index(i, 4)]++
	}
	for i, c := range counts {
		assert.Greater(t, c, 500, "shard %d is starved", i)
	}
}

func TestMaskSelector_CustomHasher(t *testing.T) {
	s := NewMaskSelector[string](func(string) uint64 { return 5 })
	assert.Equal(t, 1, s.Index("anything", 4))
}

func TestShardStore(t *testing.T) {
	p, err := eviction.New[string, int](eviction.LRU, 4)
	require.NoError(t, err)
	sh := NewShard(p)

	sh.Store.Put("a", types.NewEntry(1, time.Time{}))
	sh.Store.Put("b", types.NewEntry(2, time.Time{}))
	assert.Equal(t, 2, sh.Store.Size())

	ent, ok := sh.Store.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, ent.Value())

	sh.Store.Delete("a")
	_, ok = sh.Store.Get("a")
	assert.False(t, ok)

	seen := 0
	sh.Store.Range(func(string, *types.Entry[int]) bool {
		seen++
		return false
	})
	assert.Equal(t, 1, seen)
}

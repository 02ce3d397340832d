package eviction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLFU_EvictsLowestFrequency(t *testing.T) {
	l := newLFU[string, int](2)
	l.OnInsert("k1", 1)
	l.OnInsert("k2", 2)

	for i := 0; i < 3; i++ {
		l.OnAccess("k1")
	}
	l.OnAccess("k2")

	assert.Equal(t, uint64(4), l.Frequency("k1"))
	assert.Equal(t, uint64(2), l.Frequency("k2"))

	victim, evicted := l.OnInsert("k3", 3)
	require.True(t, evicted)
	assert.Equal(t, "k2", victim)
	assert.Equal(t, uint64(1), l.Frequency("k3"))
	assert.Equal(t, uint64(1), l.MinFrequency())
	checkLFU(t, l)
}

func TestLFU_NewKeyNeverEvictsItself(t *testing.T) {
	l := newLFU[string, int](1)
	l.OnInsert("a", 1)
	l.OnAccess("a")

	victim, evicted := l.OnInsert("b", 2)
	require.True(t, evicted)
	assert.Equal(t, "a", victim)
	assert.Equal(t, uint64(1), l.Frequency("b"))
}

func TestLFU_MinFrequencyAdvancesOnAccess(t *testing.T) {
	l := newLFU[string, int](3)
	l.OnInsert("a", 1)
	l.OnAccess("a")
	l.OnAccess("a")
	assert.Equal(t, uint64(3), l.MinFrequency())

	l.OnInsert("b", 1)
	assert.Equal(t, uint64(1), l.MinFrequency())

	l.OnAccess("b")
	assert.Equal(t, uint64(2), l.MinFrequency())
	checkLFU(t, l)
}

func TestLFU_MinFrequencyCorrectedAfterRemove(t *testing.T) {
	l := newLFU[string, int](3)
	l.OnInsert("a", 1)
	l.OnInsert("b", 1)
	l.OnAccess("b")
	l.OnAccess("b")
	l.OnInsert("c", 1)
	l.OnAccess("c")

	// a is the only key at frequency 1.
	l.Remove("a")
	checkLFU(t, l)
	assert.Equal(t, uint64(2), l.MinFrequency())

	l.OnInsert("d", 1)
	l.Remove("d")

	// The stale minimum never leaks into victim selection.
	l.OnInsert("e", 1)
	l.OnAccess("e")
	l.OnAccess("e")
	l.OnAccess("e")
	victim, evicted := l.OnInsert("f", 1)
	require.True(t, evicted)
	assert.Equal(t, "c", victim)
	checkLFU(t, l)
}

func TestLFU_ReinsertResetsFrequency(t *testing.T) {
	l := newLFU[string, int](2)
	l.OnInsert("a", 1)
	l.OnAccess("a")
	l.OnAccess("a")

	_, evicted := l.OnInsert("a", 2)
	assert.False(t, evicted)
	assert.Equal(t, uint64(1), l.Frequency("a"))
	assert.Equal(t, 1, l.Len())
	checkLFU(t, l)
}

func TestLFU_FrequencySaturates(t *testing.T) {
	l := newLFU[string, int](2)
	l.OnInsert("a", 1)

	// Force the counter to the edge instead of looping 2^64 times.
	l.mu.Lock()
	l.unbucket("a", 1)
	l.freq["a"] = math.MaxUint64
	l.bucket("a", math.MaxUint64)
	l.minFreq = math.MaxUint64
	l.mu.Unlock()

	l.OnAccess("a")
	assert.Equal(t, uint64(math.MaxUint64), l.Frequency("a"))
	checkLFU(t, l)
}

func TestLFU_EmptyMinFrequency(t *testing.T) {
	l := newLFU[string, int](2)
	assert.Equal(t, uint64(0), l.MinFrequency())
	l.OnInsert("a", 1)
	l.Remove("a")
	assert.Equal(t, uint64(0), l.MinFrequency())
}

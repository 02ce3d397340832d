package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type pair struct{ A, B string }

func TestFlightKeys_String(t *testing.T) {
	f := newFlightKeys[string]()
	assert.Equal(t, "abc", f.acquire("abc"))
	f.release("abc")
	assert.Equal(t, 0, f.inflight())
}

func TestFlightKeys_DistinctKeysNeverShare(t *testing.T) {
	f := newFlightKeys[pair]()

	a := f.acquire(pair{"a b", "c"})
	b := f.acquire(pair{"a", "b c"})
	assert.NotEqual(t, a, b)

	again := f.acquire(pair{"a b", "c"})
	assert.Equal(t, a, again, "equal keys share a token while held")

	f.release(pair{"a b", "c"})
	f.release(pair{"a b", "c"})
	f.release(pair{"a", "b c"})
	assert.Equal(t, 0, f.inflight())
}

func TestFlightKeys_AnyKeys(t *testing.T) {
	f := newFlightKeys[any]()

	s := f.acquire("int:5")
	n := f.acquire(5)
	assert.NotEqual(t, s, n)
	assert.NotEqual(t, "int:5", s, "interface keys holding strings still get tokens")

	f.release("int:5")
	f.release(5)
	assert.Equal(t, 0, f.inflight())
}

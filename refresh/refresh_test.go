package refresh

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/krisalay/policycache/types"
)

func TestFunc(t *testing.T) {
	var got string
	var h Hook[string, int] = Func[string, int](func(key string, _ *types.Entry[int]) bool {
		got = key
		return true
	})
	assert.True(t, h.OnRead("k", types.NewEntry(1, time.Time{})))
	assert.Equal(t, "k", got)
}

func TestAhead(t *testing.T) {
	now := time.Unix(1000, 0)
	var triggered []string
	a := &Ahead[string, int]{
		Window:  10 * time.Second,
		Trigger: func(key string) { triggered = append(triggered, key) },
		Now:     func() time.Time { return now },
	}

	assert.False(t, a.OnRead("forever", types.NewEntryAt(1, time.Time{}, now)))
	assert.False(t, a.OnRead("far", types.NewEntryAt(1, now.Add(time.Minute), now)))
	assert.True(t, a.OnRead("near", types.NewEntryAt(1, now.Add(5*time.Second), now)))
	assert.True(t, a.OnRead("edge", types.NewEntryAt(1, now.Add(10*time.Second), now)))

	assert.Equal(t, []string{"near", "edge"}, triggered)
}

package expiration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/krisalay/policycache/types"
)

func TestExpired(t *testing.T) {
	now := time.Now()

	assert.False(t, Expired(types.NewEntryAt(1, time.Time{}, now), now.Add(time.Hour)), "zero expiry never expires")
	assert.False(t, Expired(types.NewEntryAt(1, now.Add(time.Second), now), now))
	assert.True(t, Expired(types.NewEntryAt(1, now, now), now), "deadline is inclusive")
	assert.True(t, Expired(types.NewEntryAt(1, now.Add(-time.Second), now), now))
}

func TestExpireAfterAccess(t *testing.T) {
	s := &ExpireAfterAccess[string]{TTL: time.Minute}
	now := time.Now()

	ent := types.NewEntryAt("v", time.Time{}, now)
	s.OnWrite(ent, now)
	assert.Equal(t, now.Add(time.Minute), ent.Expiry())

	later := now.Add(30 * time.Second)
	s.OnAccess(ent, later)
	assert.Equal(t, later.Add(time.Minute), ent.Expiry())
	assert.False(t, s.IsExpired(ent, now.Add(time.Minute)))
	assert.True(t, s.IsExpired(ent, later.Add(time.Minute)))
}

func TestExpireAfterAccess_KeepsExplicitTTL(t *testing.T) {
	s := &ExpireAfterAccess[string]{TTL: time.Minute}
	now := time.Now()

	ent := types.NewEntryAt("v", now.Add(time.Second), now)
	s.OnWrite(ent, now)
	assert.Equal(t, now.Add(time.Second), ent.Expiry())
}

func TestExpireAfterAccess_ExplicitDeadlineDoesNotSlide(t *testing.T) {
	s := &ExpireAfterAccess[string]{TTL: time.Minute}
	now := time.Now()

	long := types.NewEntryAt("v", time.Time{}, now)
	long.SetExplicitExpiry(now.Add(time.Hour))
	s.OnAccess(long, now.Add(time.Second))
	assert.Equal(t, now.Add(time.Hour), long.Expiry())

	short := types.NewEntryAt("v", time.Time{}, now)
	short.SetExplicitExpiry(now.Add(time.Second))
	s.OnAccess(short, now)
	assert.Equal(t, now.Add(time.Second), short.Expiry())
}

func TestExpireAfterWrite(t *testing.T) {
	s := &ExpireAfterWrite[int]{TTL: time.Minute}
	now := time.Now()

	ent := types.NewEntryAt(1, time.Time{}, now)
	s.OnWrite(ent, now)
	assert.Equal(t, now.Add(time.Minute), ent.Expiry())

	s.OnAccess(ent, now.Add(30*time.Second))
	assert.Equal(t, now.Add(time.Minute), ent.Expiry(), "reads do not extend the deadline")
	assert.True(t, s.IsExpired(ent, now.Add(time.Minute)))
}

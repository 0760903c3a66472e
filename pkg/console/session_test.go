package console

import (
	"testing"
	"time"

	"github.com/harveywai/jokeadmin/pkg/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

func newTestStore(ttl time.Duration) (*SessionStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := NewSessionStore(apiclient.New(""), ttl, nil)
	store.now = clock.Now
	return store, clock
}

func TestAcquireReusesKnownSession(t *testing.T) {
	store, _ := newTestStore(time.Hour)

	first, fresh := store.Acquire("")
	require.True(t, fresh)
	assert.NotEmpty(t, first.ID)

	again, fresh := store.Acquire(first.ID)
	assert.False(t, fresh)
	assert.Same(t, first, again)
	assert.Equal(t, 1, store.Len())
}

func TestAcquireUnknownIDCreatesSession(t *testing.T) {
	store, _ := newTestStore(time.Hour)

	session, fresh := store.Acquire("not-a-session")

	assert.True(t, fresh)
	assert.NotEqual(t, "not-a-session", session.ID)
}

func TestIdleSessionsAreEvicted(t *testing.T) {
	store, clock := newTestStore(time.Hour)
	idle, _ := store.Acquire("")
	active, _ := store.Acquire("")

	clock.now = clock.now.Add(40 * time.Minute)
	store.Acquire(active.ID)
	clock.now = clock.now.Add(40 * time.Minute)

	assert.Equal(t, 1, store.Len())
	_, fresh := store.Acquire(active.ID)
	assert.False(t, fresh)

	replacement, fresh := store.Acquire(idle.ID)
	assert.True(t, fresh)
	assert.NotEqual(t, idle.ID, replacement.ID)
}

func TestSessionViewsAreIndependent(t *testing.T) {
	store, _ := newTestStore(time.Hour)
	a, _ := store.Acquire("")
	b, _ := store.Acquire("")

	a.Triggers.RequestDelete(3)

	_, pending := b.Triggers.Snapshot().PendingDelete()
	assert.False(t, pending)
	_, bound := a.Jokes.Scope()
	assert.False(t, bound)
}

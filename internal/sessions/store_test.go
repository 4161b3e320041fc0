package sessions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarpov/rapport/internal/services"
)

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(time.Hour)

	created := store.Create(services.ParseResult{})
	require.NotEmpty(t, created.ID)

	got, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = store.Get("no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ExpiryAndCleanup(t *testing.T) {
	store := NewStore(time.Hour)
	current := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	old := store.Create(services.ParseResult{})

	current = current.Add(30 * time.Minute)
	fresh := store.Create(services.ParseResult{})

	// Past the first session's deadline, before the second's
	current = current.Add(45 * time.Minute)

	_, err := store.Get(old.ID)
	assert.ErrorIs(t, err, ErrNotFound, "expired session must not be served even before the sweep")

	removed := store.Cleanup()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())

	_, err = store.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestStore_Delete(t *testing.T) {
	store := NewStore(time.Hour)
	s := store.Create(services.ParseResult{})

	store.Delete(s.ID)

	_, err := store.Get(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.Len())
}

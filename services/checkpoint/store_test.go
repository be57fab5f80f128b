package checkpoint

import (
	"context"
	"testing"

	"wanderly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "t1")
	assert.ErrorIs(t, err, ErrNotFound)

	st := models.NewTravelState("t1", "u1")
	st.AddUser("I want to go to Lisbon")
	st.Requirements.Destination = "Lisbon"
	require.NoError(t, store.Put(ctx, st))

	got, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", got.Requirements.Destination)
	assert.Len(t, got.Messages, 1)

	require.NoError(t, store.Delete(ctx, "t1"))
	_, err = store.Get(ctx, "t1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	st := models.NewTravelState("t1", "")
	st.AddUser("hello")
	require.NoError(t, store.Put(ctx, st))

	// Mutations after Put must not reach the stored copy.
	st.AddUser("second")
	st.Step = models.StepPlan

	got, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, got.Messages, 1)
	assert.Equal(t, models.StepCollect, got.Step)

	got.Messages[0].Content = "changed"
	again, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "hello", again.Messages[0].Content)
}

func TestNewSelectsBackend(t *testing.T) {
	s, err := New(BackendMemory, Deps{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = New(BackendRedis, Deps{})
	assert.Error(t, err)

	_, err = New(BackendMongo, Deps{})
	assert.Error(t, err)

	_, err = New("etcd", Deps{})
	assert.Error(t, err)
}

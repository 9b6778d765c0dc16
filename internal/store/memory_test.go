package store

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/pathmem/apps/go-server/internal/game"
)

func TestMemoryStoreRoundtrip(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	gen := game.NewPathGenerator(rand.New(rand.NewSource(1)))
	r, err := game.NewRound(game.DefaultGrid(), gen)
	require.NoError(t, err)

	require.NoError(t, st.Save(ctx, r))
	got, err := st.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Same(t, r, got)
}

func TestMemoryStoreMissing(t *testing.T) {
	st := NewMemoryStore()
	_, err := st.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

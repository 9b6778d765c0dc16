package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRound builds a reproducible round on the default grid.
func newTestRound(t *testing.T, seed int64) *Round {
	t.Helper()
	gen := NewPathGenerator(rand.New(rand.NewSource(seed)))
	r, err := NewRound(DefaultGrid(), gen)
	require.NoError(t, err)
	return r
}

// offPathCells returns n cells that are not part of the round's path.
func offPathCells(r *Round, n int) []int {
	onPath := make(map[int]struct{}, len(r.Path))
	for _, c := range r.Path {
		onPath[c] = struct{}{}
	}
	out := make([]int, 0, n)
	for c := 0; c < r.Width*r.Height && len(out) < n; c++ {
		if _, ok := onPath[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

func TestNewRoundOpensMemorize(t *testing.T) {
	r := newTestRound(t, 11)
	assert.Equal(t, ModeMemorize, r.Mode)
	assert.Len(t, r.Path, DefaultGrid().Length)
	assert.NotEmpty(t, r.ID)
	assert.False(t, r.StartedAt.IsZero())

	// The path is visible in the snapshot while memorizing, hidden after.
	snap := r.Snapshot()
	assert.Equal(t, r.Path, snap.Path)
	require.NoError(t, r.StartRecall())
	assert.Nil(t, r.Snapshot().Path)
}

func TestRoundWinOnFullCoverage(t *testing.T) {
	r := newTestRound(t, 12)
	require.NoError(t, r.StartRecall())

	for i, cell := range r.Path {
		correct, state, err := r.Select(cell)
		require.NoError(t, err)
		assert.True(t, correct)
		if i < len(r.Path)-1 {
			assert.Equal(t, "recall", state)
		} else {
			assert.Equal(t, "won", state)
		}
	}
	assert.True(t, r.Finished)
	assert.True(t, r.Won)
	assert.Equal(t, 0, r.Remaining())
	assert.GreaterOrEqual(t, r.ElapsedMs, 0)

	// No input accepted after the round is over.
	_, _, err := r.Select(r.Path[0])
	assert.ErrorIs(t, err, ErrRoundFinished)
}

func TestRoundMissBudgetLoses(t *testing.T) {
	r := newTestRound(t, 13)
	require.NoError(t, r.StartRecall())

	wrong := offPathCells(r, 3)
	require.Len(t, wrong, 3)

	for i, cell := range wrong {
		correct, state, err := r.Select(cell)
		require.NoError(t, err)
		assert.False(t, correct)
		if i < 2 {
			assert.Equal(t, "recall", state)
		} else {
			assert.Equal(t, "lost", state)
		}
	}
	assert.True(t, r.Finished)
	assert.False(t, r.Won)
}

func TestSelectionOrderDoesNotMatter(t *testing.T) {
	r := newTestRound(t, 14)
	require.NoError(t, r.StartRecall())

	// Walk the path backwards; membership is all that counts.
	for i := len(r.Path) - 1; i >= 0; i-- {
		correct, _, err := r.Select(r.Path[i])
		require.NoError(t, err)
		assert.True(t, correct)
	}
	assert.True(t, r.Won)
}

func TestRepeatSelectIsNoOp(t *testing.T) {
	r := newTestRound(t, 15)
	require.NoError(t, r.StartRecall())

	cell := r.Path[0]
	for i := 0; i < 3; i++ {
		correct, _, err := r.Select(cell)
		require.NoError(t, err)
		assert.True(t, correct)
	}
	assert.Len(t, r.Found, 1)
	assert.Equal(t, 0, r.Misses)
}

func TestSelectValidation(t *testing.T) {
	r := newTestRound(t, 16)

	// Before recall starts.
	_, _, err := r.Select(r.Path[0])
	assert.ErrorIs(t, err, ErrWrongPhase)

	require.NoError(t, r.StartRecall())
	_, _, err = r.Select(-1)
	assert.ErrorIs(t, err, ErrCellOutOfGrid)
	_, _, err = r.Select(r.Width * r.Height)
	assert.ErrorIs(t, err, ErrCellOutOfGrid)
}

func TestPeekOnlyDuringRecall(t *testing.T) {
	r := newTestRound(t, 17)

	_, err := r.Peek()
	assert.ErrorIs(t, err, ErrWrongPhase)

	require.NoError(t, r.StartRecall())
	path, err := r.Peek()
	require.NoError(t, err)
	assert.Equal(t, r.Path, path)
	assert.Equal(t, 1, r.Peeks)

	_, err = r.Peek()
	require.NoError(t, err)
	assert.Equal(t, 2, r.Peeks)
}

func TestStartRecallOnce(t *testing.T) {
	r := newTestRound(t, 18)
	require.NoError(t, r.StartRecall())
	assert.ErrorIs(t, r.StartRecall(), ErrWrongPhase)
}

func TestReset(t *testing.T) {
	r := newTestRound(t, 19)
	require.NoError(t, r.StartRecall())
	_, _, err := r.Select(r.Path[0])
	require.NoError(t, err)
	_, err = r.Peek()
	require.NoError(t, err)

	r.Reset()
	assert.Equal(t, ModeIdle, r.Mode)
	assert.Equal(t, "idle", r.State())
	assert.Nil(t, r.Path)
	assert.Empty(t, r.Found)
	assert.Equal(t, 0, r.Misses)
	assert.Equal(t, 0, r.Peeks)
	assert.False(t, r.Finished)
}

// apps/go-server/internal/game/engine.go
//
// Core game engine for a single Pathmem round.
// Responsibilities:
//   - Create new rounds: one generated path per round, immutable after.
//   - Drive phase transitions: memorize → recall → won/lost, plus reset.
//   - Track player progress: found cells, misses, peeks, recall time.
//
// Notes:
//   - Path generation lives in path.go; the engine calls Generate exactly
//     once, when the round is created.
//   - Recall is order-independent: a selection is correct iff the cell is
//     on the path; the round is won once every path cell has been found.
//   - randomID() is a compact hex identifier for correlating server state.

package game

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sort"
	"time"
)

// missBudget is how many wrong selections a round tolerates before it is
// lost.
const missBudget = 3

var (
	ErrRoundFinished = errors.New("round finished")
	ErrWrongPhase    = errors.New("operation not valid in this phase")
	ErrCellOutOfGrid = errors.New("cell index outside the grid")
)

// NewRound generates a path for cfg and opens the memorize phase.
// A nil gen gets a time-seeded generator; the daily mode passes a
// deterministic one.
func NewRound(cfg GridConfig, gen *PathGenerator) (*Round, error) {
	if gen == nil {
		gen = NewPathGenerator(nil)
	}
	path, err := gen.Generate(cfg)
	if err != nil {
		return nil, err
	}
	set := make(map[int]struct{}, len(path))
	for _, c := range path {
		set[c] = struct{}{}
	}
	return &Round{
		ID:        randomID(),
		Width:     cfg.Width,
		Height:    cfg.Height,
		Path:      path,
		Mode:      ModeMemorize,
		Found:     make(map[int]struct{}),
		StartedAt: time.Now(),
		pathSet:   set,
	}, nil
}

// StartRecall hides the path and starts the recall clock.
func (r *Round) StartRecall() error {
	if r.Finished {
		return ErrRoundFinished
	}
	if r.Mode != ModeMemorize {
		return ErrWrongPhase
	}
	r.Mode = ModeRecall
	r.RecallAt = time.Now()
	return nil
}

// Peek re-reveals the path during recall and counts against the player.
// Returns the path so the client can flash it.
func (r *Round) Peek() ([]int, error) {
	if r.Finished {
		return nil, ErrRoundFinished
	}
	if r.Mode != ModeRecall {
		return nil, ErrWrongPhase
	}
	r.Peeks++
	return r.Path, nil
}

// Select checks one tile during recall, mutating round state.
// Returns: whether the cell is on the path, the new state string
// ("recall"/"won"/"lost"), or an error.
//
// Rules:
//   - Round must be in recall and not finished.
//   - Cell must be a valid index for the grid.
//   - Re-selecting an already found cell is a correct no-op.
//   - Finding the last path cell wins; the miss budget running out loses.
func (r *Round) Select(cell int) (bool, string, error) {
	if r.Finished {
		return false, r.State(), ErrRoundFinished
	}
	if r.Mode != ModeRecall {
		return false, r.State(), ErrWrongPhase
	}
	if cell < 0 || cell >= r.Width*r.Height {
		return false, r.State(), ErrCellOutOfGrid
	}

	if _, onPath := r.pathSet[cell]; !onPath {
		r.Misses++
		if r.Misses >= missBudget {
			r.finish(false)
		}
		return false, r.State(), nil
	}

	r.Found[cell] = struct{}{}
	if len(r.Found) == len(r.Path) {
		r.finish(true)
	}
	return true, r.State(), nil
}

// Reset returns the round to idle, discarding the path and all progress.
func (r *Round) Reset() {
	r.Path = nil
	r.pathSet = nil
	r.Found = make(map[int]struct{})
	r.Misses = 0
	r.Peeks = 0
	r.Mode = ModeIdle
	r.RecallAt = time.Time{}
	r.ElapsedMs = 0
	r.Finished = false
	r.Won = false
}

// Remaining reports how many path cells are still to be found.
func (r *Round) Remaining() int { return len(r.Path) - len(r.Found) }

// finish closes the round and freezes the recall clock.
func (r *Round) finish(won bool) {
	r.Finished = true
	r.Won = won
	if !r.RecallAt.IsZero() {
		r.ElapsedMs = int(time.Since(r.RecallAt).Milliseconds())
	}
}

// State reports a coarse string representation of the current round state.
func (r *Round) State() string {
	if r.Finished {
		if r.Won {
			return "won"
		}
		return "lost"
	}
	return string(r.Mode)
}

// Snapshot projects the round into its client-facing view. The path is
// only included while the round is in the memorize phase.
func (r *Round) Snapshot() Snapshot {
	found := make([]int, 0, len(r.Found))
	for c := range r.Found {
		found = append(found, c)
	}
	sort.Ints(found)

	s := Snapshot{
		RoundID:   r.ID,
		Width:     r.Width,
		Height:    r.Height,
		Length:    len(r.Path),
		State:     r.State(),
		Found:     found,
		Remaining: r.Remaining(),
		Misses:    r.Misses,
		Peeks:     r.Peeks,
		ElapsedMs: r.ElapsedMs,
	}
	if r.Mode == ModeMemorize {
		s.Path = r.Path
	}
	return s
}

// randomID returns a compact 16-hex-char identifier.
// Collisions are extremely unlikely given crypto/rand entropy.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// apps/go-server/internal/game/types.go
//
// Core type definitions for the Pathmem game engine.
// Defines:
//   - Mode: phase of a round (idle/memorize/recall).
//   - Round: state for a single in-progress or finished round.
//   - Snapshot: client-facing projection of a Round.

package game

import "time"

// Mode represents the phase a round is currently in.
// Possible values:
//   - "idle":     round exists but play has not started (post-reset).
//   - "memorize": the path is shown; the player studies it.
//   - "recall":   the path is hidden; the player reproduces it.
type Mode string

const (
	ModeIdle     Mode = "idle"
	ModeMemorize Mode = "memorize"
	ModeRecall   Mode = "recall"
)

// Round holds the state of a single memory-path round session.
type Round struct {
	ID        string           // Unique round identifier (random hex string).
	Width     int              // Grid width in cells.
	Height    int              // Grid height in cells.
	Path      []int            // The pattern to memorize; immutable for the round.
	Mode      Mode             // Current phase.
	Found     map[int]struct{} // Path cells the player has correctly selected.
	Misses    int              // Wrong selections so far.
	Peeks     int              // Times the player re-revealed the path.
	StartedAt time.Time        // When the memorize phase opened.
	RecallAt  time.Time        // When recall started (zero until then).
	ElapsedMs int              // Recall duration, set once the round finishes.
	Finished  bool             // True once the round is over (won or lost).
	Won       bool             // True if the round finished with a win.

	pathSet map[int]struct{} // membership index over Path
}

// Snapshot is the serializable view of a round sent to clients, both in
// HTTP responses and over the watch feed. The path is only included while
// it is legitimately visible (memorize phase).
type Snapshot struct {
	RoundID   string `json:"roundId"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Length    int    `json:"length"`
	State     string `json:"state"`
	Path      []int  `json:"path,omitempty"`
	Found     []int  `json:"found"`
	Remaining int    `json:"remaining"`
	Misses    int    `json:"misses"`
	Peeks     int    `json:"peeks"`
	ElapsedMs int    `json:"elapsedMs"`
}

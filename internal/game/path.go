// apps/go-server/internal/game/path.go
//
// Random path generation for the Pathmem grid.
// Responsibilities:
//   - Produce a fixed-length self-avoiding walk over a W×H grid.
//   - Keep the walk visually unambiguous: no two non-consecutive cells may
//     touch orthogonally, so the rendered pattern reads as a single thread.
//   - Bound the randomized search (backtracks per attempt, outer attempts)
//     and fall back to a deterministic snake path when it is exhausted.
//
// Notes:
//   - Cells are addressed as row-major indices, idx = y*Width + x.
//   - Randomness is injected (*rand.Rand) so tests can seed it.

package game

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"
)

const (
	defaultWidth  = 12
	defaultHeight = 8
	defaultLength = 36

	// Search bounds. One attempt may undo at most maxBacktracks steps;
	// the whole generation restarts from a fresh start cell up to
	// maxAttempts times before giving up on the randomized search.
	maxAttempts   = 200
	maxBacktracks = 1000

	// Candidates are ranked by lookahead score and the next step is drawn
	// uniformly from the best topK survivors.
	topK = 3
)

// Configuration errors, reported before any search begins.
var (
	ErrBadDimensions = errors.New("grid dimensions must be positive")
	ErrBadLength     = errors.New("path length must be positive and fit the grid")
)

// GridConfig describes the board and target path length for one round.
type GridConfig struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Length int `json:"length"`
}

// DefaultGrid returns the standard 12×8 board with a 36-cell path.
func DefaultGrid() GridConfig {
	return GridConfig{Width: defaultWidth, Height: defaultHeight, Length: defaultLength}
}

// Validate rejects impossible configurations. A length exceeding the cell
// count can never be generated and is a caller error, not a search failure.
func (c GridConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: got %dx%d", ErrBadDimensions, c.Width, c.Height)
	}
	if c.Length <= 0 || c.Length > c.Width*c.Height {
		return fmt.Errorf("%w: length %d on a %dx%d grid", ErrBadLength, c.Length, c.Width, c.Height)
	}
	return nil
}

func (c GridConfig) cells() int { return c.Width * c.Height }

// PathGenerator produces the tile sequence a round asks the player to
// memorize.
type PathGenerator struct {
	rng *rand.Rand
}

// NewPathGenerator builds a generator around rng.
// A nil rng gets a time-seeded source; tests pass a seeded one for
// reproducible paths.
func NewPathGenerator(rng *rand.Rand) *PathGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &PathGenerator{rng: rng}
}

// Generate returns cfg.Length distinct cell indices forming a path in
// which consecutive cells are orthogonally adjacent and non-consecutive
// cells never are. When the randomized search exhausts its attempts the
// deterministic snake fallback is returned instead; Generate never fails
// on a valid configuration.
func (g *PathGenerator) Generate(cfg GridConfig) ([]int, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if p := g.walk(cfg); p != nil {
			return p, nil
		}
	}
	return snakePath(cfg), nil
}

// walk runs one bounded self-avoiding walk attempt.
// Returns nil when the walk dead-ends back at its start cell or burns the
// backtrack budget.
func (g *PathGenerator) walk(cfg GridConfig) []int {
	visited := make([]bool, cfg.cells())
	start := g.interiorStart(cfg)
	path := make([]int, 1, cfg.Length)
	path[0] = start
	visited[start] = true

	backtracks := 0
	for len(path) < cfg.Length && backtracks < maxBacktracks {
		head := path[len(path)-1]
		next, ok := g.step(cfg, visited, head, cfg.Length-len(path))
		if !ok {
			// Dead end: undo the last step and try elsewhere.
			if len(path) == 1 {
				return nil
			}
			visited[head] = false
			path = path[:len(path)-1]
			backtracks++
			continue
		}
		visited[next] = true
		path = append(path, next)
	}
	if len(path) < cfg.Length {
		return nil
	}
	return path
}

// step picks the next cell from head, or reports false when no candidate
// survives. remaining is the number of cells the walk still has to add.
func (g *PathGenerator) step(cfg GridConfig, visited []bool, head, remaining int) (int, bool) {
	cands := validNeighbors(cfg, visited, head)
	if len(cands) == 0 {
		return 0, false
	}
	if len(cands) == 1 {
		return cands[0], true
	}

	// Score each candidate by how many exits it would have after being
	// committed (lookahead depth 1). Zero-exit candidates are traps and
	// are discarded, except near the target length where the walk no
	// longer needs an exit.
	type scored struct{ cell, exits int }
	nearDone := remaining <= 2
	survivors := make([]scored, 0, len(cands))
	for _, c := range cands {
		visited[c] = true
		exits := len(validNeighbors(cfg, visited, c))
		visited[c] = false
		if exits == 0 && !nearDone {
			continue
		}
		survivors = append(survivors, scored{cell: c, exits: exits})
	}
	if len(survivors) == 0 {
		return 0, false
	}

	// Greedy but not deterministic: draw uniformly among the best few so
	// paths stay visually varied.
	sort.Slice(survivors, func(i, j int) bool { return survivors[i].exits > survivors[j].exits })
	k := topK
	if len(survivors) < k {
		k = len(survivors)
	}
	return survivors[g.rng.Intn(k)].cell, true
}

var dirs = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// validNeighbors lists the cells the walk may step to from head: in
// bounds, unvisited, and touching no committed cell other than head
// itself. The last condition is what keeps the rendered path a single
// unambiguous thread.
func validNeighbors(cfg GridConfig, visited []bool, head int) []int {
	out := make([]int, 0, 4)
	hx, hy := head%cfg.Width, head/cfg.Width
	for _, d := range dirs {
		nx, ny := hx+d[0], hy+d[1]
		if nx < 0 || nx >= cfg.Width || ny < 0 || ny >= cfg.Height {
			continue
		}
		n := ny*cfg.Width + nx
		if visited[n] || touchesCommitted(cfg, visited, n, head) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// touchesCommitted reports whether cell has a committed 4-neighbor other
// than except. Stepping onto such a cell would close a visual loop.
func touchesCommitted(cfg GridConfig, visited []bool, cell, except int) bool {
	cx, cy := cell%cfg.Width, cell/cfg.Width
	for _, d := range dirs {
		nx, ny := cx+d[0], cy+d[1]
		if nx < 0 || nx >= cfg.Width || ny < 0 || ny >= cfg.Height {
			continue
		}
		n := ny*cfg.Width + nx
		if n != except && visited[n] {
			return true
		}
	}
	return false
}

// interiorStart picks a random start cell off the outer ring, which keeps
// early branching options open. Grids too small to have an interior fall
// back to any cell.
func (g *PathGenerator) interiorStart(cfg GridConfig) int {
	if cfg.Width < 3 || cfg.Height < 3 {
		return g.rng.Intn(cfg.cells())
	}
	x := 1 + g.rng.Intn(cfg.Width-2)
	y := 1 + g.rng.Intn(cfg.Height-2)
	return y*cfg.Width + x
}

// snakePath is the deterministic fallback: boustrophedon rows starting at
// (0,0), truncated at cfg.Length. Consecutive cells always touch, but
// cells in neighboring rows may touch too, so the strict no-touch rule
// does not hold here. Accepted limitation so a round can always start.
func snakePath(cfg GridConfig) []int {
	out := make([]int, 0, cfg.Length)
	for y := 0; y < cfg.Height && len(out) < cfg.Length; y++ {
		if y%2 == 0 {
			for x := 0; x < cfg.Width && len(out) < cfg.Length; x++ {
				out = append(out, y*cfg.Width+x)
			}
		} else {
			for x := cfg.Width - 1; x >= 0 && len(out) < cfg.Length; x-- {
				out = append(out, y*cfg.Width+x)
			}
		}
	}
	return out
}

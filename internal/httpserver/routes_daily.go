// apps/go-server/internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes endpoints under /daily:
//   - POST /daily/new         → start today's round (creates or reuses session)
//   - POST /daily/recall      → hide the path, start the recall clock
//   - POST /daily/peek        → re-reveal the path (counted)
//   - POST /daily/select      → select a tile in today's round
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// Each user can play once per day (enforced by DB + in-memory session).
// Sessions are held in memory for active play and persisted to DB on finish.
// Deterministic path selection is based on date + salt: the RNG seed is
// HMAC(salt, date), so every player reproduces the same path.

package httpserver

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pathmem/apps/go-server/internal/daily"
	"github.com/robalobadob/pathmem/apps/go-server/internal/game"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	sessions map[string]*dailySession // active sessions keyed by userID|date
	mu       sync.Mutex               // guards sessions
}

// dailySession holds transient in-memory state for an in-progress daily round.
type dailySession struct {
	UserID string
	Date   string
	Round  *game.Round
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     getEnv("DAILY_SALT", "local_dev_salt"),
		sessions: make(map[string]*dailySession),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/recall", dd.handleRecall)
		r.Post("/peek", dd.handlePeek)
		r.Post("/select", dd.handleSelect)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// todayRound returns today's date key and a freshly generated daily round.
// Every call for the same date produces the identical path.
func (d *dailyServer) todayRound() (string, *game.Round, error) {
	now := time.Now().UTC()
	date := daily.DateKey(now)
	rng := rand.New(rand.NewSource(daily.PathSeed(now, d.salt)))
	g, err := game.NewRound(game.DefaultGrid(), game.NewPathGenerator(rng))
	return date, g, err
}

// userIDWithAnon returns the authenticated user ID if logged in,
// otherwise ensures an anonymous ID via Server.ensureAnonID.
func (d *dailyServer) userIDWithAnon(w http.ResponseWriter, r *http.Request) (string, bool) {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return me.ID, true
	}
	return d.srv.ensureAnonID(w, r), true
}

// session finds the live daily session for uid on date.
func (d *dailyServer) session(uid, date string) (*dailySession, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sess, ok := d.sessions[uid+"|"+date]
	return sess, ok
}

// -----------------------------------------------------------------------------
// /daily/new

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	Date   string         `json:"date"`
	Played bool           `json:"played"`
	Round  *game.Snapshot `json:"round,omitempty"`
}

// handleNew creates or reuses a daily session for the current date.
// - If user already has a DB row for today → return Played=true.
// - Otherwise create/reuse an in-memory session and return the snapshot.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid, ok := d.userIDWithAnon(w, r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	date := daily.DateKey(time.Now().UTC())

	// Check if already played (persisted in DB).
	if played, err := d.store.AlreadyPlayed(r.Context(), uid, date); err == nil && played {
		_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Played: true})
		return
	}

	// Reuse or create session in memory.
	key := uid + "|" + date
	d.mu.Lock()
	if sess, ok := d.sessions[key]; ok {
		d.mu.Unlock()
		snap := sess.Round.Snapshot()
		_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Round: &snap})
		return
	}
	d.mu.Unlock()

	_, round, err := d.todayRound()
	if err != nil {
		log.Error().Err(err).Msg("generate daily round")
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	sess := &dailySession{UserID: uid, Date: date, Round: round}

	d.mu.Lock()
	if existing, ok := d.sessions[key]; ok {
		sess = existing
	} else {
		d.sessions[key] = sess
	}
	d.mu.Unlock()

	snap := sess.Round.Snapshot()
	_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Round: &snap})
}

// -----------------------------------------------------------------------------
// /daily/recall + /daily/peek

// dailySessionOr404 resolves the caller's live session or writes an error.
func (d *dailyServer) dailySessionOr404(w http.ResponseWriter, r *http.Request) (*dailySession, bool) {
	uid, ok := d.userIDWithAnon(w, r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	date := daily.DateKey(time.Now().UTC())
	sess, ok := d.session(uid, date)
	if !ok {
		http.Error(w, "no session", http.StatusConflict)
		return nil, false
	}
	return sess, true
}

// handleRecall starts the recall phase of today's round.
func (d *dailyServer) handleRecall(w http.ResponseWriter, r *http.Request) {
	sess, ok := d.dailySessionOr404(w, r)
	if !ok {
		return
	}
	d.mu.Lock()
	err := sess.Round.StartRecall()
	snap := sess.Round.Snapshot()
	d.mu.Unlock()
	if err != nil {
		http.Error(w, "invalid phase", http.StatusConflict)
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}

// handlePeek re-reveals today's path; peeks count on the leaderboard.
func (d *dailyServer) handlePeek(w http.ResponseWriter, r *http.Request) {
	sess, ok := d.dailySessionOr404(w, r)
	if !ok {
		return
	}
	d.mu.Lock()
	path, err := sess.Round.Peek()
	peeks := sess.Round.Peeks
	d.mu.Unlock()
	if err != nil {
		http.Error(w, "invalid phase", http.StatusConflict)
		return
	}
	_ = json.NewEncoder(w).Encode(peekRes{Path: path, Peeks: peeks})
}

// -----------------------------------------------------------------------------
// /daily/select

// dailySelectReq is the request payload for /daily/select.
type dailySelectReq struct {
	Cell int `json:"cell"`
}

// dailySelectRes is the response payload for /daily/select.
type dailySelectRes struct {
	Correct   bool   `json:"correct"`
	State     string `json:"state"` // recall | won | lost | locked
	Remaining int    `json:"remaining"`
	Misses    int    `json:"misses"`
}

// handleSelect applies a tile selection to today's daily session.
// - Rejects if no session exists.
// - Returns state "locked" once the session has finished.
// - Persists the result to DB when the round ends, win or lose.
func (d *dailyServer) handleSelect(w http.ResponseWriter, r *http.Request) {
	sess, ok := d.dailySessionOr404(w, r)
	if !ok {
		return
	}

	var p dailySelectReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	d.mu.Lock()
	if sess.Round.Finished {
		res := dailySelectRes{State: "locked", Remaining: sess.Round.Remaining(), Misses: sess.Round.Misses}
		d.mu.Unlock()
		_ = json.NewEncoder(w).Encode(res)
		return
	}
	correct, state, err := sess.Round.Select(p.Cell)
	won := sess.Round.Finished && sess.Round.Won
	result := daily.Result{
		UserID:    sess.UserID,
		Date:      sess.Date,
		Peeks:     sess.Round.Peeks,
		Misses:    sess.Round.Misses,
		ElapsedMs: sess.Round.ElapsedMs,
	}
	res := dailySelectRes{Correct: correct, State: state, Remaining: sess.Round.Remaining(), Misses: sess.Round.Misses}
	d.mu.Unlock()

	if err != nil {
		http.Error(w, "invalid", http.StatusBadRequest)
		return
	}

	// Persist once per session, on a win (losses are not ranked).
	if won {
		if err := d.store.InsertResult(r.Context(), result); err != nil {
			log.Warn().Err(err).Str("user", result.UserID).Msg("insert daily result")
		}
	}
	_ = json.NewEncoder(w).Encode(res)
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now().UTC())
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}

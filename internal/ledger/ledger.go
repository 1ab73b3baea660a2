package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mroshb/quizbot/internal/models"
	"github.com/mroshb/quizbot/pkg/errors"
	"github.com/mroshb/quizbot/pkg/logger"
)

// DefaultLimit is the leaderboard size used when callers pass no limit.
const DefaultLimit = 10

// Store persists the ledger document. Implementations must be safe for use by
// a single Ledger; the Ledger serializes calls.
type Store interface {
	// Load returns the stored ledger, or nil with no error when nothing has
	// been stored yet.
	Load(ctx context.Context) (*models.Ledger, error)
	// PutScore writes one player's current totals.
	PutScore(ctx context.Context, period string, entry models.ScoreEntry) error
	// Reset drops all rooms and records period as the active one.
	Reset(ctx context.Context, period string) error
}

// Ledger is the period scoped scoreboard shared by all rooms. Every change is
// written through to the Store before the call returns.
type Ledger struct {
	mu    sync.Mutex
	state *models.Ledger
	store Store
	now   func() time.Time
}

type Option func(*Ledger)

// WithClock overrides the time source used for periods.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// Open loads the ledger from store. Missing or corrupt state is replaced by an
// empty ledger for the current period. Any other load failure also starts
// empty, but in memory only, so the stored ledger is left untouched. Open
// never fails.
func Open(ctx context.Context, store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	state, err := store.Load(ctx)
	switch {
	case err != nil && !errors.IsCode(err, errors.ErrCodeCorruptLedger):
		l.state = models.NewLedger(models.PeriodOf(l.now()))
		logger.Error("Failed to load ledger, starting empty without touching the store",
			"period", l.state.Period, "error", err)
		return l
	case err != nil:
		logger.Warn("Stored ledger is corrupt, starting empty", "error", err)
		state = nil
	case state != nil:
		if verr := state.Validate(); verr != nil {
			logger.Warn("Stored ledger is invalid, starting empty", "error", verr)
			state = nil
		}
	}

	if state == nil {
		state = models.NewLedger(models.PeriodOf(l.now()))
		if err := store.Reset(ctx, state.Period); err != nil {
			logger.Error("Failed to persist empty ledger", "period", state.Period, "error", err)
		}
		logger.Info("Ledger initialized", "period", state.Period)
	} else {
		logger.Info("Ledger loaded", "period", state.Period, "rooms", len(state.Groups))
	}

	l.state = state
	return l
}

// AddScore records name for the player and adds delta to their points. The
// in-memory total is updated even when persisting fails; the returned error
// is then a PersistenceFailure that has already been logged.
func (l *Ledger) AddScore(ctx context.Context, roomID, userID int64, displayName string, delta int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	g := l.state.Group(roomID)
	g.Names[userID] = displayName

	points := g.Points[userID] + delta
	if points < 0 {
		points = 0
	}
	g.Points[userID] = points

	entry := models.ScoreEntry{
		RoomID:      roomID,
		UserID:      userID,
		Points:      points,
		DisplayName: displayName,
	}
	if err := l.store.PutScore(ctx, l.state.Period, entry); err != nil {
		logger.Error("Failed to persist score",
			"room_id", roomID,
			"user_id", userID,
			"points", points,
			"error", err,
		)
		return points, errors.Wrap(err, errors.ErrCodePersistenceFailure, "failed to persist score")
	}

	return points, nil
}

// Standing is one leaderboard row.
type Standing struct {
	Rank        int
	UserID      int64
	DisplayName string
	Points      int64
}

// Standings is a room's leaderboard. NoScores is set when the room has no
// entries for the period.
type Standings struct {
	Period   string
	NoScores bool
	Entries  []Standing
}

// TopRanked returns the room's players by descending points, ties broken by
// ascending display name, truncated to limit.
func (l *Ledger) TopRanked(roomID int64, limit int) Standings {
	if limit <= 0 {
		limit = DefaultLimit
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	out := Standings{Period: l.state.Period}
	g, ok := l.state.Groups[roomID]
	if !ok || g == nil || len(g.Points) == 0 {
		out.NoScores = true
		return out
	}

	entries := make([]Standing, 0, len(g.Points))
	for userID, pts := range g.Points {
		entries = append(entries, Standing{
			UserID:      userID,
			DisplayName: RenderName(g.Names[userID], userID),
			Points:      pts,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.DisplayName != b.DisplayName {
			return a.DisplayName < b.DisplayName
		}
		return a.UserID < b.UserID
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	out.Entries = entries
	return out
}

// RenderName is the name shown for a player, falling back to their id.
func RenderName(name string, userID int64) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("Player %d", userID)
}

// RolloverIfNeeded clears every room when the current UTC month differs from
// the stored period. It reports whether a rollover happened.
func (l *Ledger) RolloverIfNeeded(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := models.PeriodOf(l.now())
	if current == l.state.Period {
		return false, nil
	}

	previous := l.state.Period
	l.state = models.NewLedger(current)
	logger.Info("Monthly ledger reset", "from", previous, "to", current)

	if err := l.store.Reset(ctx, current); err != nil {
		logger.Error("Failed to persist ledger reset", "period", current, "error", err)
		return true, errors.Wrap(err, errors.ErrCodePersistenceFailure, "failed to persist ledger reset")
	}
	return true, nil
}

// Period returns the active period.
func (l *Ledger) Period() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Period
}

// Snapshot returns a deep copy of the current document.
func (l *Ledger) Snapshot() *models.Ledger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Clone()
}

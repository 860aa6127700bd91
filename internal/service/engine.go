// Package service implements the XP engine: progression event processing,
// leaderboard aggregation, role reconciliation, and server settings.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/levelupapp/levelup-server/internal/cache"
	"github.com/levelupapp/levelup-server/internal/domain"
	"github.com/levelupapp/levelup-server/internal/errors"
	"github.com/levelupapp/levelup-server/internal/id"
	"github.com/levelupapp/levelup-server/internal/ratelimit"
	"github.com/levelupapp/levelup-server/internal/store"
	"github.com/levelupapp/levelup-server/internal/validation"
)

// upsertRetries bounds the record-write retry loop. Badger rarely fails a
// serialized write, but a transient failure must not silently drop an event.
const (
	upsertRetries     = 3
	upsertBackoffBase = 50 * time.Millisecond
)

// journalRecorder is the slice of the journal the engine needs. Nil-able:
// the engine runs without an audit trail when no journal is configured.
type journalRecorder interface {
	Record(ctx context.Context, entry *domain.JournalEntry) error
}

// ProgressionService processes XP events. Writes for the same (server, user)
// pair are serialized by a per-key mutex so read-modify-write cycles never
// interleave; different pairs proceed concurrently.
type ProgressionService struct {
	store      *store.Store
	journal    journalRecorder
	cache      *cache.ProgressCache
	messages   *cache.MessageRing
	cooldown   *ratelimit.KeyedLimiter
	roleSyncer RoleSyncer
	validate   *validation.Validator
	curve      domain.Curve
	logger     *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewProgressionService creates the XP engine. journal and cooldown may be
// nil; roleSyncer must not be.
func NewProgressionService(
	st *store.Store,
	journal journalRecorder,
	progressCache *cache.ProgressCache,
	messages *cache.MessageRing,
	cooldown *ratelimit.KeyedLimiter,
	roleSyncer RoleSyncer,
	curve domain.Curve,
	logger *slog.Logger,
) *ProgressionService {
	return &ProgressionService{
		store:      st,
		journal:    journal,
		cache:      progressCache,
		messages:   messages,
		cooldown:   cooldown,
		roleSyncer: roleSyncer,
		validate:   validation.New(),
		curve:      curve,
		logger:     logger,
		locks:      make(map[string]*sync.Mutex),
	}
}

// Curve returns the progression curve the engine runs on.
func (s *ProgressionService) Curve() domain.Curve {
	return s.curve
}

// keyLock returns the mutex serializing writes for one (server, user) pair.
func (s *ProgressionService) keyLock(serverID, userID string) *sync.Mutex {
	key := serverID + ":" + userID

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// GetProgress returns a user's record for one server, consulting the
// read-through cache first. Unknown users get the default record.
func (s *ProgressionService) GetProgress(ctx context.Context, serverID, userID string) (*domain.Progress, error) {
	if serverID == "" || userID == "" {
		return nil, errors.Validation("server ID and user ID are required")
	}

	if p, ok := s.cache.Get(serverID, userID); ok {
		return &p, nil
	}

	p, err := s.store.GetProgress(ctx, serverID, userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "loading progress record")
	}
	s.cache.Put(*p)
	return p, nil
}

// HandleMessage processes an organic chat message: records it for spam
// heuristics, applies the per-user cooldown, and on a pass awards message XP.
// A cooled-down message returns the current standing with both transition
// flags false and awarded=false.
func (s *ProgressionService) HandleMessage(ctx context.Context, ev domain.Event, msg cache.Message) (*domain.Result, bool, error) {
	if err := s.validate.Validate(ev); err != nil {
		return nil, false, err
	}
	if ev.DirectSet {
		return nil, false, errors.Validation("direct-set events must use the admin override")
	}

	s.messages.Record(ev.UserID, msg)

	if s.cooldown != nil && !s.cooldown.Allow(ev.ServerID+":"+ev.UserID) {
		current, err := s.GetProgress(ctx, ev.ServerID, ev.UserID)
		if err != nil {
			return nil, false, err
		}
		return &domain.Result{XP: current.XP, Level: current.Level}, false, nil
	}

	result, err := s.Apply(ctx, ev)
	if err != nil {
		return nil, false, err
	}
	return result, true, nil
}

// AdminSet replaces a user's XP, and optionally level, in one server scope.
// Used by moderation commands and the dashboard.
func (s *ProgressionService) AdminSet(ctx context.Context, serverID, userID string, xp int64, explicitLevel *int) (*domain.Result, error) {
	return s.Apply(ctx, domain.Event{
		ServerID:      serverID,
		UserID:        userID,
		XPDelta:       xp,
		DirectSet:     true,
		ExplicitLevel: explicitLevel,
	})
}

// Apply runs one progression event through the full pipeline: serialize on
// the record key, apply the curve, persist the record, fold the new total
// into the global ledger, journal the event, and hand any level transition
// to the role syncer.
func (s *ProgressionService) Apply(ctx context.Context, ev domain.Event) (*domain.Result, error) {
	if err := s.validate.Validate(ev); err != nil {
		return nil, err
	}
	if ev.ExplicitLevel != nil && !ev.DirectSet {
		return nil, errors.Validation("explicit level requires direct set")
	}

	lock := s.keyLock(ev.ServerID, ev.UserID)
	lock.Lock()
	defer lock.Unlock()

	current, err := s.store.GetProgress(ctx, ev.ServerID, ev.UserID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "loading progress record")
	}

	result := s.curve.ApplyEvent(*current, ev)

	updated := &domain.Progress{
		UserID:   ev.UserID,
		ServerID: ev.ServerID,
		XP:       result.XP,
		Level:    result.Level,
	}
	if err := s.upsertWithRetry(ctx, updated); err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "persisting progress record")
	}

	// The ledger update runs only after the record write is durable, so a
	// crash between the two leaves the ledger behind, never ahead. The next
	// event for this pair re-reports the full server total and converges it.
	total := s.curve.TotalXPForLevel(result.Level, result.XP)
	if _, err := s.store.ApplyContribution(ctx, ev.UserID, ev.ServerID, total); err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "updating global ledger")
	}

	s.cache.Put(*updated)
	s.recordJournal(ctx, ev, current.Level, result)

	if result.LeveledUp || result.LeveledDown {
		change := domain.RoleChange{
			ServerID:    ev.ServerID,
			UserID:      ev.UserID,
			NewLevel:    result.Level,
			LeveledUp:   result.LeveledUp,
			LeveledDown: result.LeveledDown,
		}
		if err := s.roleSyncer.Sync(ctx, change); err != nil {
			// Role I/O is downstream of committed state; it must never fail
			// the event.
			s.logger.Warn("role sync failed",
				"server_id", ev.ServerID,
				"user_id", ev.UserID,
				"error", err,
			)
		}
	}

	s.logger.Debug("progression event applied",
		"server_id", ev.ServerID,
		"user_id", ev.UserID,
		"level", result.Level,
		"xp", result.XP,
		"leveled_up", result.LeveledUp,
		"leveled_down", result.LeveledDown,
	)

	return &result, nil
}

// upsertWithRetry persists the record, retrying transient failures with
// linear backoff.
func (s *ProgressionService) upsertWithRetry(ctx context.Context, p *domain.Progress) error {
	var err error
	for attempt := 0; attempt < upsertRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(upsertBackoffBase * time.Duration(attempt)):
			}
		}
		if err = s.store.UpsertProgress(ctx, p); err == nil {
			return nil
		}
		s.logger.Warn("progress write failed, retrying",
			"server_id", p.ServerID,
			"user_id", p.UserID,
			"attempt", attempt+1,
			"error", err,
		)
	}
	return err
}

// recordJournal appends the event to the audit journal. Journal failures are
// logged and swallowed: the journal is an observability aid, not state.
func (s *ProgressionService) recordJournal(ctx context.Context, ev domain.Event, oldLevel int, result domain.Result) {
	if s.journal == nil {
		return
	}

	entry := &domain.JournalEntry{
		ID:        id.MustGenerate("evt"),
		ServerID:  ev.ServerID,
		UserID:    ev.UserID,
		XPDelta:   ev.XPDelta,
		DirectSet: ev.DirectSet,
		OldLevel:  oldLevel,
		NewLevel:  result.Level,
		NewXP:     result.XP,
		CreatedAt: time.Now(),
	}
	if err := s.journal.Record(ctx, entry); err != nil {
		s.logger.Warn("journal write failed", "event_id", entry.ID, "error", err)
	}
}

// RecentMessages returns the retained message history for a user.
func (s *ProgressionService) RecentMessages(userID string) []cache.Message {
	return s.messages.Recent(userID)
}

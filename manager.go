package access

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Manager owns the authoritative Session value for the process. It hydrates
// from the TokenStore at startup and every mutation persists before
// returning, so a crash immediately after Establish or Clear cannot leave
// memory and disk disagreeing in a way the next boot can't reconcile.
type Manager struct {
	mu          sync.RWMutex
	store       TokenStore
	session     Session
	subscribers map[SubscriptionID]Subscriber
	logger      Logger
	sink        ActivitySink
	now         func() time.Time
}

// ManagerOption customizes Manager construction.
type ManagerOption func(*Manager)

// WithManagerLogger overrides the default logger.
func WithManagerLogger(logger Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithManagerActivitySink sets the ActivitySink used to publish session events.
func WithManagerActivitySink(sink ActivitySink) ManagerOption {
	return func(m *Manager) {
		m.sink = normalizeActivitySink(sink)
	}
}

// WithManagerClock injects a custom clock (useful for tests).
func WithManagerClock(clock func() time.Time) ManagerOption {
	return func(m *Manager) {
		if clock != nil {
			m.now = clock
		}
	}
}

// NewManager returns a Manager backed by the given store. The store is
// required; the session stays anonymous until Initialize or Establish runs.
func NewManager(store TokenStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:       store,
		subscribers: map[SubscriptionID]Subscriber{},
		logger:      defLogger{},
		sink:        noopActivitySink{},
		now:         time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// Initialize derives the session from the TokenStore. An unreadable or
// corrupt store is a recoverable condition: the session comes up anonymous
// and the problem is logged, never returned. Calling Initialize again
// re-reads the store.
func (m *Manager) Initialize(ctx context.Context) error {
	stored, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn("session store unreadable, starting anonymous: %v", err)
		stored = nil
	}

	m.mu.Lock()
	if stored != nil {
		m.session = *stored
	} else {
		m.session = Session{}
	}
	m.mu.Unlock()

	return nil
}

// Establish validates and atomically replaces the session, persisting it
// before subscribers are notified. A payload failing validation is a caller
// error and leaves the current session untouched.
func (m *Manager) Establish(ctx context.Context, payload Session) error {
	if err := payload.Validate(); err != nil {
		return ErrInvalidSessionPayload.WithMetadata(map[string]any{
			"validation": err.Error(),
		})
	}

	if err := m.store.Save(ctx, payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist session")
	}

	m.mu.Lock()
	m.session = payload
	m.mu.Unlock()

	m.notify(payload)
	m.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventSessionEstablished,
		Actor:     ActorRef{ID: payload.UserID, Type: "user"},
		UserID:    payload.UserID,
		Metadata:  map[string]any{"role": payload.Role},
	})

	return nil
}

// UpdateIdentity merges profile fields into the established session. The
// active credential is preserved unless the update carries a replacement.
func (m *Manager) UpdateIdentity(ctx context.Context, update IdentityUpdate) error {
	if err := update.Validate(); err != nil {
		return ErrInvalidSessionPayload.WithMetadata(map[string]any{
			"validation": err.Error(),
		})
	}

	m.mu.Lock()
	if m.session.IsAnonymous() {
		m.mu.Unlock()
		return ErrNoActiveSession
	}
	merged := update.ApplyTo(m.session)
	m.mu.Unlock()

	if err := m.store.Save(ctx, merged); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist session")
	}

	m.mu.Lock()
	m.session = merged
	m.mu.Unlock()

	m.notify(merged)
	m.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventIdentityUpdated,
		Actor:     ActorRef{ID: merged.UserID, Type: "user"},
		UserID:    merged.UserID,
	})

	return nil
}

// Clear drops the session and the persisted credential. Clearing an already
// anonymous session is a no-op.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	if m.session.IsAnonymous() {
		m.mu.Unlock()
		return nil
	}
	dropped := m.session
	m.session = Session{}
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to clear session store")
	}

	m.notify(Session{})
	m.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventSessionCleared,
		Actor:     ActorRef{ID: dropped.UserID, Type: "user"},
		UserID:    dropped.UserID,
	})

	return nil
}

// Current returns an immutable snapshot of the live session. Callers
// comparing old and new states never observe mutation in place.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Subscribe registers a synchronous observer of session replacements.
func (m *Manager) Subscribe(fn Subscriber) SubscriptionID {
	id := uuid.New()
	if fn == nil {
		return id
	}

	m.mu.Lock()
	m.subscribers[id] = fn
	m.mu.Unlock()
	return id
}

// Unsubscribe removes a previously registered observer.
func (m *Manager) Unsubscribe(id SubscriptionID) {
	m.mu.Lock()
	delete(m.subscribers, id)
	m.mu.Unlock()
}

// Teardown drops all subscribers. The persisted session survives so the
// next Initialize can rehydrate it.
func (m *Manager) Teardown() {
	m.mu.Lock()
	m.subscribers = map[SubscriptionID]Subscriber{}
	m.mu.Unlock()
}

// notify runs outside the lock so observers may call Current.
func (m *Manager) notify(session Session) {
	m.mu.RLock()
	snapshot := make([]Subscriber, 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		snapshot = append(snapshot, fn)
	}
	m.mu.RUnlock()

	for _, fn := range snapshot {
		fn(session)
	}
}

func (m *Manager) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = m.now()
	}

	sink := normalizeActivitySink(m.sink)
	if err := sink.Record(ctx, event); err != nil {
		m.logger.Warn("manager activity sink error: %v", err)
	}
}

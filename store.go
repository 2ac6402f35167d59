package access

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// stateSchemaVersion guards stored payloads. A record written by a different
// schema is treated the same as a missing record: defaults, logged, never an
// error.
const stateSchemaVersion = 1

const (
	recordKeySession     = "session"
	recordKeyPreferences = "preferences"
)

// StateRecord is one durable console record: a versioned JSON payload keyed
// by name. Session and preferences are independent records; absence of
// either is a valid startup state.
type StateRecord struct {
	bun.BaseModel `bun:"table:console_state,alias:cs"`
	Key           string          `bun:"key,pk" json:"key"`
	Version       int             `bun:"version,notnull" json:"version"`
	Payload       json.RawMessage `bun:"payload,notnull" json:"payload"`
	UpdatedAt     time.Time       `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

type preferencesPayload struct {
	DarkMode bool `json:"dark_mode"`
}

var _ TokenStore = (*BunStore)(nil)

// BunStore persists console state through bun. Writes are synchronous and
// durable before returning; the surrounding application assumes persistence
// completed by the time navigation occurs.
type BunStore struct {
	db     *bun.DB
	logger Logger
	now    func() time.Time
}

// BunStoreOption customizes store construction.
type BunStoreOption func(*BunStore)

// WithStoreLogger overrides the default logger.
func WithStoreLogger(logger Logger) BunStoreOption {
	return func(s *BunStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStoreClock injects a custom clock (useful for tests).
func WithStoreClock(clock func() time.Time) BunStoreOption {
	return func(s *BunStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewBunStore wraps an existing bun handle.
func NewBunStore(db *bun.DB, opts ...BunStoreOption) *BunStore {
	s := &BunStore{
		db:     db,
		logger: defLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// OpenDB opens a sqlite-backed bun handle for the console state file. Use
// ":memory:" for throwaway stores.
func OpenDB(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open console state database")
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// Init creates the backing table when missing. Safe to call on every boot.
func (s *BunStore) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*StateRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create console state table")
	}
	return nil
}

// Load returns the persisted session, or nil when the record is missing,
// from another schema version, or unparseable. Corruption stops here: it is
// logged and recovered as anonymous, never surfaced.
func (s *BunStore) Load(ctx context.Context) (*Session, error) {
	record, err := s.load(ctx, recordKeySession)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	var session Session
	if err := json.Unmarshal(record.Payload, &session); err != nil {
		s.logger.Warn("discarding unparseable session record: %v", err)
		return nil, nil
	}

	if err := session.Validate(); err != nil {
		s.logger.Warn("discarding malformed session record: %v", err)
		return nil, nil
	}

	return &session, nil
}

// Save persists the session record, replacing any previous one.
func (s *BunStore) Save(ctx context.Context, session Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode session record")
	}
	return s.save(ctx, recordKeySession, payload)
}

// Clear removes the session record. Preferences survive; they have no
// relationship to authorization.
func (s *BunStore) Clear(ctx context.Context) error {
	_, err := s.db.NewDelete().
		Model((*StateRecord)(nil)).
		Where("cs.key = ?", recordKeySession).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to clear session record")
	}
	return nil
}

// LoadPreference returns the persisted dark mode flag, defaulting to light
// mode on a missing or unreadable record.
func (s *BunStore) LoadPreference(ctx context.Context) (bool, error) {
	record, err := s.load(ctx, recordKeyPreferences)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, nil
	}

	var prefs preferencesPayload
	if err := json.Unmarshal(record.Payload, &prefs); err != nil {
		s.logger.Warn("discarding unparseable preferences record: %v", err)
		return false, nil
	}

	return prefs.DarkMode, nil
}

// SavePreference persists the dark mode flag.
func (s *BunStore) SavePreference(ctx context.Context, darkMode bool) error {
	payload, err := json.Marshal(preferencesPayload{DarkMode: darkMode})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode preferences record")
	}
	return s.save(ctx, recordKeyPreferences, payload)
}

func (s *BunStore) load(ctx context.Context, key string) (*StateRecord, error) {
	record := &StateRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("cs.key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read console state record")
	}

	if record.Version != stateSchemaVersion {
		s.logger.Warn("discarding %s record with schema version %d (want %d)", key, record.Version, stateSchemaVersion)
		return nil, nil
	}

	return record, nil
}

func (s *BunStore) save(ctx context.Context, key string, payload json.RawMessage) error {
	record := &StateRecord{
		Key:       key,
		Version:   stateSchemaVersion,
		Payload:   payload,
		UpdatedAt: s.now(),
	}

	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (key) DO UPDATE").
		Set("version = EXCLUDED.version").
		Set("payload = EXCLUDED.payload").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to write console state record")
	}
	return nil
}

package access

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// TokenStore is durable key/value persistence for the session credential and
// the UI preference flag. Load returns nil for a missing or unreadable
// record; corruption is recovered locally and never surfaced to callers.
type TokenStore interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, session Session) error
	Clear(ctx context.Context) error
	LoadPreference(ctx context.Context) (bool, error)
	SavePreference(ctx context.Context, darkMode bool) error
}

// Gateway is the remote authorization service boundary. The core depends on
// these request/response contracts only, never on the service internals.
type Gateway interface {
	Login(ctx context.Context, creds Credentials) (Session, error)
	IssueInvite(ctx context.Context, req InviteRequest) (string, error)
	ValidateInvite(ctx context.Context, token string) (InviteClaim, error)
	RegisterViaInvite(ctx context.Context, reg Registration) (Session, error)
	UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (Session, error)
}

// Subscriber observes Session replacements. Callbacks run synchronously
// inside the mutating Manager call.
type Subscriber func(session Session)

// SubscriptionID identifies a registered Subscriber.
type SubscriptionID = uuid.UUID

// ActorRef identifies who/what triggered an operation.
type ActorRef struct {
	ID   string
	Type string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCESS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ACCESS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCESS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCESS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

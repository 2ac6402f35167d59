package access

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// InviteState is the phase of a single invite validation attempt.
type InviteState string

const (
	// InviteStateValidating means the gateway check is in flight.
	InviteStateValidating InviteState = "validating"
	// InviteStateValid is terminal: the token resolved to an invite.
	InviteStateValid InviteState = "valid"
	// InviteStateInvalid is terminal: the token was absent, rejected, or
	// unreachable.
	InviteStateInvalid InviteState = "invalid"
)

// ReasonMissingToken marks an invite link that carried no token at all.
const ReasonMissingToken = "missing invite token"

// InviteValidation is a snapshot of the attempt. Email and Role are
// display-only prefill data; the server re-derives both from the token when
// registration is submitted.
type InviteValidation struct {
	State  InviteState
	Email  string
	Role   Role
	Reason string
}

// InviteValidator drives one registration attempt at a time. Starting a new
// validation supersedes the previous one: a late gateway resolution from a
// superseded attempt is discarded instead of clobbering the fresh state.
type InviteValidator struct {
	mu         sync.Mutex
	gateway    Gateway
	logger     Logger
	sink       ActivitySink
	token      string
	generation uint64
	result     InviteValidation
}

// InviteValidatorOption customizes validator construction.
type InviteValidatorOption func(*InviteValidator)

// WithInviteLogger overrides the default logger.
func WithInviteLogger(logger Logger) InviteValidatorOption {
	return func(v *InviteValidator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithInviteActivitySink sets the ActivitySink used to publish invite events.
func WithInviteActivitySink(sink ActivitySink) InviteValidatorOption {
	return func(v *InviteValidator) {
		v.sink = normalizeActivitySink(sink)
	}
}

// NewInviteValidator returns a validator bound to the gateway.
func NewInviteValidator(gateway Gateway, opts ...InviteValidatorOption) *InviteValidator {
	v := &InviteValidator{
		gateway: gateway,
		logger:  defLogger{},
		sink:    noopActivitySink{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}

	return v
}

// Start begins validating the token lifted from the invite link. An absent
// token short-circuits to Invalid without touching the gateway. Otherwise
// the gateway is asked exactly once, asynchronously; there are no automatic
// retries, the user requests a fresh invite out-of-band.
//
// The returned channel delivers the terminal result and closes. If this
// attempt is superseded by a newer Start before the gateway answers, the
// channel closes without a value.
func (v *InviteValidator) Start(ctx context.Context, token string) <-chan InviteValidation {
	ch := make(chan InviteValidation, 1)

	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.token = token

	if token == "" {
		v.result = InviteValidation{State: InviteStateInvalid, Reason: ReasonMissingToken}
		result := v.result
		v.mu.Unlock()

		ch <- result
		close(ch)
		return ch
	}

	v.result = InviteValidation{State: InviteStateValidating}
	v.mu.Unlock()

	go v.validate(ctx, gen, token, ch)
	return ch
}

// Result returns the current snapshot of the attempt.
func (v *InviteValidator) Result() InviteValidation {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.result
}

// RegisterViaInvite completes the invite. It is only meaningful once the
// attempt reached Valid; calling it from Validating or Invalid is a caller
// error. On success the returned payload must be handed to
// Manager.Establish to take effect.
func (v *InviteValidator) RegisterViaInvite(ctx context.Context, name, password string) (Session, error) {
	v.mu.Lock()
	result := v.result
	token := v.token
	v.mu.Unlock()

	if result.State != InviteStateValid {
		return Session{}, ErrInvalidInviteState.WithMetadata(map[string]any{
			"state": string(result.State),
		})
	}

	reg := Registration{Token: token, Name: name, Password: password}
	if err := reg.Validate(); err != nil {
		return Session{}, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration input").
			WithCode(goerrors.CodeBadRequest)
	}

	session, err := v.gateway.RegisterViaInvite(ctx, reg)
	if err != nil {
		return Session{}, err
	}

	v.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventInviteAccepted,
		Actor:     ActorRef{ID: session.UserID, Type: "user"},
		UserID:    session.UserID,
		Metadata:  map[string]any{"role": session.Role},
	})

	return session, nil
}

func (v *InviteValidator) validate(ctx context.Context, gen uint64, token string, ch chan InviteValidation) {
	defer close(ch)

	claim, err := v.gateway.ValidateInvite(ctx, token)

	v.mu.Lock()
	if gen != v.generation {
		// superseded while in flight, the resolution is stale
		v.mu.Unlock()
		return
	}

	if err != nil {
		v.result = InviteValidation{State: InviteStateInvalid, Reason: DisplayMessage(err)}
	} else {
		v.result = InviteValidation{State: InviteStateValid, Email: claim.Email, Role: claim.Role}
	}
	result := v.result
	v.mu.Unlock()

	if err != nil {
		v.logger.Info("invite validation failed: %s", result.Reason)
		v.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventInviteRejected,
			Actor:     ActorRef{Type: "anonymous"},
			Metadata:  map[string]any{"reason": result.Reason},
		})
	}

	ch <- result
}

func (v *InviteValidator) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	sink := normalizeActivitySink(v.sink)
	if err := sink.Record(ctx, event); err != nil {
		v.logger.Warn("invite activity sink error: %v", err)
	}
}

package access

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
)

// IssueInviteMessage asks the gateway to mint an invite link for a
// prospective user. The admin-facing console submits it; the recipient later
// completes the flow through InviteValidator.
type IssueInviteMessage struct {
	Email string   `json:"email"`
	Role  Role     `json:"role"`
	Actor ActorRef `json:"-"`
}

func (e IssueInviteMessage) Type() string { return "invite.issue" }

func (e IssueInviteMessage) Validate() error {
	return InviteRequest{Email: e.Email, Role: e.Role}.Validate()
}

// IssueInviteHandler executes IssueInviteMessage against the gateway and
// records the issuance for auditing.
type IssueInviteHandler struct {
	gateway Gateway
	sink    ActivitySink
	logger  Logger
}

// IssueInviteOption customizes handler construction.
type IssueInviteOption func(*IssueInviteHandler)

// WithIssueInviteLogger overrides the default logger.
func WithIssueInviteLogger(logger Logger) IssueInviteOption {
	return func(h *IssueInviteHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithIssueInviteActivitySink sets the sink receiving issuance events.
func WithIssueInviteActivitySink(sink ActivitySink) IssueInviteOption {
	return func(h *IssueInviteHandler) {
		h.sink = normalizeActivitySink(sink)
	}
}

// NewIssueInviteHandler returns a handler bound to the gateway.
func NewIssueInviteHandler(gateway Gateway, opts ...IssueInviteOption) *IssueInviteHandler {
	h := &IssueInviteHandler{
		gateway: gateway,
		sink:    noopActivitySink{},
		logger:  defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	return h
}

// Execute issues the invite and returns the opaque link to hand to the
// recipient. Whether the actor may invite at all is the server's judgment;
// this handler only validates shape.
func (h *IssueInviteHandler) Execute(ctx context.Context, event IssueInviteMessage) (string, error) {
	select {
	case <-ctx.Done():
		return "", goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during invite issuance",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *IssueInviteHandler) execute(ctx context.Context, event IssueInviteMessage) (string, error) {
	if err := event.Validate(); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryValidation, "invalid invite request").
			WithCode(goerrors.CodeBadRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	inviteURL, err := h.gateway.IssueInvite(ctx, InviteRequest{Email: event.Email, Role: event.Role})
	if err != nil {
		h.logger.Error("invite issuance failed for %s: %v", event.Email, err)
		return "", err
	}

	metadata := map[string]any{
		"email": event.Email,
		"role":  event.Role,
	}
	// repeat invites to the same address share a stable reference id
	if ref, err := hashid.NewUUID(event.Email); err == nil {
		metadata["reference"] = ref.String()
	}

	h.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventInviteIssued,
		Actor:     event.Actor,
		Metadata:  metadata,
	})

	return inviteURL, nil
}

func (h *IssueInviteHandler) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.Actor == (ActorRef{}) {
		event.Actor = ActorRef{Type: "system"}
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	sink := normalizeActivitySink(h.sink)
	if err := sink.Record(ctx, event); err != nil {
		h.logger.Warn("invite issuance activity sink error: %v", err)
	}
}

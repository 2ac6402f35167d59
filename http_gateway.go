package access

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goliatone/go-print"
)

const (
	routeLogin             = "/auth/login"
	routeInvite            = "/auth/invite"
	routeValidateInvite    = "/auth/validate-invite/{token}"
	routeRegisterViaInvite = "/auth/register-via-invite"
	routeProfile           = "/users/profile"
)

var _ Gateway = (*HTTPGateway)(nil)

// HTTPGateway talks to the remote authorization service over its JSON API.
// Failures split along the taxonomy the UI needs: server rejections carry
// the display message, transport failures carry a generic fallback, and
// neither is ever retried here.
type HTTPGateway struct {
	client *resty.Client
	logger Logger
	debug  bool
}

// HTTPGatewayOption customizes gateway construction.
type HTTPGatewayOption func(*HTTPGateway)

// WithGatewayLogger overrides the default logger.
func WithGatewayLogger(logger Logger) HTTPGatewayOption {
	return func(g *HTTPGateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithGatewayTimeout bounds each request.
func WithGatewayTimeout(timeout time.Duration) HTTPGatewayOption {
	return func(g *HTTPGateway) {
		g.client.SetTimeout(timeout)
	}
}

// WithGatewayClient swaps the underlying resty client, keeping its base URL.
func WithGatewayClient(client *resty.Client) HTTPGatewayOption {
	return func(g *HTTPGateway) {
		if client != nil {
			g.client = client
		}
	}
}

// WithGatewayDebug logs response payloads. Off by default; bodies can carry
// credentials.
func WithGatewayDebug(debug bool) HTTPGatewayOption {
	return func(g *HTTPGateway) {
		g.debug = debug
	}
}

// NewHTTPGateway returns a Gateway bound to the service at baseURL.
func NewHTTPGateway(baseURL string, opts ...HTTPGatewayOption) *HTTPGateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	g := &HTTPGateway{
		client: client,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// sessionEnvelope is the wire shape shared by login, registration, and
// profile responses.
type sessionEnvelope struct {
	ID     string     `json:"_id"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Role   Role       `json:"role"`
	Status UserStatus `json:"status"`
	Token  string     `json:"token"`
}

func (e sessionEnvelope) toSession() Session {
	return Session{
		UserID:          e.ID,
		Name:            e.Name,
		Email:           e.Email,
		Role:            e.Role,
		Status:          e.Status,
		CredentialToken: e.Token,
	}
}

type inviteEnvelope struct {
	InviteURL string `json:"inviteUrl"`
}

type claimEnvelope struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type apiError struct {
	Message string `json:"message"`
}

func (g *HTTPGateway) Login(ctx context.Context, creds Credentials) (Session, error) {
	var out sessionEnvelope
	var apiErr apiError

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(creds).
		SetResult(&out).
		SetError(&apiErr).
		Post(routeLogin)

	if err := g.checkResponse(resp, err, apiErr, "invalid email or password"); err != nil {
		return Session{}, err
	}

	g.debugPayload("login", out)
	return out.toSession(), nil
}

func (g *HTTPGateway) IssueInvite(ctx context.Context, req InviteRequest) (string, error) {
	var out inviteEnvelope
	var apiErr apiError

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post(routeInvite)

	if err := g.checkResponse(resp, err, apiErr, "failed to issue invite"); err != nil {
		return "", err
	}

	return out.InviteURL, nil
}

func (g *HTTPGateway) ValidateInvite(ctx context.Context, token string) (InviteClaim, error) {
	var out claimEnvelope
	var apiErr apiError

	resp, err := g.client.R().
		SetContext(ctx).
		SetPathParam("token", token).
		SetResult(&out).
		SetError(&apiErr).
		Get(routeValidateInvite)

	if err := g.checkResponse(resp, err, apiErr, "invalid or expired invite token"); err != nil {
		return InviteClaim{}, err
	}

	return InviteClaim{Email: out.Email, Role: out.Role}, nil
}

func (g *HTTPGateway) RegisterViaInvite(ctx context.Context, reg Registration) (Session, error) {
	var out sessionEnvelope
	var apiErr apiError

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(reg).
		SetResult(&out).
		SetError(&apiErr).
		Post(routeRegisterViaInvite)

	if err := g.checkResponse(resp, err, apiErr, "registration failed"); err != nil {
		return Session{}, err
	}

	g.debugPayload("register-via-invite", out)
	return out.toSession(), nil
}

// UpdateProfile forwards the opaque bearer credential; the response may omit
// the token, which the Manager's merge rule then preserves.
func (g *HTTPGateway) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (Session, error) {
	var out sessionEnvelope
	var apiErr apiError

	resp, err := g.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(update).
		SetResult(&out).
		SetError(&apiErr).
		Put(routeProfile)

	if err := g.checkResponse(resp, err, apiErr, "failed to update profile"); err != nil {
		return Session{}, err
	}

	g.debugPayload("update-profile", out)
	return out.toSession(), nil
}

func (g *HTTPGateway) checkResponse(resp *resty.Response, err error, apiErr apiError, fallback string) error {
	if err != nil {
		g.logger.Error("gateway transport failure: %v", err)
		return NewGatewayTransportError(err)
	}

	if resp.IsError() {
		message := apiErr.Message
		if message == "" {
			message = fallback
		}
		g.logger.Info("gateway rejected request: status=%d message=%s", resp.StatusCode(), message)
		return NewGatewayRejection(message).WithMetadata(map[string]any{
			"status": resp.StatusCode(),
		})
	}

	return nil
}

func (g *HTTPGateway) debugPayload(op string, payload any) {
	if !g.debug {
		return
	}
	g.logger.Debug(fmt.Sprintf("gateway %s response: %s", op, print.MaybePrettyJSON(payload)))
}

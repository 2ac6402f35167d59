package access

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Credentials is the login request contract.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Password, validation.Required),
	)
}

// InviteRequest is the admin-facing invite issuance contract. The resulting
// link carries the token that ValidateInvite later parses.
type InviteRequest struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (r InviteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Role, validation.Required, validation.In(RoleAdmin, RoleManager, RoleStaff)),
	)
}

// InviteClaim is the display-only data behind a valid invite token. The
// server re-derives email and role from the token at registration time, so
// tampering with these fields buys nothing.
type InviteClaim struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Registration completes an invite: the token plus the fields the recipient
// chooses.
type Registration struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (r Registration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

// ProfileUpdate is the profile mutation contract. Password is optional; the
// response is shaped like a login response and may omit the credential
// token, which UpdateIdentity then preserves.
type ProfileUpdate struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

func (p ProfileUpdate) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Length(6, 100)),
	)
}

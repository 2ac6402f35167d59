package access

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Session is the authenticated principal. It is either fully absent
// (anonymous) or fully populated; there is no field-level patch on the
// public contract, Establish replaces the whole value.
type Session struct {
	UserID          string     `json:"user_id,omitempty"`
	Name            string     `json:"name,omitempty"`
	Email           string     `json:"email,omitempty"`
	Role            Role       `json:"role,omitempty"`
	Status          UserStatus `json:"status,omitempty"`
	CredentialToken string     `json:"credential_token,omitempty"`
}

// IsAnonymous reports whether the session represents no principal.
func (s Session) IsAnonymous() bool {
	return s.UserID == ""
}

// Validate enforces the shape required by Establish: stable user id, a
// well-formed unique email, a role from the fixed enum, and the opaque
// bearer credential.
func (s Session) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.UserID, validation.Required),
		validation.Field(&s.Email, validation.Required, is.Email),
		validation.Field(&s.Role, validation.Required, validation.In(RoleAdmin, RoleManager, RoleStaff)),
		validation.Field(&s.Status, validation.In(UserStatusActive, UserStatusInactive)),
		validation.Field(&s.CredentialToken, validation.Required),
	)
}

func (s Session) String() string {
	return fmt.Sprintf(
		"user=%s email=%s role=%s status=%s token=%s",
		s.UserID,
		s.Email,
		s.Role,
		s.Status,
		maskToken(s.CredentialToken),
	)
}

// maskToken keeps logs free of usable credentials.
func maskToken(token string) string {
	if token == "" {
		return "<none>"
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****"
}

// IdentityUpdate carries profile fields merged into an established Session
// by UpdateIdentity. Empty fields are left untouched; in particular an empty
// CredentialToken preserves the active credential.
type IdentityUpdate struct {
	Name            string `json:"name,omitempty"`
	Email           string `json:"email,omitempty"`
	CredentialToken string `json:"credential_token,omitempty"`
}

// Validate rejects malformed replacement values; absent fields are fine.
func (u IdentityUpdate) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Email, is.Email),
	)
}

// ApplyTo merges the update into an existing session, returning the merged
// copy. The credential preservation rule is load-bearing: a profile update
// response that omits the token must never invalidate the active credential.
func (u IdentityUpdate) ApplyTo(session Session) Session {
	if u.Name != "" {
		session.Name = u.Name
	}
	if u.Email != "" {
		session.Email = u.Email
	}
	if u.CredentialToken != "" {
		session.CredentialToken = u.CredentialToken
	}
	return session
}

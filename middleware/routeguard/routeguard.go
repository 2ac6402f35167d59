// Package routeguard gates console routes behind the live session. It is the
// routing-layer face of the access decision: every request re-evaluates the
// allow-list against the current session, so a login, logout, or role change
// takes effect on the next navigation without any cache to invalidate.
package routeguard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"

	"github.com/promanage/go-access"
)

// SessionSource yields the live session snapshot. *access.Manager satisfies
// it; tests can substitute a fixture.
type SessionSource interface {
	Current() access.Session
}

// Config describes one protected route group.
type Config struct {
	// Source is required.
	Source SessionSource
	// AllowedRoles is the closed allow-list for this group. Empty means any
	// authenticated session passes.
	AllowedRoles []access.Role
	// LoginRoute receives anonymous visitors. Defaults to "/login".
	LoginRoute string
	// DefaultRoute receives authenticated visitors lacking a required role.
	// Defaults to "/dashboard".
	DefaultRoute string
	// ContextKey is where the session snapshot is stashed for downstream
	// handlers. Defaults to "session".
	ContextKey string
	// Filter skips the guard for matching requests (health checks, assets).
	Filter func(router.Context) bool
	// SuccessHandler runs after the guard admits the request. Defaults to
	// ctx.Next().
	SuccessHandler router.HandlerFunc
}

func (c Config) withDefaults() Config {
	if c.LoginRoute == "" {
		c.LoginRoute = "/login"
	}
	if c.DefaultRoute == "" {
		c.DefaultRoute = "/dashboard"
	}
	if c.ContextKey == "" {
		c.ContextKey = "session"
	}
	if c.SuccessHandler == nil {
		c.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}
	return c
}

// New builds the guard middleware for a route group.
func New(config Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := config.withDefaults()
		if cfg.Source == nil {
			panic("routeguard: Config.Source is required")
		}

		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			session := cfg.Source.Current()

			switch access.Decide(session, cfg.AllowedRoles...) {
			case access.DecisionRedirectLogin:
				return ctx.Redirect(cfg.LoginRoute, redirectStatus(ctx))
			case access.DecisionRedirectDefault:
				return ctx.Redirect(cfg.DefaultRoute, redirectStatus(ctx))
			}

			ctx.Locals(cfg.ContextKey, session)

			return cfg.SuccessHandler(ctx)
		}
	}
}

func redirectStatus(ctx router.Context) int {
	if ctx.Method() == string(router.GET) {
		return fiber.StatusFound
	}
	return fiber.StatusSeeOther
}

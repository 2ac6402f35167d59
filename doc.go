// Package access is the session, authentication, and role gating core of the
// ProManage console. It owns the authenticated principal for the lifetime of
// the process and decides, per navigation, who may see what.
//
// Session lifecycle:
//   - Manager holds the authoritative Session value, hydrates it from the
//     TokenStore at startup, and exposes Establish, UpdateIdentity, and Clear.
//     Every mutation persists before returning and notifies subscribers
//     synchronously, so there is no window where the store, the in-memory
//     session, and the observers disagree.
//
// Access decisions:
//   - Decide is a pure allow-list check. Roles are discrete tags, not a
//     hierarchy: each protected surface names the roles it accepts and an
//     ADMIN does not implicitly pass a MANAGER-gated check.
//
// Invite provisioning:
//   - InviteValidator drives the invite link flow: a token lifted from the
//     incoming link is validated against the Gateway once, yielding a
//     terminal Valid or Invalid result, and registration is only permitted
//     from Valid. The server re-derives email and role from the token at
//     registration time, so the pre-filled form data is display-only.
//
// Activity sinks:
//   - ActivitySink is a best-effort audit emitter used by the Manager and the
//     invite flows. Sink errors are logged, never propagated, so forwarding
//     events to a database or queue cannot block authentication.
package access

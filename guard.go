package access

// Decision is the outcome of a navigation check.
type Decision string

const (
	// DecisionAllow lets the navigation proceed.
	DecisionAllow Decision = "allow"
	// DecisionRedirectLogin sends anonymous visitors to the login view.
	DecisionRedirectLogin Decision = "redirect-login"
	// DecisionRedirectDefault sends authenticated visitors lacking a
	// required role to the default landing view.
	DecisionRedirectDefault Decision = "redirect-default"
)

// Decide gates a protected resource. Anonymous sessions are sent to login;
// a non-empty allow-list that does not contain the session role redirects to
// the default view; everything else is allowed.
//
// The allow-list is a closed membership check, not a hierarchy comparison:
// adding a new role grants nothing until every resource that should accept
// it names it. Callers must re-evaluate on every navigation attempt rather
// than caching the decision, since the session can change between
// navigations.
func Decide(session Session, requiredRoles ...Role) Decision {
	if session.IsAnonymous() {
		return DecisionRedirectLogin
	}

	if len(requiredRoles) > 0 && !session.Role.In(requiredRoles) {
		return DecisionRedirectDefault
	}

	return DecisionAllow
}

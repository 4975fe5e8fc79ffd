// Package access decides, for every navigation, whether a tier may enter a
// route. It is the sole arbiter of reachability: handlers ask the guard and
// never re-derive tier logic themselves.
package access

import (
	id "agora/pkg/domain"
)

// Outcome is the guard's verdict for a (path, tier) pair.
type Outcome int

const (
	// OutcomeAllow renders the requested view (including the loading state
	// while the session is still resolving).
	OutcomeAllow Outcome = iota
	// OutcomeRedirect sends the visitor to Decision.RedirectTo.
	OutcomeRedirect
	// OutcomeDeny renders a terminal access-denied view offering navigation
	// home or re-authentication. Not a redirect: the URL stays put.
	OutcomeDeny
)

// Decision is recomputed on every (path, tier, loading) change and never
// cached across identity changes. RedirectTo is non-empty iff the outcome
// is OutcomeRedirect.
type Decision struct {
	Outcome    Outcome
	RedirectTo id.Path
}

// TierStatus is the guard's view of the session: the resolved tier plus
// whether the first session resolution is still pending.
type TierStatus struct {
	Tier      id.Tier
	IsLoading bool
}

// Guard evaluates the gating rules in order:
//
//  1. While the session is loading, always allow. Redirecting before the
//     session resolves would bounce signed-in users off their own pages.
//  2. A signed-in visitor on the public landing page is forwarded to their
//     tier's landing route. One-way convenience, not a hard gate: landing
//     stays reachable for unauthenticated visitors.
//  3. The admin area is fenced: unauthenticated visitors go to the admin
//     login, authenticated non-admins get the terminal denied view.
//  4. Everything else is allowed (admin is a superset tier and may view
//     buyer and seller surfaces).
func Guard(path id.Path, status TierStatus) Decision {
	if status.IsLoading {
		return Decision{Outcome: OutcomeAllow}
	}

	if path == id.PathLanding && status.Tier.Authenticated() {
		return Decision{Outcome: OutcomeRedirect, RedirectTo: status.Tier.LandingRoute()}
	}

	if adminRestricted(path) && status.Tier != id.TierAdmin {
		if !status.Tier.Authenticated() {
			return Decision{Outcome: OutcomeRedirect, RedirectTo: id.PathAdminLogin}
		}
		return Decision{Outcome: OutcomeDeny}
	}

	return Decision{Outcome: OutcomeAllow}
}

// adminRestricted reports whether the path lies inside the admin area.
// The admin login page itself is public by necessity.
func adminRestricted(path id.Path) bool {
	return path == id.PathAdmin
}

package domain

// Tier is the capability level derived from an identity's role attribute.
// The zero value is TierUnauthenticated: no session at all, which is a valid
// state rather than an error.
type Tier string

const (
	TierUnauthenticated Tier = ""
	TierBuyer           Tier = "buyer"
	TierSeller          Tier = "seller"
	TierAdmin           Tier = "admin"
)

// ParseTier maps a raw role attribute to a Tier. Unknown role strings map to
// buyer: an authenticated identity always has at least buyer capability, and
// failing closed to the lowest tier is safer than rejecting the session.
func ParseTier(role string) Tier {
	switch Tier(role) {
	case TierSeller:
		return TierSeller
	case TierAdmin:
		return TierAdmin
	default:
		return TierBuyer
	}
}

// Authenticated reports whether the tier belongs to a signed-in identity.
func (t Tier) Authenticated() bool {
	return t != TierUnauthenticated
}

// AtLeastSeller reports whether the tier carries seller capability.
// Admin is a superset tier and always qualifies.
func (t Tier) AtLeastSeller() bool {
	return t == TierSeller || t == TierAdmin
}

// LandingRoute is the default landing path for the tier. Seller and admin
// share the seller dashboard; admin-only areas are fenced by the route
// guard, not by landing placement.
func (t Tier) LandingRoute() Path {
	switch t {
	case TierSeller, TierAdmin:
		return PathSellerDashboard
	case TierBuyer:
		return PathBuyerDashboard
	default:
		return PathLanding
	}
}

func (t Tier) String() string { return string(t) }

package identity

import (
	id "agora/pkg/domain"
)

// TierState is the resolver's answer: the capability tier plus the default
// landing route for that tier.
type TierState struct {
	Tier         id.Tier
	LandingRoute id.Path
}

// ResolveTier maps an identity to its capability tier and landing route.
// Pure and total: nil means unauthenticated, unknown roles already collapsed
// to buyer by ParseTier, seller and admin share the seller dashboard as
// their default landing (admin-only areas are fenced by the route guard,
// not by landing placement).
func ResolveTier(ident *Identity) TierState {
	if ident == nil {
		return TierState{Tier: id.TierUnauthenticated, LandingRoute: id.PathLanding}
	}
	tier := id.ParseTier(ident.Tier.String())
	return TierState{Tier: tier, LandingRoute: tier.LandingRoute()}
}

package token

import (
	"agora/internal/platform/middleware"
	id "agora/pkg/domain"
)

// MiddlewareAdapter satisfies middleware.TokenValidator on top of Service,
// translating raw claims into the typed identity the middleware injects.
type MiddlewareAdapter struct {
	service *Service
}

func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{
		UserID: userID,
		Tier:   id.ParseTier(claims.Role),
	}, nil
}

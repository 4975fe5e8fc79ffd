package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"agora/internal/token"
	id "agora/pkg/domain"
)

type PageHandlerSuite struct {
	suite.Suite
	tokens *token.Service
	router chi.Router
}

func TestPageHandlerSuite(t *testing.T) {
	suite.Run(t, new(PageHandlerSuite))
}

func (s *PageHandlerSuite) SetupTest() {
	s.tokens = token.NewService("test-signing-key", "agora-test")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.router = chi.NewRouter()
	New(token.NewMiddlewareAdapter(s.tokens), nil, logger).Register(s.router)
}

func (s *PageHandlerSuite) get(target string, tier id.Tier) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if tier != id.TierUnauthenticated {
		signed, err := s.tokens.GenerateSessionToken(id.UserID(uuid.New()), tier, time.Hour)
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+signed)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *PageHandlerSuite) decodeView(w *httptest.ResponseRecorder) viewState {
	var v viewState
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func (s *PageHandlerSuite) TestLandingForwardsAuthenticatedVisitors() {
	cases := []struct {
		tier id.Tier
		want string
	}{
		{id.TierBuyer, "/dashboard"},
		{id.TierSeller, "/seller/dashboard"},
		{id.TierAdmin, "/seller/dashboard"},
	}
	for _, tc := range cases {
		s.Run(tc.tier.String(), func() {
			w := s.get("/", tc.tier)
			s.Equal(http.StatusFound, w.Code)
			s.Equal(tc.want, w.Header().Get("Location"))
		})
	}
}

func (s *PageHandlerSuite) TestLandingStaysReachableSignedOut() {
	w := s.get("/", id.TierUnauthenticated)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("landing", s.decodeView(w).View)
}

func (s *PageHandlerSuite) TestInvalidTokenRendersUnauthenticated() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code, "bad token on a page route degrades, not rejects")
	s.Equal("landing", s.decodeView(w).View)
}

func (s *PageHandlerSuite) TestAdminAreaRedirectsAnonymousToLogin() {
	w := s.get("/admin", id.TierUnauthenticated)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/admin/login", w.Header().Get("Location"))
}

func (s *PageHandlerSuite) TestAdminAreaDeniesAuthenticatedNonAdmins() {
	for _, tier := range []id.Tier{id.TierBuyer, id.TierSeller} {
		s.Run(tier.String(), func() {
			w := s.get("/admin", tier)
			s.Equal(http.StatusForbidden, w.Code)

			var denied deniedState
			s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &denied))
			s.Equal("access-denied", denied.View)
			s.Equal("/", denied.Home)
			s.Empty(w.Header().Get("Location"), "deny is terminal, not a redirect")
		})
	}
}

func (s *PageHandlerSuite) TestAdminAreaAllowsAdmin() {
	w := s.get("/admin", id.TierAdmin)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("admin", s.decodeView(w).View)
}

func (s *PageHandlerSuite) TestAdminMayViewLowerSurfaces() {
	for _, target := range []string{"/dashboard", "/seller/dashboard"} {
		s.Run(target, func() {
			w := s.get(target, id.TierAdmin)
			s.Equal(http.StatusOK, w.Code)
		})
	}
}

func (s *PageHandlerSuite) TestAdminLoginPageIsPublic() {
	w := s.get("/admin/login", id.TierUnauthenticated)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("admin-login", s.decodeView(w).View)
}

func (s *PageHandlerSuite) TestUnknownPathRendersNotFound() {
	w := s.get("/no-such-page", id.TierBuyer)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("not-found", s.decodeView(w).View)
}

package handler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"agora/internal/identity"
	"agora/internal/seller"
	"agora/internal/seller/handler/mocks"
	id "agora/pkg/domain"
	dErrors "agora/pkg/domain-errors"
	"agora/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/seller-mocks.go -package=mocks Onboarding
type SellerHandlerSuite struct {
	suite.Suite
}

func TestSellerHandlerSuite(t *testing.T) {
	suite.Run(t, new(SellerHandlerSuite))
}

func newTestHandler(t *testing.T) (*Handler, *mocks.MockOnboarding, chi.Router) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockOnboarding := mocks.NewMockOnboarding(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(mockOnboarding, nil, logger)
	r := chi.NewRouter()
	h.Register(r)
	return h, mockOnboarding, r
}

func authedRequest(t *testing.T, userID id.UserID, token string, body any) *http.Request {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/become-seller", body)
	return testutil.WithIdentity(req, userID, id.TierBuyer, token)
}

func (s *SellerHandlerSuite) TestBecomeSellerSuccess() {
	_, mockOnboarding, r := newTestHandler(s.T())
	userID := id.UserID(uuid.New())
	draft := seller.Draft{
		BusinessName: "Crafts Co",
		Description:  "handmade wooden goods",
		Expertise:    "woodworking",
		Experience:   "five years",
		Motivation:   "grow the shop",
	}
	mockOnboarding.EXPECT().
		Apply(gomock.Any(), userID, "tok-1", draft).
		Return(&identity.Identity{ID: userID, Email: "buyer@example.com", Tier: id.TierSeller}, nil)

	w := testutil.DoRequest(r, authedRequest(s.T(), userID, "tok-1", draft))

	testutil.AssertStatus(s.T(), w, http.StatusOK)
	resp := testutil.UnmarshalResponse[becomeSellerResponse](s.T(), w)
	assert.Equal(s.T(), userID.String(), resp.UpdatedUser.ID)
	assert.Equal(s.T(), "seller", resp.UpdatedUser.Role)
}

func (s *SellerHandlerSuite) TestBecomeSellerValidationRejection() {
	_, mockOnboarding, r := newTestHandler(s.T())
	userID := id.UserID(uuid.New())
	mockOnboarding.EXPECT().
		Apply(gomock.Any(), userID, "tok-1", gomock.Any()).
		Return(nil, dErrors.Invalid("required fields are missing", "motivation"))

	w := testutil.DoRequest(r, authedRequest(s.T(), userID, "tok-1", seller.Draft{BusinessName: "Crafts Co"}))

	testutil.AssertStatus(s.T(), w, http.StatusBadRequest)
	testutil.AssertErrorCode(s.T(), w, string(dErrors.CodeInvalidInput))
	body := testutil.UnmarshalResponse[struct {
		Fields []string `json:"fields"`
	}](s.T(), w)
	assert.Equal(s.T(), []string{"motivation"}, body.Fields)
}

func (s *SellerHandlerSuite) TestBecomeSellerDuplicateSubmitConflicts() {
	_, mockOnboarding, r := newTestHandler(s.T())
	userID := id.UserID(uuid.New())
	mockOnboarding.EXPECT().
		Apply(gomock.Any(), userID, "tok-1", gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeInFlight, "submission already in flight"))

	w := testutil.DoRequest(r, authedRequest(s.T(), userID, "tok-1", seller.Draft{}))

	testutil.AssertStatus(s.T(), w, http.StatusConflict)
}

func (s *SellerHandlerSuite) TestBecomeSellerUnauthenticated() {
	_, _, r := newTestHandler(s.T())

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/become-seller", seller.Draft{})
	w := testutil.DoRequest(r, req)

	testutil.AssertStatus(s.T(), w, http.StatusUnauthorized)
}

func (s *SellerHandlerSuite) TestBecomeSellerMalformedBody() {
	_, _, r := newTestHandler(s.T())
	userID := id.UserID(uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/api/become-seller", bytes.NewReader([]byte("{not json")))
	req = testutil.WithIdentity(req, userID, id.TierBuyer, "tok-1")

	w := testutil.DoRequest(r, req)
	testutil.AssertStatus(s.T(), w, http.StatusBadRequest)
}

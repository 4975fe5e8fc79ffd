package handler

import (
	"context"
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

	"agora/internal/notification"
	id "agora/pkg/domain"
	dErrors "agora/pkg/domain-errors"
	httperrors "agora/pkg/http-errors"
	"agora/pkg/requestcontext"
)

type fakeBackend struct {
	items       []notification.Notification
	feedErr     error
	markReadErr error
}

func (f *fakeBackend) Notifications(context.Context) ([]notification.Notification, error) {
	if f.feedErr != nil {
		return nil, f.feedErr
	}
	out := make([]notification.Notification, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeBackend) MarkRead(context.Context, id.NotificationID) error { return f.markReadErr }
func (f *fakeBackend) MarkAllRead(context.Context) error                 { return nil }

type NotificationHandlerSuite struct {
	suite.Suite
	backend *fakeBackend
	manager *notification.Manager
	router  chi.Router
	userID  id.UserID
	items   []notification.Notification
}

func TestNotificationHandlerSuite(t *testing.T) {
	suite.Run(t, new(NotificationHandlerSuite))
}

func (s *NotificationHandlerSuite) SetupTest() {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.items = []notification.Notification{
		{ID: id.NotificationID(uuid.New()), Type: notification.TypeOrder, Title: "Order shipped", CreatedAt: base.Add(2 * time.Hour)},
		{ID: id.NotificationID(uuid.New()), Type: notification.TypePayment, Title: "Payment received", IsRead: true, CreatedAt: base.Add(time.Hour)},
		{ID: id.NotificationID(uuid.New()), Type: notification.TypeOrder, Title: "Order delivered", CreatedAt: base},
	}
	s.backend = &fakeBackend{items: s.items}
	s.manager = notification.NewManager(s.backend, s.backend, nil)
	s.userID = id.UserID(uuid.New())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(s.manager, nil, logger).Register(s.router)
}

func (s *NotificationHandlerSuite) TearDownTest() {
	s.manager.Close()
}

func (s *NotificationHandlerSuite) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	ctx := requestcontext.WithUserID(req.Context(), s.userID)
	req = req.WithContext(requestcontext.WithSessionToken(ctx, "tok-1"))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *NotificationHandlerSuite) TestListReturnsFeedWithUnreadCount() {
	w := s.do(http.MethodGet, "/api/notifications")
	s.Require().Equal(http.StatusOK, w.Code)

	var resp listResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Len(resp.Notifications, 3)
	s.Equal(2, resp.UnreadCount)
	s.Equal("Order shipped", resp.Notifications[0].Title, "newest first")
}

func (s *NotificationHandlerSuite) TestListFiltersCompose() {
	w := s.do(http.MethodGet, "/api/notifications?unread=true&type=order")
	s.Require().Equal(http.StatusOK, w.Code)

	var resp listResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().Len(resp.Notifications, 2)
	for _, n := range resp.Notifications {
		s.Equal(notification.TypeOrder, n.Type)
		s.False(n.IsRead)
	}
}

func (s *NotificationHandlerSuite) TestListRejectsUnknownType() {
	w := s.do(http.MethodGet, "/api/notifications?type=gossip")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *NotificationHandlerSuite) TestListUnauthenticated() {
	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *NotificationHandlerSuite) TestMarkReadUpdatesCount() {
	w := s.do(http.MethodPut, "/api/notifications/"+s.items[0].ID.String()+"/read")
	s.Require().Equal(http.StatusOK, w.Code)

	var resp countResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(1, resp.UnreadCount)
}

func (s *NotificationHandlerSuite) TestMarkReadRollsBackOnBackendFailure() {
	// Seed the store before scripting the failure.
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/api/notifications").Code)
	s.backend.markReadErr = dErrors.New(dErrors.CodeUnavailable, "backend down")

	w := s.do(http.MethodPut, "/api/notifications/"+s.items[0].ID.String()+"/read")
	s.Equal(http.StatusServiceUnavailable, w.Code)

	// The optimistic flip rolled back.
	var resp listResponse
	list := s.do(http.MethodGet, "/api/notifications")
	s.Require().NoError(json.Unmarshal(list.Body.Bytes(), &resp))
	s.Equal(2, resp.UnreadCount)
}

func (s *NotificationHandlerSuite) TestMarkReadUnknownIDIsNotFound() {
	w := s.do(http.MethodPut, "/api/notifications/"+uuid.NewString()+"/read")
	s.Equal(http.StatusNotFound, w.Code)

	var body httperrors.ErrorBody
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal(string(dErrors.CodeNotFound), body.Error)
}

func (s *NotificationHandlerSuite) TestMarkReadMalformedIDIsInvalid() {
	w := s.do(http.MethodPut, "/api/notifications/not-a-uuid/read")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *NotificationHandlerSuite) TestMarkAllReadZeroesCount() {
	w := s.do(http.MethodPut, "/api/notifications/mark-all-read")
	s.Require().Equal(http.StatusOK, w.Code)

	var resp countResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(0, resp.UnreadCount)
}

func (s *NotificationHandlerSuite) TestListSyncRefetchesFeed() {
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/api/notifications").Code)

	s.backend.items = append(s.backend.items, notification.Notification{
		ID: id.NotificationID(uuid.New()), Type: notification.TypeSystem, Title: "Maintenance", CreatedAt: time.Now(),
	})

	// Without sync the cached view is served.
	var resp listResponse
	w := s.do(http.MethodGet, "/api/notifications")
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Len(resp.Notifications, 3)

	w = s.do(http.MethodGet, "/api/notifications?sync=true")
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Len(resp.Notifications, 4)
}

// Package backend is the HTTP boundary to the marketplace API the gateway
// fronts. It owns error classification: validation rejections (4xx with
// field detail) are user-correctable, everything transport- or server-side
// is transient and surfaced for the caller's retry decision — never retried
// here.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"agora/internal/identity"
	"agora/internal/notification"
	id "agora/pkg/domain"
	dErrors "agora/pkg/domain-errors"
	"agora/pkg/requestcontext"
)

const tracerName = "agora/internal/backend"

// Client talks to the marketplace backend.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

// New builds a backend client. The timeout bounds every call so transient
// failures report instead of hanging.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tracer:  otel.Tracer(tracerName),
	}
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Message string   `json:"message"`
	Fields  []string `json:"fields"`
}

// userBody is the backend's user representation; role is the source of
// truth for tier resolution.
type userBody struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u userBody) toIdentity() (*identity.Identity, error) {
	userID, err := id.ParseUserID(u.ID)
	if err != nil {
		return nil, err
	}
	return &identity.Identity{
		ID:    userID,
		Email: u.Email,
		Tier:  id.ParseTier(u.Role),
	}, nil
}

// Login exchanges credentials for a backend session.
func (c *Client) Login(ctx context.Context, email, password string) (*identity.Session, error) {
	ctx, span := c.tracer.Start(ctx, "backend.Login")
	defer span.End()

	payload := map[string]string{"email": email, "password": password}
	var resp struct {
		Session struct {
			UserID string `json:"user_id"`
			Email  string `json:"email"`
			Role   string `json:"role"`
			Token  string `json:"token"`
		} `json:"session"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", payload, &resp); err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(resp.Session.UserID)
	if err != nil {
		return nil, err
	}
	return &identity.Session{
		UserID: userID,
		Email:  resp.Session.Email,
		Role:   resp.Session.Role,
		Token:  resp.Session.Token,
	}, nil
}

// CurrentUser fetches the identity behind a session token. Satisfies
// identity.Refresher.
func (c *Client) CurrentUser(ctx context.Context, sessionToken string) (*identity.Identity, error) {
	ctx, span := c.tracer.Start(ctx, "backend.CurrentUser")
	defer span.End()

	var user userBody
	if err := c.do(ctx, http.MethodGet, "/api/auth/user", sessionToken, nil, &user); err != nil {
		return nil, err
	}
	ident, err := user.toIdentity()
	if err != nil {
		return nil, err
	}
	ident.SessionToken = sessionToken
	return ident, nil
}

// ApplicationPayload is the become-seller request body.
type ApplicationPayload struct {
	BusinessName string `json:"businessName"`
	Description  string `json:"description"`
	Expertise    string `json:"expertise"`
	Experience   string `json:"experience"`
	Portfolio    string `json:"portfolio,omitempty"`
	Motivation   string `json:"motivation"`
}

// SubmitSellerApplication submits a completed application. A 422-class
// answer comes back as CodeInvalidInput with field detail; 5xx and
// transport failures as CodeUnavailable.
func (c *Client) SubmitSellerApplication(ctx context.Context, sessionToken string, app ApplicationPayload) (*identity.Identity, error) {
	ctx, span := c.tracer.Start(ctx, "backend.SubmitSellerApplication")
	defer span.End()

	var resp struct {
		UpdatedUser userBody `json:"updatedUser"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/become-seller", sessionToken, app, &resp); err != nil {
		return nil, err
	}
	ident, err := resp.UpdatedUser.toIdentity()
	if err != nil {
		return nil, err
	}
	ident.SessionToken = sessionToken
	return ident, nil
}

// Notifications fetches the feed for the session in the context.
func (c *Client) Notifications(ctx context.Context) ([]notification.Notification, error) {
	ctx, span := c.tracer.Start(ctx, "backend.Notifications")
	defer span.End()

	var items []notification.Notification
	if err := c.do(ctx, http.MethodGet, "/api/notifications", requestcontext.SessionToken(ctx), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkRead confirms a single read-state transition. Satisfies
// notification.Feed; the session token rides in on the request context.
func (c *Client) MarkRead(ctx context.Context, notificationID id.NotificationID) error {
	ctx, span := c.tracer.Start(ctx, "backend.MarkRead")
	defer span.End()

	path := fmt.Sprintf("/api/notifications/%s/read", notificationID)
	return c.do(ctx, http.MethodPut, path, requestcontext.SessionToken(ctx), nil, nil)
}

// MarkAllRead confirms a bulk read-state transition. Satisfies
// notification.Feed.
func (c *Client) MarkAllRead(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "backend.MarkAllRead")
	defer span.End()

	return c.do(ctx, http.MethodPut, "/api/notifications/mark-all-read", requestcontext.SessionToken(ctx), nil, nil)
}

// do issues one request and decodes the answer into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path, sessionToken string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "encode request")
		}
		reqBody = bytes.NewReader(encoded)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+sessionToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "backend unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "decode response")
		}
		return nil
	}

	return c.classifyStatus(resp)
}

// classifyStatus translates a non-2xx answer into the domain taxonomy.
func (c *Client) classifyStatus(resp *http.Response) error {
	var body errorBody
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body.Message == "" {
		body.Message = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return dErrors.New(dErrors.CodeUnauthorized, body.Message)
	case resp.StatusCode == http.StatusForbidden:
		return dErrors.New(dErrors.CodeForbidden, body.Message)
	case resp.StatusCode == http.StatusNotFound:
		return dErrors.New(dErrors.CodeNotFound, body.Message)
	case resp.StatusCode == http.StatusUnprocessableEntity, resp.StatusCode == http.StatusBadRequest:
		return dErrors.Invalid(body.Message, body.Fields...)
	case resp.StatusCode >= 500:
		return dErrors.New(dErrors.CodeUnavailable, body.Message)
	default:
		return dErrors.Newf(dErrors.CodeInternal, "unexpected status %d", resp.StatusCode)
	}
}

package notification

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	id "agora/pkg/domain"
	dErrors "agora/pkg/domain-errors"
)

// Feed is the backend boundary for read-state mutations. The backend owns
// the feed; this store only mirrors it and pushes read-state transitions.
type Feed interface {
	MarkRead(ctx context.Context, notificationID id.NotificationID) error
	MarkAllRead(ctx context.Context) error
}

// Predicate selects notifications for a filtered view.
type Predicate func(Notification) bool

// All matches every notification.
func All() Predicate { return func(Notification) bool { return true } }

// Unread matches notifications not yet read.
func Unread() Predicate { return func(n Notification) bool { return !n.IsRead } }

// ByType matches notifications of one type.
func ByType(t Type) Predicate { return func(n Notification) bool { return n.Type == t } }

// Store holds the notification collection for one session and applies
// read-state mutations optimistically: the flag flips before the network
// call, and rolls back keyed by the pending request's identity if the call
// fails. Keying rollback off request identity (not wall-clock recency)
// means a stale failed request can never clobber a later successful one.
//
// The unread count is always derived by scanning; it is never tracked as a
// separate integer that could drift from the collection.
type Store struct {
	feed   Feed
	logger *slog.Logger

	mu      sync.Mutex
	items   []Notification
	index   map[id.NotificationID]int
	pending map[id.NotificationID]uuid.UUID
	closed  bool
}

// NewStore builds an empty store; Replace syncs it from the backend feed.
func NewStore(feed Feed, logger *slog.Logger) *Store {
	return &Store{
		feed:    feed,
		logger:  logger,
		index:   make(map[id.NotificationID]int),
		pending: make(map[id.NotificationID]uuid.UUID),
	}
}

// Replace installs a fresh snapshot from the backend, ordered by CreatedAt
// descending. Pending optimistic mutations are forgotten: their deferred
// responses will find no matching request identity and be dropped.
func (s *Store) Replace(items []Notification) {
	sorted := make([]Notification, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.items = sorted
	s.index = make(map[id.NotificationID]int, len(sorted))
	for i, n := range sorted {
		s.index[n.ID] = i
	}
	s.pending = make(map[id.NotificationID]uuid.UUID)
}

// Filter returns a lazy view over the current collection in feed order.
// It never mutates the collection or its read state.
func (s *Store) Filter(pred Predicate) iter.Seq[Notification] {
	return func(yield func(Notification) bool) {
		s.mu.Lock()
		snapshot := s.items
		s.mu.Unlock()
		for _, n := range snapshot {
			if !pred(n) {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}

// UnreadCount derives the number of unread notifications from current state.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.items {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// Len reports the collection size.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// MarkRead flips one notification to read optimistically, then confirms with
// the backend. On failure the flag rolls back and the error is returned.
// Marking an already-read notification is a no-op.
func (s *Store) MarkRead(ctx context.Context, notificationID id.NotificationID) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return dErrors.New(dErrors.CodeInvalidInput, "store is closed")
	}
	pos, ok := s.index[notificationID]
	if !ok {
		s.mu.Unlock()
		return dErrors.New(dErrors.CodeNotFound, "unknown notification")
	}
	if s.items[pos].IsRead && s.pending[notificationID] == uuid.Nil {
		s.mu.Unlock()
		return nil
	}

	requestID := uuid.New()
	s.items[pos].IsRead = true
	s.pending[notificationID] = requestID
	s.mu.Unlock()

	err := s.feed.MarkRead(ctx, notificationID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		// Owning component torn down; drop the deferred result.
		return nil
	}
	if s.pending[notificationID] != requestID {
		// A later request superseded this one. Its outcome governs the
		// flag now; this response must not commit or roll back anything.
		if err != nil {
			return classify(err, "mark notification read")
		}
		return nil
	}
	delete(s.pending, notificationID)
	if err != nil {
		if pos, ok := s.index[notificationID]; ok {
			s.items[pos].IsRead = false
		}
		if s.logger != nil {
			s.logger.Warn("rolled back optimistic read flag",
				"notification_id", notificationID.String(),
				"error", err,
			)
		}
		return classify(err, "mark notification read")
	}
	return nil
}

// MarkAllRead flips every unread notification optimistically and confirms
// with the backend in one call. With zero unread items it is a no-op, not an
// error, and no network call is issued. On failure only the notifications
// this call flipped are rolled back; originally-read entries are untouched.
func (s *Store) MarkAllRead(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return dErrors.New(dErrors.CodeInvalidInput, "store is closed")
	}
	requestID := uuid.New()
	var affected []id.NotificationID
	for i := range s.items {
		if !s.items[i].IsRead {
			s.items[i].IsRead = true
			s.pending[s.items[i].ID] = requestID
			affected = append(affected, s.items[i].ID)
		}
	}
	s.mu.Unlock()

	if len(affected) == 0 {
		return nil
	}

	err := s.feed.MarkAllRead(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	for _, nid := range affected {
		if s.pending[nid] != requestID {
			continue
		}
		delete(s.pending, nid)
		if err != nil {
			if pos, ok := s.index[nid]; ok {
				s.items[pos].IsRead = false
			}
		}
	}
	if err != nil {
		return classify(err, "mark all notifications read")
	}
	return nil
}

// classify passes already-coded backend errors through and tags everything
// else as transient so callers can offer a retry.
func classify(err error, op string) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, op)
}

// Close marks the store torn down. Responses arriving afterwards are
// ignored instead of mutating discarded state.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

package notification

import (
	"context"
	"log/slog"
	"sync"

	id "agora/pkg/domain"
)

// Source fetches a user's feed from the backend. The session token rides in
// on the request context.
type Source interface {
	Notifications(ctx context.Context) ([]Notification, error)
}

// Manager hands out one Store per signed-in user. The store is seeded from
// the source on first use and kept in memory until released.
type Manager struct {
	source Source
	feed   Feed
	logger *slog.Logger

	mu     sync.Mutex
	stores map[id.UserID]*Store
}

func NewManager(source Source, feed Feed, logger *slog.Logger) *Manager {
	return &Manager{
		source: source,
		feed:   feed,
		logger: logger,
		stores: make(map[id.UserID]*Store),
	}
}

// StoreFor returns the user's notification store, creating and seeding one
// on first use.
func (m *Manager) StoreFor(ctx context.Context, userID id.UserID) (*Store, error) {
	m.mu.Lock()
	if store, ok := m.stores[userID]; ok {
		m.mu.Unlock()
		return store, nil
	}
	m.mu.Unlock()

	items, err := m.source.Notifications(ctx)
	if err != nil {
		return nil, err
	}
	store := NewStore(m.feed, m.logger)
	store.Replace(items)

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.stores[userID]; ok {
		// Lost the race; the winner's store holds the read-state.
		store.Close()
		return existing, nil
	}
	m.stores[userID] = store
	return store, nil
}

// Sync re-fetches the feed and replaces the user's items. Pending optimistic
// mutations are dropped; the backend's view wins.
func (m *Manager) Sync(ctx context.Context, userID id.UserID) (*Store, error) {
	store, err := m.StoreFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := m.source.Notifications(ctx)
	if err != nil {
		return nil, err
	}
	store.Replace(items)
	return store, nil
}

// Release tears down the user's store. Called on sign-out.
func (m *Manager) Release(userID id.UserID) {
	m.mu.Lock()
	store, ok := m.stores[userID]
	delete(m.stores, userID)
	m.mu.Unlock()
	if ok {
		store.Close()
	}
}

// Close releases every managed store.
func (m *Manager) Close() {
	m.mu.Lock()
	stores := m.stores
	m.stores = make(map[id.UserID]*Store)
	m.mu.Unlock()
	for _, store := range stores {
		store.Close()
	}
}

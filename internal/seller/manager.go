package seller

import (
	"context"
	"log/slog"
	"sync"

	"agora/internal/identity"
	"agora/internal/identity/cache"
	sellermetrics "agora/internal/seller/metrics"
	"agora/internal/seller/store"
	id "agora/pkg/domain"
	dErrors "agora/pkg/domain-errors"
)

// Manager hands out one Workflow per signed-in user, each backed by its own
// session context so a promotion refresh lands before success is reported.
type Manager struct {
	submitter  Submitter
	refresher  identity.Refresher
	identities cache.Cache
	history    store.ApplicationStore
	metrics    *sellermetrics.Metrics
	logger     *slog.Logger

	mu      sync.Mutex
	entries map[id.UserID]*managed
}

type managed struct {
	workflow *Workflow
	sessions *identity.SessionContext
}

func NewManager(
	submitter Submitter,
	refresher identity.Refresher,
	identities cache.Cache,
	history store.ApplicationStore,
	metrics *sellermetrics.Metrics,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		submitter:  submitter,
		refresher:  refresher,
		identities: identities,
		history:    history,
		metrics:    metrics,
		logger:     logger,
		entries:    make(map[id.UserID]*managed),
	}
}

// WorkflowFor returns the user's workflow, creating and starting one on
// first use. Creation resolves the token once so the workflow always holds a
// live identity.
func (m *Manager) WorkflowFor(ctx context.Context, userID id.UserID, sessionToken string) (*Workflow, error) {
	m.mu.Lock()
	if entry, ok := m.entries[userID]; ok {
		m.mu.Unlock()
		return entry.workflow, nil
	}
	m.mu.Unlock()

	sessions := identity.NewSessionContext(
		identity.NewTokenProvider(m.refresher, sessionToken),
		m.refresher,
		m.logger,
	)
	if err := sessions.Start(ctx); err != nil {
		sessions.Close()
		return nil, err
	}
	entry := &managed{
		workflow: NewWorkflow(m.submitter, sessions, m.history, m.metrics, m.logger),
		sessions: sessions,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.entries[userID]; ok {
		// Lost the race; the winner's workflow carries the draft.
		sessions.Close()
		return existing.workflow, nil
	}
	m.entries[userID] = entry
	return entry.workflow, nil
}

// Apply runs one submission end to end: install the draft, submit it, and on
// success retire the workflow so the next application starts fresh. A
// workflow left closed by an earlier terminal rejection is replaced first.
func (m *Manager) Apply(ctx context.Context, userID id.UserID, sessionToken string, draft Draft) (*identity.Identity, error) {
	workflow, err := m.WorkflowFor(ctx, userID, sessionToken)
	if err != nil {
		return nil, err
	}
	if err := workflow.Update(draft); err != nil {
		if !dErrors.HasCode(err, dErrors.CodeConflict) {
			return nil, err
		}
		m.Release(userID)
		workflow, err = m.WorkflowFor(ctx, userID, sessionToken)
		if err != nil {
			return nil, err
		}
		if err := workflow.Update(draft); err != nil {
			return nil, err
		}
	}

	updated, err := workflow.Submit(ctx)
	if err != nil {
		return nil, err
	}
	m.invalidateIdentity(ctx, userID, sessionToken)
	m.Release(userID)
	return updated, nil
}

// invalidateIdentity evicts the cached snapshot for the session after a
// promotion; the next current-user lookup falls through to the backend and
// comes back with the seller tier.
func (m *Manager) invalidateIdentity(ctx context.Context, userID id.UserID, sessionToken string) {
	if m.identities == nil {
		return
	}
	if err := m.identities.Delete(ctx, sessionToken); err != nil && m.logger != nil {
		m.logger.WarnContext(ctx, "failed to evict cached identity after promotion",
			"user_id", userID.String(),
			"error", err,
		)
	}
}

// Release tears down the user's workflow and session context. Called after a
// completed submission or on sign-out.
func (m *Manager) Release(userID id.UserID) {
	m.mu.Lock()
	entry, ok := m.entries[userID]
	delete(m.entries, userID)
	m.mu.Unlock()
	if ok {
		entry.sessions.Close()
	}
}

// Close releases every managed workflow.
func (m *Manager) Close() {
	m.mu.Lock()
	entries := m.entries
	m.entries = make(map[id.UserID]*managed)
	m.mu.Unlock()
	for _, entry := range entries {
		entry.sessions.Close()
	}
}

package seller

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"agora/internal/backend"
	"agora/internal/identity"
	sellermetrics "agora/internal/seller/metrics"
	"agora/internal/seller/store"
	id "agora/pkg/domain"
	dErrors "agora/pkg/domain-errors"
	"agora/pkg/requestcontext"
)

const tracerName = "agora/internal/seller"

// Submitter is the backend boundary for applications.
type Submitter interface {
	SubmitSellerApplication(ctx context.Context, sessionToken string, app backend.ApplicationPayload) (*identity.Identity, error)
}

const (
	stepOne = 1
	stepTwo = 2
)

// Workflow is the application state machine for one identity. The draft
// advances 1→2 only through the step-2 gate and regresses 2→1 only by
// explicit user action; Submit runs at most once concurrently, enforced by
// an in-flight flag rather than queueing duplicates.
type Workflow struct {
	submitter Submitter
	sessions  *identity.SessionContext
	history   store.ApplicationStore
	metrics   *sellermetrics.Metrics
	logger    *slog.Logger
	validate  *validator.Validate
	tracer    trace.Tracer

	mu       sync.Mutex
	draft    *Draft
	step     int
	inFlight bool
}

// NewWorkflow opens a fresh draft at step 1.
func NewWorkflow(
	submitter Submitter,
	sessions *identity.SessionContext,
	history store.ApplicationStore,
	metrics *sellermetrics.Metrics,
	logger *slog.Logger,
) *Workflow {
	return &Workflow{
		submitter: submitter,
		sessions:  sessions,
		history:   history,
		metrics:   metrics,
		logger:    logger,
		validate:  newValidator(),
		tracer:    otel.Tracer(tracerName),
		draft:     &Draft{},
		step:      stepOne,
	}
}

// Update replaces the draft's field values. The step cursor is untouched;
// only Advance and Retreat move it.
func (w *Workflow) Update(draft Draft) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.draft == nil {
		return dErrors.New(dErrors.CodeConflict, "application already closed")
	}
	*w.draft = draft
	return nil
}

// Snapshot returns a copy of the current draft.
func (w *Workflow) Snapshot() (Draft, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.draft == nil {
		return Draft{}, 0
	}
	return *w.draft, w.step
}

// Advance moves the draft to step 2 if the step-2 gate holds. On failure it
// reports the invalid fields; the UI decides presentation.
func (w *Workflow) Advance() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.draft == nil {
		return dErrors.New(dErrors.CodeConflict, "application already closed")
	}
	if w.step == stepTwo {
		return nil
	}
	if err := checkGate(w.validate, *w.draft, stepTwoGate...); err != nil {
		return err
	}
	w.step = stepTwo
	return nil
}

// Retreat moves back to step 1. Only the user does this; validation never
// regresses the cursor.
func (w *Workflow) Retreat() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.draft != nil {
		w.step = stepOne
	}
}

// Cancel discards the draft unconditionally. No partial-submission state
// survives.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft = nil
	w.step = 0
}

// Submit sends the application once. The submit gate must hold, at most one
// submission may be in flight, and on success the identity is re-fetched
// from the role source of truth before success is reported, so the very
// next tier resolution observes the promotion.
func (w *Workflow) Submit(ctx context.Context) (*identity.Identity, error) {
	ctx, span := w.tracer.Start(ctx, "seller.Submit")
	defer span.End()

	w.mu.Lock()
	if w.draft == nil {
		w.mu.Unlock()
		return nil, dErrors.New(dErrors.CodeConflict, "application already closed")
	}
	if w.inFlight {
		w.mu.Unlock()
		return nil, dErrors.New(dErrors.CodeInFlight, "submission already in flight")
	}
	gateFields := append(append([]string{}, stepTwoGate...), submitGateOnly...)
	if err := checkGate(w.validate, *w.draft, gateFields...); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	payload := backend.ApplicationPayload{
		BusinessName: w.draft.BusinessName,
		Description:  w.draft.Description,
		Expertise:    w.draft.Expertise,
		Experience:   w.draft.Experience,
		Portfolio:    w.draft.Portfolio,
		Motivation:   w.draft.Motivation,
	}
	w.inFlight = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.inFlight = false
		w.mu.Unlock()
	}()

	applicant := w.sessions.Current()
	if applicant == nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session expired")
	}

	if w.metrics != nil {
		w.metrics.IncrementSubmitted()
	}
	updated, err := w.submitter.SubmitSellerApplication(ctx, applicant.SessionToken, payload)
	if err != nil {
		w.recordOutcome(ctx, applicant.ID, payload, outcomeOf(err))
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			if w.metrics != nil {
				w.metrics.IncrementRejected()
			}
			// User-correctable: the draft survives for another attempt.
			return nil, err
		}
		if dErrors.HasCode(err, dErrors.CodeConflict) || dErrors.HasCode(err, dErrors.CodeForbidden) {
			// Terminal rejection: nothing left to edit.
			w.Cancel()
		}
		var dErr *dErrors.Error
		if !errors.As(err, &dErr) {
			err = dErrors.Wrap(err, dErrors.CodeUnavailable, "submit application")
		}
		return nil, err
	}

	// Session may have been lost while the call was in flight; committing a
	// promotion against a now-invalid identity would be wrong.
	if w.sessions.Current() == nil {
		w.recordOutcome(ctx, applicant.ID, payload, store.StatusAccepted)
		w.Cancel()
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session expired during submission")
	}

	if err := w.sessions.Refresh(ctx); err != nil {
		// The backend accepted the application but the promotion is not
		// observable yet. Success must not be reported before the resolver
		// can see the new tier.
		w.recordOutcome(ctx, applicant.ID, payload, store.StatusAccepted)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "refresh session after promotion")
	}

	if w.metrics != nil {
		w.metrics.IncrementAccepted()
	}
	w.recordOutcome(ctx, applicant.ID, payload, store.StatusAccepted)
	w.Cancel()
	return updated, nil
}

// recordOutcome appends the submission to the application history. History
// is an audit trail; failures to write it never fail the submission.
func (w *Workflow) recordOutcome(ctx context.Context, applicant id.UserID, payload backend.ApplicationPayload, status store.Status) {
	if w.history == nil {
		return
	}
	app := store.NewApplication(applicant, store.ApplicationFields{
		BusinessName: payload.BusinessName,
		Description:  payload.Description,
		Expertise:    payload.Expertise,
		Experience:   payload.Experience,
		Portfolio:    payload.Portfolio,
		Motivation:   payload.Motivation,
	}, status, requestcontext.Now(ctx))
	if err := w.history.Save(ctx, app); err != nil && w.logger != nil {
		w.logger.WarnContext(ctx, "failed to record application outcome",
			"user_id", applicant.String(),
			"status", string(status),
			"error", err,
		)
	}
}

func outcomeOf(err error) store.Status {
	if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
		return store.StatusRejected
	}
	return store.StatusFailed
}

package seller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"agora/internal/backend"
	"agora/internal/identity"
	"agora/internal/seller/store"
	id "agora/pkg/domain"
	dErrors "agora/pkg/domain-errors"
)

// fakeSubmitter records submissions and can be scripted to fail or block.
type fakeSubmitter struct {
	mu     sync.Mutex
	gate   chan struct{} // when set, SubmitSellerApplication blocks until closed
	err    error
	result *identity.Identity
	calls  int
}

func (f *fakeSubmitter) SubmitSellerApplication(_ context.Context, _ string, _ backend.ApplicationPayload) (*identity.Identity, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	err := f.err
	result := f.result
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type staticProvider struct {
	session *identity.Session
}

func (p *staticProvider) GetSession(context.Context) (*identity.Session, error) {
	return p.session, nil
}

func (p *staticProvider) Subscribe(func(*identity.Session)) (func(), error) {
	return func() {}, nil
}

type swappableRefresher struct {
	mu    sync.Mutex
	ident *identity.Identity
}

func (r *swappableRefresher) CurrentUser(context.Context, string) (*identity.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *r.ident
	return &copied, nil
}

func (r *swappableRefresher) set(ident *identity.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ident = ident
}

func completeDraft() Draft {
	return Draft{
		BusinessName: "Crafts Co",
		Description:  "handmade wooden goods",
		Expertise:    "woodworking",
		Experience:   "five years of commissions",
		Motivation:   "grow the shop",
	}
}

type WorkflowSuite struct {
	suite.Suite
	userID    id.UserID
	submitter *fakeSubmitter
	refresher *swappableRefresher
	sessions  *identity.SessionContext
	history   *store.InMemory
	workflow  *Workflow
}

func TestWorkflowSuite(t *testing.T) {
	suite.Run(t, new(WorkflowSuite))
}

func (s *WorkflowSuite) SetupTest() {
	s.userID = id.UserID(uuid.New())
	buyer := &identity.Identity{ID: s.userID, Email: "buyer@example.com", Tier: id.TierBuyer, SessionToken: "tok-1"}
	seller := &identity.Identity{ID: s.userID, Email: "buyer@example.com", Tier: id.TierSeller}

	s.submitter = &fakeSubmitter{result: seller}
	s.refresher = &swappableRefresher{ident: buyer}
	s.sessions = identity.NewSessionContext(&staticProvider{session: &identity.Session{
		UserID: s.userID,
		Email:  "buyer@example.com",
		Role:   "buyer",
		Token:  "tok-1",
	}}, s.refresher, nil)
	s.Require().NoError(s.sessions.Start(context.Background()))

	s.history = store.NewInMemory()
	s.workflow = NewWorkflow(s.submitter, s.sessions, s.history, nil, nil)
}

func (s *WorkflowSuite) TearDownTest() {
	s.sessions.Close()
}

// Advancing to step 2 requires all three first-step fields, and a
// whitespace-only value counts as missing.
func (s *WorkflowSuite) TestAdvanceGateRejectsEveryIncompleteCombination() {
	values := map[bool]string{true: "filled", false: "   "}

	for i := 0; i < 8; i++ {
		name, desc, expertise := i&1 != 0, i&2 != 0, i&4 != 0
		s.Run(s.gateCaseName(name, desc, expertise), func() {
			wf := NewWorkflow(s.submitter, s.sessions, nil, nil, nil)
			s.Require().NoError(wf.Update(Draft{
				BusinessName: values[name],
				Description:  values[desc],
				Expertise:    values[expertise],
			}))

			err := wf.Advance()
			if name && desc && expertise {
				s.NoError(err)
				_, step := wf.Snapshot()
				s.Equal(2, step)
			} else {
				s.Require().Error(err)
				s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
				_, step := wf.Snapshot()
				s.Equal(1, step, "gate failure must not move the cursor")
			}
		})
	}
}

func (s *WorkflowSuite) gateCaseName(name, desc, expertise bool) string {
	mark := map[bool]string{true: "set", false: "blank"}
	return "name_" + mark[name] + "_desc_" + mark[desc] + "_expertise_" + mark[expertise]
}

func (s *WorkflowSuite) TestAdvanceReportsWireFieldNames() {
	s.Require().NoError(s.workflow.Update(Draft{BusinessName: "Crafts Co"}))

	err := s.workflow.Advance()
	s.Require().Error(err)
	s.ElementsMatch([]string{"description", "expertise"}, dErrors.FieldsOf(err))
}

func (s *WorkflowSuite) TestRetreatReturnsToStepOne() {
	s.Require().NoError(s.workflow.Update(completeDraft()))
	s.Require().NoError(s.workflow.Advance())

	s.workflow.Retreat()

	draft, step := s.workflow.Snapshot()
	s.Equal(1, step)
	s.Equal(completeDraft(), draft, "retreating keeps the entered values")
}

func (s *WorkflowSuite) TestSubmitRequiresSecondStepFields() {
	draft := completeDraft()
	draft.Experience = ""
	draft.Motivation = "  "
	s.Require().NoError(s.workflow.Update(draft))

	_, err := s.workflow.Submit(context.Background())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	s.ElementsMatch([]string{"experience", "motivation"}, dErrors.FieldsOf(err))
	s.Zero(s.submitter.callCount(), "gate failure must not reach the network")
}

func (s *WorkflowSuite) TestPortfolioIsOptional() {
	draft := completeDraft()
	draft.Portfolio = ""
	s.Require().NoError(s.workflow.Update(draft))

	s.seedSellerRefresh()
	_, err := s.workflow.Submit(context.Background())
	s.NoError(err)
}

// Exactly one network call per user action: a submit racing an in-flight
// submit reports AlreadyInFlight instead of duplicating the request.
func (s *WorkflowSuite) TestConcurrentSubmitMakesOneNetworkCall() {
	s.Require().NoError(s.workflow.Update(completeDraft()))
	s.seedSellerRefresh()

	gate := make(chan struct{})
	s.submitter.mu.Lock()
	s.submitter.gate = gate
	s.submitter.mu.Unlock()

	firstDone := make(chan error, 1)
	go func() {
		_, err := s.workflow.Submit(context.Background())
		firstDone <- err
	}()

	s.Require().Eventually(func() bool {
		return s.submitter.callCount() == 1
	}, time.Second, time.Millisecond)

	_, err := s.workflow.Submit(context.Background())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInFlight))

	close(gate)
	s.Require().NoError(<-firstDone)
	s.Equal(1, s.submitter.callCount())
}

// Success is reported only after the refreshed identity is installed, so the
// very next tier resolution already sees the promotion.
func (s *WorkflowSuite) TestSubmitRefreshesTierBeforeReportingSuccess() {
	s.Require().NoError(s.workflow.Update(completeDraft()))
	s.seedSellerRefresh()

	updated, err := s.workflow.Submit(context.Background())
	s.Require().NoError(err)
	s.Equal(id.TierSeller, updated.Tier)

	state := s.sessions.TierState()
	s.Equal(id.TierSeller, state.Tier)
	s.Equal(id.PathSellerDashboard, state.LandingRoute)
	s.Equal("tok-1", s.sessions.Current().SessionToken, "token survives the refresh")
}

func (s *WorkflowSuite) TestSubmitValidationRejectionKeepsDraft() {
	s.Require().NoError(s.workflow.Update(completeDraft()))
	s.submitter.err = dErrors.Invalid("application rejected", "businessName")

	_, err := s.workflow.Submit(context.Background())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	draft, _ := s.workflow.Snapshot()
	s.Equal(completeDraft(), draft, "rejected draft stays editable")
}

func (s *WorkflowSuite) TestSubmitTransientFailureAllowsRetry() {
	s.Require().NoError(s.workflow.Update(completeDraft()))
	s.submitter.err = dErrors.New(dErrors.CodeUnavailable, "backend down")

	_, err := s.workflow.Submit(context.Background())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	s.submitter.mu.Lock()
	s.submitter.err = nil
	s.submitter.mu.Unlock()
	s.seedSellerRefresh()

	_, err = s.workflow.Submit(context.Background())
	s.NoError(err, "a failed submission releases the in-flight flag")
	s.Equal(2, s.submitter.callCount())
}

func (s *WorkflowSuite) TestSubmitWrapsUncodedErrors() {
	s.Require().NoError(s.workflow.Update(completeDraft()))
	s.submitter.err = errors.New("connection reset")

	_, err := s.workflow.Submit(context.Background())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *WorkflowSuite) TestSubmitRecordsHistory() {
	s.Require().NoError(s.workflow.Update(completeDraft()))
	s.seedSellerRefresh()

	_, err := s.workflow.Submit(context.Background())
	s.Require().NoError(err)

	apps, err := s.history.FindByUser(context.Background(), s.userID)
	s.Require().NoError(err)
	s.Require().Len(apps, 1)
	s.Equal(store.StatusAccepted, apps[0].Status)
	s.Equal("Crafts Co", apps[0].Fields.BusinessName)
}

func (s *WorkflowSuite) TestCancelDiscardsDraft() {
	s.Require().NoError(s.workflow.Update(completeDraft()))
	s.workflow.Cancel()

	err := s.workflow.Update(completeDraft())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Zero(s.submitter.callCount())
}

// seedSellerRefresh makes the next Refresh observe the promoted tier, the
// way the real backend does after accepting an application.
func (s *WorkflowSuite) seedSellerRefresh() {
	s.refresher.set(&identity.Identity{ID: s.userID, Email: "buyer@example.com", Tier: id.TierSeller})
}

// Package wizard holds the per-user questionnaire flow:
// welcome → form → selection → result.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"KYCrypto/internal/entitlement"
	"KYCrypto/internal/kv"
	"KYCrypto/internal/logging"
	"KYCrypto/internal/model"
	"KYCrypto/internal/payment"
)

type Step string

const (
	StepWelcome   Step = "welcome"
	StepForm      Step = "form"
	StepSelection Step = "selection"
	StepResult    Step = "result"
)

// ErrWrongStep is returned when an action is not available at the current step.
var ErrWrongStep = errors.New("action not available at this step")

// Recommender produces a portfolio for submitted answers. It never fails.
type Recommender interface {
	Acquire(ctx context.Context, answers model.QuestionnaireAnswers) model.Portfolio
}

// Payments starts a checkout attempt.
type Payments interface {
	Initiate(ctx context.Context) (model.PaymentAttempt, error)
}

type Session struct {
	mu        sync.Mutex
	step      Step
	answers   model.QuestionnaireAnswers
	portfolio *model.Portfolio

	recommender Recommender
	entitlement entitlement.Store
	payments    Payments
	store       kv.Store
	logger      logging.Logger
}

func NewSession(rec Recommender, ent entitlement.Store, pay Payments, store kv.Store, logger logging.Logger) *Session {
	return &Session{
		step:        StepWelcome,
		recommender: rec,
		entitlement: ent,
		payments:    pay,
		store:       store,
		logger:      logger.Named("wizard"),
	}
}

func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Answers returns the answers collected so far.
func (s *Session) Answers() model.QuestionnaireAnswers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers
}

// Allocation returns the held portfolio, if one was produced.
func (s *Session) Allocation() (model.Portfolio, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.portfolio == nil {
		return model.Portfolio{}, false
	}
	return *s.portfolio, true
}

func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepWelcome {
		return fmt.Errorf("start from %s: %w", s.step, ErrWrongStep)
	}
	s.step = StepForm
	return nil
}

// SetAnswers merges partial into the collected answers.
func (s *Session) SetAnswers(partial model.QuestionnaireAnswers) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepForm {
		return fmt.Errorf("set answers at %s: %w", s.step, ErrWrongStep)
	}
	s.answers = s.answers.Merge(partial)
	return nil
}

// Submit validates the answers, obtains a portfolio and moves to selection.
func (s *Session) Submit(ctx context.Context) (model.Portfolio, error) {
	s.mu.Lock()
	if s.step != StepForm {
		s.mu.Unlock()
		return model.Portfolio{}, fmt.Errorf("submit at %s: %w", s.step, ErrWrongStep)
	}
	answers := s.answers
	s.mu.Unlock()

	if err := answers.Validate(); err != nil {
		return model.Portfolio{}, err
	}
	p := s.recommender.Acquire(ctx, answers)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.portfolio = &p
	s.step = StepSelection
	s.logger.Debug("portfolio ready",
		logging.String("type", p.Type), logging.String("source", string(p.Source)))
	return p, nil
}

func (s *Session) Confirm() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepSelection {
		return fmt.Errorf("confirm at %s: %w", s.step, ErrWrongStep)
	}
	s.step = StepResult
	return nil
}

// Back returns to the previous step. Answers are kept.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.step {
	case StepForm:
		s.step = StepWelcome
	case StepSelection:
		s.step = StepForm
	case StepResult:
		s.step = StepSelection
	default:
		return fmt.Errorf("back from %s: %w", s.step, ErrWrongStep)
	}
	return nil
}

// DetailedViewAllowed reports whether the premium analysis is unlocked.
func (s *Session) DetailedViewAllowed(ctx context.Context) bool {
	return s.entitlement.IsActive(ctx)
}

// RequestDetailedView returns true when the view is already unlocked.
// Otherwise it preserves the portfolio and starts a checkout attempt.
func (s *Session) RequestDetailedView(ctx context.Context) (bool, model.PaymentAttempt, error) {
	if s.entitlement.IsActive(ctx) {
		return true, model.PaymentAttempt{}, nil
	}
	p, ok := s.Allocation()
	if !ok || s.Step() != StepResult {
		return false, model.PaymentAttempt{}, fmt.Errorf("detailed view at %s: %w", s.Step(), ErrWrongStep)
	}
	if err := payment.PreservePortfolio(ctx, s.store, p); err != nil {
		s.logger.Warn("preserve portfolio", logging.Err(err))
	}
	attempt, err := s.payments.Initiate(ctx)
	if err != nil {
		return false, model.PaymentAttempt{}, err
	}
	return false, attempt, nil
}

// ResumeAfterRedirect restores a portfolio preserved before a redirect-based
// checkout and returns to the result step.
func (s *Session) ResumeAfterRedirect(ctx context.Context) (bool, error) {
	p, ok, err := payment.RestorePortfolio(ctx, s.store)
	if err != nil || !ok {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.portfolio = &p
	s.step = StepResult
	return true, nil
}

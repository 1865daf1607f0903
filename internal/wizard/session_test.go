package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KYCrypto/internal/entitlement"
	"KYCrypto/internal/kv"
	"KYCrypto/internal/logging"
	"KYCrypto/internal/model"
	"KYCrypto/internal/payment"
	"KYCrypto/internal/recommend"
)

type stubRecommender struct {
	calls int
	got   model.QuestionnaireAnswers
}

func (s *stubRecommender) Acquire(_ context.Context, a model.QuestionnaireAnswers) model.Portfolio {
	s.calls++
	s.got = a
	return recommend.Fallback(a.RiskTolerance)
}

type stubPayments struct {
	calls int
	err   error
}

func (s *stubPayments) Initiate(context.Context) (model.PaymentAttempt, error) {
	s.calls++
	if s.err != nil {
		return model.PaymentAttempt{}, s.err
	}
	return model.PaymentAttempt{ID: "attempt-1", CheckoutURL: "https://pay.test"}, nil
}

func completeAnswers() model.QuestionnaireAnswers {
	return model.QuestionnaireAnswers{
		Age:               "30",
		InvestmentGoal:    "Growth",
		TimeHorizon:       model.HorizonLong,
		RiskTolerance:     model.RiskHigh,
		ExperienceLevel:   model.ExperienceIntermediate,
		InvestmentAmount:  1000,
		VolatilityComfort: "Comfortable",
		MarketExpectation: "Bullish",
	}
}

func newSession() (*Session, *stubRecommender, *stubPayments, *entitlement.KVStore, *kv.MemoryStore) {
	store := kv.NewMemoryStore()
	ent := entitlement.NewKVStore(store, logging.NewNopLogger())
	rec := &stubRecommender{}
	pay := &stubPayments{}
	return NewSession(rec, ent, pay, store, logging.NewNopLogger()), rec, pay, ent, store
}

func TestWizardHappyPath(t *testing.T) {
	s, rec, _, _, _ := newSession()
	assert.Equal(t, StepWelcome, s.Step())

	require.NoError(t, s.Start())
	require.NoError(t, s.SetAnswers(model.QuestionnaireAnswers{Age: "30", RiskTolerance: model.RiskLow}))
	full := completeAnswers()
	full.Age = ""
	require.NoError(t, s.SetAnswers(full))
	assert.Equal(t, "30", s.Answers().Age)
	assert.Equal(t, model.RiskHigh, s.Answers().RiskTolerance)

	p, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, StepSelection, s.Step())
	held, ok := s.Allocation()
	require.True(t, ok)
	assert.Equal(t, p.Type, held.Type)

	require.NoError(t, s.Confirm())
	assert.Equal(t, StepResult, s.Step())
}

func TestSubmitRejectsIncompleteAnswers(t *testing.T) {
	s, rec, _, _, _ := newSession()
	require.NoError(t, s.Start())
	require.NoError(t, s.SetAnswers(model.QuestionnaireAnswers{Age: "30"}))

	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, model.ErrInvalidAnswers)
	assert.Zero(t, rec.calls)
	assert.Equal(t, StepForm, s.Step())
}

func TestStepGuards(t *testing.T) {
	s, _, _, _, _ := newSession()
	assert.ErrorIs(t, s.SetAnswers(completeAnswers()), ErrWrongStep)
	assert.ErrorIs(t, s.Confirm(), ErrWrongStep)
	assert.ErrorIs(t, s.Back(), ErrWrongStep)
	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrWrongStep)

	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), ErrWrongStep)
}

func TestBackKeepsAnswers(t *testing.T) {
	s, _, _, _, _ := newSession()
	require.NoError(t, s.Start())
	require.NoError(t, s.SetAnswers(completeAnswers()))
	_, err := s.Submit(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Confirm())

	require.NoError(t, s.Back())
	assert.Equal(t, StepSelection, s.Step())
	require.NoError(t, s.Back())
	assert.Equal(t, StepForm, s.Step())
	assert.Equal(t, completeAnswers(), s.Answers())
	require.NoError(t, s.Back())
	assert.Equal(t, StepWelcome, s.Step())
}

func TestRequestDetailedViewWhenEntitled(t *testing.T) {
	s, _, pay, ent, _ := newSession()
	require.NoError(t, ent.Grant(context.Background(), 0))

	allowed, _, err := s.RequestDetailedView(context.Background())
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.True(t, s.DetailedViewAllowed(context.Background()))
	assert.Zero(t, pay.calls)
}

func TestRequestDetailedViewStartsCheckout(t *testing.T) {
	s, _, pay, _, store := newSession()
	require.NoError(t, s.Start())
	require.NoError(t, s.SetAnswers(completeAnswers()))
	_, err := s.Submit(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Confirm())

	allowed, attempt, err := s.RequestDetailedView(context.Background())
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, "attempt-1", attempt.ID)
	assert.Equal(t, 1, pay.calls)

	_, ok, _ := store.Get(context.Background(), payment.KeyPendingPortfolio)
	assert.True(t, ok)

	resumed := NewSession(&stubRecommender{}, entitlement.NewKVStore(store, logging.NewNopLogger()), pay, store, logging.NewNopLogger())
	ok, err = resumed.ResumeAfterRedirect(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StepResult, resumed.Step())
	p, _ := resumed.Allocation()
	orig, _ := s.Allocation()
	assert.Equal(t, orig.Type, p.Type)
}

func TestRequestDetailedViewPaymentError(t *testing.T) {
	s, _, pay, _, _ := newSession()
	pay.err = model.ErrAttemptInFlight

	_, _, err := s.RequestDetailedView(context.Background())
	assert.ErrorIs(t, err, ErrWrongStep)

	require.NoError(t, s.Start())
	require.NoError(t, s.SetAnswers(completeAnswers()))
	_, err = s.Submit(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Confirm())
	_, _, err = s.RequestDetailedView(context.Background())
	assert.True(t, errors.Is(err, model.ErrAttemptInFlight))
}

func TestResumeWithoutPreservedPortfolio(t *testing.T) {
	s, _, _, _, _ := newSession()
	ok, err := s.ResumeAfterRedirect(context.Background())
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, StepWelcome, s.Step())
}

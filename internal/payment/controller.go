// Package payment drives a single checkout attempt from initiation to exactly
// one terminal outcome. Two independent events can end an attempt: the
// checkout surface closing and the return address carrying a status
// parameter. Whichever is observed first wins.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"KYCrypto/internal/entitlement"
	"KYCrypto/internal/kv"
	"KYCrypto/internal/logging"
	"KYCrypto/internal/metrics"
	"KYCrypto/internal/model"
	"KYCrypto/internal/notifier"
	"KYCrypto/internal/recorder"
)

const pollInterval = 500 * time.Millisecond

// Deps are the collaborators of a Controller. Checkout, Storage and
// Entitlement are required.
type Deps struct {
	Checkout    CheckoutProvider
	Opener      SurfaceOpener
	Verifier    Verifier
	Entitlement entitlement.Store
	Storage     kv.Store
	Address     AddressCleaner
	Callbacks   notifier.Callbacks
	Recorder    recorder.Recorder
	Metrics     *metrics.Metrics
	Logger      logging.Logger
}

// Settings are the static parameters of a Controller.
type Settings struct {
	Location Location
	Screen   ScreenSize
	// TTL of a granted entitlement. Zero means entitlement.DefaultTTL,
	// negative means it never expires.
	TTL time.Duration
}

// Controller is the payment flow state machine. It is safe for concurrent
// use; events are serialized so each attempt resolves once. Callbacks run
// while the controller is still in its terminal state, so a new attempt can
// only be initiated after they return.
type Controller struct {
	d Deps
	s Settings

	now      func() time.Time
	interval time.Duration

	base     context.Context
	shutdown context.CancelFunc

	mu       sync.Mutex
	state    model.PaymentState
	attempt  *model.PaymentAttempt
	stopPoll context.CancelFunc
	polling  sync.WaitGroup
	last     *model.PaymentResult
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func NewController(d Deps, s Settings, opts ...Option) *Controller {
	if d.Address == nil {
		d.Address = NoopAddress{}
	}
	if d.Recorder == nil {
		d.Recorder = recorder.NewNoopRecorder()
	}
	if d.Logger == nil {
		d.Logger = logging.NewNopLogger()
	}
	d.Logger = d.Logger.Named("payment")
	if s.TTL == 0 {
		s.TTL = entitlement.DefaultTTL
	}
	base, cancel := context.WithCancel(context.Background())
	c := &Controller{
		d:        d,
		s:        s,
		now:      time.Now,
		interval: pollInterval,
		base:     base,
		shutdown: cancel,
		state:    model.PaymentIdle,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() model.PaymentState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attempt returns the in-flight attempt, if any.
func (c *Controller) Attempt() (model.PaymentAttempt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attempt == nil {
		return model.PaymentAttempt{}, false
	}
	return *c.attempt, true
}

// LastResult returns the most recent terminal result.
func (c *Controller) LastResult() (model.PaymentResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return model.PaymentResult{}, false
	}
	return *c.last, true
}

// Initiate starts a new attempt: it obtains the checkout URL, records the
// pending marker, opens the checkout surface and starts close detection.
// A checkout creation error resolves the attempt as a failure and is returned.
func (c *Controller) Initiate(ctx context.Context) (model.PaymentAttempt, error) {
	now := c.now()
	c.mu.Lock()
	if c.state != model.PaymentIdle {
		c.mu.Unlock()
		return model.PaymentAttempt{}, model.ErrAttemptInFlight
	}
	id := uuid.NewString()
	attempt := &model.PaymentAttempt{
		ID:        id,
		StartedAt: now,
		ReturnURL: c.s.Location.ReturnURL(StatusSuccess, id, now),
	}
	c.attempt = attempt
	c.state = model.PaymentAwaitingCheckout
	log := c.d.Logger.With(logging.String("attempt", id))
	// Markers are written before any event can resolve the attempt, so the
	// cleanup in resolve always runs after them.
	if err := c.d.Storage.Set(ctx, KeyPending, id); err != nil {
		log.Warn("write pending marker", logging.Err(err))
	}
	if err := c.d.Storage.Delete(ctx, KeyPendingSuccess); err != nil {
		log.Warn("clear stale success marker", logging.Err(err))
	}
	c.mu.Unlock()

	c.d.Metrics.PaymentAttempt()

	target, err := c.d.Checkout.CheckoutURL(ctx, attempt.ReturnURL, c.s.Location.ReturnURL(StatusCancelled, id, now))
	if err != nil {
		err = fmt.Errorf("%w: %v", model.ErrCheckoutCreation, err)
		log.Error("checkout creation failed", logging.Err(err))
		c.resolve(ctx, id, model.TriggerCheckoutError, func(context.Context) verdict {
			return verdict{outcome: model.OutcomeFailure, reason: "checkout creation failed", err: err}
		})
		return model.PaymentAttempt{}, err
	}

	c.mu.Lock()
	if c.attempt == nil || c.attempt.ID != id {
		c.mu.Unlock()
		return *attempt, nil
	}
	c.attempt.CheckoutURL = target
	attempt = c.attempt
	c.mu.Unlock()

	if c.d.Opener == nil {
		log.Info("checkout ready, no surface opener configured")
		return *attempt, nil
	}
	surface, ok := c.d.Opener.Open(target, SurfaceName, CenteredFeatures(c.s.Screen))
	if !ok || surface == nil {
		log.Warn("checkout surface could not be opened, waiting for return address")
		return *attempt, nil
	}
	surface.Focus()
	c.startPoll(id, surface)
	log.Info("checkout opened")
	return *attempt, nil
}

func (c *Controller) startPoll(id string, surface Surface) {
	ctx, cancel := context.WithCancel(c.base)
	c.mu.Lock()
	if c.attempt == nil || c.attempt.ID != id || c.state != model.PaymentAwaitingCheckout {
		c.mu.Unlock()
		cancel()
		return
	}
	c.stopPoll = cancel
	c.polling.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.polling.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if surface.Closed() {
					c.SurfaceClosed(c.base, id)
					return
				}
			}
		}
	}()
}

// SurfaceClosed reports that the checkout surface of attemptID went away.
// The outcome is success only if the trusted landing page left a success
// marker; otherwise the attempt is abandoned.
func (c *Controller) SurfaceClosed(ctx context.Context, attemptID string) {
	c.resolve(ctx, attemptID, model.TriggerSurfaceClosed, c.checkMarker)
}

// ReturnDetected handles a load of the return address. It is a no-op when
// params carry no status. A status for an attempt that already resolved is
// ignored, as is a non-success status with no attempt in flight. A success
// status with no matching attempt is still verified before any entitlement
// is granted.
func (c *Controller) ReturnDetected(ctx context.Context, params url.Values) (model.PaymentResult, bool) {
	status := params.Get(ParamStatus)
	if status == "" {
		return model.PaymentResult{}, false
	}
	attemptID := params.Get(ParamAttempt)
	lastResolved := c.storedLastResolved(ctx)

	c.mu.Lock()
	switch {
	case c.state == model.PaymentAwaitingCheckout && c.attempt != nil && (attemptID == "" || attemptID == c.attempt.ID):
		attemptID = c.attempt.ID
	case c.state == model.PaymentIdle:
		if attemptID != "" && c.resolvedBefore(attemptID, lastResolved) {
			c.mu.Unlock()
			c.ignoreReturn("return for resolved attempt ignored", attemptID)
			return model.PaymentResult{}, false
		}
		if status != StatusSuccess {
			c.mu.Unlock()
			c.ignoreReturn("return without attempt in flight ignored", attemptID)
			return model.PaymentResult{}, false
		}
		if attemptID == "" {
			attemptID = uuid.NewString()
		}
		c.attempt = &model.PaymentAttempt{ID: attemptID, StartedAt: c.now()}
		c.state = model.PaymentAwaitingCheckout
	default:
		c.mu.Unlock()
		return model.PaymentResult{}, false
	}
	c.mu.Unlock()

	return c.resolve(ctx, attemptID, model.TriggerReturnParameter, func(ctx context.Context) verdict {
		v := c.checkReturn(ctx, params)
		if v.outcome == model.OutcomeSuccess || status == StatusCancelled {
			return v
		}
		// The landing page may already have verified this payment.
		if m := c.checkMarker(ctx); m.outcome == model.OutcomeSuccess {
			return m
		}
		return v
	})
}

func (c *Controller) ignoreReturn(msg, attemptID string) {
	c.d.Address.StripParams(returnParams...)
	c.d.Logger.Debug(msg, logging.String("attempt", attemptID))
}

// MarkPendingSuccess is called by the landing page loaded inside the
// checkout surface. The success marker is written only after the return
// token has been verified.
// It does nothing unless params belong to the attempt awaiting checkout.
func (c *Controller) MarkPendingSuccess(ctx context.Context, params url.Values) (bool, error) {
	if params.Get(ParamStatus) != StatusSuccess {
		return false, nil
	}
	attemptID := params.Get(ParamAttempt)
	if !c.awaiting(attemptID) {
		return false, nil
	}
	v := c.checkReturn(ctx, params)
	if v.outcome != model.OutcomeSuccess {
		return false, v.err
	}
	if err := c.d.Storage.Set(ctx, KeyPendingSuccess, "true"); err != nil {
		return false, err
	}
	if !c.awaiting(attemptID) {
		// Resolved while verifying; its cleanup may already have run.
		if err := c.d.Storage.Delete(ctx, KeyPendingSuccess); err != nil {
			c.d.Logger.Warn("clear late success marker", logging.Err(err))
		}
		return false, nil
	}
	return true, nil
}

// awaiting reports whether an attempt matching attemptID (any attempt when
// empty) is awaiting checkout.
func (c *Controller) awaiting(attemptID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == model.PaymentAwaitingCheckout && c.attempt != nil &&
		(attemptID == "" || attemptID == c.attempt.ID)
}

// Close stops close detection. It must not be called from a callback.
func (c *Controller) Close() {
	c.shutdown()
	c.polling.Wait()
}

type verdict struct {
	outcome model.PaymentOutcome
	reason  string
	err     error
}

func (c *Controller) checkReturn(ctx context.Context, params url.Values) verdict {
	switch status := params.Get(ParamStatus); status {
	case StatusCancelled:
		return verdict{outcome: model.OutcomeFailure, reason: "checkout cancelled"}
	case StatusSuccess:
		if c.d.Verifier == nil {
			return verdict{outcome: model.OutcomeFailure, reason: "no verifier configured", err: model.ErrVerification}
		}
		token := params.Get(ParamSessionID)
		if token == "" {
			token = status
		}
		ok, err := c.d.Verifier.Verify(ctx, token)
		if err != nil {
			return verdict{outcome: model.OutcomeFailure, reason: "verification failed", err: fmt.Errorf("%w: %v", model.ErrVerification, err)}
		}
		if !ok {
			return verdict{outcome: model.OutcomeFailure, reason: "payment not verified", err: model.ErrVerification}
		}
		return verdict{outcome: model.OutcomeSuccess, reason: "verified"}
	default:
		return verdict{outcome: model.OutcomeFailure, reason: "unknown payment status " + status}
	}
}

func (c *Controller) checkMarker(ctx context.Context) verdict {
	v, ok, err := c.d.Storage.Get(ctx, KeyPendingSuccess)
	if err != nil {
		c.d.Logger.Warn("read success marker", logging.Err(err))
	}
	if ok && v == "true" {
		return verdict{outcome: model.OutcomeSuccess, reason: "success marker"}
	}
	return verdict{outcome: model.OutcomeAbandoned, reason: "checkout closed without payment"}
}

func (c *Controller) storedLastResolved(ctx context.Context) string {
	v, ok, err := c.d.Storage.Get(ctx, KeyLastResolved)
	if err != nil || !ok {
		return ""
	}
	return v
}

// resolvedBefore is called with c.mu held. stored is the persisted id of the
// last resolved attempt, read before locking.
func (c *Controller) resolvedBefore(attemptID, stored string) bool {
	if c.last != nil && c.last.AttemptID == attemptID {
		return true
	}
	return stored == attemptID
}

// resolve is the single entry to a terminal state. The first caller for the
// current attempt moves it to RESOLVING; later callers return immediately.
func (c *Controller) resolve(ctx context.Context, attemptID string, trigger model.ResolveTrigger, decide func(context.Context) verdict) (model.PaymentResult, bool) {
	c.mu.Lock()
	if c.state != model.PaymentAwaitingCheckout || c.attempt == nil || c.attempt.ID != attemptID {
		c.mu.Unlock()
		return model.PaymentResult{}, false
	}
	c.state = model.PaymentResolving
	if c.stopPoll != nil {
		c.stopPoll()
		c.stopPoll = nil
	}
	c.mu.Unlock()

	v := decide(ctx)
	granted := false
	if v.outcome == model.OutcomeSuccess {
		if err := c.d.Entitlement.Grant(ctx, c.s.TTL); err != nil {
			v = verdict{outcome: model.OutcomeFailure, reason: "grant entitlement failed", err: err}
		} else {
			granted = true
			c.d.Metrics.EntitlementGranted()
		}
	}

	if err := c.d.Storage.Delete(ctx, KeyPending, KeyPendingSuccess); err != nil {
		c.d.Logger.Warn("clear payment markers", logging.Err(err))
	}
	if err := c.d.Storage.Set(ctx, KeyLastResolved, attemptID); err != nil {
		c.d.Logger.Warn("remember resolved attempt", logging.Err(err))
	}
	if granted || trigger == model.TriggerReturnParameter {
		c.d.Address.StripParams(returnParams...)
	}

	result := model.PaymentResult{
		AttemptID:  attemptID,
		Outcome:    v.outcome,
		Trigger:    trigger,
		Reason:     v.reason,
		Err:        v.err,
		ResolvedAt: c.now(),
	}

	c.mu.Lock()
	if v.outcome == model.OutcomeSuccess {
		c.state = model.PaymentSuccess
	} else {
		c.state = model.PaymentFailure
	}
	c.last = &result
	c.attempt = nil
	c.mu.Unlock()

	c.d.Metrics.PaymentOutcome(string(result.Outcome), string(result.Trigger))
	if err := c.d.Recorder.RecordPayment(&recorder.PaymentEvent{
		AttemptID: attemptID,
		Outcome:   string(result.Outcome),
		Trigger:   string(result.Trigger),
		Reason:    result.Reason,
		Granted:   granted,
		At:        result.ResolvedAt,
	}); err != nil {
		c.d.Logger.Warn("record payment", logging.Err(err))
	}

	fields := []logging.Field{
		logging.String("attempt", attemptID),
		logging.String("outcome", string(result.Outcome)),
		logging.String("trigger", string(result.Trigger)),
		logging.String("reason", result.Reason),
	}
	if result.Err != nil && !errors.Is(result.Err, context.Canceled) {
		fields = append(fields, logging.Err(result.Err))
	}
	c.d.Logger.Info("payment resolved", fields...)

	c.d.Callbacks.Deliver(result)

	c.mu.Lock()
	c.state = model.PaymentIdle
	c.mu.Unlock()
	return result, true
}

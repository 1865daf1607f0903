// Package recommend turns questionnaire answers into an allocation. Acquire
// never fails: every fault is absorbed by the risk-adjusted fallback table.
package recommend

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"KYCrypto/internal/logging"
	"KYCrypto/internal/metrics"
	"KYCrypto/internal/model"
	"KYCrypto/internal/recorder"
)

// MarketSource looks up live metrics by asset name. Ensure is called once
// per batch before any Lookup.
type MarketSource interface {
	Ensure(ctx context.Context) error
	Lookup(name string) (model.MarketQuote, bool)
}

// Acquirer orchestrates prompt, service call, validation, enrichment and fallback.
type Acquirer struct {
	generator Generator
	market    MarketSource
	recorder  recorder.Recorder
	metrics   *metrics.Metrics
	logger    logging.Logger
}

// NewAcquirer creates an Acquirer. market, rec and m may be nil.
func NewAcquirer(gen Generator, market MarketSource, rec recorder.Recorder, m *metrics.Metrics, logger logging.Logger) *Acquirer {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Acquirer{
		generator: gen,
		market:    market,
		recorder:  rec,
		metrics:   m,
		logger:    logger.Named("recommend"),
	}
}

// Acquire returns a valid portfolio for answers.
func (a *Acquirer) Acquire(ctx context.Context, answers model.QuestionnaireAnswers) (p model.Portfolio) {
	var fault error
	defer func() {
		if r := recover(); r != nil {
			fault = fmt.Errorf("%w: panic: %v", model.ErrRecommendationFault, r)
			a.metrics.RecommendationFault("panic")
			p = Fallback(answers.RiskTolerance)
		}
		if fault != nil {
			a.logger.Warn("using fallback portfolio",
				logging.String("risk_tolerance", string(answers.RiskTolerance)), logging.Err(fault))
		}
		p.Allocation = WithAmounts(p.Allocation, answers.InvestmentAmount)
		a.metrics.Recommendation(string(p.Source))
		a.record(answers, p, fault)
	}()

	if a.generator == nil {
		fault = fmt.Errorf("%w: no recommendation service configured", model.ErrRecommendationFault)
		a.metrics.RecommendationFault("network")
		return Fallback(answers.RiskTolerance)
	}

	raw, err := a.generator.Generate(ctx, BuildPrompt(answers))
	if err != nil {
		fault = fmt.Errorf("%w: %v", model.ErrRecommendationFault, err)
		a.metrics.RecommendationFault("network")
		return Fallback(answers.RiskTolerance)
	}

	portfolio, err := ParseRecommendation(raw)
	if err != nil {
		fault = err
		a.metrics.RecommendationFault("parse")
		return Fallback(answers.RiskTolerance)
	}

	if a.market != nil {
		portfolio.Allocation = Enrich(ctx, portfolio.Allocation, a.market)
	}
	a.logger.Info("portfolio recommendation accepted",
		logging.String("type", portfolio.Type), logging.Int("entries", len(portfolio.Allocation)))
	return portfolio
}

func (a *Acquirer) record(answers model.QuestionnaireAnswers, p model.Portfolio, fault error) {
	evt := &recorder.RecommendationEvent{
		Source:        string(p.Source),
		PortfolioType: p.Type,
		RiskTolerance: string(answers.RiskTolerance),
		TotalValue:    model.TotalValue(p.Allocation),
		Entries:       len(p.Allocation),
		At:            time.Now(),
	}
	if fault != nil {
		evt.Fault = fault.Error()
	}
	if err := a.recorder.RecordRecommendation(evt); err != nil {
		a.logger.Error("record recommendation", logging.Err(err))
	}
}

// Enrich overlays live market metrics. Entries without a quote get N/A
// placeholders; nothing here fails the batch.
func Enrich(ctx context.Context, entries []model.AllocationEntry, market MarketSource) []model.AllocationEntry {
	out := make([]model.AllocationEntry, len(entries))
	// A failed fill leaves the cache empty and every entry gets placeholders.
	_ = market.Ensure(ctx)
	for i, e := range entries {
		q, ok := market.Lookup(e.Name)
		if !ok {
			e.MarketCap = model.NotAvailable
			e.Volume = model.NotAvailable
			e.PercentChange24h = nil
			out[i] = e
			continue
		}
		e.MarketCap = q.MarketCap
		e.Volume = q.Volume
		change := q.PercentChange24h
		e.PercentChange24h = &change
		e.Volatility = fmt.Sprintf("%.2f%%", math.Abs(change))
		out[i] = e
	}
	return out
}

// WithAmounts sets each entry's currency amount from its share of total,
// rounded to cents. A non-positive total leaves amounts unset.
func WithAmounts(entries []model.AllocationEntry, total float64) []model.AllocationEntry {
	if total <= 0 {
		return entries
	}
	t := decimal.NewFromFloat(total)
	hundred := decimal.NewFromInt(100)
	out := make([]model.AllocationEntry, len(entries))
	for i, e := range entries {
		amount, _ := decimal.NewFromFloat(e.Value).Mul(t).Div(hundred).Round(2).Float64()
		e.Amount = &amount
		out[i] = e
	}
	return out
}

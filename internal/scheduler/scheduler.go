package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"KYCrypto/internal/logging"
	"KYCrypto/internal/metrics"
)

// Refresher reloads cached market data.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler runs background cron tasks.
type Scheduler struct {
	Cron    *cron.Cron
	Market  Refresher
	Metrics *metrics.Metrics
	Ctx     context.Context

	timeout time.Duration
	logger  logging.Logger
}

// NewScheduler creates a Scheduler with second-resolution cron specs.
func NewScheduler(ctx context.Context, market Refresher, m *metrics.Metrics, logger logging.Logger) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Market:  market,
		Metrics: m,
		Ctx:     ctx,
		timeout: 30 * time.Second,
		logger:  logger.Named("scheduler"),
	}
}

// RegisterAll registers the market refresh task.
func (s *Scheduler) RegisterAll(marketRefreshCron string) error {
	if _, err := s.Cron.AddFunc(marketRefreshCron, s.refreshMarket); err != nil {
		return fmt.Errorf("register market refresh: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info("scheduler started", logging.Int("entries", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RefreshNow runs the market refresh immediately.
func (s *Scheduler) RefreshNow() {
	s.refreshMarket()
}

func (s *Scheduler) refreshMarket() {
	ctx, cancel := context.WithTimeout(s.Ctx, s.timeout)
	defer cancel()
	if err := s.Market.Refresh(ctx); err != nil {
		s.Metrics.MarketRefreshFailed()
		s.logger.Error("market refresh", logging.Err(err))
	}
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"KYCrypto/internal/collector"
	"KYCrypto/internal/config"
	"KYCrypto/internal/entitlement"
	"KYCrypto/internal/kv"
	"KYCrypto/internal/logging"
	"KYCrypto/internal/metrics"
	"KYCrypto/internal/recommend"
	"KYCrypto/internal/recorder"
)

// app holds the components shared by every command.
type app struct {
	cfg      *config.Config
	logger   logging.Logger
	store    kv.Store
	ent      *entitlement.KVStore
	recorder recorder.Recorder
	metrics  *metrics.Metrics
	market   *collector.Snapshot
	acquirer *recommend.Acquirer

	closers []func() error
}

// newApp loads configuration and opens storage. validate is false for
// commands that only touch local state.
func newApp(configPath string, validate bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config validation: %w", err)
		}
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &app{cfg: cfg, logger: logger, metrics: metrics.New()}

	for _, path := range []string{cfg.Storage.SQLitePath, cfg.Storage.AuditPath} {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	a.store = store
	a.closers = append(a.closers, store.Close)
	logger.Info("storage ready", logging.String("driver", cfg.Storage.Driver))

	a.ent = entitlement.NewKVStore(store, logger)

	if sr, err := recorder.NewSQLiteRecorder(cfg.Storage.AuditPath); err != nil {
		logger.Warn("init sqlite recorder failed, using noop", logging.Err(err))
		a.recorder = recorder.NewNoopRecorder()
	} else {
		a.recorder = sr
		a.closers = append(a.closers, sr.Close)
	}

	var fetcher collector.Fetcher = &collector.MockFetcher{}
	if cfg.Market.BaseURL != "" {
		fetcher = collector.NewHTTPFetcher(cfg.Market.BaseURL, cfg.Market.APIKey, cfg.Proxy)
	}
	a.market = collector.NewSnapshot(fetcher, cfg.Market.Assets, logger)

	var gen recommend.Generator
	if cfg.Recommend.BaseURL != "" {
		gen = recommend.NewClient(cfg.Recommend.BaseURL, cfg.Recommend.Timeout, cfg.Proxy)
	}
	a.acquirer = recommend.NewAcquirer(gen, a.market, a.recorder, a.metrics, logger)
	return a, nil
}

func openStore(cfg *config.Config) (kv.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return kv.NewMemoryStore(), nil
	case config.DriverFile:
		return kv.NewFileStore(cfg.Storage.FilePath)
	case config.DriverRedis:
		r := cfg.Storage.Redis
		return kv.NewRedisStore(kv.RedisConfig{Addr: r.Addr, Password: r.Password, DB: r.DB, Prefix: r.Prefix})
	default:
		return kv.NewSQLiteStore(cfg.Storage.SQLitePath)
	}
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close", logging.Err(err))
		}
	}
	_ = a.logger.Sync()
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"KYCrypto/internal/api"
	"KYCrypto/internal/logging"
	"KYCrypto/internal/model"
	"KYCrypto/internal/notifier"
	"KYCrypto/internal/payment"
	"KYCrypto/internal/scheduler"
	"KYCrypto/internal/wizard"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the market refresh schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts.configPath, true)
			if err != nil {
				return err
			}
			defer a.Close()
			return serve(a)
		},
	}
}

func serve(a *app) error {
	cfg := a.cfg
	log := a.logger
	log.Info("KYCrypto starting", logging.String("version", version))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var checkout payment.CheckoutProvider = payment.HostedCheckout{BaseURL: cfg.Checkout.URL}
	if cfg.Checkout.SessionURL != "" {
		checkout = payment.NewSessionCheckout(cfg.Checkout.SessionURL, cfg.Checkout.PriceID)
	}
	log.Info("checkout provider configured", logging.Bool("session", cfg.Checkout.SessionURL != ""))

	callbacks := notifier.Callbacks{
		OnSuccess: func(r model.PaymentResult) {
			log.Info("detailed analysis unlocked", logging.String("attempt", r.AttemptID))
		},
		OnFailure: func(r model.PaymentResult) {
			log.Info("payment not completed",
				logging.String("attempt", r.AttemptID), logging.String("outcome", string(r.Outcome)))
		},
	}
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
	if tn.Enabled() {
		callbacks = callbacks.Chain(notifier.AlertCallbacks(ctx, tn, cfg.Telegram.AlertFailures, log))
		log.Info("telegram alerts enabled")
	}

	surfaces := &payment.RemoteOpener{}
	payments := payment.NewController(payment.Deps{
		Checkout:    checkout,
		Opener:      surfaces,
		Verifier:    payment.NewHTTPVerifier(cfg.Checkout.VerifyURL),
		Entitlement: a.ent,
		Storage:     a.store,
		Callbacks:   callbacks,
		Recorder:    a.recorder,
		Metrics:     a.metrics,
		Logger:      log,
	}, payment.Settings{
		Location: cfg.Server.Location,
		Screen:   cfg.Server.Screen,
		TTL:      cfg.Entitlement.TTL,
	})
	defer payments.Close()

	router := api.NewRouter(api.RouterConfig{
		Recommender: a.acquirer,
		Entitlement: a.ent,
		Payments:    payments,
		Surfaces:    surfaces,
		Market:      a.market,
		Wizard:      wizard.NewSession(a.acquirer, a.ent, payments, a.store, log),
		Metrics:     a.metrics,
		Logger:      log,
		Version:     version,
	})
	srv := api.NewServer(cfg.Server.Addr, router, log)

	sched := scheduler.NewScheduler(ctx, a.market, a.metrics, log)
	if err := sched.RegisterAll(cfg.Schedule.MarketRefreshCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()
	go sched.RefreshNow()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	log.Info("KYCrypto is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info("shutdown signal received, stopping")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	cancel()
	if err := srv.Stop(context.Background()); err != nil {
		log.Error("stop http server", logging.Err(err))
	}
	log.Info("KYCrypto stopped")
	return nil
}

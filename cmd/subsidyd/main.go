// Command subsidyd runs the subsidized meta-transaction orchestrator as an
// HTTP service.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/waldyrious/celo-monorepo/pkg/api"
	"github.com/waldyrious/celo-monorepo/pkg/audit"
	"github.com/waldyrious/celo-monorepo/pkg/config"
	"github.com/waldyrious/celo-monorepo/pkg/crypto"
	"github.com/waldyrious/celo-monorepo/pkg/escalation"
	"github.com/waldyrious/celo-monorepo/pkg/identity"
	"github.com/waldyrious/celo-monorepo/pkg/ledger"
	"github.com/waldyrious/celo-monorepo/pkg/metering"
	"github.com/waldyrious/celo-monorepo/pkg/observability"
	"github.com/waldyrious/celo-monorepo/pkg/policy"
	"github.com/waldyrious/celo-monorepo/pkg/pricing"
	"github.com/waldyrious/celo-monorepo/pkg/subsidy"

	_ "github.com/lib/pq" // Postgres driver
)

func main() {
	if err := run(); err != nil {
		slog.Error("subsidyd failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)
	logger := slog.Default().With("component", "subsidyd")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	admin, err := identity.ParseAddress(cfg.AdminAddress)
	if err != nil {
		return fmt.Errorf("SUBSIDY_ADMIN_ADDRESS: %w", err)
	}
	relay, err := identity.ParseAddress(cfg.RelayAddress)
	if err != nil {
		return fmt.Errorf("SUBSIDY_RELAY_ADDRESS: %w", err)
	}

	profile, err := config.LoadProfile(cfg.ProfilePath)
	if err != nil {
		return err
	}
	logger.Info("profile loaded", "name", profile.Name, "limit", profile.MaxUnitsPerRequest)

	obsCfg := observability.DefaultConfig()
	obsCfg.OTLPEndpoint = cfg.OTLPEndpoint
	obsCfg.Enabled = cfg.OTelEnabled
	obs, err := observability.New(ctx, obsCfg)
	if err != nil {
		return fmt.Errorf("observability init: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			logger.Error("observability shutdown failed", "error", err)
		}
	}()

	pol, err := policy.New(admin, policy.Config{MaxUnitsPerRequest: profile.MaxUnitsPerRequest})
	if err != nil {
		return err
	}

	prices := make(map[identity.Operation]uint64, len(profile.UnitPrices))
	for _, p := range profile.UnitPrices {
		prices[identity.OperationFromName(p.Operation)] = p.UnitPrice
	}
	oracle := pricing.NewStaticOracle(prices)

	meter, closeMeter, err := buildMeter(cfg)
	if err != nil {
		return err
	}
	defer closeMeter()

	auditStore, err := audit.OpenSQLiteStore(cfg.AuditDBPath)
	if err != nil {
		return fmt.Errorf("audit store: %w", err)
	}
	defer func() {
		if err := auditStore.Close(); err != nil {
			logger.Error("audit store close failed", "error", err)
		}
	}()

	var pager escalation.Pager = escalation.NewLogPager()
	if cfg.PagerEndpoint != "" {
		pager = escalation.NewHTTPPager(cfg.PagerEndpoint)
	}

	orch, err := subsidy.NewOrchestrator(subsidy.Deps{
		Policy:   pol,
		Fees:     pricing.NewFeeCalculator(oracle),
		Verifier: crypto.NewVerifier(identity.NewInMemoryRegistry()),
		Meter:    meter,
		Ledger:   ledger.NewMemoryLedger(),
		Relay:    relay,
		Audit:    auditStore,
		Pager:    pager,
		Obs:      obs,
	})
	if err != nil {
		return err
	}

	limiter := api.NewGlobalRateLimiter(cfg.RateRPS, cfg.RateBurst)
	srv := api.NewServer(orch, limiter, api.NewAdminAuth(cfg.JWTSecret))

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildMeter selects the usage-counter backend. The returned close func is
// always non-nil.
func buildMeter(cfg *config.Config) (metering.Meter, func(), error) {
	switch cfg.MeterBackend {
	case "memory":
		return metering.NewMemoryMeter(), func() {}, nil
	case "postgres":
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres meter: %w", err)
		}
		return metering.NewPostgresMeter(db), func() { _ = db.Close() }, nil
	case "redis":
		return metering.NewRedisMeter(cfg.RedisAddr, cfg.RedisPassword, 0), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown meter backend %q", cfg.MeterBackend)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}

// cmd/apl-service/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smtpapl/internal/aplapi"
	"smtpapl/internal/seed"
	"smtpapl/pkg/apl"
	"smtpapl/pkg/config"
	"smtpapl/pkg/logger"
	"smtpapl/pkg/metrics"
	"smtpapl/pkg/middleware"
	"smtpapl/pkg/repository"
	"smtpapl/pkg/settings"
)

func main() {
	// 1. Load configuration & initialize structured logger.
	cfg := config.Load()
	appLog := logger.New(cfg.Env, cfg.Debug)
	defer appLog.Sync()

	reg := metrics.Init(appLog)

	// 2. Choose the auth persistence backend. Configuration errors are fatal.
	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
	backend, name, err := apl.Select(bootCtx, cfg, apl.Deps{Log: appLog})
	cancelBoot()
	if err != nil {
		appLog.Fatalw("APL selection failed", "apl", cfg.APL, "err", err)
	}
	if closer, ok := backend.(interface{ Close() }); ok {
		defer closer.Close()
	}
	if res := backend.IsConfigured(); !res.Configured {
		appLog.Warnw("APL is not fully configured", "backend", name, "err", res.Err)
	}
	store := apl.Instrument(backend, name)
	appLog.Infow("APL selected", "requested", cfg.APL, "backend", name)

	// 3. Optional boot seed.
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := seed.Load(seedCtx, store, cfg.SeedFile, appLog); err != nil {
		appLog.Fatalw("seed failed", "path", cfg.SeedFile, "err", err)
	}
	cancelSeed()

	// 4. Build HTTP handler.
	app := aplapi.New(aplapi.Deps{
		Log:      appLog,
		APL:      store,
		Backend:  name,
		Settings: settings.NewRepository(repository.New(cfg.RedisConnectionString, cfg.UniqueRecordKey, appLog)),
		Registry: reg,
		Auth: middleware.AdminAuthConfig{
			Issuer:      cfg.AdminIssuer,
			Audience:    cfg.AdminAudience,
			JWKSURL:     cfg.AdminJWKSURL,
			StaticToken: cfg.AdminToken,
		},
	})
	tracing, shutdownTracing := middleware.Tracing(cfg, appLog)

	// 5. Configure and start HTTP server asynchronously.
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           tracing(app.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLog.Infow("apl-service listening", "addr", cfg.HTTPAddr, "backend", name)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatalw("ListenAndServe", "err", err)
		}
	}()

	// 6. Wait for termination signal (SIGINT/SIGTERM) to begin graceful shutdown.
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)
	<-stopCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		appLog.Warnw("http shutdown", "err", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		appLog.Warnw("tracing shutdown", "err", err)
	}
	appLog.Infow("apl-service stopped")
}

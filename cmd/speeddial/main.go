package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/speeddial/internal/adapter/driven/linkwarden"
	"github.com/ericfisherdev/speeddial/internal/adapter/driven/memcache"
	sqliteadapter "github.com/ericfisherdev/speeddial/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/speeddial/internal/adapter/driving/http"
	"github.com/ericfisherdev/speeddial/internal/adapter/driving/session"
	webhandler "github.com/ericfisherdev/speeddial/internal/adapter/driving/web"
	"github.com/ericfisherdev/speeddial/internal/application"
	"github.com/ericfisherdev/speeddial/internal/config"
	"github.com/ericfisherdev/speeddial/internal/domain/model"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid values).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"auth_mode", cfg.AuthMode,
		"linkwarden_url", cfg.Linkwarden.BaseURL,
		"collection_id", cfg.Settings.CollectionID,
		"password_gate", cfg.Password != "",
		"cache_ttl", cfg.CacheTTL,
	)
	if cfg.EphemeralKey {
		slog.Warn("SPEEDDIAL_SECRET_KEY not set, using an ephemeral key; sessions and unlocks end on restart")
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Wire driven adapters.
	logger := slog.Default()
	gateway := linkwarden.NewClient(logger)
	cache := memcache.New(memcache.WithDefaultTTL(cfg.CacheTTL))

	// 4. Select the credential source for the configured auth mode.
	var (
		resolver application.CredentialResolver
		auth     *application.SessionAuthService
		sessions *session.Manager
	)
	switch cfg.AuthMode {
	case model.AuthModeSession:
		db, err := sqliteadapter.NewDB(cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		slog.Info("database opened", "path", db.Path())

		sealer, err := sqliteadapter.NewSealer(cfg.SecretKey)
		if err != nil {
			return err
		}
		sessions = session.NewManager(sqliteadapter.NewSessionRepo(db, sealer), cfg.Settings, cfg.SessionMaxAge, cfg.SecureCookies, logger)
		if n, err := sessions.PurgeExpired(ctx); err != nil {
			slog.Warn("failed to purge expired sessions", "error", err)
		} else if n > 0 {
			slog.Info("purged expired sessions", "count", n)
		}

		resolver = application.NewSessionResolver()
		auth = application.NewSessionAuthService(gateway, cache, logger)

	default:
		resolver = application.NewFixedResolver(gateway, cache, application.FixedCredentials{
			BaseURL:  cfg.Linkwarden.BaseURL,
			Token:    cfg.Linkwarden.Token,
			Username: cfg.Linkwarden.Username,
			Password: cfg.Linkwarden.Password,
		}, logger)
		if missing := cfg.Linkwarden.Missing(); len(missing) > 0 {
			slog.Warn("fixed mode is missing configuration", "variables", missing)
		}
	}

	// 5. Create application services.
	linkSvc := application.NewLinkService(gateway, cache, resolver, cfg.CacheTTL, logger)
	gate := application.NewUnlockGate(cfg.Password, cfg.UnlockTTL)
	codec := session.NewUnlockCodec(cfg.SecretKey, cfg.SecureCookies)

	// 6. Create HTTP handler and register API routes.
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(linkSvc, auth, sessions, cfg.Settings, logger))

	// 7. Create web handler and register GUI routes.
	webHandler := webhandler.NewHandler(linkSvc, auth, sessions, gate, codec, webhandler.Options{
		Defaults:      cfg.Settings,
		Hostname:      cfg.Hostname,
		SecureCookies: cfg.SecureCookies,
		BaseURLHint:   cfg.Linkwarden.BaseURL,
		MissingConfig: cfg.Linkwarden.Missing(),
	}, logger)
	webhandler.RegisterRoutes(mux, webHandler)

	// Apply middleware: the gate runs before sessions are loaded.
	var handler http.Handler = mux
	if sessions != nil {
		handler = sessions.Middleware(handler)
	}
	handler = httphandler.RequireUnlock(gate, codec, logger, handler)
	handler = httphandler.ApplyMiddleware(handler, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	slog.Info("speeddial started", "listen_addr", cfg.ListenAddr, "auth_mode", cfg.AuthMode)

	// 8. Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	// 9. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"medisync-hub/internal/adapters/auth/identity"
	"medisync-hub/internal/adapters/auth/jwtauth"
	"medisync-hub/internal/adapters/notify/lognotify"
	"medisync-hub/internal/adapters/notify/webhook"
	"medisync-hub/internal/adapters/storage/postgres"
	"medisync-hub/internal/config"
	"medisync-hub/internal/platform/logger"
	"medisync-hub/internal/ports/auth"
	"medisync-hub/internal/ports/notify"
	"medisync-hub/internal/router"
)

type deps struct {
	DB       *sql.DB
	Verifier auth.AuthVerifier
	Services router.Services

	closers []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func newLogger(cfg *config.Config) logger.Logger {
	return logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
}

func buildDeps(ctx context.Context, cfg *config.Config, log logger.Logger) (*deps, error) {
	d := &deps{}

	if cfg.UsesPostgres() {
		if cfg.MigrateOnStart {
			version, err := postgres.Migrate(cfg.DBDSN)
			if err != nil {
				return nil, err
			}
			log.Info("migrations applied", map[string]any{"version": version})
		}

		db, err := postgres.Open(ctx, cfg.DBDSN, cfg.DBMaxOpenConns)
		if err != nil {
			return nil, err
		}
		d.DB = db
		d.closers = append(d.closers, func() { _ = db.Close() })
	}

	verifier, err := buildVerifier(ctx, cfg)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.Verifier = verifier

	notifier, closeNotifier, err := buildNotifier(cfg, log)
	if err != nil {
		d.Close()
		return nil, err
	}
	if closeNotifier != nil {
		d.closers = append(d.closers, closeNotifier)
	}

	d.Services = router.NewServices(d.DB, notifier, nil)
	return d, nil
}

// buildVerifier devuelve nil en modo dev: el middleware usa los headers X-Debug-*.
func buildVerifier(ctx context.Context, cfg *config.Config) (auth.AuthVerifier, error) {
	switch cfg.AuthMode {
	case config.AuthModeJWT:
		if cfg.JWTJWKSURL != "" {
			return jwtauth.NewJWKS(ctx, cfg.JWTJWKSURL, cfg.JWTIssuer)
		}
		return jwtauth.NewHMAC(cfg.JWTSecret, cfg.JWTIssuer)
	case config.AuthModeRemote:
		client, err := identity.NewClient(identity.Config{
			BaseURL: cfg.IdentityBaseURL,
			APIKey:  cfg.IdentityAPIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("identity client: %w", err)
		}
		return identity.NewVerifier(client, cfg.IdentityCacheTTL), nil
	default:
		return nil, nil
	}
}

func buildNotifier(cfg *config.Config, log logger.Logger) (notify.Notifier, func(), error) {
	logNotifier := lognotify.New(log)
	if cfg.NotifyWebhookURL == "" {
		return logNotifier, nil, nil
	}

	hook, err := webhook.New(webhook.Config{
		URL:     cfg.NotifyWebhookURL,
		APIKey:  cfg.NotifyAPIKey,
		Retries: 2,
	}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("webhook notifier: %w", err)
	}

	closeHook := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hook.Close(ctx); err != nil {
			log.Warn("webhook notifier did not drain", map[string]any{"error": err.Error()})
		}
	}
	return notify.Multi{logNotifier, hook}, closeHook, nil
}

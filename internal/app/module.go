package app

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fieldscope/siteline/internal/api"
	"github.com/fieldscope/siteline/internal/bus"
	"github.com/fieldscope/siteline/internal/config"
	"github.com/fieldscope/siteline/internal/feed"
	"github.com/fieldscope/siteline/internal/lock"
	"github.com/fieldscope/siteline/internal/logging"
	"github.com/fieldscope/siteline/internal/outbox"
	"github.com/fieldscope/siteline/internal/session"
	"github.com/fieldscope/siteline/internal/status"
	"github.com/fieldscope/siteline/internal/tui"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	Profile string
	SiteID  string // optional: open this site on startup
}

// Module returns the fx module for the client, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("siteline",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideConfig,
			provideBus,
			provideStateMachine,
			provideLock,
			provideCredentials,
			provideClient,
			provideStore,
			provideGate,
			provideCoordinator,
			provideSender,
			provideApp,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if err := session.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	// The TUI owns the terminal, so logs go to file only.
	return logging.New(session.LogPath(p.Profile), p.Profile, false)
}

func provideConfig(logger *zap.Logger) (*config.Config, error) {
	cfg, err := config.Load(session.ConfigPath())
	if err != nil {
		return nil, err
	}
	logger.Info("config loaded",
		zap.String("server_url", cfg.ServerURL),
		zap.Int("page_size", cfg.PageSize))
	return cfg, nil
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(session.Dir(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func provideCredentials(p Params) (*session.Credentials, error) {
	creds, err := session.LoadCredentials(session.CredentialsPath(p.Profile))
	if err != nil {
		return nil, fmt.Errorf("load credentials for profile %s: %w", p.Profile, err)
	}
	return creds, nil
}

func provideClient(cfg *config.Config, creds *session.Credentials, logger *zap.Logger) *api.Client {
	return api.NewClient(cfg.ServerURL, creds.Token, logger)
}

func provideStore(b *bus.Bus) *feed.Store {
	return feed.NewStore(b)
}

func provideGate(cfg *config.Config) *feed.Gate {
	return feed.NewGate(cfg.ScrollThreshold, cfg.Cooldown())
}

func provideCoordinator(g *feed.Gate) *feed.Coordinator {
	return feed.NewCoordinator(g)
}

func provideSender(store *feed.Store, scroll *feed.Coordinator, client *api.Client, creds *session.Credentials, logger *zap.Logger) *outbox.Sender {
	identity := outbox.Identity{
		UserID:      creds.UserID,
		DisplayName: creds.DisplayName,
	}
	return outbox.NewSender(store, scroll, client, identity, logger)
}

func provideApp(p Params, cfg *config.Config, b *bus.Bus, store *feed.Store, gate *feed.Gate, scroll *feed.Coordinator, sender *outbox.Sender, client *api.Client, machine *status.Machine, creds *session.Credentials, logger *zap.Logger) *tui.App {
	return tui.NewApp(tui.Deps{
		Profile: p.Profile,
		SiteID:  p.SiteID,
		Config:  cfg,
		Bus:     b,
		Store:   store,
		Gate:    gate,
		Scroll:  scroll,
		Sender:  sender,
		Client:  client,
		Machine: machine,
		Identity: outbox.Identity{
			UserID:      creds.UserID,
			DisplayName: creds.DisplayName,
		},
		Logger: logger,
	})
}

func registerLifecycle(lc fx.Lifecycle, shutdowner fx.Shutdowner, app *tui.App, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := app.Run(); err != nil {
					logger.Error("tui error", zap.Error(err))
				}
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			app.Stop()
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("client stopped")
			return nil
		},
	})
}

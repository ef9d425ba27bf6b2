package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"gemini-relay-bot/internal/common/config"
	"gemini-relay-bot/internal/common/logger"
	"gemini-relay-bot/internal/common/middleware"
	"gemini-relay-bot/internal/features/bot"
	bothttp "gemini-relay-bot/internal/features/bot/delivery/http"
	historyhttp "gemini-relay-bot/internal/features/history/delivery/http"
	historysqlite "gemini-relay-bot/internal/features/history/repository/sqlite"
	historyservice "gemini-relay-bot/internal/features/history/service"
	relayservice "gemini-relay-bot/internal/features/relay/service"
	sessionmemory "gemini-relay-bot/internal/features/session/repository/memory"
	sessionredis "gemini-relay-bot/internal/features/session/repository/redis"
	sessionrepo "gemini-relay-bot/internal/features/session/repository"
	sessionservice "gemini-relay-bot/internal/features/session/service"
	userhttp "gemini-relay-bot/internal/features/user/delivery/http"
	usersqlite "gemini-relay-bot/internal/features/user/repository/sqlite"
	userservice "gemini-relay-bot/internal/features/user/service"
	apphttp "gemini-relay-bot/internal/http"
	"gemini-relay-bot/internal/platform/gemini"
	"gemini-relay-bot/internal/platform/google"
	redisplatform "gemini-relay-bot/internal/platform/redis"
	"gemini-relay-bot/internal/platform/sqlite"
	"gemini-relay-bot/internal/platform/telegram"
	"gemini-relay-bot/internal/workers"
)

const shutdownTimeout = 30 * time.Second

type app struct {
	cfg      *config.Config
	db       *sqlite.Client
	redis    *goredis.Client
	telegram *telegram.Client
	worker   *workers.UpdateWorker
	server   *http.Server
	cancel   context.CancelFunc
}

func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.db, err = sqlite.NewClient(ctx, cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	sessionRepo, err := a.sessionRepository(ctx)
	if err != nil {
		return nil, err
	}
	tracker := sessionservice.NewTracker(sessionRepo)

	userSvc := userservice.NewUserService(usersqlite.NewSQLiteRepository(a.db.GetDB()))
	historySvc := historyservice.NewHistoryService(historysqlite.NewSQLiteRepository(a.db.GetDB()))

	a.telegram, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.Debug)
	if err != nil {
		return nil, err
	}

	serviceAccount, err := google.LoadServiceAccount(ctx, cfg.Google.ServiceAccountFile, cfg.Google.Timeout)
	if err != nil {
		// the bot still works without Apps Script authentication
		logger.Warn().Err(err).Msg("Service account not loaded")
	} else if serviceAccount.Status == google.StatusLoaded {
		logger.Info().Str("email", serviceAccount.Email).Msg("Service account loaded")
	}

	googleHTTP := &http.Client{Timeout: cfg.Google.Timeout}
	scriptHTTP := googleHTTP
	if serviceAccount.Client != nil {
		scriptHTTP = serviceAccount.Client
	}

	ai := gemini.NewClient(gemini.Config{
		APIKey:       cfg.Gemini.APIKey,
		Model:        cfg.Gemini.Model,
		BaseURL:      cfg.Gemini.BaseURL,
		ImageTimeout: cfg.Gemini.ImageTimeout,
		TextTimeout:  cfg.Gemini.TextTimeout,
	}, nil)
	if !ai.Enabled() {
		logger.Warn().Msg("GEMINI_API_KEY is empty, photo and chat requests will fail")
	}

	relay := relayservice.NewRelayService(
		ai,
		a.telegram,
		google.NewFormsClient(cfg.Google.FormID, cfg.Google.FormFields, googleHTTP),
		google.NewAppsScriptClient(cfg.Google.AppsScriptURL, scriptHTTP),
		historySvc,
	)

	handler := bot.New(a.telegram, userSvc, historySvc, tracker, relay)

	// handlers outlive the signal context so in-flight updates can finish
	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.cancel = cancel
	a.worker, err = workers.NewUpdateWorker(workerCtx, handler, cfg.Workers.PoolSize)
	if err != nil {
		return nil, err
	}

	routerCfg := apphttp.RouterConfig{
		Debug:   cfg.Debug,
		Origins: cfg.Server.Origins,
		Bot: bothttp.NewHandler(bothttp.Deps{
			Token:                cfg.Telegram.BotToken,
			Bot:                  a.telegram.Self(),
			Updates:              a.worker,
			DB:                   a.db,
			Sessions:             tracker,
			Totals:               userSvc,
			ServiceAccountStatus: serviceAccount.Status,
		}),
		WebApp: historyhttp.NewWebAppHandler(historySvc, middleware.TelegramInitData(cfg.Telegram.BotToken, cfg.Telegram.InitDataTTL)),
		Admin:  userhttp.NewDebugHandler(userSvc, historySvc, tracker),
	}
	if len(cfg.Telegram.AdminIDs) > 0 {
		routerCfg.AdminAuth = []gin.HandlerFunc{
			middleware.TelegramInitData(cfg.Telegram.BotToken, cfg.Telegram.InitDataTTL),
			middleware.RequireAdmin(cfg.IsAdmin),
		}
	}

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      apphttp.NewRouter(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

func (a *app) sessionRepository(ctx context.Context) (sessionrepo.SessionRepository, error) {
	switch a.cfg.Session.Backend {
	case config.SessionBackendRedis:
		client, err := redisplatform.Open(ctx, a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		a.redis = client
		return sessionredis.NewRedisRepository(client, a.cfg.Session.TTL), nil
	default:
		return sessionmemory.NewMemoryRepository(a.cfg.Session.Capacity, a.cfg.Session.TTL)
	}
}

// Run serves HTTP and, in polling mode, pulls updates until ctx is done.
func (a *app) Run(ctx context.Context) error {
	logger.Info().
		Str("mode", a.cfg.Mode).
		Str("bot", a.telegram.Self().UserName).
		Int("port", a.cfg.Server.Port).
		Bool("debug", a.cfg.Debug).
		Msg("Starting bot")

	g, gctx := errgroup.WithContext(ctx)

	switch a.cfg.Mode {
	case config.ModeWebhook:
		if err := a.telegram.SetWebhook(a.cfg.WebhookEndpoint(), a.cfg.Server.TLSCertFile); err != nil {
			return err
		}
		g.Go(func() error {
			return serve(func() error {
				return a.server.ListenAndServeTLS(a.cfg.Server.TLSCertFile, a.cfg.Server.TLSKeyFile)
			})
		})
	default:
		// getUpdates is refused while a webhook is registered
		if err := a.telegram.RemoveWebhook(); err != nil {
			return err
		}
		g.Go(func() error {
			return serve(a.server.ListenAndServe)
		})
		g.Go(func() error {
			a.worker.Start(gctx, a.telegram.Updates(a.cfg.Telegram.PollTimeout))
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return a.shutdown()
	})

	return g.Wait()
}

func serve(listen func() error) error {
	if err := listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (a *app) shutdown() error {
	logger.Info().Msg("Shutting down")

	if a.cfg.Mode != config.ModeWebhook {
		a.telegram.StopUpdates()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error
	err = multierr.Append(err, a.server.Shutdown(ctx))
	err = multierr.Append(err, a.worker.Stop(shutdownTimeout))
	if err != nil {
		logger.Error().Err(err).Msg("Unclean shutdown")
	}
	return err
}

// Close releases stores. Safe on a partially built app.
func (a *app) Close() {
	if a.cancel != nil {
		a.cancel()
	}

	var err error
	if a.redis != nil {
		err = multierr.Append(err, a.redis.Close())
	}
	if a.db != nil {
		err = multierr.Append(err, a.db.Close())
	}
	if err != nil {
		logger.Error().Err(err).Msg("Failed to close stores")
		return
	}
	logger.Info().Msg("Bot exited")
}

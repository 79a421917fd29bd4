package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medihealth-portal/internal/authclient"
	"medihealth-portal/internal/config"
	httpapi "medihealth-portal/internal/http"
	applog "medihealth-portal/internal/logger"
	"medihealth-portal/internal/notify"
	"medihealth-portal/internal/repository"
	"medihealth-portal/internal/service"
	"medihealth-portal/internal/store"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := applog.New(cfg.Log.Level, cfg.Log.Format, "medihealth-portal")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := sql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	db.SetMaxOpenConns(cfg.Database.MaxConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdle)
	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	kv := store.NewRedisKV(redisClient)

	provider := authclient.New(cfg.Auth, logger)

	// Repositories
	profilesRepo := repository.NewPostgresProfilesRepository(db)
	patientsRepo := repository.NewPostgresPatientsRepository(db)
	visitsRepo := repository.NewPostgresVisitsRepository(db)
	docsRepo := repository.NewPostgresDocumentsRepository(db)
	messagesRepo := repository.NewPostgresMessagesRepository(db)
	alertsRepo := repository.NewPostgresAlertsRepository(db)
	notifsRepo := repository.NewPostgresNotificationsRepository(db)

	// Services
	visibility := service.NewVisibilityService(patientsRepo, visitsRepo, logger)
	authService := service.NewAuthService(provider, profilesRepo, kv, logger)
	exportService := service.NewExportService(visitsRepo, logger)

	// 通知推送：MQTT 未启用时使用空实现
	var publisher notify.Publisher = notify.NopPublisher{}
	if cfg.MQTT.Enabled {
		if p, perr := notify.NewMQTTPublisher(&cfg.MQTT, logger); perr == nil {
			publisher = p
			logger.Info("MQTT notification publisher enabled", zap.String("broker", cfg.MQTT.Broker))
		} else {
			logger.Warn("MQTT connect failed, notifications stay in-app only", zap.Error(perr))
		}
	}
	defer publisher.Close()

	router := httpapi.NewRouter(logger)
	router.RegisterHealthz()
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(authService, logger))
	router.RegisterDemoRoutes(httpapi.NewDemoHandler())
	router.RegisterPortalRoutes(
		httpapi.NewDashboardHandler(profilesRepo, visibility, patientsRepo, visitsRepo, docsRepo, messagesRepo, alertsRepo, notifsRepo, logger),
		httpapi.NewVisitsHandler(profilesRepo, visibility, patientsRepo, visitsRepo, logger),
		httpapi.NewDocumentsHandler(profilesRepo, visibility, docsRepo, logger),
		httpapi.NewMessagesHandler(profilesRepo, messagesRepo, notifsRepo, publisher, logger),
		httpapi.NewAlertsHandler(profilesRepo, visibility, patientsRepo, alertsRepo, logger),
		httpapi.NewPatientsHandler(profilesRepo, visibility, patientsRepo, logger),
		httpapi.NewNotificationsHandler(profilesRepo, notifsRepo, logger),
	)
	router.RegisterAdminRoutes(httpapi.NewExportHandler(profilesRepo, exportService, logger))

	// 路由守卫包在最外层：每个请求先过会话校验
	guard := httpapi.NewSessionGuard(provider, cfg.Auth.CookieName, logger)
	srv := service.NewServer(cfg.HTTP.Addr, guard.Wrap(router), logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	_ = db.Close()
}

package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/lukasmoran/accord/internal/api"
	"github.com/lukasmoran/accord/internal/auth"
	"github.com/lukasmoran/accord/internal/config"
	"github.com/lukasmoran/accord/internal/database"
	"github.com/lukasmoran/accord/internal/embeds"
	"github.com/lukasmoran/accord/internal/gateway"
	"github.com/lukasmoran/accord/internal/push"
	redisclient "github.com/lukasmoran/accord/internal/redis"
	"github.com/lukasmoran/accord/internal/service"
	"github.com/lukasmoran/accord/internal/snowflake"
	"github.com/lukasmoran/accord/internal/storage"
	"github.com/lukasmoran/accord/internal/tasks"
)

const taskBufferSize = 4096

func main() {
	cfg := config.Load()
	ctx := context.Background()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	// --- Infrastructure ---

	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConns), int32(cfg.DBMinConns))
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	rdb, err := redisclient.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	store, err := storage.NewMinIOClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, false)
	if err != nil {
		log.Fatalf("minio: %v", err)
	}

	sf, err := snowflake.NewGenerator(1, 1)
	if err != nil {
		log.Fatalf("snowflake: %v", err)
	}
	tokenSvc := auth.NewTokenService(cfg.JWTSecret)

	// --- Repositories ---

	users := database.NewUserRepository(pool)
	servers := database.NewServerRepository(pool)
	channels := database.NewChannelRepository(pool)
	members := database.NewMemberRepository(pool)
	messages := database.NewMessageRepository(pool)
	attachments := database.NewAttachmentRepository(pool)
	webhooks := database.NewWebhookRepository(pool)
	unreads := database.NewUnreadRepository(pool)

	// --- Gateway ---

	gwManager := gateway.NewManager(tokenSvc, channels)

	// --- Task pool ---

	taskPool := tasks.NewPool(cfg.TaskWorkers, taskBufferSize)
	taskPool.Register(tasks.KindLastMessageID, tasks.NewLastMessageIDHandler(channels))
	taskPool.Register(tasks.KindAckMentions, tasks.NewAckMentionsHandler(unreads))
	taskPool.Register(tasks.KindProcessEmbeds, tasks.NewProcessEmbedsHandler(embeds.NewClient(cfg.EmbedsURL), messages, gwManager))
	taskPool.Register(tasks.KindWebPush, tasks.NewWebPushHandler(push.NewSender(rdb)))

	taskCtx, stopTasks := context.WithCancel(ctx)
	taskPool.Start(taskCtx)

	// --- Services ---

	permSvc := service.NewPermissionService(servers, channels, members, gwManager)
	msgSvc := service.NewMessageService(messages, attachments, gwManager, taskPool, sf, service.UnicodeEmoji{}, cfg.Limits)
	uploadSvc := service.NewUploadService(attachments, store, sf)

	// --- Handlers ---

	deps := &api.Dependencies{
		Messages:     api.NewMessageHandler(msgSvc, permSvc, users, webhooks, channels, rdb),
		Permissions:  api.NewPermissionHandler(permSvc),
		Uploads:      api.NewUploadHandler(uploadSvc),
		Gateway:      gwManager,
		TokenService: tokenSvc,
		Redis:        rdb,
	}

	// --- Echo ---

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	api.SetupRouter(e, deps)

	// --- Start ---

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("accord starting", "addr", cfg.ServerAddr)
		if err := e.Start(cfg.ServerAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-sigCtx.Done()
	slog.Info("shutting down")
	if err := e.Shutdown(context.Background()); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
	stopTasks()
	taskPool.Wait()
}

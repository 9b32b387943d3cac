package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sccsite/internal/auth"
	"github.com/sccsite/internal/config"
	"github.com/sccsite/internal/db"
	"github.com/sccsite/internal/handler"
	"github.com/sccsite/internal/localstore"
	"github.com/sccsite/internal/router"
	"github.com/sccsite/internal/service"
	"github.com/sccsite/internal/storage"
	"github.com/sccsite/internal/syncqueue"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[server] load .env: %v", err)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化数据库
	gdb, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	if err := db.EnsureUser(gdb, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to ensure admin user: %v", err)
	}

	localDB, err := db.OpenLocal(cfg.LocalStorePath)
	if err != nil {
		log.Printf("[server] local store unavailable, fallback writes disabled: %v", err)
	}

	bucket, err := newBucket(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}

	uploader := storage.NewUploader(bucket, cfg.MaxUploadBytes)
	if uploader.Inline() {
		log.Printf("[server] no upload bucket configured, images are stored inline as data URLs")
	}
	queue := newQueue(ctx, cfg)

	services := service.New(service.Options{
		DB:           gdb,
		Local:        localstore.New(localDB),
		Uploader:     uploader,
		Queue:        queue,
		SyncInterval: cfg.SyncInterval,
	})
	go services.Reconciler.Run(ctx)

	gate := auth.NewGate(auth.NewUserAuthenticator(gdb), cfg.SessionSecret, cfg.TokenIssuer, cfg.SessionTTL)
	api := handler.NewAPI(services, gate, cfg.MaxUploadBytes)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.SetupRouter(cfg, api),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[server] listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to run server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[server] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[server] shutdown: %v", err)
	}
}

// newBucket 根据配置选择上传存储，inline 模式返回 nil
func newBucket(ctx context.Context, cfg config.AppConfig) (storage.Bucket, error) {
	switch cfg.StorageDriver {
	case config.StorageS3:
		return storage.NewS3Bucket(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			PublicURL:       cfg.S3PublicURL,
		})
	case config.StorageInline:
		return nil, nil
	default:
		return storage.NewLocalBucket(cfg.UploadDir, cfg.UploadURLPath)
	}
}

// newQueue 配置了 Redis 时使用 Redis 列表，否则使用进程内队列
func newQueue(ctx context.Context, cfg config.AppConfig) syncqueue.Queue {
	if cfg.RedisAddr == "" {
		return syncqueue.NewInMemory(64)
	}
	client, err := syncqueue.NewRedisClient(ctx, cfg.RedisAddr)
	if err != nil {
		log.Printf("[server] redis unavailable at %s, using in-memory sync queue: %v", cfg.RedisAddr, err)
		return syncqueue.NewInMemory(64)
	}
	return syncqueue.NewRedisQueue(client, "")
}

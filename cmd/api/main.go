package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/mediscribe/internal/application"
	apprecords "github.com/bryanwahyu/mediscribe/internal/application/records"
	"github.com/bryanwahyu/mediscribe/internal/config"
	domrecords "github.com/bryanwahyu/mediscribe/internal/domain/records"
	"github.com/bryanwahyu/mediscribe/internal/domain/users"
	aiopenai "github.com/bryanwahyu/mediscribe/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/mediscribe/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/mediscribe/internal/infra/db/postgres"
	"github.com/bryanwahyu/mediscribe/internal/infra/httpserver"
	"github.com/bryanwahyu/mediscribe/internal/infra/storage"
	"github.com/bryanwahyu/mediscribe/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect DB (mysql default, postgres optional)
	var (
		db         *sql.DB
		recordRepo domrecords.Repository
		userRepo   users.Repository
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		recordRepo = postgresp.NewRecordRepository(db)
		userRepo = postgresp.NewUserRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		recordRepo = mysqlp.NewRecordRepository(db)
		userRepo = mysqlp.NewUserRepository(db)
	}
	defer db.Close()

	// init content store
	var contents domrecords.ContentStore
	if cfg.Storage.Type == "local" {
		contents = storage.NewLocal(cfg.Storage.Local.Dir)
	} else {
		contents, err = storage.NewMinio(ctx,
			cfg.Storage.Minio.Endpoint,
			cfg.Storage.Minio.Region,
			cfg.Storage.Minio.BucketName,
			cfg.Storage.Minio.AccessKey,
			cfg.Storage.Minio.SecretKey,
			cfg.Storage.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
	}

	// init AI provider, satu client dibuat sekali lalu diinject
	provider := aiopenai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.VisionModel)

	// init service
	svc := &apprecords.Service{
		Repo:            recordRepo,
		Contents:        contents,
		Provider:        provider,
		Clock:           application.SystemClock{},
		ProviderTimeout: time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second,
	}

	// init router + middleware chain
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.JWTAuth([]byte(cfg.Auth.JWTSecret), userRepo))
	mux.Use(middleware.LoggingMiddleware)
	if cfg.RateLimit.Capacity > 0 {
		mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	}

	mux.Get("/health", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}))
	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Mount("/", httpserver.NewRouter(svc))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // analyze waits on the AI provider
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

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

	appanalysis "github.com/msetiadi/leadintel/internal/application/analysis"
	appprofiles "github.com/msetiadi/leadintel/internal/application/profiles"
	"github.com/msetiadi/leadintel/internal/application"
	"github.com/msetiadi/leadintel/internal/config"
	domprofiles "github.com/msetiadi/leadintel/internal/domain/profiles"
	domreports "github.com/msetiadi/leadintel/internal/domain/reports"
	aiclient "github.com/msetiadi/leadintel/internal/infra/ai/openai"
	mysqlp "github.com/msetiadi/leadintel/internal/infra/db/mysql"
	postgresp "github.com/msetiadi/leadintel/internal/infra/db/postgres"
	"github.com/msetiadi/leadintel/internal/infra/httpserver"
	minioStore "github.com/msetiadi/leadintel/internal/infra/storage"
	"github.com/msetiadi/leadintel/internal/middleware"
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

	// connect database and init repos per configured driver
	var (
		db          *sql.DB
		profileRepo domprofiles.Repository
		reportRepo  domreports.Repository
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		profileRepo = postgresp.NewProfileRepository(db)
		reportRepo = postgresp.NewReportRepository(db)
	case "mysql":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		profileRepo = mysqlp.NewProfileRepository(db)
		reportRepo = mysqlp.NewReportRepository(db)
	default:
		log.Fatalf("unknown database driver: %s", cfg.Database.Driver)
	}
	defer db.Close()

	// init report archive (optional)
	var archive domreports.ArchiveStore
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		archive = store
	}

	// init generative backend client
	llm := aiclient.NewClient(aiclient.Options{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})

	// init services
	analysisSvc := &appanalysis.Service{
		Client:   llm,
		Profiles: profileRepo,
		Reports:  reportRepo,
		Archive:  archive,
		Clock:    application.SystemClock{},
	}
	adminSvc := &appprofiles.Service{
		Repo:    profileRepo,
		Reports: reportRepo,
	}

	// init router
	handler := httpserver.NewRouter(analysisSvc, adminSvc, httpserver.Options{
		JWTSecret:           []byte(cfg.Auth.JWTSecret),
		RateLimitCapacity:   cfg.RateLimit.Capacity,
		RateLimitRefillRate: cfg.RateLimit.RefillRate,
		HealthCheckers: map[string]middleware.HealthChecker{
			"database": &middleware.DatabaseHealthChecker{DB: db},
		},
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s (model=%s)", addr, analysisSvc.Model())
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

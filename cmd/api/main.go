package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"thesis-verification-api/config"
	"thesis-verification-api/controllers"
	"thesis-verification-api/middleware"
	"thesis-verification-api/models"
	"thesis-verification-api/monitor"
	"thesis-verification-api/routes"
	"thesis-verification-api/services"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	settings := config.Load()
	closer, logger := config.InitLogging(settings)
	defer closer.Close()
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	shutdownTracing := config.InitTracing(ctx, settings)
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	if err := config.InitDB(settings); err != nil {
		logger.Fatalw("database init failed", "error", err)
	}
	if err := models.AutoMigrate(config.DB); err != nil {
		logger.Fatalw("auto migrate failed", "error", err)
	}

	if err := os.MkdirAll(settings.UploadPath, os.ModePerm); err != nil {
		logger.Warnw("failed to create upload directory", "path", settings.UploadPath, "error", err)
	}

	var reportCache services.ReportCache
	rdb, err := config.InitRedis(ctx, settings)
	if err != nil {
		logger.Warnw("redis unavailable, report cache disabled", "error", err)
	} else if rdb != nil {
		defer rdb.Close()
		reportCache = services.NewRedisReportCache(rdb, settings.ReportCacheTTL)
	}

	embedder := services.NewOllamaEmbedder(settings.OllamaURL, settings.OllamaModel, settings.EmbeddingTimeout)
	ledger := services.NewLedger(settings)
	corpus := services.NewGormCorpusStore(config.DB)

	verifier := services.NewVerificationService(services.VerificationDeps{
		Corpus:   corpus,
		Embedder: embedder,
		Cache:    reportCache,
		Logger:   logger,
	})
	approvals := services.NewApprovalService(services.ApprovalDeps{
		DB:            config.DB,
		Verifier:      verifier,
		Corpus:        corpus,
		Files:         services.NewLocalFileStore(settings.UploadPath),
		Ledger:        ledger,
		LedgerTimeout: settings.LedgerTimeout,
		Logger:        logger,
	})
	controllers.Configure(&controllers.Registry{
		Verifier:          verifier,
		Approvals:         approvals,
		BlockingThreshold: settings.BlockingPlagiarismThreshold,
	})

	if settings.GinMode == gin.ReleaseMode || settings.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = config.LogWriter

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("thesis-verification-api"))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestTimeout(settings.RequestTimeout))

	checker := monitor.NewChecker(3 * time.Second)
	checker.Add("database", func(ctx context.Context) error {
		sqlDB, err := config.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	checker.Add("embedding", embedder.Ping)
	if httpLedger, ok := ledger.(*services.HTTPLedger); ok {
		checker.Add("ledger", httpLedger.Ping)
	} else {
		checker.Add("ledger", nil)
	}
	if rdb != nil {
		checker.Add("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	} else {
		checker.Add("redis", nil)
	}
	monitor.RegisterMonitorRoutes(router, checker)
	monitor.RegisterLogsRoute(router, settings.LogDir)

	routes.SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + settings.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infow("server starting",
			"port", settings.ServerPort,
			"environment", settings.Environment,
			"ledger", ledger.Name(),
			"embedding_model", embedder.Model(),
			"report_cache", reportCache != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Infow("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Errorw("graceful shutdown failed", "error", err)
	}
}

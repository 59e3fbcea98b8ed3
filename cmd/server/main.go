package main

import (
	"context"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/bot"
	"github.com/scaryPonens/fundadvisor/internal/cache"
	"github.com/scaryPonens/fundadvisor/internal/catalog"
	"github.com/scaryPonens/fundadvisor/internal/config"
	"github.com/scaryPonens/fundadvisor/internal/goal"
	"github.com/scaryPonens/fundadvisor/internal/handler"
	"github.com/scaryPonens/fundadvisor/internal/job"
	"github.com/scaryPonens/fundadvisor/internal/recommend"
	"github.com/scaryPonens/fundadvisor/internal/service"
	"github.com/scaryPonens/fundadvisor/internal/store"
	"github.com/scaryPonens/fundadvisor/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/scaryPonens/fundadvisor/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	openStoreFunc          = store.Open
	loadCatalogFunc        = catalog.Load
	newCatalogHandleFunc   = catalog.NewHandle
	newSessionStoreFunc    = cache.NewSessionStore
	newEngineFunc          = recommend.NewEngine
	newPlannerFunc         = goal.NewPlanner
	newAdvisorServiceFunc  = service.NewAdvisorService
	newAdminServiceFunc    = service.NewAdminService
	newCatalogMonitorFunc  = job.NewCatalogMonitor
	startMonitorFunc       = func(m *job.CatalogMonitor, ctx context.Context) { go m.Start(ctx) }
	newFreshnessWatchFunc  = job.NewFreshnessWatch
	startFreshnessFunc     = func(w *job.FreshnessWatch, ctx context.Context) { go w.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Fund Advisor API
// @version         1.0
// @description     A mutual fund advisory service with risk profiling, catalog search and goal planning.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Redis
	initRedisFunc(ctx, cfg.RedisURL)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Open the registration store (runs migrations)
	st, err := openStoreFunc(cfg.DBPath, tracer)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	// Load the fund catalog
	cat, err := loadCatalogFunc(cfg.FundsCSVPath)
	if err != nil {
		log.Fatalf("failed to load fund catalog: %v", err)
	}
	catalogHandle := newCatalogHandleFunc(cat)

	// Create services
	sessions := newSessionStoreFunc(cache.Client, time.Duration(cfg.SessionTTLSecs)*time.Second)
	engine := newEngineFunc(time.Now)
	planner := newPlannerFunc(time.Now)
	advisorService := newAdvisorServiceFunc(tracer, catalogHandle, engine, planner, st, st, sessions)
	adminService := newAdminServiceFunc(tracer, st, catalogHandle, catalog.AnomalyOptions{
		Threshold:  cfg.AnomalyThreshold,
		NumTrees:   cfg.AnomalyTrees,
		SampleSize: cfg.AnomalySampleSize,
	})

	// Start the catalog monitor (stopped by ctx cancel)
	monitor := newCatalogMonitorFunc(tracer, catalogHandle, cfg.FundsCSVPath, time.Duration(cfg.CatalogPollSecs)*time.Second)
	startMonitorFunc(monitor, ctx)

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	dispatcher := startTelegramBotFunc(advisorService)

	// Staleness alerts go out through the bot when it is running
	var alerter job.StaleAlerter
	if dispatcher != nil {
		alerter = dispatcher
	}
	watch := newFreshnessWatchFunc(tracer, catalogHandle, alerter)
	startFreshnessFunc(watch, ctx)

	// Create handlers and routes
	h := newHandlerFunc(tracer, advisorService, adminService, cfg.AdminToken)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("fundadvisor"))
	r.Use(cors.Default())

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    httpAddrFromEnv(),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

// httpAddrFromEnv builds the listen address from PORT, defaulting to 8080.
func httpAddrFromEnv() string {
	port := os.Getenv("PORT")
	if port == "" {
		return ":8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

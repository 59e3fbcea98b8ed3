package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	ossignal "os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/catalog"
	"github.com/scaryPonens/fundadvisor/internal/config"
	"github.com/scaryPonens/fundadvisor/internal/goal"
	"github.com/scaryPonens/fundadvisor/internal/job"
	mcpserver "github.com/scaryPonens/fundadvisor/internal/mcp"
	"github.com/scaryPonens/fundadvisor/internal/recommend"
	"github.com/scaryPonens/fundadvisor/internal/service"
	"github.com/scaryPonens/fundadvisor/pkg/tracing"

	"github.com/joho/godotenv"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	loadEnvFunc           = godotenv.Load
	loadConfigFunc        = config.Load
	initTracerFunc        = tracing.InitTracer
	loadCatalogFunc       = catalog.Load
	newCatalogHandleFunc  = catalog.NewHandle
	newEngineFunc         = recommend.NewEngine
	newPlannerFunc        = goal.NewPlanner
	newAdvisorServiceFunc = service.NewAdvisorService
	newMCPServerFunc      = mcpserver.NewServer
	newMCPHandlerFunc     = mcpserver.NewHTTPTransportHandler
	newCatalogMonitorFunc = job.NewCatalogMonitor
	startMonitorFunc      = func(m *job.CatalogMonitor, ctx context.Context) { go m.Start(ctx) }
	runStdioFunc          = func(ctx context.Context, server *sdkmcp.Server) error {
		return server.Run(ctx, &sdkmcp.StdioTransport{})
	}
	startHTTPServerFunc  = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFn = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	setupSignalNotify    = ossignal.Notify
	waitForSignalFunc    = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	cat, err := loadCatalogFunc(cfg.FundsCSVPath)
	if err != nil {
		log.Fatalf("failed to load fund catalog: %v", err)
	}
	catalogHandle := newCatalogHandleFunc(cat)

	monitor := newCatalogMonitorFunc(tracer, catalogHandle, cfg.FundsCSVPath, time.Duration(cfg.CatalogPollSecs)*time.Second)
	startMonitorFunc(monitor, ctx)

	// The MCP surface is read-only advisory: no store, no sessions.
	engine := newEngineFunc(time.Now)
	planner := newPlannerFunc(time.Now)
	advisorService := newAdvisorServiceFunc(tracer, catalogHandle, engine, planner, nil, nil, nil)

	mcpSrv := newMCPServerFunc(tracer, advisorService, catalogHandle, mcpserver.ServerConfig{
		RequestTimeout: time.Duration(cfg.MCPRequestTimeoutSecs) * time.Second,
	})

	switch transport := strings.ToLower(strings.TrimSpace(cfg.MCPTransport)); transport {
	case "", "stdio":
		if err := runStdioFunc(ctx, mcpSrv); err != nil {
			log.Fatalf("mcp stdio server failed: %v", err)
		}
	case "http":
		if err := runHTTPMode(cancel, cfg, mcpSrv); err != nil {
			log.Fatalf("mcp http server failed: %v", err)
		}
	default:
		log.Fatalf("unsupported MCP_TRANSPORT: %s", cfg.MCPTransport)
	}
}

func runHTTPMode(cancel context.CancelFunc, cfg *config.Config, mcpSrv *sdkmcp.Server) error {
	if err := validateHTTPConfig(cfg); err != nil {
		return err
	}

	srv := &http.Server{
		Addr: net.JoinHostPort(cfg.MCPHTTPBind, strconv.Itoa(cfg.MCPHTTPPort)),
		Handler: newMCPHandlerFunc(mcpSrv, mcpserver.HTTPHandlerConfig{
			AuthToken:       cfg.MCPAuthToken,
			RateLimitPerMin: cfg.MCPRateLimitPerMin,
		}),
	}

	go func() {
		log.Printf("MCP http transport listening on %s", srv.Addr)
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Printf("mcp http server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFn(srv, shutdownCtx); err != nil {
		return fmt.Errorf("mcp server forced to shutdown: %w", err)
	}
	return nil
}

// validateHTTPConfig checks the settings the http transport depends on.
func validateHTTPConfig(cfg *config.Config) error {
	if !cfg.MCPHTTPEnabled {
		return fmt.Errorf("MCP_HTTP_ENABLED must be true when MCP_TRANSPORT=http")
	}
	if strings.TrimSpace(cfg.MCPAuthToken) == "" {
		return fmt.Errorf("MCP_AUTH_TOKEN is required when MCP_TRANSPORT=http")
	}
	return nil
}

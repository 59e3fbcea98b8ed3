package main

import (
	"context"
	"errors"
	"log"
	"net"
	"os"
	ossignal "os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/catalog"
	"github.com/scaryPonens/fundadvisor/internal/config"
	"github.com/scaryPonens/fundadvisor/internal/job"
	"github.com/scaryPonens/fundadvisor/internal/service"
	"github.com/scaryPonens/fundadvisor/internal/store"
	"github.com/scaryPonens/fundadvisor/internal/tui"
	"github.com/scaryPonens/fundadvisor/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	gossh "golang.org/x/crypto/ssh"
)

var (
	loadEnvFunc           = godotenv.Load
	loadConfigFunc        = config.Load
	initTracerFunc        = tracing.InitTracer
	openStoreFunc         = store.Open
	loadCatalogFunc       = catalog.Load
	newCatalogHandleFunc  = catalog.NewHandle
	newAdminServiceFunc   = service.NewAdminService
	newCatalogMonitorFunc = job.NewCatalogMonitor
	startMonitorFunc      = func(m *job.CatalogMonitor, ctx context.Context) { go m.Start(ctx) }
	newSSHServerFunc      = wish.NewServer
	startSSHServerFunc    = func(srv *ssh.Server) error { return srv.ListenAndServe() }
	shutdownSSHServerFunc = func(srv *ssh.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	setupSignalNotify     = ossignal.Notify
	waitForSignalFunc     = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	if !cfg.SSHEnabled {
		log.Println("Admin SSH dashboard is disabled (set ADMIN_SSH_ENABLED=true)")
		return
	}

	authorized, _, _, _, err := gossh.ParseAuthorizedKey([]byte(cfg.SSHAuthorizedKey))
	if err != nil {
		log.Fatalf("invalid ADMIN_SSH_AUTHORIZED_KEY: %v", err)
	}

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

	st, err := openStoreFunc(cfg.DBPath, tracer)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	cat, err := loadCatalogFunc(cfg.FundsCSVPath)
	if err != nil {
		log.Fatalf("failed to load fund catalog: %v", err)
	}
	catalogHandle := newCatalogHandleFunc(cat)

	monitor := newCatalogMonitorFunc(tracer, catalogHandle, cfg.FundsCSVPath, time.Duration(cfg.CatalogPollSecs)*time.Second)
	startMonitorFunc(monitor, ctx)

	adminService := newAdminServiceFunc(tracer, st, catalogHandle, catalog.AnomalyOptions{
		Threshold:  cfg.AnomalyThreshold,
		NumTrees:   cfg.AnomalyTrees,
		SampleSize: cfg.AnomalySampleSize,
	})

	addr := net.JoinHostPort(cfg.SSHBind, strconv.Itoa(cfg.SSHPort))
	srv, err := newSSHServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(func(_ ssh.Context, key ssh.PublicKey) bool {
			return ssh.KeysEqual(key, authorized)
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(teaHandler(adminService, catalogHandle)),
			activeterm.Middleware(),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("could not create ssh server: %v", err)
	}

	go func() {
		log.Printf("Admin dashboard listening on ssh://%s", addr)
		if err := startSSHServerFunc(srv); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			log.Fatalf("ssh server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Stopping admin dashboard...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownSSHServerFunc(srv, shutdownCtx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		log.Fatalf("ssh server forced to shutdown: %v", err)
	}

	log.Println("Admin dashboard exiting")
}

// teaHandler builds one dashboard program per SSH session.
func teaHandler(admin *service.AdminService, handle *catalog.Handle) bubbletea.Handler {
	return func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
		svc := tui.Services{
			Admin:    admin,
			Catalog:  handle,
			Username: s.User(),
		}
		return tui.NewAppModel(svc), []tea.ProgramOption{tea.WithAltScreen()}
	}
}

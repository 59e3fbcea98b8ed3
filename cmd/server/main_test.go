package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/bot"
	"github.com/scaryPonens/fundadvisor/internal/cache"
	"github.com/scaryPonens/fundadvisor/internal/catalog"
	"github.com/scaryPonens/fundadvisor/internal/config"
	"github.com/scaryPonens/fundadvisor/internal/job"
	"github.com/scaryPonens/fundadvisor/internal/service"
	"github.com/scaryPonens/fundadvisor/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// swap replaces a wiring seam for the duration of the test.
func swap[T any](t *testing.T, slot *T, v T) {
	t.Helper()
	orig := *slot
	*slot = v
	t.Cleanup(func() { *slot = orig })
}

// serverStubState records what main wired while every external
// dependency is stubbed out.
type serverStubState struct {
	monitorStarted   bool
	freshnessStarted bool
	listenAddr       string
}

func stubServerDeps(t *testing.T) *serverStubState {
	t.Helper()

	state := &serverStubState{}
	started := make(chan struct{})

	swap(t, &loadEnvFunc, func(...string) error { return nil })
	swap(t, &loadConfigFunc, func() *config.Config {
		return &config.Config{CatalogPollSecs: 1, SessionTTLSecs: 60}
	})
	swap(t, &initRedisFunc, func(context.Context, string) {})
	swap(t, &initTracerFunc, func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	})
	swap(t, &openStoreFunc, func(_ string, tracer trace.Tracer) (*store.Store, error) {
		return store.Open(filepath.Join(t.TempDir(), "bootstrap.db"), tracer)
	})
	swap(t, &loadCatalogFunc, func(string) (*catalog.Catalog, error) { return nil, nil })
	swap(t, &newSessionStoreFunc, func(*redis.Client, time.Duration) *cache.SessionStore { return nil })
	swap(t, &newAdvisorServiceFunc, func(
		trace.Tracer,
		service.CatalogHandle,
		service.Recommender,
		service.GoalPlanner,
		service.RegistrationStore,
		service.GoalStore,
		service.SessionStore,
	) *service.AdvisorService {
		return nil
	})
	swap(t, &newAdminServiceFunc, func(
		trace.Tracer, service.AdminStore, service.CatalogHandle, catalog.AnomalyOptions,
	) *service.AdminService {
		return nil
	})
	swap(t, &newCatalogMonitorFunc, func(trace.Tracer, *catalog.Handle, string, time.Duration) *job.CatalogMonitor {
		return nil
	})
	swap(t, &startMonitorFunc, func(*job.CatalogMonitor, context.Context) {
		state.monitorStarted = true
	})
	swap(t, &newFreshnessWatchFunc, func(trace.Tracer, *catalog.Handle, job.StaleAlerter) *job.FreshnessWatch {
		return nil
	})
	swap(t, &startFreshnessFunc, func(*job.FreshnessWatch, context.Context) {
		state.freshnessStarted = true
	})
	swap(t, &startTelegramBotFunc, func(bot.AdvisorClient) *bot.AlertDispatcher { return nil })
	swap(t, &newRouterFunc, func(...gin.OptionFunc) *gin.Engine { return gin.New() })
	swap(t, &setupSignalNotify, func(chan<- os.Signal, ...os.Signal) {})
	swap(t, &waitForSignalFunc, func(<-chan os.Signal) { <-started })
	swap(t, &startHTTPServerFunc, func(srv *http.Server) error {
		state.listenAddr = srv.Addr
		close(started)
		return http.ErrServerClosed
	})
	swap(t, &shutdownHTTPServerFunc, func(*http.Server, context.Context) error { return nil })

	return state
}

func TestMainBootstrap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("PORT", "")
	state := stubServerDeps(t)

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}

	if !state.monitorStarted {
		t.Fatal("expected the catalog monitor to start")
	}
	if !state.freshnessStarted {
		t.Fatal("expected the freshness watch to start")
	}
	if state.listenAddr != ":8080" {
		t.Fatalf("expected the default listen address, got %q", state.listenAddr)
	}
}

func TestHTTPAddrFromEnv(t *testing.T) {
	cases := []struct{ port, want string }{
		{"", ":8080"},
		{"9090", ":9090"},
		{":7070", ":7070"},
	}

	for _, tc := range cases {
		t.Setenv("PORT", tc.port)
		if got := httpAddrFromEnv(); got != tc.want {
			t.Fatalf("PORT=%q: expected %s, got %s", tc.port, tc.want, got)
		}
	}
}

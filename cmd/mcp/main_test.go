package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/catalog"
	"github.com/scaryPonens/fundadvisor/internal/config"
	"github.com/scaryPonens/fundadvisor/internal/job"
	mcpserver "github.com/scaryPonens/fundadvisor/internal/mcp"
	"github.com/scaryPonens/fundadvisor/internal/service"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// swap installs v into a package-level seam and restores the original
// when the test finishes.
func swap[T any](t *testing.T, slot *T, v T) {
	t.Helper()
	orig := *slot
	*slot = v
	t.Cleanup(func() { *slot = orig })
}

// mcpStubState records what main wired while every external dependency
// is stubbed out.
type mcpStubState struct {
	monitorStarted bool
	handlerCfg     mcpserver.HTTPHandlerConfig
}

func stubMCPDeps(t *testing.T, transport string) *mcpStubState {
	t.Helper()

	state := &mcpStubState{}

	swap(t, &loadEnvFunc, func(...string) error { return nil })
	swap(t, &loadConfigFunc, func() *config.Config {
		return &config.Config{
			CatalogPollSecs:       1,
			MCPTransport:          transport,
			MCPHTTPEnabled:        true,
			MCPHTTPBind:           "127.0.0.1",
			MCPHTTPPort:           8090,
			MCPAuthToken:          "secret",
			MCPRequestTimeoutSecs: 1,
			MCPRateLimitPerMin:    60,
		}
	})
	swap(t, &initTracerFunc, func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	})
	swap(t, &loadCatalogFunc, func(string) (*catalog.Catalog, error) { return nil, nil })
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
	swap(t, &newMCPServerFunc, func(trace.Tracer, mcpserver.AdvisorClient, mcpserver.CatalogReader, mcpserver.ServerConfig) *sdkmcp.Server {
		return sdkmcp.NewServer(&sdkmcp.Implementation{Name: "test-mcp"}, nil)
	})
	swap(t, &newMCPHandlerFunc, func(server *sdkmcp.Server, cfg mcpserver.HTTPHandlerConfig) http.Handler {
		state.handlerCfg = cfg
		return http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	})
	swap(t, &newCatalogMonitorFunc, func(trace.Tracer, *catalog.Handle, string, time.Duration) *job.CatalogMonitor {
		return nil
	})
	swap(t, &startMonitorFunc, func(*job.CatalogMonitor, context.Context) {
		state.monitorStarted = true
	})
	swap(t, &runStdioFunc, func(context.Context, *sdkmcp.Server) error {
		t.Fatal("stdio transport must not run for this configuration")
		return nil
	})

	return state
}

func TestMainRunsStdioTransport(t *testing.T) {
	state := stubMCPDeps(t, "stdio")

	var got *sdkmcp.Server
	swap(t, &runStdioFunc, func(ctx context.Context, server *sdkmcp.Server) error {
		got = server
		return nil
	})

	main()

	if got == nil {
		t.Fatal("expected the stdio transport to receive a server")
	}
	if !state.monitorStarted {
		t.Fatal("expected the catalog monitor to start")
	}
}

func TestMainRunsHTTPTransport(t *testing.T) {
	state := stubMCPDeps(t, "http")

	started := make(chan struct{})
	swap(t, &startHTTPServerFunc, func(*http.Server) error {
		close(started)
		return http.ErrServerClosed
	})
	swap(t, &setupSignalNotify, func(chan<- os.Signal, ...os.Signal) {})
	swap(t, &waitForSignalFunc, func(<-chan os.Signal) { <-started })
	swap(t, &shutdownHTTPServerFn, func(*http.Server, context.Context) error { return nil })

	main()

	select {
	case <-started:
	default:
		t.Fatal("expected the http transport to start")
	}
	if state.handlerCfg.AuthToken != "secret" {
		t.Fatalf("expected the bearer token to reach the transport guard, got %+v", state.handlerCfg)
	}
	if state.handlerCfg.RateLimitPerMin != 60 {
		t.Fatalf("expected the rate limit to reach the transport guard, got %+v", state.handlerCfg)
	}
}

func TestHTTPModeValidation(t *testing.T) {
	cases := []struct {
		name    string
		cfg     *config.Config
		wantErr string
	}{
		{
			name:    "http disabled",
			cfg:     &config.Config{MCPHTTPEnabled: false},
			wantErr: "MCP_HTTP_ENABLED",
		},
		{
			name:    "missing token",
			cfg:     &config.Config{MCPHTTPEnabled: true, MCPHTTPBind: "127.0.0.1", MCPHTTPPort: 8090},
			wantErr: "MCP_AUTH_TOKEN is required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, cancel := context.WithCancel(context.Background())
			defer cancel()

			srv := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "test"}, nil)
			err := runHTTPMode(cancel, tc.cfg, srv)
			if err == nil {
				t.Fatal("expected a configuration error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

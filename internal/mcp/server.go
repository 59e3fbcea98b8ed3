// Package mcp exposes the advisor over the Model Context Protocol: typed
// tools for risk assessment, recommendations and goal projection, plus
// read-only catalog resources.
package mcp

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultRequestTimeout = 5 * time.Second

type ServerConfig struct {
	RequestTimeout time.Duration
}

func NewServer(tracer trace.Tracer, advisor AdvisorClient, funds CatalogReader, cfg ServerConfig) *sdkmcp.Server {
	srv := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "fundadvisor-mcp",
		Version: "1.0.0",
	}, &sdkmcp.ServerOptions{
		Instructions: "Use these tools/resources to assess investor risk profiles, recommend mutual funds from the current catalog, and project goal corpus growth.",
		Logger:       slog.Default(),
	})

	srv.AddReceivingMiddleware(deadlineMiddleware(cfg.RequestTimeout))
	if tracer != nil {
		srv.AddReceivingMiddleware(tracingMiddleware(tracer))
	}

	registerTools(srv, advisor)
	registerResources(srv, advisor, funds)
	return srv
}

func NewHTTPTransportHandler(server *sdkmcp.Server, cfg HTTPHandlerConfig) http.Handler {
	base := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return server
	}, &sdkmcp.StreamableHTTPOptions{})
	return wrapHTTPHandler(base, cfg)
}

// deadlineMiddleware bounds every request so a stuck handler cannot hold a
// transport slot open.
func deadlineMiddleware(timeout time.Duration) sdkmcp.Middleware {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			deadlineCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(deadlineCtx, method, req)
		}
	}
}

func tracingMiddleware(tracer trace.Tracer) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			attrs := []attribute.KeyValue{attribute.String("mcp.method", method)}
			name := "mcp." + strings.ReplaceAll(method, "/", ".")

			switch r := req.(type) {
			case *sdkmcp.CallToolRequest:
				tool := strings.TrimSpace(r.Params.Name)
				attrs = append(attrs, attribute.String("mcp.tool", tool))
				if tool != "" {
					name = "mcp.tool." + tool
				}
			case *sdkmcp.ReadResourceRequest:
				attrs = append(attrs, attribute.String("mcp.resource.uri", strings.TrimSpace(r.Params.URI)))
				name = "mcp.resource.read"
			}

			ctx, span := tracer.Start(ctx, name)
			span.SetAttributes(attrs...)
			defer span.End()

			result, err := next(ctx, method, req)
			if err != nil {
				span.RecordError(err)
			}
			return result, err
		}
	}
}

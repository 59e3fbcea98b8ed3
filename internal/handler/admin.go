package handler

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/domain"
	"github.com/scaryPonens/fundadvisor/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
)

// Origin checks are skipped; the admin bearer token gates the route.
var liveUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type liveMetrics struct {
	Overview domain.OverviewMetrics `json:"overview"`
	Catalog  service.CatalogStatus  `json:"catalog"`
	At       time.Time              `json:"at"`
}

// AdminOverview godoc
// @Summary      Registration funnel overview
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/admin/overview [get]
func (h *Handler) AdminOverview(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.admin-overview")
	defer span.End()

	if h.admin == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin service unavailable"})
		return
	}

	overview, err := h.admin.Overview(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"overview": overview})
}

// AdminRegistrations godoc
// @Summary      Latest registrations
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query  int  false  "Maximum rows, capped at 500"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/admin/registrations [get]
func (h *Handler) AdminRegistrations(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.admin-registrations")
	defer span.End()

	if h.admin == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin service unavailable"})
		return
	}

	limit := 0
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	registrations, err := h.admin.LatestRegistrations(ctx, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("registrations.count", len(registrations)))
	c.JSON(http.StatusOK, gin.H{"registrations": registrations, "count": len(registrations)})
}

// AdminExportRegistrations godoc
// @Summary      Export registrations as CSV
// @Tags         admin
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200  {string}  string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/admin/registrations/export [get]
func (h *Handler) AdminExportRegistrations(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.admin-export-registrations")
	defer span.End()

	if h.admin == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin service unavailable"})
		return
	}

	var buf bytes.Buffer
	if err := h.admin.ExportRegistrations(ctx, &buf); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="registrations.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// AdminGoalsAnalytics godoc
// @Summary      Saved goals analytics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/admin/goals/analytics [get]
func (h *Handler) AdminGoalsAnalytics(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.admin-goals-analytics")
	defer span.End()

	if h.admin == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin service unavailable"})
		return
	}

	analytics, err := h.admin.GoalsAnalytics(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analytics": analytics})
}

// AdminExportGoals godoc
// @Summary      Export goals as CSV
// @Tags         admin
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200  {string}  string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/admin/goals/export [get]
func (h *Handler) AdminExportGoals(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.admin-export-goals")
	defer span.End()

	if h.admin == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin service unavailable"})
		return
	}

	var buf bytes.Buffer
	if err := h.admin.ExportGoals(ctx, &buf); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="goals.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// AdminCatalogAnomalies godoc
// @Summary      Catalog anomaly scan
// @Description  Runs an isolation forest over the loaded catalog and returns outlier funds
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/admin/catalog/anomalies [get]
func (h *Handler) AdminCatalogAnomalies(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.admin-catalog-anomalies")
	defer span.End()

	if h.admin == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin service unavailable"})
		return
	}

	anomalies, err := h.admin.CatalogAnomalies(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("anomalies.count", len(anomalies)))
	c.JSON(http.StatusOK, gin.H{"anomalies": anomalies, "count": len(anomalies)})
}

// AdminCatalogStatus godoc
// @Summary      Catalog load status
// @Description  Reports fund count, skipped rows, load time and data freshness
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/admin/catalog/status [get]
func (h *Handler) AdminCatalogStatus(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.admin-catalog-status")
	defer span.End()

	if h.admin == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin service unavailable"})
		return
	}

	status, err := h.admin.CatalogStatus(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"catalog": status})
}

// AdminLiveMetrics godoc
// @Summary      Live metrics stream
// @Description  Upgrades to a websocket and pushes overview and catalog status on an interval
// @Tags         admin
// @Security     BearerAuth
// @Success      101  {string}  string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/admin/metrics/live [get]
func (h *Handler) AdminLiveMetrics(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.admin-live-metrics")
	defer span.End()

	if h.admin == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin service unavailable"})
		return
	}

	conn, err := liveUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written its own HTTP error.
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Inbound frames are discarded; the read pump only notices the client
	// going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	interval := h.livePush
	if interval <= 0 {
		interval = defaultLivePushInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := h.pushLiveMetrics(ctx, conn); err != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *Handler) pushLiveMetrics(ctx context.Context, conn *websocket.Conn) error {
	overview, err := h.admin.Overview(ctx)
	if err != nil {
		return conn.WriteJSON(gin.H{"error": err.Error()})
	}
	status, err := h.admin.CatalogStatus(ctx)
	if err != nil {
		return conn.WriteJSON(gin.H{"error": err.Error()})
	}
	return conn.WriteJSON(liveMetrics{
		Overview: overview,
		Catalog:  status,
		At:       time.Now().UTC(),
	})
}

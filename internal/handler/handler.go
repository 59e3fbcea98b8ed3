package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/domain"
	"github.com/scaryPonens/fundadvisor/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

const defaultLivePushInterval = 5 * time.Second

type Handler struct {
	tracer     trace.Tracer
	advisor    *service.AdvisorService
	admin      *service.AdminService
	adminToken string
	livePush   time.Duration
}

func New(
	tracer trace.Tracer,
	advisor *service.AdvisorService,
	admin *service.AdminService,
	adminToken string,
) *Handler {
	return &Handler{
		tracer:     tracer,
		advisor:    advisor,
		admin:      admin,
		adminToken: adminToken,
		livePush:   defaultLivePushInterval,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	v1.GET("/questionnaire", h.GetQuestionnaire)
	v1.POST("/risk/score", h.ScoreRisk)
	v1.GET("/risk/quick", h.GetQuickProfiles)
	v1.POST("/risk/quick", h.QuickAssess)
	v1.POST("/registrations", h.Register)
	v1.GET("/registrations/:id/goals", h.GetRegistrationGoals)
	v1.GET("/recommendations", h.GetRecommendations)
	v1.POST("/recommendations/viewed", h.MarkRecommendationsViewed)
	v1.GET("/funds/search", h.SearchFunds)
	v1.POST("/goals", h.CreateGoal)
	v1.GET("/goals/:id", h.GetGoal)
	v1.GET("/goals/:id/chart", h.GoalChart)
	v1.POST("/goals/:id/email", h.EmailGoal)

	admin := v1.Group("/admin", h.RequireAdmin)
	admin.GET("/overview", h.AdminOverview)
	admin.GET("/registrations", h.AdminRegistrations)
	admin.GET("/registrations/export", h.AdminExportRegistrations)
	admin.GET("/goals/analytics", h.AdminGoalsAnalytics)
	admin.GET("/goals/export", h.AdminExportGoals)
	admin.GET("/catalog/anomalies", h.AdminCatalogAnomalies)
	admin.GET("/catalog/status", h.AdminCatalogStatus)
	admin.GET("/metrics/live", h.AdminLiveMetrics)
}

// Health godoc
// @Summary      Service health
// @Tags         ops
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RequireAdmin guards the admin group with the static bearer token. An
// empty configured token disables the whole group.
func (h *Handler) RequireAdmin(c *gin.Context) {
	if h.adminToken == "" {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "admin API is disabled"})
		return
	}
	authz := strings.TrimSpace(c.GetHeader("Authorization"))
	if !strings.HasPrefix(authz, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	provided := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	if provided == "" || provided != h.adminToken {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid bearer token"})
		return
	}
	c.Next()
}

// respondError maps the shared sentinel errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAnswers),
		errors.Is(err, domain.ErrInvalidRegistration),
		errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

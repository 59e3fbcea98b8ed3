package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/scaryPonens/fundadvisor/internal/domain"
	"github.com/scaryPonens/fundadvisor/internal/goal"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type createGoalRequest struct {
	RegistrationID int64   `json:"registration_id"`
	RiskCategory   string  `json:"risk_category"`
	Corpus         float64 `json:"corpus"`
	MonthlySIP     float64 `json:"monthly_sip"`
	HorizonYears   int     `json:"horizon_years"`
}

// CreateGoal godoc
// @Summary      Plan and save a goal
// @Description  Projects conservative, expected and best-case corpus growth and persists the goal
// @Tags         goals
// @Accept       json
// @Produce      json
// @Param        request  body  createGoalRequest  true  "Goal inputs"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/goals [post]
func (h *Handler) CreateGoal(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.create-goal")
	defer span.End()

	if h.advisor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advisor service unavailable"})
		return
	}

	var req createGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	category, ok := domain.ParseRiskCategory(req.RiskCategory)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown risk category: " + req.RiskCategory})
		return
	}

	g, err := h.advisor.PlanGoal(ctx, goal.PlanRequest{
		RegistrationID: req.RegistrationID,
		RiskCategory:   category,
		InitialCorpus:  req.Corpus,
		MonthlySIP:     req.MonthlySIP,
		HorizonYears:   req.HorizonYears,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.String("goal.id", g.GoalID))
	c.JSON(http.StatusCreated, gin.H{"goal": g})
}

// GetGoal godoc
// @Summary      Load a saved goal
// @Description  Returns a goal by id; loading a saved goal records the revisit
// @Tags         goals
// @Produce      json
// @Param        id  path  string  true  "Goal id"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/goals/{id} [get]
func (h *Handler) GetGoal(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-goal")
	defer span.End()

	if h.advisor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advisor service unavailable"})
		return
	}

	g, err := h.advisor.GoalByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": g})
}

// GoalChart godoc
// @Summary      Goal projection chart
// @Description  Renders the corpus growth scenarios for a saved goal as a PNG
// @Tags         goals
// @Produce      png
// @Param        id  path  string  true  "Goal id"
// @Success      200  {string}  string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/goals/{id}/chart [get]
func (h *Handler) GoalChart(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.goal-chart")
	defer span.End()

	if h.advisor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advisor service unavailable"})
		return
	}

	img, err := h.advisor.GoalChart(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, img.MimeType, img.Bytes)
}

// EmailGoal godoc
// @Summary      Record a goal summary email
// @Description  Marks the goal as emailed and returns the updated row
// @Tags         goals
// @Produce      json
// @Param        id  path  string  true  "Goal id"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/goals/{id}/email [post]
func (h *Handler) EmailGoal(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.email-goal")
	defer span.End()

	if h.advisor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advisor service unavailable"})
		return
	}

	g, err := h.advisor.MarkGoalEmailed(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": g})
}

// GetRegistrationGoals godoc
// @Summary      Goals for a registration
// @Description  Lists all saved goals belonging to one registration, newest first
// @Tags         goals
// @Produce      json
// @Param        id  path  int  true  "Registration id"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/registrations/{id}/goals [get]
func (h *Handler) GetRegistrationGoals(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-registration-goals")
	defer span.End()

	if h.advisor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advisor service unavailable"})
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "registration id must be a positive integer"})
		return
	}

	goals, err := h.advisor.GoalsForRegistration(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": goals, "count": len(goals)})
}

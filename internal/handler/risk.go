package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type scoreRiskRequest struct {
	Answers []int `json:"answers"`
}

type quickAssessRequest struct {
	Profile string `json:"profile"`
}

// GetQuestionnaire godoc
// @Summary      Risk questionnaire
// @Description  Returns the ordered questions and their answer options
// @Tags         risk
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/questionnaire [get]
func (h *Handler) GetQuestionnaire(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-questionnaire")
	defer span.End()

	if h.advisor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advisor service unavailable"})
		return
	}

	questions, err := h.advisor.Questionnaire(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

// ScoreRisk godoc
// @Summary      Score questionnaire answers
// @Description  Scores a full set of answers and returns the risk category with its band
// @Tags         risk
// @Accept       json
// @Produce      json
// @Param        request  body  scoreRiskRequest  true  "Answer indexes, one per question"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/risk/score [post]
func (h *Handler) ScoreRisk(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.score-risk")
	defer span.End()

	if h.advisor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advisor service unavailable"})
		return
	}

	var req scoreRiskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	assessment, err := h.advisor.ScoreAnswers(ctx, req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.String("risk.category", string(assessment.Category)))
	c.JSON(http.StatusOK, gin.H{"assessment": assessment})
}

// GetQuickProfiles godoc
// @Summary      Quick risk profiles
// @Description  Lists the self-declared profiles accepted without the questionnaire
// @Tags         risk
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/risk/quick [get]
func (h *Handler) GetQuickProfiles(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-quick-profiles")
	defer span.End()

	if h.advisor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advisor service unavailable"})
		return
	}

	options, err := h.advisor.QuickOptions(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": options})
}

// QuickAssess godoc
// @Summary      Accept a self-declared risk profile
// @Description  Validates a quick profile and returns the matching category without a score
// @Tags         risk
// @Accept       json
// @Produce      json
// @Param        request  body  quickAssessRequest  true  "Self-declared profile"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/risk/quick [post]
func (h *Handler) QuickAssess(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.quick-assess")
	defer span.End()

	if h.advisor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advisor service unavailable"})
		return
	}

	var req quickAssessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	assessment, err := h.advisor.QuickAssess(ctx, req.Profile)
	if err != nil {
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.String("risk.category", string(assessment.Category)))
	c.JSON(http.StatusOK, gin.H{"assessment": assessment})
}

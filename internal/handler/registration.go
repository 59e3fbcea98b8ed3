package handler

import (
	"net/http"

	"github.com/scaryPonens/fundadvisor/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type registerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	City         string `json:"city"`
	Country      string `json:"country"`
	Consent      bool   `json:"consent"`
	RiskCategory string `json:"risk_category"`
	Answers      []int  `json:"answers"`
	UserID       string `json:"user_id"`
}

type markViewedRequest struct {
	RegistrationID int64 `json:"registration_id"`
}

// Register godoc
// @Summary      Register a user
// @Description  Persists a registration with either questionnaire answers or a quick profile and opens a session
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        request  body  registerRequest  true  "Registration details"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/registrations [post]
func (h *Handler) Register(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.register")
	defer span.End()

	if h.advisor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advisor service unavailable"})
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	reg := domain.Registration{
		Name:    req.Name,
		Email:   req.Email,
		City:    req.City,
		Country: req.Country,
		Consent: req.Consent,
		UserID:  req.UserID,
	}
	if req.RiskCategory != "" {
		category, ok := domain.ParseRiskCategory(req.RiskCategory)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown risk category: " + req.RiskCategory})
			return
		}
		reg.RiskCategory = category
	}

	id, token, err := h.advisor.Register(ctx, reg, req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.Int64("registration.id", id))
	c.JSON(http.StatusCreated, gin.H{
		"registration_id": id,
		"session_token":   token,
	})
}

// MarkRecommendationsViewed godoc
// @Summary      Mark recommendations as viewed
// @Description  Records that a registration has seen its recommendation list
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        request  body  markViewedRequest  true  "Registration id"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/recommendations/viewed [post]
func (h *Handler) MarkRecommendationsViewed(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.mark-recommendations-viewed")
	defer span.End()

	if h.advisor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advisor service unavailable"})
		return
	}

	var req markViewedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.advisor.MarkViewed(ctx, req.RegistrationID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "viewed"})
}

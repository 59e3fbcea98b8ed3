package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/scaryPonens/fundadvisor/internal/domain"
	"github.com/scaryPonens/fundadvisor/internal/recommend"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetRecommendations godoc
// @Summary      Fund recommendations
// @Description  Filters and ranks the catalog for a risk category, amount and duration; a session token can stand in for the profile
// @Tags         recommendations
// @Produce      json
// @Param        category  query  string  false  "Risk category, e.g. High or High Risk"
// @Param        amount    query  int     false  "Investment amount in rupees"
// @Param        duration  query  string  false  "Investment duration, e.g. More than 1 year"
// @Param        limit     query  int     false  "Page size, capped at 10"
// @Param        offset    query  int     false  "Page offset into the ordered list"
// @Param        session   query  string  false  "Session token from registration"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/recommendations [get]
func (h *Handler) GetRecommendations(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-recommendations")
	defer span.End()

	if h.advisor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advisor service unavailable"})
		return
	}

	var req domain.RecommendationRequest
	if v := strings.TrimSpace(c.Query("category")); v != "" {
		category, ok := domain.ParseRiskCategory(v)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown risk category: " + v})
			return
		}
		req.RiskCategory = category
	}
	if v := strings.TrimSpace(c.Query("amount")); v != "" {
		amount, err := strconv.ParseInt(v, 10, 64)
		if err != nil || amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a positive integer"})
			return
		}
		req.Amount = amount
	}
	req.Duration = strings.TrimSpace(c.Query("duration"))

	limit := 0
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	offset := 0
	if v := strings.TrimSpace(c.Query("offset")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
			return
		}
		offset = n
	}
	token := strings.TrimSpace(c.Query("session"))

	page, err := h.advisor.Recommendations(ctx, token, req, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	span.SetAttributes(
		attribute.Int("recommendations.total", page.Total),
		attribute.Int("recommendations.page", len(page.Recommendations)),
	)
	c.JSON(http.StatusOK, gin.H{
		"recommendations": page.Recommendations,
		"total":           page.Total,
		"offset":          page.Offset,
		"has_more":        page.HasMore,
		"stale_count":     recommend.StaleCount(page.Recommendations),
	})
}

// SearchFunds godoc
// @Summary      Search funds by name
// @Description  Ranked full-text search over fund names, categories and remarks
// @Tags         funds
// @Produce      json
// @Param        q      query  string  true   "Search query"
// @Param        limit  query  int     false  "Maximum results"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/funds/search [get]
func (h *Handler) SearchFunds(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.search-funds")
	defer span.End()

	if h.advisor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advisor service unavailable"})
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

	funds, err := h.advisor.SearchFunds(ctx, c.Query("q"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("funds.matched", len(funds)))
	c.JSON(http.StatusOK, gin.H{"funds": funds, "count": len(funds)})
}

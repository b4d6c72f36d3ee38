package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"

	"chart-analyze-service/database"
	"chart-analyze-service/llm"
	"chart-analyze-service/models"
	"chart-analyze-service/service"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// Handlers represents the HTTP handlers
type Handlers struct {
	service *service.Service
}

// NewHandlers creates new HTTP handlers
func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{service: svc}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "chart-analyze-service",
	})
}

type analyzeRequest struct {
	Image    string `json:"image" binding:"required"`
	Language string `json:"language"`
}

// AnalyzeChart accepts a base64-encoded chart image, runs one analysis
// cycle and returns the persisted record (image bytes excluded).
func (h *Handlers) AnalyzeChart(c *gin.Context) {
	var req analyzeRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}

	imageData, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image must be valid base64"})
		return
	}

	record, err := h.service.Analyze(c.Request.Context(), imageData, req.Language)
	if err != nil {
		h.renderAnalyzeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, stripImage(*record))
}

// renderAnalyzeError maps the analyze error taxonomy onto HTTP responses.
// The timeout gets a dedicated user-facing notice.
func (h *Handlers) renderAnalyzeError(c *gin.Context, err error) {
	var serverErr *llm.ServerError
	switch {
	case errors.Is(err, service.ErrEmptyImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "image data is empty"})
	case errors.Is(err, service.ErrAnalysisInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "an analysis is already in progress"})
	case errors.Is(err, llm.ErrTimeout):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":       "Servers are busy",
			"instruction": "Please try again in a moment",
		})
	case errors.Is(err, llm.ErrUnauthorized):
		c.JSON(http.StatusBadGateway, gin.H{"error": "analysis provider rejected credentials"})
	case errors.As(err, &serverErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "analysis provider error", "status": serverErr.StatusCode})
	case errors.Is(err, llm.ErrDecoding):
		c.JSON(http.StatusBadGateway, gin.H{"error": "analysis provider returned an unusable response"})
	default:
		log.Errorf("Analyze failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to analyze image"})
	}
}

// GetHistory returns persisted analyses within the retention window.
// Image bytes are excluded unless include_image=true.
func (h *Handlers) GetHistory(c *gin.Context) {
	records, err := h.service.History()
	if err != nil {
		log.Errorf("Failed to list analysis records: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	if c.Query("include_image") != "true" {
		for i := range records {
			records[i] = stripImage(records[i])
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
	})
}

// GetAnalysis returns a single record by id.
func (h *Handlers) GetAnalysis(c *gin.Context) {
	record, err := h.service.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
			return
		}
		log.Errorf("Failed to fetch analysis record: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analysis"})
		return
	}

	if c.Query("include_image") != "true" {
		*record = stripImage(*record)
	}

	c.JSON(http.StatusOK, record)
}

// GetTechnicalAnalysis re-parses the stored raw payload into the technical
// detail sections, including the numeric price levels.
func (h *Handlers) GetTechnicalAnalysis(c *gin.Context) {
	record, err := h.service.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
			return
		}
		log.Errorf("Failed to fetch analysis record: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analysis"})
		return
	}

	ta := models.ParseTechnicalAnalysis(record.Analysis.AnalysisText)
	supports, resistances := ta.PriceLevels()

	c.JSON(http.StatusOK, gin.H{
		"trend":              ta.FormatTrend(),
		"support_resistance": ta.FormatSupportResistance(),
		"indicators":         ta.FormatIndicators(),
		"volume":             ta.FormatVolume(),
		"patterns":           ta.FormatPatterns(),
		"price_levels": gin.H{
			"supports":    supports,
			"resistances": resistances,
		},
	})
}

// DeleteAnalysis removes a record by explicit user action.
func (h *Handlers) DeleteAnalysis(c *gin.Context) {
	if err := h.service.Delete(c.Param("id")); err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
			return
		}
		log.Errorf("Failed to delete analysis record: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete analysis"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// GetStats returns history counts within the retention window.
func (h *Handlers) GetStats(c *gin.Context) {
	stats, err := h.service.Stats()
	if err != nil {
		log.Errorf("Failed to get analysis stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// stripImage clears image payloads before serialization; clients fetch
// images explicitly with include_image=true.
func stripImage(record models.AnalysisRecord) models.AnalysisRecord {
	record.ImageData = nil
	record.Analysis.ImageData = nil
	return record
}

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mindplate/backend/internal/model"
	"github.com/mindplate/backend/internal/service"
)

// AdminHandler exposes the batch operations behind the admin surface.
type AdminHandler struct {
	evaluator   service.IEvaluatorService
	calibration service.ICalibrationService
	fusion      service.IFusionService
	classifier  *service.EvidenceClassifier
}

func NewAdminHandler(
	evaluator service.IEvaluatorService,
	calibration service.ICalibrationService,
	fusion service.IFusionService,
	classifier *service.EvidenceClassifier,
) *AdminHandler {
	return &AdminHandler{
		evaluator:   evaluator,
		calibration: calibration,
		fusion:      fusion,
		classifier:  classifier,
	}
}

// Evaluate runs a known-answer evaluation batch.
func (h *AdminHandler) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Limit == 0 {
		// No limit: evaluate every reference food.
		req.Limit = -1
	}

	result, err := h.evaluator.Run(c.Request.Context(), req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "evaluation run failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Metrics returns the most recent aggregate metrics of the given type.
func (h *AdminHandler) Metrics(c *gin.Context) {
	metricsType := c.Param("type")
	if metricsType != model.EvaluationTypeNutrients && metricsType != model.EvaluationTypeImpacts {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown metrics type"})
		return
	}

	row, err := h.evaluator.LatestMetrics(c.Request.Context(), metricsType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no metrics recorded yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load metrics"})
		return
	}

	c.JSON(http.StatusOK, row)
}

// Calibrate rebuilds the calibration model from the latest run and
// recalibrates the dataset.
func (h *AdminHandler) Calibrate(c *gin.Context) {
	stats, err := h.calibration.CalibrateDataset(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoEvaluationRuns) {
			c.JSON(http.StatusConflict, gin.H{"error": "no evaluation runs to calibrate from"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "calibration failed"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Merge fuses the records for one food name into a canonical record.
func (h *AdminHandler) Merge(c *gin.Context) {
	var req MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	merged, err := h.fusion.MergeByName(c.Request.Context(), req.Name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no foods found with that name"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "merge failed"})
		return
	}

	c.JSON(http.StatusOK, merged)
}

// MergeAll fuses the whole dataset in batches.
func (h *AdminHandler) MergeAll(c *gin.Context) {
	stats, err := h.fusion.MergeAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "merge pass failed"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Classify rates a literature excerpt's evidence quality.
func (h *AdminHandler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meta := service.StudyMetadata{
		Title:      req.Title,
		Journal:    req.Journal,
		Year:       req.Year,
		DOI:        req.DOI,
		StudyType:  req.StudyType,
		SampleSize: req.SampleSize,
	}
	tier, confidence := h.classifier.Classify(meta, req.Excerpt)

	c.JSON(http.StatusOK, ClassifyResponse{
		EvidenceTier: string(tier),
		Confidence:   confidence,
	})
}

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mindplate/backend/internal/mocks"
	"github.com/mindplate/backend/internal/model"
	"github.com/mindplate/backend/internal/service"
)

type adminMocks struct {
	evaluator   *mocks.MockEvaluatorService
	calibration *mocks.MockCalibrationService
	fusion      *mocks.MockFusionService
}

func newAdminRouter() (*gin.Engine, *adminMocks) {
	gin.SetMode(gin.TestMode)
	m := &adminMocks{
		evaluator:   new(mocks.MockEvaluatorService),
		calibration: new(mocks.MockCalibrationService),
		fusion:      new(mocks.MockFusionService),
	}
	handler := NewAdminHandler(m.evaluator, m.calibration, m.fusion, service.NewEvidenceClassifier())

	router := gin.New()
	router.POST("/evaluate", handler.Evaluate)
	router.GET("/metrics/:type", handler.Metrics)
	router.POST("/calibrate", handler.Calibrate)
	router.POST("/merge", handler.Merge)
	router.POST("/merge-all", handler.MergeAll)
	router.POST("/classify", handler.Classify)
	return router, m
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestAdminHandler_Evaluate(t *testing.T) {
	t.Run("should default to an unbounded run", func(t *testing.T) {
		router, m := newAdminRouter()
		m.evaluator.On("Run", mock.Anything, -1).
			Return(&service.EvaluationRunResult{RunID: "test_1", FoodsEvaluated: 3}, nil)

		rr := postJSON(t, router, "/evaluate", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "test_1")
		m.evaluator.AssertExpectations(t)
	})

	t.Run("should pass the requested limit", func(t *testing.T) {
		router, m := newAdminRouter()
		m.evaluator.On("Run", mock.Anything, 25).
			Return(&service.EvaluationRunResult{RunID: "test_2"}, nil)

		rr := postJSON(t, router, "/evaluate", EvaluateRequest{Limit: 25})

		assert.Equal(t, http.StatusOK, rr.Code)
		m.evaluator.AssertExpectations(t)
	})
}

func TestAdminHandler_Metrics(t *testing.T) {
	t.Run("should return the latest row", func(t *testing.T) {
		router, m := newAdminRouter()
		m.evaluator.On("LatestMetrics", mock.Anything, model.EvaluationTypeNutrients).
			Return(&model.EvaluationMetrics{RunID: "test_9", MetricsType: model.EvaluationTypeNutrients}, nil)

		req, _ := http.NewRequest("GET", "/metrics/nutrients", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "test_9")
		m.evaluator.AssertExpectations(t)
	})

	t.Run("should reject unknown types", func(t *testing.T) {
		router, _ := newAdminRouter()
		req, _ := http.NewRequest("GET", "/metrics/bogus", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("should return 404 before any run", func(t *testing.T) {
		router, m := newAdminRouter()
		m.evaluator.On("LatestMetrics", mock.Anything, model.EvaluationTypeImpacts).
			Return(nil, fmt.Errorf("failed to load latest metrics: %w", gorm.ErrRecordNotFound))

		req, _ := http.NewRequest("GET", "/metrics/mental_health_impacts", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestAdminHandler_Calibrate(t *testing.T) {
	t.Run("should report stats", func(t *testing.T) {
		router, m := newAdminRouter()
		m.calibration.On("CalibrateDataset", mock.Anything).
			Return(&service.CalibrationStats{RunID: "test_1", Calibrated: 10}, nil)

		rr := postJSON(t, router, "/calibrate", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"calibrated":10`)
	})

	t.Run("should return 409 without evaluation runs", func(t *testing.T) {
		router, m := newAdminRouter()
		m.calibration.On("CalibrateDataset", mock.Anything).
			Return(nil, service.ErrNoEvaluationRuns)

		rr := postJSON(t, router, "/calibrate", nil)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestAdminHandler_Merge(t *testing.T) {
	t.Run("should require a name", func(t *testing.T) {
		router, _ := newAdminRouter()
		rr := postJSON(t, router, "/merge", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("should merge by name", func(t *testing.T) {
		router, m := newAdminRouter()
		m.fusion.On("MergeByName", mock.Anything, "spinach").
			Return(&model.Food{FoodID: "merged_spinach", Name: "Spinach"}, nil)

		rr := postJSON(t, router, "/merge", MergeRequest{Name: "spinach"})

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "merged_spinach")
		m.fusion.AssertExpectations(t)
	})

	t.Run("should return 404 for an unknown name", func(t *testing.T) {
		router, m := newAdminRouter()
		m.fusion.On("MergeByName", mock.Anything, "unobtainium").
			Return(nil, gorm.ErrRecordNotFound)

		rr := postJSON(t, router, "/merge", MergeRequest{Name: "unobtainium"})

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestAdminHandler_MergeAll(t *testing.T) {
	router, m := newAdminRouter()
	m.fusion.On("MergeAll", mock.Anything).
		Return(&service.MergeStats{GroupsProcessed: 4, RecordsMerged: 9}, nil)

	rr := postJSON(t, router, "/merge-all", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"records_merged":9`)
}

func TestAdminHandler_Classify(t *testing.T) {
	t.Run("should classify a study", func(t *testing.T) {
		router, _ := newAdminRouter()

		rr := postJSON(t, router, "/classify", ClassifyRequest{
			Title:     "Omega-3 supplementation and depression",
			Journal:   "J Nutr Psych",
			Year:      2023,
			DOI:       "10.1000/omega3",
			StudyType: "meta-analysis",
			Excerpt:   "Pooled analysis of randomized trials.",
		})

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp ClassifyResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "meta_analysis", resp.EvidenceTier)
		assert.Equal(t, 10.0, resp.Confidence)
	})

	t.Run("should reject an incomplete request", func(t *testing.T) {
		router, _ := newAdminRouter()
		rr := postJSON(t, router, "/classify", map[string]string{"title": "only a title"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

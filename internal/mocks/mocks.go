package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mindplate/backend/internal/model"
	"github.com/mindplate/backend/internal/service"
)

// MockFoodService is a mock implementation of the food service
type MockFoodService struct {
	mock.Mock
}

func (m *MockFoodService) GetFood(ctx context.Context, foodID string) (*model.Food, error) {
	args := m.Called(ctx, foodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Food), args.Error(1)
}

func (m *MockFoodService) SearchFoods(ctx context.Context, query string) ([]*model.Food, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Food), args.Error(1)
}

func (m *MockFoodService) CreateFood(ctx context.Context, food *model.Food) (*model.Food, error) {
	args := m.Called(ctx, food)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Food), args.Error(1)
}

func (m *MockFoodService) ListByNormalizedName(ctx context.Context, name string) ([]*model.Food, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Food), args.Error(1)
}

// MockEvaluatorService is a mock implementation of the evaluator service
type MockEvaluatorService struct {
	mock.Mock
}

func (m *MockEvaluatorService) Run(ctx context.Context, limit int) (*service.EvaluationRunResult, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EvaluationRunResult), args.Error(1)
}

func (m *MockEvaluatorService) LatestMetrics(ctx context.Context, metricsType string) (*model.EvaluationMetrics, error) {
	args := m.Called(ctx, metricsType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EvaluationMetrics), args.Error(1)
}

// MockCalibrationService is a mock implementation of the calibration service
type MockCalibrationService struct {
	mock.Mock
}

func (m *MockCalibrationService) BuildModel(ctx context.Context) (*model.CalibrationModel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CalibrationModel), args.Error(1)
}

func (m *MockCalibrationService) CalibrateDataset(ctx context.Context) (*service.CalibrationStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CalibrationStats), args.Error(1)
}

// MockFusionService is a mock implementation of the fusion service
type MockFusionService struct {
	mock.Mock
}

func (m *MockFusionService) MergeByName(ctx context.Context, name string) (*model.Food, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Food), args.Error(1)
}

func (m *MockFusionService) MergeAll(ctx context.Context) (*service.MergeStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MergeStats), args.Error(1)
}

// MockPredictionClient is a mock implementation of the prediction client
type MockPredictionClient struct {
	mock.Mock
}

func (m *MockPredictionClient) PredictBrainNutrients(ctx context.Context, food *model.Food, targets []string) (*service.NutrientPrediction, error) {
	args := m.Called(ctx, food, targets)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.NutrientPrediction), args.Error(1)
}

func (m *MockPredictionClient) PredictMentalHealthImpacts(ctx context.Context, food *model.Food) ([]model.MentalHealthImpact, error) {
	args := m.Called(ctx, food)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MentalHealthImpact), args.Error(1)
}

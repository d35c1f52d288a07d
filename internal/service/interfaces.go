package service

import (
	"context"

	"github.com/mindplate/backend/internal/model"
	"github.com/mindplate/backend/internal/types"
)

// PredictionClient is the external AI surface the evaluator depends on.
type PredictionClient interface {
	PredictBrainNutrients(ctx context.Context, food *model.Food, targets []string) (*NutrientPrediction, error)
	PredictMentalHealthImpacts(ctx context.Context, food *model.Food) ([]model.MentalHealthImpact, error)
}

// IFoodService defines the interface for food record operations
type IFoodService interface {
	GetFood(ctx context.Context, foodID string) (*model.Food, error)
	SearchFoods(ctx context.Context, query string) ([]*model.Food, error)
	CreateFood(ctx context.Context, food *model.Food) (*model.Food, error)
	ListByNormalizedName(ctx context.Context, name string) ([]*model.Food, error)
}

// IEvaluatorService defines the interface for known-answer evaluation
type IEvaluatorService interface {
	Run(ctx context.Context, limit int) (*EvaluationRunResult, error)
	LatestMetrics(ctx context.Context, metricsType string) (*model.EvaluationMetrics, error)
}

// ICalibrationService defines the interface for confidence calibration
type ICalibrationService interface {
	BuildModel(ctx context.Context) (*model.CalibrationModel, error)
	CalibrateDataset(ctx context.Context) (*CalibrationStats, error)
}

// IFusionService defines the interface for multi-source merging
type IFusionService interface {
	MergeByName(ctx context.Context, name string) (*model.Food, error)
	MergeAll(ctx context.Context) (*MergeStats, error)
}

// ITokenService issues and validates admin service tokens
type ITokenService interface {
	ValidateToken(token string) (*types.TokenClaims, error)
	GenerateToken(claims *types.TokenClaims) (string, error)
}

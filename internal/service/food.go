package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mindplate/backend/internal/model"
)

// FoodService handles food record operations
type FoodService struct {
	db *gorm.DB
}

func NewFoodService(db *gorm.DB) *FoodService {
	return &FoodService{db: db}
}

// GetFood fetches a record by its external food_id.
func (s *FoodService) GetFood(ctx context.Context, foodID string) (*model.Food, error) {
	var food model.Food
	if err := s.db.WithContext(ctx).First(&food, "food_id = ?", foodID).Error; err != nil {
		return nil, err
	}
	return &food, nil
}

// SearchFoods matches the query against name and description.
func (s *FoodService) SearchFoods(ctx context.Context, query string) ([]*model.Food, error) {
	var foods []*model.Food
	like := "%" + strings.ToLower(query) + "%"
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like).
		Order("food_id").
		Limit(50).
		Find(&foods).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search foods: %w", err)
	}
	return foods, nil
}

// CreateFood stores a new record, filling the derived fields.
func (s *FoodService) CreateFood(ctx context.Context, food *model.Food) (*model.Food, error) {
	if food.FoodID == "" {
		return nil, fmt.Errorf("food_id is required")
	}
	food.NormalizedName = model.NormalizeName(food.Name)
	food.DataQuality.Completeness = food.ComputeCompleteness()
	if food.Meta.Created.IsZero() {
		food.Meta.Created = time.Now().UTC()
	}
	food.Meta.LastUpdated = time.Now().UTC()

	if err := s.db.WithContext(ctx).Create(food).Error; err != nil {
		return nil, fmt.Errorf("failed to create food: %w", err)
	}
	return food, nil
}

// ListByNormalizedName returns all single-source records sharing a
// normalized name, in food_id order.
func (s *FoodService) ListByNormalizedName(ctx context.Context, name string) ([]*model.Food, error) {
	var foods []*model.Food
	err := s.db.WithContext(ctx).
		Where("normalized_name = ?", model.NormalizeName(name)).
		Order("food_id").
		Find(&foods).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list foods by name: %w", err)
	}
	return foods, nil
}

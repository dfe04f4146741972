package models

import (
	"context"

	"github.com/dmitrijs2005/foodlog/internal/nutrition"
)

// Exercise is a logged workout. With a non-zero CaloriesPerMinute the burned
// calories are derived; otherwise CaloriesBurned is kept as entered.
type Exercise struct {
	Day               string  `json:"day" validate:"required,datetime=2006-01-02"`
	Name              string  `json:"name" validate:"required,max=200"`
	DurationMinutes   float64 `json:"durationMinutes" validate:"gt=0"`
	CaloriesPerMinute float64 `json:"caloriesPerMinute,omitempty" validate:"gte=0"`
	CaloriesBurned    float64 `json:"caloriesBurned" validate:"gte=0"`
}

func (e Exercise) SortKey() string { return e.Day }

func (e *Exercise) Derive(context.Context, FoodLookup) error {
	if e.CaloriesPerMinute > 0 {
		e.CaloriesBurned = nutrition.Burned(e.CaloriesPerMinute, e.DurationMinutes)
	}
	return nil
}

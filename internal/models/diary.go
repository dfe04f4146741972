package models

import (
	"context"

	"github.com/dmitrijs2005/foodlog/internal/nutrition"
)

// Meal slots a diary entry can be logged to.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// DiaryEntry is one logged portion of a food. When FoodID is set, FoodName
// and Facts are derived from the food and NumberOfServings. Without a food
// the entry is a quick add and Facts are taken as entered.
type DiaryEntry struct {
	Day              string          `json:"day" validate:"required,datetime=2006-01-02"`
	Meal             string          `json:"meal" validate:"required,oneof=breakfast lunch dinner snack"`
	FoodID           string          `json:"foodId,omitempty"`
	FoodName         string          `json:"foodName,omitempty" validate:"required_without=FoodID"`
	NumberOfServings float64         `json:"numberOfServings" validate:"gt=0"`
	Facts            nutrition.Facts `json:"facts"`
}

func (d DiaryEntry) SortKey() string { return d.Day }

func (d *DiaryEntry) Derive(ctx context.Context, lookup FoodLookup) error {
	if d.FoodID == "" {
		return nil
	}
	food, err := lookup(ctx, d.FoodID)
	if err != nil {
		return err
	}
	d.FoodName = food.Name
	d.Facts = nutrition.Scale(food.Facts, d.NumberOfServings)
	return nil
}

func (d DiaryEntry) References() []string {
	if d.FoodID == "" {
		return nil
	}
	return []string{d.FoodID}
}

func (d *DiaryEntry) Rebind(fn func(string) string) {
	if d.FoodID != "" {
		d.FoodID = fn(d.FoodID)
	}
}

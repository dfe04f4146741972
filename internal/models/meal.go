package models

import (
	"context"

	"github.com/dmitrijs2005/foodlog/internal/nutrition"
)

// SavedMeal is a reusable group of foods that can be logged in one go.
type SavedMeal struct {
	Name  string          `json:"name" validate:"required,max=200"`
	Items []Ingredient    `json:"items" validate:"required,min=1,dive"`
	Facts nutrition.Facts `json:"facts"`
}

func (m SavedMeal) SortKey() string { return nameKey(m.Name) }

func (m *SavedMeal) Derive(ctx context.Context, lookup FoodLookup) error {
	total, err := sumIngredients(ctx, lookup, m.Items)
	if err != nil {
		return err
	}
	m.Facts = total
	return nil
}

func (m SavedMeal) References() []string { return ingredientIDs(m.Items) }

func (m *SavedMeal) Rebind(fn func(string) string) { rebindIngredients(m.Items, fn) }

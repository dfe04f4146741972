package models

import (
	"context"

	"github.com/dmitrijs2005/foodlog/internal/nutrition"
)

// Ingredient is a quantity of a food inside a recipe or saved meal.
type Ingredient struct {
	FoodID   string  `json:"foodId" validate:"required"`
	Servings float64 `json:"servings" validate:"gt=0"`
}

// Recipe yields Servings portions from its ingredients.
type Recipe struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Servings    float64         `json:"servings" validate:"gt=0"`
	Ingredients []Ingredient    `json:"ingredients" validate:"required,min=1,dive"`
	Total       nutrition.Facts `json:"total"`
	PerServing  nutrition.Facts `json:"perServing"`
	PhotoKey    string          `json:"photoKey,omitempty"`
}

func (r Recipe) SortKey() string { return nameKey(r.Name) }

func (r *Recipe) Derive(ctx context.Context, lookup FoodLookup) error {
	total, err := sumIngredients(ctx, lookup, r.Ingredients)
	if err != nil {
		return err
	}
	r.Total = total
	r.PerServing = nutrition.PerServing(total, r.Servings)
	return nil
}

func (r Recipe) References() []string { return ingredientIDs(r.Ingredients) }

func (r *Recipe) Rebind(fn func(string) string) { rebindIngredients(r.Ingredients, fn) }

func sumIngredients(ctx context.Context, lookup FoodLookup, items []Ingredient) (nutrition.Facts, error) {
	parts := make([]nutrition.Facts, 0, len(items))
	for _, it := range items {
		food, err := lookup(ctx, it.FoodID)
		if err != nil {
			return nutrition.Facts{}, err
		}
		parts = append(parts, nutrition.Scale(food.Facts, it.Servings))
	}
	return nutrition.Sum(parts...), nil
}

func ingredientIDs(items []Ingredient) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.FoodID)
	}
	return ids
}

func rebindIngredients(items []Ingredient, fn func(string) string) {
	for i := range items {
		items[i].FoodID = fn(items[i].FoodID)
	}
}

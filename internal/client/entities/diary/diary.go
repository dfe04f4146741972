// Package diary is the repository of diary entries: the foods eaten per day
// and meal.
package diary

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/foodlog/internal/client/entities"
	"github.com/dmitrijs2005/foodlog/internal/client/refresh"
	"github.com/dmitrijs2005/foodlog/internal/client/runner"
	"github.com/dmitrijs2005/foodlog/internal/client/session"
	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/models"
	"github.com/dmitrijs2005/foodlog/internal/nutrition"
)

type Entry = entities.Item[models.DiaryEntry]

type Repository struct {
	*entities.Repository[models.DiaryEntry, *models.DiaryEntry]
}

func New(r *runner.Runner, rf *refresh.Refresher) *Repository {
	return &Repository{Repository: entities.New[models.DiaryEntry](models.TypeDiaryEntry, r, rf)}
}

// LogFood adds servings of a food to a meal. Name and facts come from the
// food.
func (r *Repository) LogFood(ctx context.Context, sess session.Session, day, meal, foodID string, servings float64) (runner.Result[Entry], error) {
	return r.Create(ctx, sess, models.DiaryEntry{Day: day, Meal: meal, FoodID: foodID, NumberOfServings: servings})
}

// QuickAdd logs facts without a catalogue food.
func (r *Repository) QuickAdd(ctx context.Context, sess session.Session, day, meal, name string, facts nutrition.Facts) (runner.Result[Entry], error) {
	return r.Create(ctx, sess, models.DiaryEntry{Day: day, Meal: meal, FoodName: name, NumberOfServings: 1, Facts: facts})
}

// SetServings changes the portion. Facts are recomputed from the food right
// away.
func (r *Repository) SetServings(ctx context.Context, sess session.Session, id string, servings float64) (runner.Result[Entry], error) {
	return r.Update(ctx, sess, id, func(e *models.DiaryEntry) error {
		if e.FoodID == "" && servings != e.NumberOfServings {
			if e.NumberOfServings <= 0 {
				return fmt.Errorf("%w: servings", common.ErrInvalidInput)
			}
			e.Facts = nutrition.Scale(e.Facts, servings/e.NumberOfServings)
		}
		e.NumberOfServings = servings
		return nil
	})
}

// Move puts an entry on another day or meal.
func (r *Repository) Move(ctx context.Context, sess session.Session, id, day, meal string) (runner.Result[Entry], error) {
	return r.Update(ctx, sess, id, func(e *models.DiaryEntry) error {
		e.Day, e.Meal = day, meal
		return nil
	})
}

func (r *Repository) Day(ctx context.Context, sess session.Session, day string) ([]Entry, error) {
	return r.List(ctx, sess, entities.Filter{From: day, To: day})
}

// Summary adds up the facts of one day.
type Summary struct {
	Day    string
	ByMeal map[string]nutrition.Facts
	Total  nutrition.Facts
}

func (r *Repository) Summarize(ctx context.Context, sess session.Session, day string) (Summary, error) {
	entries, err := r.Day(ctx, sess, day)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{Day: day, ByMeal: make(map[string]nutrition.Facts)}
	all := make([]nutrition.Facts, 0, len(entries))
	for _, e := range entries {
		s.ByMeal[e.Payload.Meal] = nutrition.Sum(s.ByMeal[e.Payload.Meal], e.Payload.Facts)
		all = append(all, e.Payload.Facts)
	}
	s.Total = nutrition.Sum(all...)
	return s, nil
}

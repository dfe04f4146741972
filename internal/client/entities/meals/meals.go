// Package meals is the repository of saved meals: groups of foods logged
// together.
package meals

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/foodlog/internal/client/entities"
	"github.com/dmitrijs2005/foodlog/internal/client/entities/diary"
	"github.com/dmitrijs2005/foodlog/internal/client/refresh"
	"github.com/dmitrijs2005/foodlog/internal/client/runner"
	"github.com/dmitrijs2005/foodlog/internal/client/session"
	"github.com/dmitrijs2005/foodlog/internal/models"
)

type Meal = entities.Item[models.SavedMeal]

type Repository struct {
	*entities.Repository[models.SavedMeal, *models.SavedMeal]
	diary *diary.Repository
}

// New builds the saved meal repository. Logging a meal writes through d.
func New(r *runner.Runner, rf *refresh.Refresher, d *diary.Repository) *Repository {
	return &Repository{
		Repository: entities.New[models.SavedMeal](models.TypeSavedMeal, r, rf),
		diary:      d,
	}
}

func (r *Repository) Rename(ctx context.Context, sess session.Session, id, name string) (runner.Result[Meal], error) {
	return r.Update(ctx, sess, id, func(m *models.SavedMeal) error {
		m.Name = name
		return nil
	})
}

func (r *Repository) SetItems(ctx context.Context, sess session.Session, id string, items []models.Ingredient) (runner.Result[Meal], error) {
	return r.Update(ctx, sess, id, func(m *models.SavedMeal) error {
		m.Items = append([]models.Ingredient(nil), items...)
		return nil
	})
}

// LogToDiary creates one diary entry per item of the meal. Each entry is
// an operation of its own; on error the entries created so far are
// returned with it.
func (r *Repository) LogToDiary(ctx context.Context, sess session.Session, id, day, slot string) ([]runner.Result[diary.Entry], error) {
	meal, err := r.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}

	out := make([]runner.Result[diary.Entry], 0, len(meal.Payload.Items))
	for _, it := range meal.Payload.Items {
		res, err := r.diary.LogFood(ctx, sess, day, slot, it.FoodID, it.Servings)
		if err != nil {
			return out, fmt.Errorf("failed to log %s from meal %s: %w", it.FoodID, id, err)
		}
		out = append(out, res)
	}
	return out, nil
}

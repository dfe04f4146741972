// Package recipes is the repository of recipes built from catalogue foods.
package recipes

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/foodlog/internal/client/entities"
	"github.com/dmitrijs2005/foodlog/internal/client/refresh"
	"github.com/dmitrijs2005/foodlog/internal/client/runner"
	"github.com/dmitrijs2005/foodlog/internal/client/session"
	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/models"
)

type Recipe = entities.Item[models.Recipe]

type Repository struct {
	*entities.Repository[models.Recipe, *models.Recipe]
}

func New(r *runner.Runner, rf *refresh.Refresher) *Repository {
	return &Repository{Repository: entities.New[models.Recipe](models.TypeRecipe, r, rf)}
}

// AddIngredient appends servings of a food, or adds to the servings of an
// ingredient already using it.
func (r *Repository) AddIngredient(ctx context.Context, sess session.Session, id, foodID string, servings float64) (runner.Result[Recipe], error) {
	return r.Update(ctx, sess, id, func(rc *models.Recipe) error {
		for i := range rc.Ingredients {
			if rc.Ingredients[i].FoodID == foodID {
				rc.Ingredients[i].Servings += servings
				return nil
			}
		}
		rc.Ingredients = append(rc.Ingredients, models.Ingredient{FoodID: foodID, Servings: servings})
		return nil
	})
}

// RemoveIngredient drops the ingredient using foodID. The last ingredient
// cannot be removed.
func (r *Repository) RemoveIngredient(ctx context.Context, sess session.Session, id, foodID string) (runner.Result[Recipe], error) {
	return r.Update(ctx, sess, id, func(rc *models.Recipe) error {
		kept := rc.Ingredients[:0]
		for _, in := range rc.Ingredients {
			if in.FoodID != foodID {
				kept = append(kept, in)
			}
		}
		if len(kept) == len(rc.Ingredients) {
			return fmt.Errorf("%w: recipe has no ingredient %s", common.ErrInvalidInput, foodID)
		}
		rc.Ingredients = kept
		return nil
	})
}

func (r *Repository) SetServings(ctx context.Context, sess session.Session, id string, servings float64) (runner.Result[Recipe], error) {
	return r.Update(ctx, sess, id, func(rc *models.Recipe) error {
		rc.Servings = servings
		return nil
	})
}

func (r *Repository) SetPhoto(ctx context.Context, sess session.Session, id, key string) (runner.Result[Recipe], error) {
	return r.Update(ctx, sess, id, func(rc *models.Recipe) error {
		rc.PhotoKey = key
		return nil
	})
}

// Search returns recipes whose name starts with prefix, ignoring case.
func (r *Repository) Search(ctx context.Context, sess session.Session, prefix string) ([]Recipe, error) {
	p := strings.ToLower(strings.TrimSpace(prefix))
	if p == "" {
		return r.List(ctx, sess, entities.Filter{})
	}
	return r.List(ctx, sess, entities.Filter{From: p, To: p + "\uffff"})
}

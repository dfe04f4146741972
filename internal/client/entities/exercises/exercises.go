// Package exercises is the repository of logged workouts.
package exercises

import (
	"context"

	"github.com/dmitrijs2005/foodlog/internal/client/entities"
	"github.com/dmitrijs2005/foodlog/internal/client/refresh"
	"github.com/dmitrijs2005/foodlog/internal/client/runner"
	"github.com/dmitrijs2005/foodlog/internal/client/session"
	"github.com/dmitrijs2005/foodlog/internal/models"
	"github.com/dmitrijs2005/foodlog/internal/nutrition"
)

type Exercise = entities.Item[models.Exercise]

type Repository struct {
	*entities.Repository[models.Exercise, *models.Exercise]
}

func New(r *runner.Runner, rf *refresh.Refresher) *Repository {
	return &Repository{Repository: entities.New[models.Exercise](models.TypeExercise, r, rf)}
}

// Log records a workout. Pass a zero ratePerMinute to keep burned as
// entered.
func (r *Repository) Log(ctx context.Context, sess session.Session, day, name string, minutes, ratePerMinute, burned float64) (runner.Result[Exercise], error) {
	return r.Create(ctx, sess, models.Exercise{
		Day:               day,
		Name:              name,
		DurationMinutes:   minutes,
		CaloriesPerMinute: ratePerMinute,
		CaloriesBurned:    burned,
	})
}

// SetDuration changes the length of a workout. Burned calories follow when
// they are rate based.
func (r *Repository) SetDuration(ctx context.Context, sess session.Session, id string, minutes float64) (runner.Result[Exercise], error) {
	return r.Update(ctx, sess, id, func(e *models.Exercise) error {
		e.DurationMinutes = minutes
		return nil
	})
}

func (r *Repository) ListDay(ctx context.Context, sess session.Session, day string) ([]Exercise, error) {
	return r.List(ctx, sess, entities.Filter{From: day, To: day})
}

// BurnedOn sums the calories burned on day.
func (r *Repository) BurnedOn(ctx context.Context, sess session.Session, day string) (float64, error) {
	list, err := r.ListDay(ctx, sess, day)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, e := range list {
		total += e.Payload.CaloriesBurned
	}
	return nutrition.Round1(total), nil
}

// Package weights is the repository of body weight measurements.
package weights

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/foodlog/internal/client/entities"
	"github.com/dmitrijs2005/foodlog/internal/client/refresh"
	"github.com/dmitrijs2005/foodlog/internal/client/runner"
	"github.com/dmitrijs2005/foodlog/internal/client/session"
	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/models"
)

type Weight = entities.Item[models.WeightEntry]

type Repository struct {
	*entities.Repository[models.WeightEntry, *models.WeightEntry]
}

func New(r *runner.Runner, rf *refresh.Refresher) *Repository {
	return &Repository{Repository: entities.New[models.WeightEntry](models.TypeWeightEntry, r, rf)}
}

func (r *Repository) Log(ctx context.Context, sess session.Session, day string, kg float64, note string) (runner.Result[Weight], error) {
	return r.Create(ctx, sess, models.WeightEntry{Day: day, WeightKg: kg, Note: note})
}

// Between lists measurements from one day to another, both inclusive.
func (r *Repository) Between(ctx context.Context, sess session.Session, from, to string) ([]Weight, error) {
	return r.List(ctx, sess, entities.Filter{From: from, To: to})
}

// Latest returns the measurement with the most recent day.
func (r *Repository) Latest(ctx context.Context, sess session.Session) (Weight, error) {
	all, err := r.List(ctx, sess, entities.Filter{})
	if err != nil {
		return Weight{}, err
	}
	if len(all) == 0 {
		return Weight{}, fmt.Errorf("%w: no weight entries", common.ErrRecordNotFound)
	}

	latest := all[0]
	for _, w := range all[1:] {
		if w.Payload.Day > latest.Payload.Day ||
			(w.Payload.Day == latest.Payload.Day && w.UpdatedAt.After(latest.UpdatedAt)) {
			latest = w
		}
	}
	return latest, nil
}

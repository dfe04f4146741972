// Package foods is the repository of the food catalogue.
package foods

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

type Food = entities.Item[models.Food]

type Repository struct {
	*entities.Repository[models.Food, *models.Food]
}

func New(r *runner.Runner, rf *refresh.Refresher) *Repository {
	return &Repository{Repository: entities.New[models.Food](models.TypeFood, r, rf)}
}

// Search returns the owner's foods whose name starts with prefix, ignoring
// case.
func (r *Repository) Search(ctx context.Context, sess session.Session, prefix string) ([]Food, error) {
	p := strings.ToLower(strings.TrimSpace(prefix))
	if p == "" {
		return r.List(ctx, sess, entities.Filter{})
	}
	return r.List(ctx, sess, entities.Filter{From: p, To: p + "\uffff"})
}

// FindByBarcode returns the owner's food with the given barcode.
func (r *Repository) FindByBarcode(ctx context.Context, sess session.Session, barcode string) (Food, error) {
	all, err := r.List(ctx, sess, entities.Filter{})
	if err != nil {
		return Food{}, err
	}
	for _, f := range all {
		if f.Payload.Barcode == barcode {
			return f, nil
		}
	}
	return Food{}, fmt.Errorf("%w: food with barcode %s", common.ErrRecordNotFound, barcode)
}

// SetPhoto points the food at an uploaded photo object.
func (r *Repository) SetPhoto(ctx context.Context, sess session.Session, id, key string) (runner.Result[Food], error) {
	return r.Update(ctx, sess, id, func(f *models.Food) error {
		f.PhotoKey = key
		return nil
	})
}

package recipes

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/foodlog/internal/client/entities/entitiestest"
	"github.com/dmitrijs2005/foodlog/internal/client/entities/foods"
	"github.com/dmitrijs2005/foodlog/internal/client/runner"
	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/models"
	"github.com/dmitrijs2005/foodlog/internal/nutrition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sess = entitiestest.Session

func newFood(t *testing.T, repo *foods.Repository, name string, facts nutrition.Facts) string {
	t.Helper()
	res, err := repo.Create(context.Background(), sess, models.Food{Name: name, ServingSize: 100, Facts: facts})
	require.NoError(t, err)
	return res.Value.ID
}

func TestRecipe_TotalsFollowIngredients(t *testing.T) {
	env := entitiestest.New(t)
	fr := foods.New(env.Runner, env.Refresher)
	repo := New(env.Runner, env.Refresher)
	ctx := context.Background()

	rice := newFood(t, fr, "Rice", nutrition.Facts{Calories: 130, Carbs: 28})
	chicken := newFood(t, fr, "Chicken", nutrition.Facts{Calories: 165, Protein: 31})

	res, err := repo.Create(ctx, sess, models.Recipe{
		Name:        "Bowl",
		Servings:    2,
		Ingredients: []models.Ingredient{{FoodID: rice, Servings: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 260.0, res.Value.Payload.Total.Calories)
	assert.Equal(t, 130.0, res.Value.Payload.PerServing.Calories)

	res, err = repo.AddIngredient(ctx, sess, res.Value.ID, chicken, 1.5)
	require.NoError(t, err)
	assert.Equal(t, nutrition.Facts{Calories: 507.5, Protein: 46.5, Carbs: 56}, res.Value.Payload.Total)

	res, err = repo.SetServings(ctx, sess, res.Value.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 126.9, res.Value.Payload.PerServing.Calories)

	res, err = repo.RemoveIngredient(ctx, sess, res.Value.ID, rice)
	require.NoError(t, err)
	require.Len(t, res.Value.Payload.Ingredients, 1)
	assert.Equal(t, 247.5, res.Value.Payload.Total.Calories)

	_, err = repo.RemoveIngredient(ctx, sess, res.Value.ID, chicken)
	require.ErrorIs(t, err, common.ErrInvalidInput, "a recipe keeps at least one ingredient")
	_, err = repo.RemoveIngredient(ctx, sess, res.Value.ID, rice)
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestRecipe_OfflineWithTempFoods(t *testing.T) {
	env := entitiestest.New(t)
	fr := foods.New(env.Runner, env.Refresher)
	repo := New(env.Runner, env.Refresher)
	ctx := context.Background()
	env.Remote.SetOffline(true)

	oats := newFood(t, fr, "Oats", nutrition.Facts{Calories: 389})
	milk := newFood(t, fr, "Milk", nutrition.Facts{Calories: 42})
	res, err := repo.Create(ctx, sess, models.Recipe{
		Name:        "Porridge",
		Servings:    1,
		Ingredients: []models.Ingredient{{FoodID: oats, Servings: 0.5}, {FoodID: milk, Servings: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, runner.Queued, res.Outcome)
	assert.Equal(t, 278.5, res.Value.Payload.Total.Calories)

	env.Remote.SetOffline(false)
	assert.Equal(t, 3, env.Sync(t).Synced)

	server := env.Remote.Records(models.TypeRecipe)
	require.Len(t, server, 1)
	assert.NotContains(t, string(server[0].Payload), "tmp_")

	found, err := repo.Search(ctx, sess, "porr")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.True(t, found[0].Synced)
}

func TestRecipe_UnknownFood(t *testing.T) {
	env := entitiestest.New(t)
	repo := New(env.Runner, env.Refresher)

	_, err := repo.Create(context.Background(), sess, models.Recipe{
		Name:        "Ghost",
		Servings:    1,
		Ingredients: []models.Ingredient{{FoodID: "food_404", Servings: 1}},
	})
	require.ErrorIs(t, err, common.ErrParentNotFound)
}

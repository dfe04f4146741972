package meals

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/foodlog/internal/client/entities/diary"
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

type fixture struct {
	env   *entitiestest.Env
	foods *foods.Repository
	diary *diary.Repository
	meals *Repository
}

func setup(t *testing.T) fixture {
	env := entitiestest.New(t)
	d := diary.New(env.Runner, env.Refresher)
	return fixture{
		env:   env,
		foods: foods.New(env.Runner, env.Refresher),
		diary: d,
		meals: New(env.Runner, env.Refresher, d),
	}
}

func (f fixture) food(t *testing.T, name string, calories float64) string {
	t.Helper()
	res, err := f.foods.Create(context.Background(), sess, models.Food{Name: name, ServingSize: 50, Facts: nutrition.Facts{Calories: calories}})
	require.NoError(t, err)
	return res.Value.ID
}

func TestSavedMeal_Facts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	egg := f.food(t, "Egg", 72)
	toast := f.food(t, "Toast", 80)

	res, err := f.meals.Create(ctx, sess, models.SavedMeal{
		Name:  "Big Breakfast",
		Items: []models.Ingredient{{FoodID: egg, Servings: 3}, {FoodID: toast, Servings: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 376.0, res.Value.Payload.Facts.Calories)

	res, err = f.meals.SetItems(ctx, sess, res.Value.ID, []models.Ingredient{{FoodID: egg, Servings: 2}})
	require.NoError(t, err)
	assert.Equal(t, 144.0, res.Value.Payload.Facts.Calories)

	res, err = f.meals.Rename(ctx, sess, res.Value.ID, "Eggs")
	require.NoError(t, err)
	assert.Equal(t, "Eggs", res.Value.Payload.Name)

	_, err = f.meals.SetItems(ctx, sess, res.Value.ID, nil)
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestLogToDiary(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	egg := f.food(t, "Egg", 72)
	toast := f.food(t, "Toast", 80)

	meal, err := f.meals.Create(ctx, sess, models.SavedMeal{
		Name:  "Breakfast",
		Items: []models.Ingredient{{FoodID: egg, Servings: 2}, {FoodID: toast, Servings: 1}},
	})
	require.NoError(t, err)

	f.env.Remote.SetOffline(true)
	logged, err := f.meals.LogToDiary(ctx, sess, meal.Value.ID, "2026-10-01", models.MealBreakfast)
	require.NoError(t, err)
	require.Len(t, logged, 2)
	for _, res := range logged {
		assert.Equal(t, runner.Queued, res.Outcome)
	}

	s, err := f.diary.Summarize(ctx, sess, "2026-10-01")
	require.NoError(t, err)
	assert.Equal(t, 224.0, s.Total.Calories)

	f.env.Remote.SetOffline(false)
	assert.Equal(t, 2, f.env.Sync(t).Synced)
	assert.Len(t, f.env.Remote.Records(models.TypeDiaryEntry), 2)
}

func TestLogToDiary_MissingMeal(t *testing.T) {
	f := setup(t)

	_, err := f.meals.LogToDiary(context.Background(), sess, "saved_meal_404", "2026-10-01", models.MealLunch)
	require.ErrorIs(t, err, common.ErrRecordNotFound)
}

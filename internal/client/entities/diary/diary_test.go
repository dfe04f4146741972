package diary

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/foodlog/internal/client/entities"
	"github.com/dmitrijs2005/foodlog/internal/client/entities/entitiestest"
	"github.com/dmitrijs2005/foodlog/internal/client/entities/foods"
	"github.com/dmitrijs2005/foodlog/internal/client/repositories/queue"
	"github.com/dmitrijs2005/foodlog/internal/client/runner"
	"github.com/dmitrijs2005/foodlog/internal/client/tempid"
	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/models"
	"github.com/dmitrijs2005/foodlog/internal/nutrition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day = "2026-10-01"

var sess = entitiestest.Session

type fixture struct {
	env   *entitiestest.Env
	foods *foods.Repository
	diary *Repository
}

func setup(t *testing.T) fixture {
	env := entitiestest.New(t)
	return fixture{env: env, foods: foods.New(env.Runner, env.Refresher), diary: New(env.Runner, env.Refresher)}
}

func (f fixture) food(t *testing.T, name string, calories float64) string {
	t.Helper()
	res, err := f.foods.Create(context.Background(), sess, models.Food{
		Name:        name,
		ServingSize: 100,
		Facts:       nutrition.Facts{Calories: calories, Protein: 10},
	})
	require.NoError(t, err)
	return res.Value.ID
}

func TestLogFood_DerivesFacts(t *testing.T) {
	f := setup(t)
	oats := f.food(t, "Oats", 150)

	res, err := f.diary.LogFood(context.Background(), sess, day, models.MealBreakfast, oats, 1.5)
	require.NoError(t, err)
	assert.Equal(t, runner.Synced, res.Outcome)
	assert.Equal(t, "Oats", res.Value.Payload.FoodName)
	assert.Equal(t, 225.0, res.Value.Payload.Facts.Calories)
	assert.Equal(t, 15.0, res.Value.Payload.Facts.Protein)
}

func TestSetServings_RecomputedBeforeConfirmation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	food := f.food(t, "Toast", 100)

	f.env.Remote.SetOffline(true)
	logged, err := f.diary.LogFood(ctx, sess, day, models.MealBreakfast, food, 1)
	require.NoError(t, err)
	assert.Equal(t, 100.0, logged.Value.Payload.Facts.Calories)

	res, err := f.diary.SetServings(ctx, sess, logged.Value.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, runner.Queued, res.Outcome)
	assert.Equal(t, 200.0, res.Value.Payload.Facts.Calories)

	list, err := f.diary.Day(ctx, sess, day)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 200.0, list[0].Payload.Facts.Calories)
	assert.False(t, list[0].Synced)
}

func TestSetServings_QuickAddScales(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	logged, err := f.diary.QuickAdd(ctx, sess, day, models.MealSnack, "Cookie", nutrition.Facts{Calories: 80, Fat: 4})
	require.NoError(t, err)

	res, err := f.diary.SetServings(ctx, sess, logged.Value.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 240.0, res.Value.Payload.Facts.Calories)
	assert.Equal(t, 12.0, res.Value.Payload.Facts.Fat)

	_, err = f.diary.SetServings(ctx, sess, logged.Value.ID, 0)
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestLogFood_UnknownFood(t *testing.T) {
	f := setup(t)

	_, err := f.diary.LogFood(context.Background(), sess, day, models.MealLunch, "food_404", 1)
	require.ErrorIs(t, err, common.ErrParentNotFound)
	assert.Zero(t, f.env.Remote.Calls())
}

func TestDelete_Offline(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	food := f.food(t, "Apple", 52)

	logged, err := f.diary.LogFood(ctx, sess, day, models.MealSnack, food, 1)
	require.NoError(t, err)
	require.Equal(t, runner.Synced, logged.Outcome)

	f.env.Remote.SetOffline(true)
	res, err := f.diary.Delete(ctx, sess, logged.Value.ID)
	require.NoError(t, err)
	assert.Equal(t, runner.Queued, res.Outcome)

	list, err := f.diary.List(ctx, sess, entities.Filter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	pending, err := f.env.Queue.Pending(ctx, sess.OwnerID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, queue.KindDelete, pending[0].Kind)
	assert.Equal(t, logged.Value.ID, pending[0].EntityID)

	f.env.Remote.SetOffline(false)
	assert.Equal(t, 1, f.env.Sync(t).Synced)
	assert.Empty(t, f.env.Remote.Records(models.TypeDiaryEntry))
}

func TestOfflineChildSyncsAfterParent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.env.Remote.SetOffline(true)

	food := f.food(t, "Banana", 89)
	require.True(t, tempid.IsTemp(food))
	logged, err := f.diary.LogFood(ctx, sess, day, models.MealSnack, food, 1)
	require.NoError(t, err)
	assert.Equal(t, 89.0, logged.Value.Payload.Facts.Calories)

	f.env.Remote.SetOffline(false)
	rep := f.env.Sync(t)
	assert.Equal(t, 2, rep.Synced)

	servFoods := f.env.Remote.Records(models.TypeFood)
	require.Len(t, servFoods, 1)
	servEntries := f.env.Remote.Records(models.TypeDiaryEntry)
	require.Len(t, servEntries, 1)
	assert.Contains(t, string(servEntries[0].Payload), servFoods[0].ID)

	list, err := f.diary.Day(ctx, sess, day)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, servFoods[0].ID, list[0].Payload.FoodID)
}

func TestSummarize(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	oats := f.food(t, "Oats", 150)

	_, err := f.diary.LogFood(ctx, sess, day, models.MealBreakfast, oats, 1)
	require.NoError(t, err)
	_, err = f.diary.QuickAdd(ctx, sess, day, models.MealBreakfast, "Coffee", nutrition.Facts{Calories: 5})
	require.NoError(t, err)
	_, err = f.diary.QuickAdd(ctx, sess, day, models.MealDinner, "Pizza", nutrition.Facts{Calories: 800, Fat: 30})
	require.NoError(t, err)
	_, err = f.diary.QuickAdd(ctx, sess, "2026-10-02", models.MealDinner, "Soup", nutrition.Facts{Calories: 200})
	require.NoError(t, err)

	s, err := f.diary.Summarize(ctx, sess, day)
	require.NoError(t, err)
	assert.Equal(t, 155.0, s.ByMeal[models.MealBreakfast].Calories)
	assert.Equal(t, 800.0, s.ByMeal[models.MealDinner].Calories)
	assert.Equal(t, 955.0, s.Total.Calories)
	assert.Equal(t, 10.0, s.Total.Protein)
}

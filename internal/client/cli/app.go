package cli

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/foodlog/internal/client/config"
	"github.com/dmitrijs2005/foodlog/internal/client/entities"
	"github.com/dmitrijs2005/foodlog/internal/client/entities/diary"
	"github.com/dmitrijs2005/foodlog/internal/client/entities/exercises"
	"github.com/dmitrijs2005/foodlog/internal/client/entities/foods"
	"github.com/dmitrijs2005/foodlog/internal/client/entities/meals"
	"github.com/dmitrijs2005/foodlog/internal/client/entities/recipes"
	"github.com/dmitrijs2005/foodlog/internal/client/entities/weights"
	"github.com/dmitrijs2005/foodlog/internal/client/localstore"
	"github.com/dmitrijs2005/foodlog/internal/client/refresh"
	"github.com/dmitrijs2005/foodlog/internal/client/remote"
	"github.com/dmitrijs2005/foodlog/internal/client/runner"
	"github.com/dmitrijs2005/foodlog/internal/client/scheduler"
	"github.com/dmitrijs2005/foodlog/internal/client/services"
	"github.com/dmitrijs2005/foodlog/internal/client/session"
	"github.com/dmitrijs2005/foodlog/internal/client/syncqueue"
	"github.com/dmitrijs2005/foodlog/internal/filex"
	"github.com/dmitrijs2005/foodlog/internal/logging"
	"github.com/dmitrijs2005/foodlog/internal/models"

	_ "modernc.org/sqlite"
)

type App struct {
	config *config.Config
	logger logging.Logger

	store     *localstore.Store
	remote    remote.Service
	auth      services.AuthService
	queue     *syncqueue.Queue
	refresher *refresh.Refresher
	scheduler *scheduler.Scheduler

	foods     *foods.Repository
	diary     *diary.Repository
	exercises *exercises.Repository
	recipes   *recipes.Repository
	meals     *meals.Repository
	weights   *weights.Repository

	http   *http.Client
	reader *bufio.Reader
	now    func() time.Time
}

// NewApp opens the local database at cfg.DBPath and connects to the server.
// The connection is lazy, so NewApp succeeds offline.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	if err := filex.EnsureParentDir(cfg.DBPath); err != nil {
		return nil, err
	}
	store, err := localstore.Open(ctx, cfg.DBPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err.Error())
		return nil, err
	}

	sessions := session.NewStore(store)
	rem, err := remote.NewGRPCClient(cfg.ServerEndpointAddr, sessions)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return newApp(cfg, logger, store, sessions, rem), nil
}

func newApp(cfg *config.Config, logger logging.Logger, store *localstore.Store, sessions *session.Store, rem remote.Service) *App {
	reporter := logging.NewLogReporter(logger)
	r := runner.New(store, rem, logger, reporter, runner.WithRemoteTimeout(cfg.RemoteTimeout))
	rf := refresh.New(store, rem, logger, reporter, cfg.RefreshTimeout)
	q := syncqueue.New(store, r, logger)

	fr := foods.New(r, rf)
	d := diary.New(r, rf)

	return &App{
		config:    cfg,
		logger:    logger,
		store:     store,
		remote:    rem,
		auth:      services.NewAuthService(rem, store, sessions, logger),
		queue:     q,
		refresher: rf,
		scheduler: scheduler.New(scheduler.Config{
			OnlineCheckInterval: cfg.OnlineCheckInterval,
			PingTimeout:         cfg.RemoteTimeout,
			SyncInterval:        cfg.SyncInterval,
			BackoffMin:          cfg.BackoffMin,
			BackoffMax:          cfg.BackoffMax,
			MaxRetries:          cfg.MaxRetries,
		}, rem, q, sessions, logger),
		foods:     fr,
		diary:     d,
		exercises: exercises.New(r, rf),
		recipes:   recipes.New(r, rf),
		meals:     meals.New(r, rf, d),
		weights:   weights.New(r, rf),
		http:      &http.Client{Timeout: time.Minute},
		reader:    bufio.NewReader(os.Stdin),
		now:       time.Now,
	}
}

// Close stops background refreshes and releases the connection and the
// database.
func (a *App) Close() error {
	a.refresher.Shutdown()
	if err := a.remote.Close(); err != nil {
		a.logger.Warn(context.Background(), "closing server connection", "error", err.Error())
	}
	return a.store.Close()
}

func (a *App) session(ctx context.Context) (session.Session, error) {
	sess, err := a.auth.Current(ctx)
	if err != nil {
		return session.Session{}, fmt.Errorf("%w (run login first)", err)
	}
	return sess, nil
}

func (a *App) today() string {
	return a.now().Format(models.DayLayout)
}

type refreshable interface {
	Type() models.EntityType
	Refresh(ctx context.Context, sess session.Session, f entities.Filter) *refresh.Task
}

// refreshables lists one repository per entity type, parents first.
func (a *App) refreshables() []refreshable {
	return []refreshable{a.foods, a.recipes, a.meals, a.diary, a.exercises, a.weights}
}

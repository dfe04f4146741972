package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/foodlog/internal/client/config"
	"github.com/dmitrijs2005/foodlog/internal/logging"
	"github.com/spf13/cobra"
)

const AppName = "foodlog"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

// opener builds the App the first command that needs it runs against,
// together with the function releasing it.
type opener func(cmd *cobra.Command) (*App, func() error, error)

type root struct {
	open  opener
	app   *App
	close func() error
}

// Execute runs the command line in args against a freshly opened App.
func Execute(ctx context.Context, args []string) error {
	r := &root{open: openFromFlags}
	defer r.shutdown()

	cmd := r.command(Version)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func openFromFlags(cmd *cobra.Command) (*App, func() error, error) {
	cfg, err := config.Load(cmd.Root().PersistentFlags())
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewJSON(cmd.ErrOrStderr(), cfg.LogLevel)

	app, err := NewApp(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return app, app.Close, nil
}

func (r *root) get(cmd *cobra.Command) (*App, error) {
	if r.app != nil {
		return r.app, nil
	}
	app, closeFn, err := r.open(cmd)
	if err != nil {
		return nil, err
	}
	r.app, r.close = app, closeFn
	return app, nil
}

func (r *root) shutdown() {
	if r.close != nil {
		_ = r.close()
		r.close = nil
	}
	r.app = nil
}

// run adapts fn to a cobra RunE that has the App at hand.
func (r *root) run(fn func(cmd *cobra.Command, a *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := r.get(cmd)
		if err != nil {
			return writeCommandError(cmd, err)
		}
		if err := fn(cmd, a, args); err != nil {
			return writeCommandError(cmd, err)
		}
		return nil
	}
}

func (r *root) command(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "foodlog - offline-first nutrition diary",
		Long:          "foodlog keeps a food diary that works offline and syncs with the foodlog server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		r.newRegisterCmd(),
		r.newLoginCmd(),
		r.newLogoutCmd(),
		r.newStatusCmd(),
		r.newFoodCmd(),
		r.newDiaryCmd(),
		r.newExerciseCmd(),
		r.newWeightCmd(),
		r.newRecipeCmd(),
		r.newMealCmd(),
		r.newSyncCmd(),
		r.newRefreshCmd(),
		r.newQueueCmd(),
		r.newWatchCmd(),
		r.newCleanupCmd(),
	)
	return cmd
}

func writeCommandError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
	return err
}

package cli

import (
	"context"

	"github.com/dmitrijs2005/foodlog/internal/client/runner"
	"github.com/dmitrijs2005/foodlog/internal/client/session"
	"github.com/dmitrijs2005/foodlog/internal/models"
	"github.com/spf13/cobra"
)

type deleter interface {
	Delete(ctx context.Context, sess session.Session, id string) (runner.Result[struct{}], error)
}

// newDeleteCmd builds the rm subcommand of an entity type. repo picks the
// repository once the App is open.
func (r *root) newDeleteCmd(t models.EntityType, repo func(a *App) deleter) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete " + string(t) + " records",
		Args:  cobra.MinimumNArgs(1),
		RunE: r.run(func(cmd *cobra.Command, a *App, args []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range args {
				res, err := repo(a).Delete(cmd.Context(), sess, id)
				if err != nil {
					return err
				}
				printOutcome(cmd.OutOrStdout(), "deleted", t, id, res.Outcome, res.RemoteErr)
			}
			return nil
		}),
	}
}

package cli

import (
	"fmt"

	"github.com/dmitrijs2005/foodlog/internal/client/entities/weights"
	"github.com/dmitrijs2005/foodlog/internal/models"
	"github.com/spf13/cobra"
)

func (r *root) newWeightCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weight",
		Short: "Track body weight",
	}
	cmd.AddCommand(
		r.newWeightAddCmd(),
		r.newWeightListCmd(),
		r.newWeightLatestCmd(),
		r.newDeleteCmd(models.TypeWeightEntry, func(a *App) deleter { return a.weights }),
	)
	return cmd
}

func (r *root) newWeightAddCmd() *cobra.Command {
	var (
		day, note string
		kg        float64
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a measurement",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, a *App, _ []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.weights.Log(cmd.Context(), sess, a.dayOrToday(day), kg, note)
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), "logged", models.TypeWeightEntry, res.Value.ID, res.Outcome, res.RemoteErr)
			return nil
		}),
	}
	dayMealFlags(cmd, &day, nil)
	cmd.Flags().Float64Var(&kg, "kg", 0, "weight in kilograms")
	cmd.Flags().StringVar(&note, "note", "", "free text")
	return cmd
}

func printWeights(cmd *cobra.Command, list []weights.Weight) error {
	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "ID\tDAY\tKG\tNOTE\t")
	for _, w := range list {
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\t\n", w.ID, syncMark(w.Synced), w.Payload.Day, num(w.Payload.WeightKg), w.Payload.Note)
	}
	return tw.Flush()
}

func (r *root) newWeightListCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List measurements, optionally within --from and --to",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, a *App, _ []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			list, err := a.weights.Between(cmd.Context(), sess, from, to)
			if err != nil {
				return err
			}
			return printWeights(cmd, list)
		}),
	}
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD")
	return cmd
}

func (r *root) newWeightLatestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Show the most recent measurement",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, a *App, _ []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			w, err := a.weights.Latest(cmd.Context(), sess)
			if err != nil {
				return err
			}
			return printWeights(cmd, []weights.Weight{w})
		}),
	}
}

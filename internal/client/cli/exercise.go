package cli

import (
	"fmt"

	"github.com/dmitrijs2005/foodlog/internal/models"
	"github.com/spf13/cobra"
)

func (r *root) newExerciseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exercise",
		Short: "Log workouts",
	}
	cmd.AddCommand(
		r.newExerciseAddCmd(),
		r.newExerciseDurationCmd(),
		r.newExerciseListCmd(),
		r.newDeleteCmd(models.TypeExercise, func(a *App) deleter { return a.exercises }),
	)
	return cmd
}

func (r *root) newExerciseAddCmd() *cobra.Command {
	var (
		day, name             string
		minutes, rate, burned float64
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a workout by rate (--rate) or total (--burned)",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, a *App, _ []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.exercises.Log(cmd.Context(), sess, a.dayOrToday(day), name, minutes, rate, burned)
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), "logged", models.TypeExercise, res.Value.ID, res.Outcome, res.RemoteErr)
			fmt.Fprintf(cmd.OutOrStdout(), "  burned %s kcal\n", num(res.Value.Payload.CaloriesBurned))
			return nil
		}),
	}
	dayMealFlags(cmd, &day, nil)
	cmd.Flags().StringVar(&name, "name", "", "activity")
	cmd.Flags().Float64Var(&minutes, "minutes", 0, "duration in minutes")
	cmd.Flags().Float64Var(&rate, "rate", 0, "calories burned per minute")
	cmd.Flags().Float64Var(&burned, "burned", 0, "calories burned in total")
	return cmd
}

func (r *root) newExerciseDurationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duration <id> <minutes>",
		Short: "Change the duration of a workout",
		Args:  cobra.ExactArgs(2),
		RunE: r.run(func(cmd *cobra.Command, a *App, args []string) error {
			minutes, err := parseFloatArg("minutes", args[1])
			if err != nil {
				return err
			}
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.exercises.SetDuration(cmd.Context(), sess, args[0], minutes)
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), "updated", models.TypeExercise, res.Value.ID, res.Outcome, res.RemoteErr)
			return nil
		}),
	}
}

func (r *root) newExerciseListCmd() *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List the workouts of a day",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, a *App, _ []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			list, err := a.exercises.ListDay(cmd.Context(), sess, a.dayOrToday(day))
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tDAY\tNAME\tMINUTES\tKCAL\t")
			for _, e := range list {
				p := e.Payload
				fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\t%s\t\n", e.ID, syncMark(e.Synced), p.Day, p.Name, num(p.DurationMinutes), num(p.CaloriesBurned))
			}
			return tw.Flush()
		}),
	}
	dayMealFlags(cmd, &day, nil)
	return cmd
}

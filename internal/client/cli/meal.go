package cli

import (
	"fmt"

	"github.com/dmitrijs2005/foodlog/internal/client/entities"
	"github.com/dmitrijs2005/foodlog/internal/models"
	"github.com/spf13/cobra"
)

func (r *root) newMealCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meal",
		Short: "Save groups of foods and log them in one go",
	}
	cmd.AddCommand(
		r.newMealAddCmd(),
		r.newMealListCmd(),
		r.newMealLogCmd(),
		r.newDeleteCmd(models.TypeSavedMeal, func(a *App) deleter { return a.meals }),
	)
	return cmd
}

func (r *root) newMealAddCmd() *cobra.Command {
	var (
		name  string
		items []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a meal; --item takes foodID:servings and repeats",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, a *App, _ []string) error {
			parsed, err := parseIngredients(items)
			if err != nil {
				return err
			}
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.meals.Create(cmd.Context(), sess, models.SavedMeal{Name: name, Items: parsed})
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), "created", models.TypeSavedMeal, res.Value.ID, res.Outcome, res.RemoteErr)
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "meal name")
	cmd.Flags().StringArrayVar(&items, "item", nil, "foodID:servings")
	return cmd
}

func (r *root) newMealListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List saved meals",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, a *App, _ []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			list, err := a.meals.List(cmd.Context(), sess, entities.Filter{})
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tITEMS\t"+factsHeader+"\t")
			for _, m := range list {
				fmt.Fprintf(tw, "%s%s\t%s\t%d\t%s\t\n", m.ID, syncMark(m.Synced), m.Payload.Name, len(m.Payload.Items), factsColumns(m.Payload.Facts))
			}
			return tw.Flush()
		}),
	}
}

func (r *root) newMealLogCmd() *cobra.Command {
	var day, meal string
	cmd := &cobra.Command{
		Use:   "log <id>",
		Short: "Log every item of a saved meal to the diary",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(cmd *cobra.Command, a *App, args []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			results, err := a.meals.LogToDiary(cmd.Context(), sess, args[0], a.dayOrToday(day), meal)
			for _, res := range results {
				printOutcome(cmd.OutOrStdout(), "logged", models.TypeDiaryEntry, res.Value.ID, res.Outcome, res.RemoteErr)
			}
			return err
		}),
	}
	dayMealFlags(cmd, &day, &meal)
	return cmd
}

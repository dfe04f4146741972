package cli

import (
	"fmt"

	"github.com/dmitrijs2005/foodlog/internal/client/entities/diary"
	"github.com/dmitrijs2005/foodlog/internal/models"
	"github.com/dmitrijs2005/foodlog/internal/nutrition"
	"github.com/spf13/cobra"
)

func (r *root) newDiaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diary",
		Short: "Log what you eat",
	}
	cmd.AddCommand(
		r.newDiaryAddCmd(),
		r.newDiaryQuickCmd(),
		r.newDiaryServingsCmd(),
		r.newDiaryMoveCmd(),
		r.newDiaryListCmd(),
		r.newDiarySummaryCmd(),
		r.newDeleteCmd(models.TypeDiaryEntry, func(a *App) deleter { return a.diary }),
	)
	return cmd
}

// dayMealFlags adds --day (default today) and --meal.
func dayMealFlags(cmd *cobra.Command, day, meal *string) {
	cmd.Flags().StringVar(day, "day", "", "day as YYYY-MM-DD (default today)")
	if meal != nil {
		cmd.Flags().StringVar(meal, "meal", models.MealSnack, "breakfast, lunch, dinner or snack")
	}
}

func (a *App) dayOrToday(day string) string {
	if day == "" {
		return a.today()
	}
	return day
}

func (r *root) newDiaryAddCmd() *cobra.Command {
	var (
		day, meal, food string
		servings        float64
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log servings of a food",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, a *App, _ []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.diary.LogFood(cmd.Context(), sess, a.dayOrToday(day), meal, food, servings)
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), "logged", models.TypeDiaryEntry, res.Value.ID, res.Outcome, res.RemoteErr)
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s kcal\n", res.Value.Payload.FoodName, num(res.Value.Payload.Facts.Calories))
			return nil
		}),
	}
	dayMealFlags(cmd, &day, &meal)
	cmd.Flags().StringVar(&food, "food", "", "food id")
	cmd.Flags().Float64Var(&servings, "servings", 1, "number of servings")
	_ = cmd.MarkFlagRequired("food")
	return cmd
}

func (r *root) newDiaryQuickCmd() *cobra.Command {
	var (
		day, meal, name string
		facts           nutrition.Facts
	)
	cmd := &cobra.Command{
		Use:   "quick",
		Short: "Log calories and macros without a catalogue food",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, a *App, _ []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.diary.QuickAdd(cmd.Context(), sess, a.dayOrToday(day), meal, name, facts)
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), "logged", models.TypeDiaryEntry, res.Value.ID, res.Outcome, res.RemoteErr)
			return nil
		}),
	}
	dayMealFlags(cmd, &day, &meal)
	cmd.Flags().StringVar(&name, "name", "Quick add", "label of the entry")
	addFactsFlags(cmd.Flags(), &facts)
	return cmd
}

func (r *root) newDiaryServingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "servings <id> <servings>",
		Short: "Change the number of servings of an entry",
		Args:  cobra.ExactArgs(2),
		RunE: r.run(func(cmd *cobra.Command, a *App, args []string) error {
			servings, err := parseFloatArg("servings", args[1])
			if err != nil {
				return err
			}
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.diary.SetServings(cmd.Context(), sess, args[0], servings)
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), "updated", models.TypeDiaryEntry, res.Value.ID, res.Outcome, res.RemoteErr)
			fmt.Fprintf(cmd.OutOrStdout(), "  %s kcal\n", num(res.Value.Payload.Facts.Calories))
			return nil
		}),
	}
}

func (r *root) newDiaryMoveCmd() *cobra.Command {
	var day, meal string
	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move an entry to another day or meal",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(cmd *cobra.Command, a *App, args []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			cur, err := a.diary.Get(cmd.Context(), sess, args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("day") {
				day = cur.Payload.Day
			}
			if !cmd.Flags().Changed("meal") {
				meal = cur.Payload.Meal
			}
			res, err := a.diary.Move(cmd.Context(), sess, args[0], day, meal)
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), "moved", models.TypeDiaryEntry, res.Value.ID, res.Outcome, res.RemoteErr)
			return nil
		}),
	}
	dayMealFlags(cmd, &day, &meal)
	return cmd
}

func printDiary(cmd *cobra.Command, list []diary.Entry) {
	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "ID\tDAY\tMEAL\tNAME\tSERVINGS\t"+factsHeader+"\t")
	for _, e := range list {
		p := e.Payload
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\t%s\t%s\t\n",
			e.ID, syncMark(e.Synced), p.Day, p.Meal, p.FoodName, num(p.NumberOfServings), factsColumns(p.Facts))
	}
	_ = tw.Flush()
}

func (r *root) newDiaryListCmd() *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List the entries of a day",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, a *App, _ []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			list, err := a.diary.Day(cmd.Context(), sess, a.dayOrToday(day))
			if err != nil {
				return err
			}
			printDiary(cmd, list)
			return nil
		}),
	}
	dayMealFlags(cmd, &day, nil)
	return cmd
}

func (r *root) newDiarySummaryCmd() *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the totals of a day per meal, with exercise",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, a *App, _ []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			d := a.dayOrToday(day)
			s, err := a.diary.Summarize(cmd.Context(), sess, d)
			if err != nil {
				return err
			}
			burned, err := a.exercises.BurnedOn(cmd.Context(), sess, d)
			if err != nil {
				return err
			}
			printSummary(cmd, s, burned)
			return nil
		}),
	}
	dayMealFlags(cmd, &day, nil)
	return cmd
}

func printSummary(cmd *cobra.Command, s diary.Summary, burned float64) {
	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintf(tw, "%s\t%s\t\n", s.Day, factsHeader)
	for _, meal := range []string{models.MealBreakfast, models.MealLunch, models.MealDinner, models.MealSnack} {
		if f, ok := s.ByMeal[meal]; ok {
			fmt.Fprintf(tw, "%s\t%s\t\n", meal, factsColumns(f))
		}
	}
	fmt.Fprintf(tw, "total\t%s\t\n", factsColumns(s.Total))
	_ = tw.Flush()
	fmt.Fprintf(cmd.OutOrStdout(), "exercise: -%s kcal, net %s kcal\n", num(burned), num(nutrition.Round1(s.Total.Calories-burned)))
}

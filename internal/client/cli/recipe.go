package cli

import (
	"fmt"

	"github.com/dmitrijs2005/foodlog/internal/models"
	"github.com/spf13/cobra"
)

func (r *root) newRecipeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Build recipes from catalogue foods",
	}
	cmd.AddCommand(
		r.newRecipeAddCmd(),
		r.newRecipeIngredientCmd(),
		r.newRecipeListCmd(),
		r.newRecipePhotoCmd(),
		r.newDeleteCmd(models.TypeRecipe, func(a *App) deleter { return a.recipes }),
	)
	return cmd
}

func (r *root) newRecipeAddCmd() *cobra.Command {
	var (
		name        string
		servings    float64
		ingredients []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a recipe; --ingredient takes foodID:servings and repeats",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, a *App, _ []string) error {
			items, err := parseIngredients(ingredients)
			if err != nil {
				return err
			}
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.recipes.Create(cmd.Context(), sess, models.Recipe{Name: name, Servings: servings, Ingredients: items})
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), "created", models.TypeRecipe, res.Value.ID, res.Outcome, res.RemoteErr)
			fmt.Fprintf(cmd.OutOrStdout(), "  %s kcal per serving\n", num(res.Value.Payload.PerServing.Calories))
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "recipe name")
	cmd.Flags().Float64Var(&servings, "servings", 1, "portions the recipe yields")
	cmd.Flags().StringArrayVar(&ingredients, "ingredient", nil, "foodID:servings")
	return cmd
}

func (r *root) newRecipeIngredientCmd() *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "ingredient <id> <foodID> [servings]",
		Short: "Add servings of a food to a recipe, or remove it with --rm",
		Args:  cobra.RangeArgs(2, 3),
		RunE: r.run(func(cmd *cobra.Command, a *App, args []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if remove {
				res, err := a.recipes.RemoveIngredient(ctx, sess, args[0], args[1])
				if err != nil {
					return err
				}
				printOutcome(cmd.OutOrStdout(), "updated", models.TypeRecipe, res.Value.ID, res.Outcome, res.RemoteErr)
				return nil
			}

			servings := 1.0
			if len(args) == 3 {
				if servings, err = parseFloatArg("servings", args[2]); err != nil {
					return err
				}
			}
			res, err := a.recipes.AddIngredient(ctx, sess, args[0], args[1], servings)
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), "updated", models.TypeRecipe, res.Value.ID, res.Outcome, res.RemoteErr)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&remove, "rm", false, "remove the ingredient")
	return cmd
}

func (r *root) newRecipeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [prefix]",
		Short: "List recipes",
		Args:  cobra.MaximumNArgs(1),
		RunE: r.run(func(cmd *cobra.Command, a *App, args []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			list, err := a.recipes.Search(cmd.Context(), sess, prefix)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tSERVINGS\tINGREDIENTS\t"+factsHeader+"\t")
			for _, rc := range list {
				p := rc.Payload
				fmt.Fprintf(tw, "%s%s\t%s\t%s\t%d\t%s\t\n",
					rc.ID, syncMark(rc.Synced), p.Name, num(p.Servings), len(p.Ingredients), factsColumns(p.PerServing))
			}
			return tw.Flush()
		}),
	}
}

func (r *root) newRecipePhotoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "photo <id> <file>",
		Short: "Upload a photo of a recipe (needs the server)",
		Args:  cobra.ExactArgs(2),
		RunE: r.run(func(cmd *cobra.Command, a *App, args []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			key, err := a.uploadPhoto(cmd, args[1])
			if err != nil {
				return err
			}
			res, err := a.recipes.SetPhoto(cmd.Context(), sess, args[0], key)
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), "updated", models.TypeRecipe, res.Value.ID, res.Outcome, res.RemoteErr)
			return nil
		}),
	}
}

package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/foodlog/internal/client/runner"
	"github.com/dmitrijs2005/foodlog/internal/models"
	"github.com/dmitrijs2005/foodlog/internal/nutrition"
	"github.com/spf13/pflag"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// printOutcome reports where a change stands.
func printOutcome(w io.Writer, verb string, t models.EntityType, id string, outcome runner.Outcome, remoteErr error) {
	fmt.Fprintf(w, "%s %s %s (%s)\n", verb, t, id, outcome)
	if remoteErr != nil {
		fmt.Fprintf(w, "  server: %v\n", remoteErr)
	}
}

func syncMark(synced bool) string {
	if synced {
		return ""
	}
	return "*"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func factsColumns(f nutrition.Facts) string {
	return strings.Join([]string{num(f.Calories), num(f.Protein), num(f.Carbs), num(f.Fat)}, "\t")
}

const factsHeader = "KCAL\tPROTEIN\tCARBS\tFAT"

func addFactsFlags(fs *pflag.FlagSet, f *nutrition.Facts) {
	fs.Float64Var(&f.Calories, "calories", 0, "calories")
	fs.Float64Var(&f.Protein, "protein", 0, "protein, g")
	fs.Float64Var(&f.Carbs, "carbs", 0, "carbohydrates, g")
	fs.Float64Var(&f.Fat, "fat", 0, "fat, g")
}

// changedFacts copies the facts flags the user set onto dst.
func changedFacts(fs *pflag.FlagSet, src nutrition.Facts, dst *nutrition.Facts) {
	if fs.Changed("calories") {
		dst.Calories = src.Calories
	}
	if fs.Changed("protein") {
		dst.Protein = src.Protein
	}
	if fs.Changed("carbs") {
		dst.Carbs = src.Carbs
	}
	if fs.Changed("fat") {
		dst.Fat = src.Fat
	}
}

// parseIngredients reads "foodID:servings" pairs. Servings default to 1.
func parseIngredients(values []string) ([]models.Ingredient, error) {
	out := make([]models.Ingredient, 0, len(values))
	for _, v := range values {
		id, servings, found := strings.Cut(v, ":")
		in := models.Ingredient{FoodID: strings.TrimSpace(id), Servings: 1}
		if found {
			s, err := strconv.ParseFloat(strings.TrimSpace(servings), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid servings in %q: %w", v, err)
			}
			in.Servings = s
		}
		if in.FoodID == "" {
			return nil, fmt.Errorf("missing food id in %q", v)
		}
		out = append(out, in)
	}
	return out, nil
}

func parseType(s string) (models.EntityType, error) {
	for _, t := range models.Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", models.ErrUnknownType, s)
}

func parseFloatArg(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return v, nil
}

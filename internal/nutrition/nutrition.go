// Package nutrition holds the formulas for derived nutrition values. The client
// applies them optimistically on every local edit and the server applies them
// again before storing, so both sides compute identical numbers.
package nutrition

import "math"

// Facts are the macro values of one serving (or of an aggregate, for totals).
type Facts struct {
	Calories float64 `json:"calories" validate:"gte=0"`
	Protein  float64 `json:"protein" validate:"gte=0"`
	Carbs    float64 `json:"carbs" validate:"gte=0"`
	Fat      float64 `json:"fat" validate:"gte=0"`
}

// Round1 rounds v half away from zero to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Scale multiplies every field of f by servings.
func Scale(f Facts, servings float64) Facts {
	return Facts{
		Calories: Round1(f.Calories * servings),
		Protein:  Round1(f.Protein * servings),
		Carbs:    Round1(f.Carbs * servings),
		Fat:      Round1(f.Fat * servings),
	}
}

// Sum adds facts field by field.
func Sum(facts ...Facts) Facts {
	var total Facts
	for _, f := range facts {
		total.Calories += f.Calories
		total.Protein += f.Protein
		total.Carbs += f.Carbs
		total.Fat += f.Fat
	}
	return Facts{
		Calories: Round1(total.Calories),
		Protein:  Round1(total.Protein),
		Carbs:    Round1(total.Carbs),
		Fat:      Round1(total.Fat),
	}
}

// PerServing splits a total into servings equal portions. A non-positive
// servings count returns the total unchanged.
func PerServing(total Facts, servings float64) Facts {
	if servings <= 0 {
		return total
	}
	return Scale(total, 1/servings)
}

// Burned returns the calories spent exercising for minutes at ratePerMinute.
func Burned(ratePerMinute, minutes float64) float64 {
	return Round1(ratePerMinute * minutes)
}

package models

import "github.com/dmitrijs2005/foodlog/internal/nutrition"

// Food is a catalogue item. Facts are per serving of ServingSize ServingUnit.
type Food struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Brand       string          `json:"brand,omitempty" validate:"max=200"`
	Barcode     string          `json:"barcode,omitempty" validate:"omitempty,numeric,min=8,max=14"`
	ServingSize float64         `json:"servingSize" validate:"gt=0"`
	ServingUnit string          `json:"servingUnit,omitempty" validate:"max=20"`
	Facts       nutrition.Facts `json:"facts"`
	PhotoKey    string          `json:"photoKey,omitempty"`
}

func (f Food) SortKey() string { return nameKey(f.Name) }

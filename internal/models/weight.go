package models

// WeightEntry is a body weight measurement for a day.
type WeightEntry struct {
	Day      string  `json:"day" validate:"required,datetime=2006-01-02"`
	WeightKg float64 `json:"weightKg" validate:"gt=0,lt=700"`
	Note     string  `json:"note,omitempty" validate:"max=500"`
}

func (w WeightEntry) SortKey() string { return w.Day }

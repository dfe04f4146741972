// Package models defines the payloads of every foodlog entity as they travel
// between the local store, the wire and the server database, together with
// the rules that keep their derived values consistent.
package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/go-playground/validator/v10"
)

// EntityType names a kind of record. It is part of every record key, queue
// entry and remote call.
type EntityType string

const (
	TypeFood        EntityType = "food"
	TypeDiaryEntry  EntityType = "diary_entry"
	TypeExercise    EntityType = "exercise"
	TypeRecipe      EntityType = "recipe"
	TypeSavedMeal   EntityType = "saved_meal"
	TypeWeightEntry EntityType = "weight_entry"
)

// Types lists every known entity type. Parents come before their children.
var Types = []EntityType{TypeFood, TypeRecipe, TypeSavedMeal, TypeDiaryEntry, TypeExercise, TypeWeightEntry}

// DayLayout is the format of every day field and of day sort keys.
const DayLayout = "2006-01-02"

// ErrUnknownType is returned for an entity type the build does not know.
var ErrUnknownType = fmt.Errorf("%w: unknown entity type", common.ErrInvalidInput)

// Payload is implemented by every entity payload.
type Payload interface {
	// SortKey is the indexable string list filters range over.
	SortKey() string
}

// FoodLookup returns the food with the given id, or an error wrapping
// common.ErrParentNotFound.
type FoodLookup func(ctx context.Context, id string) (*Food, error)

// Derivable payloads carry values computed from referenced foods.
type Derivable interface {
	Derive(ctx context.Context, lookup FoodLookup) error
}

// Referencing payloads point at other records by id.
type Referencing interface {
	References() []string
	// Rebind replaces every referenced id with fn(id).
	Rebind(fn func(id string) string)
}

// New returns a pointer to a zero payload of type t.
func New(t EntityType) (Payload, error) {
	switch t {
	case TypeFood:
		return &Food{}, nil
	case TypeDiaryEntry:
		return &DiaryEntry{}, nil
	case TypeExercise:
		return &Exercise{}, nil
	case TypeRecipe:
		return &Recipe{}, nil
	case TypeSavedMeal:
		return &SavedMeal{}, nil
	case TypeWeightEntry:
		return &WeightEntry{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
}

// Decode unmarshals raw into a new payload of type t.
func Decode(t EntityType, raw []byte) (Payload, error) {
	p, err := New(t)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("%w: %s payload: %v", common.ErrInvalidInput, t, err)
	}
	return p, nil
}

// SortKeyOf decodes raw and returns its sort key.
func SortKeyOf(t EntityType, raw []byte) (string, error) {
	p, err := Decode(t, raw)
	if err != nil {
		return "", err
	}
	return p.SortKey(), nil
}

// RebindRaw rewrites the references of a raw payload through fn. Payloads
// without references are returned unchanged. The first error from fn aborts.
func RebindRaw(t EntityType, raw []byte, fn func(id string) (string, error)) ([]byte, error) {
	p, err := Decode(t, raw)
	if err != nil {
		return nil, err
	}
	ref, ok := p.(Referencing)
	if !ok || len(ref.References()) == 0 {
		return raw, nil
	}

	var firstErr error
	ref.Rebind(func(id string) string {
		if firstErr != nil {
			return id
		}
		mapped, err := fn(id)
		if err != nil {
			firstErr = err
			return id
		}
		return mapped
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return json.Marshal(p)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags of p. Failures wrap common.ErrInvalidInput.
func Validate(p any) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", common.ErrInvalidInput, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

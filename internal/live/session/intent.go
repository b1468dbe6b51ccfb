package session

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/2beens/gymlive/internal/live/draft"
)

var (
	ErrUnknownOp    = errors.New("unknown op")
	ErrInvalidField = errors.New("invalid field")
	ErrInvalidValue = errors.New("invalid value")
)

type Op string

const (
	OpOpenExercise         Op = "openExercise"
	OpCloseExercise        Op = "closeExercise"
	OpSetActiveSet         Op = "setActiveSet"
	OpPrevSet              Op = "prevSet"
	OpNextSet              Op = "nextSet"
	OpUpdateSetValue       Op = "updateSetValue"
	OpAddSet               Op = "addSet"
	OpRemoveSet            Op = "removeSet"
	OpSetCompleted         Op = "setCompleted"
	OpSetExerciseNotes     Op = "setExerciseNotes"
	OpSetSetNotes          Op = "setSetNotes"
	OpAddDrop              Op = "addDrop"
	OpRemoveDrop           Op = "removeDrop"
	OpUpdateDropValue      Op = "updateDropValue"
	OpToggleDropsetMode    Op = "toggleDropsetMode"
	OpSetSupersetRound     Op = "setSupersetRound"
	OpAdvanceSupersetRound Op = "advanceSupersetRound"
)

// Intent is a user action on the live draft as sent by the client.
// Values come either as a number in Value or as raw typed text in Input;
// Input wins and is sanitized the same way the input fields are.
type Intent struct {
	Op            Op          `json:"op"`
	ExerciseIndex int         `json:"exerciseIndex"`
	SetNumber     int         `json:"setNumber"`
	DropIndex     int         `json:"dropIndex"`
	Field         draft.Field `json:"field,omitempty"`
	Value         *float64    `json:"value,omitempty"`
	Input         *string     `json:"input,omitempty"`
	Group         string      `json:"group,omitempty"`
	Round         int         `json:"round"`
	Completed     bool        `json:"completed"`
	Notes         string      `json:"notes,omitempty"`
}

// Mutator maps the intent onto its draft transition.
func (in Intent) Mutator() (Mutator, error) {
	switch in.Op {
	case OpOpenExercise:
		return func(d draft.Draft, now time.Time) draft.Draft {
			return draft.OpenExercise(d, in.ExerciseIndex, now)
		}, nil
	case OpCloseExercise:
		return func(d draft.Draft, now time.Time) draft.Draft {
			return draft.CloseExercise(d, in.ExerciseIndex, now)
		}, nil
	case OpSetActiveSet:
		return func(d draft.Draft, now time.Time) draft.Draft {
			return draft.SetActiveSetNumber(d, in.SetNumber, now)
		}, nil
	case OpPrevSet:
		return draft.GoPrevSet, nil
	case OpNextSet:
		return draft.GoNextSet, nil
	case OpUpdateSetValue:
		value, err := in.value()
		if err != nil {
			return nil, err
		}
		u := draft.SetValueUpdate{
			ExerciseIndex: in.ExerciseIndex,
			SetNumber:     in.SetNumber,
			Field:         in.Field,
			Value:         value,
		}
		return func(d draft.Draft, now time.Time) draft.Draft {
			return draft.UpdateSetValue(d, u, now)
		}, nil
	case OpAddSet:
		return func(d draft.Draft, now time.Time) draft.Draft {
			return draft.AddSet(d, in.ExerciseIndex, now)
		}, nil
	case OpRemoveSet:
		return func(d draft.Draft, now time.Time) draft.Draft {
			return draft.RemoveSet(d, in.ExerciseIndex, now)
		}, nil
	case OpSetCompleted:
		return func(d draft.Draft, now time.Time) draft.Draft {
			return draft.SetExerciseCompleted(d, in.ExerciseIndex, in.Completed, now)
		}, nil
	case OpSetExerciseNotes:
		return func(d draft.Draft, now time.Time) draft.Draft {
			return draft.SetExerciseNotes(d, in.ExerciseIndex, in.Notes, now)
		}, nil
	case OpSetSetNotes:
		return func(d draft.Draft, now time.Time) draft.Draft {
			return draft.SetSetNotes(d, in.ExerciseIndex, in.SetNumber, in.Notes, now)
		}, nil
	case OpAddDrop:
		return func(d draft.Draft, now time.Time) draft.Draft {
			return draft.AddDrop(d, in.ExerciseIndex, in.SetNumber, now)
		}, nil
	case OpRemoveDrop:
		return func(d draft.Draft, now time.Time) draft.Draft {
			return draft.RemoveDrop(d, in.ExerciseIndex, in.SetNumber, in.DropIndex, now)
		}, nil
	case OpUpdateDropValue:
		value, err := in.value()
		if err != nil {
			return nil, err
		}
		return func(d draft.Draft, now time.Time) draft.Draft {
			return draft.UpdateDropValue(d, in.ExerciseIndex, in.SetNumber, in.DropIndex, in.Field, value, now)
		}, nil
	case OpToggleDropsetMode:
		return func(d draft.Draft, now time.Time) draft.Draft {
			return draft.ToggleDropsetMode(d, in.ExerciseIndex, now)
		}, nil
	case OpSetSupersetRound:
		return func(d draft.Draft, now time.Time) draft.Draft {
			return draft.SetSupersetRound(d, in.Group, in.Round, now)
		}, nil
	case OpAdvanceSupersetRound:
		return func(d draft.Draft, now time.Time) draft.Draft {
			return draft.AdvanceSupersetRound(d, in.Group, now)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, in.Op)
	}
}

func (in Intent) value() (*float64, error) {
	if !in.Field.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidField, in.Field)
	}
	if in.Input == nil {
		if in.Value != nil && (math.IsNaN(*in.Value) || math.IsInf(*in.Value, 0)) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidValue, *in.Value)
		}
		return draft.SanitizeValue(in.Field, in.Value), nil
	}

	switch in.Field {
	case draft.FieldReps:
		return intToFloat(draft.ParseReps(*in.Input)), nil
	case draft.FieldTimeSeconds:
		return intToFloat(draft.ParseTimeSeconds(*in.Input)), nil
	default:
		return draft.ParseDecimal(*in.Input), nil
	}
}

func intToFloat(i *int) *float64 {
	if i == nil {
		return nil
	}
	f := float64(*i)
	return &f
}

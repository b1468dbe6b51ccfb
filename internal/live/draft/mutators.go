package draft

import (
	"math"
	"time"
)

// Field names a value of a set that can be edited.
type Field string

const (
	FieldReps        Field = "reps"
	FieldWeight      Field = "weight"
	FieldTimeSeconds Field = "timeSeconds"
	FieldDistance    Field = "distance"
)

func (f Field) IsValid() bool {
	switch f {
	case FieldReps, FieldWeight, FieldTimeSeconds, FieldDistance:
		return true
	default:
		return false
	}
}

// SetValueUpdate replaces one field of one set. A nil Value clears the
// field ("not yet entered").
type SetValueUpdate struct {
	ExerciseIndex int      `json:"exerciseIndex"`
	SetNumber     int      `json:"setNumber"`
	Field         Field    `json:"field"`
	Value         *float64 `json:"value"`
}

// All mutators below take the draft by value and return a new draft.
// When the intent does not apply (stale index, cap reached, ...) the
// input draft is returned unchanged and UpdatedAt is not bumped.

// OpenExercise moves the UI cursor to the exercise at index i (clamped)
// and resets the active set number to 1.
func OpenExercise(d Draft, i int, now time.Time) Draft {
	if len(d.Exercises) == 0 {
		return d
	}
	c := d.Clone()
	i = clamp(i, 0, len(c.Exercises)-1)
	c.UI.ActiveExerciseIndex = i
	c.UI.ActiveSetNumber = 1
	for j := range c.Exercises {
		c.Exercises[j].Open = j == i
	}
	c.Exercises[i].CurrentSet = 0
	c.UpdatedAt = now
	return c
}

// CloseExercise hides the logging sheet of the exercise at index i.
func CloseExercise(d Draft, i int, now time.Time) Draft {
	if i < 0 || i >= len(d.Exercises) || !d.Exercises[i].Open {
		return d
	}
	c := d.Clone()
	c.Exercises[i].Open = false
	c.UpdatedAt = now
	return c
}

// SetActiveSetNumber clamps n to the sets of the active exercise.
func SetActiveSetNumber(d Draft, n int, now time.Time) Draft {
	active, ok := d.ActiveExercise()
	if !ok {
		return d
	}
	n = clamp(n, 1, len(active.Sets))
	if n == d.UI.ActiveSetNumber && active.CurrentSet == n-1 {
		return d
	}
	c := d.Clone()
	clampCursor(&c)
	c.UI.ActiveSetNumber = n
	c.Exercises[c.UI.ActiveExerciseIndex].CurrentSet = n - 1
	c.UpdatedAt = now
	return c
}

func GoPrevSet(d Draft, now time.Time) Draft {
	return SetActiveSetNumber(d, d.UI.ActiveSetNumber-1, now)
}

func GoNextSet(d Draft, now time.Time) Draft {
	return SetActiveSetNumber(d, d.UI.ActiveSetNumber+1, now)
}

// UpdateSetValue replaces the named field of a base set. Out of range
// indexes, unknown set numbers and fields not belonging to the exercise
// type are ignored.
func UpdateSetValue(d Draft, u SetValueUpdate, now time.Time) Draft {
	if u.ExerciseIndex < 0 || u.ExerciseIndex >= len(d.Exercises) {
		return d
	}
	setIdx := d.Exercises[u.ExerciseIndex].setIndex(u.SetNumber)
	if setIdx < 0 {
		return d
	}
	updated, ok := applyField(d.Exercises[u.ExerciseIndex].Sets[setIdx], u.Field, u.Value)
	if !ok {
		return d
	}
	c := d.Clone()
	c.Exercises[u.ExerciseIndex].Sets[setIdx] = updated
	c.UpdatedAt = now
	return c
}

// AddSet appends an empty set to the exercise at index i, up to
// MaxSetsPerExercise.
func AddSet(d Draft, i int, now time.Time) Draft {
	if i < 0 || i >= len(d.Exercises) {
		return d
	}
	ex := d.Exercises[i]
	last := 0
	if len(ex.Sets) > 0 {
		last = ex.Sets[len(ex.Sets)-1].SetNumber
	}
	next := min(MaxSetsPerExercise, last+1)
	if next <= last {
		return d
	}
	c := d.Clone()
	c.Exercises[i].Sets = append(c.Exercises[i].Sets, NewSet(ex.Type, next, 0))
	if i == c.UI.ActiveExerciseIndex {
		clampCursor(&c)
	}
	c.UpdatedAt = now
	return c
}

// RemoveSet removes the last set (and its drops) of the exercise at
// index i. An exercise always keeps at least one set.
func RemoveSet(d Draft, i int, now time.Time) Draft {
	if i < 0 || i >= len(d.Exercises) || len(d.Exercises[i].Sets) <= 1 {
		return d
	}
	c := d.Clone()
	ex := &c.Exercises[i]
	removed := ex.Sets[len(ex.Sets)-1].SetNumber
	ex.Sets = ex.Sets[:len(ex.Sets)-1]
	ex.Drops = withoutDropsOf(ex.Drops, removed)
	ex.CurrentSet = clamp(ex.CurrentSet, 0, len(ex.Sets)-1)
	if i == c.UI.ActiveExerciseIndex {
		clampCursor(&c)
	}
	c.UpdatedAt = now
	return c
}

func SetExerciseCompleted(d Draft, i int, completed bool, now time.Time) Draft {
	if i < 0 || i >= len(d.Exercises) || d.Exercises[i].Completed == completed {
		return d
	}
	c := d.Clone()
	c.Exercises[i].Completed = completed
	if completed {
		c.Exercises[i].Open = false
	}
	c.UpdatedAt = now
	return c
}

func SetExerciseNotes(d Draft, i int, notes string, now time.Time) Draft {
	if i < 0 || i >= len(d.Exercises) || d.Exercises[i].Notes == notes {
		return d
	}
	c := d.Clone()
	c.Exercises[i].Notes = notes
	c.UpdatedAt = now
	return c
}

// SetSetNotes sets the notes of a base set, an empty string clears them.
func SetSetNotes(d Draft, i, setNumber int, notes string, now time.Time) Draft {
	if i < 0 || i >= len(d.Exercises) {
		return d
	}
	setIdx := d.Exercises[i].setIndex(setNumber)
	if setIdx < 0 {
		return d
	}
	c := d.Clone()
	if notes == "" {
		c.Exercises[i].Sets[setIdx].Notes = nil
	} else {
		c.Exercises[i].Sets[setIdx].Notes = &notes
	}
	c.UpdatedAt = now
	return c
}

// applyField returns the set with the field replaced, or false if the
// field does not belong to the set's variant.
func applyField(s Set, field Field, value *float64) (Set, bool) {
	s = cloneSet(s)
	value = SanitizeValue(field, value)
	switch field {
	case FieldReps:
		if s.Strength == nil {
			return s, false
		}
		s.Strength.Reps = toInt(value)
	case FieldWeight:
		if s.Strength == nil {
			return s, false
		}
		s.Strength.Weight = cloneFloat(value)
	case FieldTimeSeconds:
		if s.Cardio == nil {
			return s, false
		}
		s.Cardio.TimeSeconds = toInt(value)
	case FieldDistance:
		if s.Cardio == nil {
			return s, false
		}
		s.Cardio.Distance = cloneFloat(value)
	default:
		return s, false
	}
	return s, true
}

func toInt(v *float64) *int {
	if v == nil {
		return nil
	}
	i := int(math.Round(*v))
	return &i
}

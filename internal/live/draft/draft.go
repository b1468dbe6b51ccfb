package draft

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxSetsPerExercise caps the set number an exercise can reach.
	MaxSetsPerExercise = 20
)

// ExerciseType can be one of:
//   - strength (reps and weight)
//   - cardio (time and distance)
type ExerciseType string

const (
	ExerciseTypeStrength ExerciseType = "strength"
	ExerciseTypeCardio   ExerciseType = "cardio"
)

func (et ExerciseType) String() string {
	return string(et)
}

func (et ExerciseType) IsValid() bool {
	switch et {
	case ExerciseTypeStrength, ExerciseTypeCardio:
		return true
	default:
		return false
	}
}

// Draft is the in-progress representation of a workout session,
// before it is committed to the workout history.
type Draft struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	WorkoutID     *string    `json:"workoutId"`
	PlanWorkoutID *string    `json:"planWorkoutId"`
	Title         string     `json:"title"`
	StartedAt     time.Time  `json:"startedAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	Exercises     []Exercise `json:"exercises"`
	UI            UIState    `json:"ui"`
}

// UIState is view-cursor state only, it carries no business data.
type UIState struct {
	ActiveExerciseIndex   int             `json:"activeExerciseIndex"`
	ActiveSetNumber       int             `json:"activeSetNumber"`
	SupersetRoundByGroup  map[string]int  `json:"supersetRoundByGroup,omitempty"`
	DropsetModeByExercise map[string]bool `json:"dropsetModeByExercise,omitempty"`
}

type Prescription struct {
	SupersetGroup *string `json:"supersetGroup"`
	SupersetIndex *int    `json:"supersetIndex"`
}

// LastSession is a snapshot of the most recent historical performance
// of an exercise, used to prefill "previous" hints.
type LastSession struct {
	PerformedAt time.Time `json:"performedAt"`
	Sets        []Set     `json:"sets"`
}

type Exercise struct {
	ID           string        `json:"id"`
	ExerciseID   string        `json:"exerciseId"`
	Name         string        `json:"name"`
	Type         ExerciseType  `json:"type"`
	Prescription *Prescription `json:"prescription,omitempty"`
	// Sets holds the base rows (DropIndex == 0), ordered by SetNumber.
	Sets []Set `json:"sets"`
	// Drops holds drop rows (DropIndex >= 1), ordered by SetNumber, DropIndex.
	Drops       []Set        `json:"drops,omitempty"`
	LastSession *LastSession `json:"lastSession,omitempty"`
	Notes       string       `json:"notes"`
	Completed   bool         `json:"completed"`
	Open        bool         `json:"open"`
	// CurrentSet is the 0-based own set cursor of the exercise.
	CurrentSet int `json:"currentSet"`
}

// SupersetGroup returns the superset group of the exercise, or "" if it
// is not part of one.
func (e Exercise) SupersetGroup() string {
	if e.Prescription == nil || e.Prescription.SupersetGroup == nil {
		return ""
	}
	return *e.Prescription.SupersetGroup
}

// DropsFor returns the drop rows of the given set number.
func (e Exercise) DropsFor(setNumber int) []Set {
	var drops []Set
	for _, d := range e.Drops {
		if d.SetNumber == setNumber {
			drops = append(drops, d)
		}
	}
	return drops
}

func (e Exercise) setIndex(setNumber int) int {
	for i, s := range e.Sets {
		if s.SetNumber == setNumber {
			return i
		}
	}
	return -1
}

// StrengthValues are the fields of a strength set. Weight is in kg.
type StrengthValues struct {
	Reps   *int     `json:"reps"`
	Weight *float64 `json:"weight"`
}

// CardioValues are the fields of a cardio set. Distance is in km.
type CardioValues struct {
	TimeSeconds *int     `json:"timeSeconds"`
	Distance    *float64 `json:"distance"`
}

// Set is one set, or one drop performed right after a base set.
// Exactly one of Strength and Cardio is set.
type Set struct {
	SetNumber int
	DropIndex int
	Strength  *StrengthValues
	Cardio    *CardioValues
	Notes     *string
}

func NewSet(exType ExerciseType, setNumber, dropIndex int) Set {
	s := Set{
		SetNumber: setNumber,
		DropIndex: dropIndex,
	}
	if exType == ExerciseTypeCardio {
		s.Cardio = &CardioValues{}
	} else {
		s.Strength = &StrengthValues{}
	}
	return s
}

func (s Set) Type() ExerciseType {
	if s.Cardio != nil {
		return ExerciseTypeCardio
	}
	return ExerciseTypeStrength
}

// IsEmpty reports whether no value has been entered for the set yet.
func (s Set) IsEmpty() bool {
	switch {
	case s.Strength != nil:
		return s.Strength.Reps == nil && s.Strength.Weight == nil
	case s.Cardio != nil:
		return s.Cardio.TimeSeconds == nil && s.Cardio.Distance == nil
	default:
		return true
	}
}

type setJSON struct {
	SetNumber   int      `json:"setNumber"`
	DropIndex   int      `json:"dropIndex"`
	Reps        *int     `json:"reps,omitempty"`
	Weight      *float64 `json:"weight,omitempty"`
	TimeSeconds *int     `json:"timeSeconds,omitempty"`
	Distance    *float64 `json:"distance,omitempty"`
	Notes       *string  `json:"notes"`
}

// MarshalJSON writes the flat wire shape, emitting only the fields of
// the set's variant. Null values are written explicitly, so the variant
// survives a round trip.
func (s Set) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"setNumber": s.SetNumber,
		"dropIndex": s.DropIndex,
		"notes":     s.Notes,
	}
	if s.Cardio != nil {
		m["timeSeconds"] = s.Cardio.TimeSeconds
		m["distance"] = s.Cardio.Distance
	} else {
		sv := s.Strength
		if sv == nil {
			sv = &StrengthValues{}
		}
		m["reps"] = sv.Reps
		m["weight"] = sv.Weight
	}
	return json.Marshal(m)
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var sj setJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return err
	}

	*s = Set{
		SetNumber: sj.SetNumber,
		DropIndex: sj.DropIndex,
		Notes:     sj.Notes,
	}

	_, hasTime := raw["timeSeconds"]
	_, hasDistance := raw["distance"]
	_, hasReps := raw["reps"]
	_, hasWeight := raw["weight"]
	switch {
	case (hasTime || hasDistance) && (hasReps || hasWeight):
		return fmt.Errorf("set %d: both strength and cardio fields present", sj.SetNumber)
	case hasTime || hasDistance:
		s.Cardio = &CardioValues{TimeSeconds: sj.TimeSeconds, Distance: sj.Distance}
	case hasReps || hasWeight:
		s.Strength = &StrengthValues{Reps: sj.Reps, Weight: sj.Weight}
	}
	// a set without any variant field is repaired by Normalize
	return nil
}

// NewDraftParams describes a session about to start.
type NewDraftParams struct {
	UserID        string
	WorkoutID     *string
	PlanWorkoutID *string
	Title         string
	StartedAt     time.Time
	Exercises     []Exercise
}

// NewDraft creates a draft for a session starting now. Exercises
// without sets get a single empty one.
func NewDraft(params NewDraftParams) Draft {
	d := Draft{
		ID:            uuid.NewString(),
		UserID:        params.UserID,
		WorkoutID:     params.WorkoutID,
		PlanWorkoutID: params.PlanWorkoutID,
		Title:         params.Title,
		StartedAt:     params.StartedAt,
		UpdatedAt:     params.StartedAt,
		Exercises:     make([]Exercise, 0, len(params.Exercises)),
		UI: UIState{
			ActiveExerciseIndex: 0,
			ActiveSetNumber:     1,
		},
	}
	for _, ex := range params.Exercises {
		d.Exercises = append(d.Exercises, cloneExercise(ex))
	}
	Normalize(&d)
	return d
}

// NewExercise builds an exercise with setCount empty sets (at least one).
func NewExercise(id, exerciseID, name string, exType ExerciseType, setCount int) Exercise {
	if id == "" {
		id = uuid.NewString()
	}
	if !exType.IsValid() {
		exType = ExerciseTypeStrength
	}
	setCount = clamp(setCount, 1, MaxSetsPerExercise)
	ex := Exercise{
		ID:         id,
		ExerciseID: exerciseID,
		Name:       name,
		Type:       exType,
		Sets:       make([]Set, 0, setCount),
	}
	for n := 1; n <= setCount; n++ {
		ex.Sets = append(ex.Sets, NewSet(exType, n, 0))
	}
	return ex
}

// PlanScoped reports whether the draft belongs to a plan workout.
func (d Draft) PlanScoped() bool {
	return d.PlanWorkoutID != nil && *d.PlanWorkoutID != ""
}

// ActiveExercise returns the exercise under the UI cursor.
func (d Draft) ActiveExercise() (Exercise, bool) {
	if len(d.Exercises) == 0 {
		return Exercise{}, false
	}
	idx := clamp(d.UI.ActiveExerciseIndex, 0, len(d.Exercises)-1)
	return d.Exercises[idx], true
}

// DropsetMode reports whether the drop-editing panel is shown for the
// exercise at index i.
func (d Draft) DropsetMode(i int) bool {
	if i < 0 || i >= len(d.Exercises) {
		return false
	}
	return d.UI.DropsetModeByExercise[d.Exercises[i].ID]
}

// Clone returns a deep copy sharing no memory with d.
func (d Draft) Clone() Draft {
	c := d
	c.WorkoutID = cloneString(d.WorkoutID)
	c.PlanWorkoutID = cloneString(d.PlanWorkoutID)
	if d.Exercises != nil {
		c.Exercises = make([]Exercise, len(d.Exercises))
		for i, ex := range d.Exercises {
			c.Exercises[i] = cloneExercise(ex)
		}
	}
	if d.UI.SupersetRoundByGroup != nil {
		c.UI.SupersetRoundByGroup = make(map[string]int, len(d.UI.SupersetRoundByGroup))
		for k, v := range d.UI.SupersetRoundByGroup {
			c.UI.SupersetRoundByGroup[k] = v
		}
	}
	if d.UI.DropsetModeByExercise != nil {
		c.UI.DropsetModeByExercise = make(map[string]bool, len(d.UI.DropsetModeByExercise))
		for k, v := range d.UI.DropsetModeByExercise {
			c.UI.DropsetModeByExercise[k] = v
		}
	}
	return c
}

// Normalize repairs a decoded or hand-built draft so the model
// invariants hold: every exercise has at least one set, set variants
// match the exercise type, drop rows are dense, and the UI cursor is
// in range.
func Normalize(d *Draft) {
	for i := range d.Exercises {
		ex := &d.Exercises[i]
		if !ex.Type.IsValid() {
			ex.Type = ExerciseTypeStrength
		}
		if len(ex.Sets) == 0 {
			ex.Sets = []Set{NewSet(ex.Type, 1, 0)}
		}
		for j := range ex.Sets {
			ex.Sets[j] = coerceVariant(ex.Sets[j], ex.Type)
			ex.Sets[j].DropIndex = 0
		}
		for j := range ex.Drops {
			ex.Drops[j] = coerceVariant(ex.Drops[j], ex.Type)
		}
		ex.Drops = renumberDrops(ex.Drops)
		ex.CurrentSet = clamp(ex.CurrentSet, 0, len(ex.Sets)-1)
	}
	clampCursor(d)
}

func coerceVariant(s Set, exType ExerciseType) Set {
	if s.Type() == exType && (s.Strength != nil || s.Cardio != nil) {
		return s
	}
	fresh := NewSet(exType, s.SetNumber, s.DropIndex)
	fresh.Notes = s.Notes
	return fresh
}

func clampCursor(d *Draft) {
	if len(d.Exercises) == 0 {
		d.UI.ActiveExerciseIndex = 0
		d.UI.ActiveSetNumber = 1
		return
	}
	d.UI.ActiveExerciseIndex = clamp(d.UI.ActiveExerciseIndex, 0, len(d.Exercises)-1)
	sets := len(d.Exercises[d.UI.ActiveExerciseIndex].Sets)
	d.UI.ActiveSetNumber = clamp(d.UI.ActiveSetNumber, 1, max(sets, 1))
}

func cloneExercise(ex Exercise) Exercise {
	c := ex
	if ex.Prescription != nil {
		c.Prescription = &Prescription{
			SupersetGroup: cloneString(ex.Prescription.SupersetGroup),
			SupersetIndex: cloneInt(ex.Prescription.SupersetIndex),
		}
	}
	c.Sets = cloneSets(ex.Sets)
	c.Drops = cloneSets(ex.Drops)
	if ex.LastSession != nil {
		c.LastSession = &LastSession{
			PerformedAt: ex.LastSession.PerformedAt,
			Sets:        cloneSets(ex.LastSession.Sets),
		}
	}
	return c
}

func cloneSets(sets []Set) []Set {
	if sets == nil {
		return nil
	}
	c := make([]Set, len(sets))
	for i, s := range sets {
		c[i] = cloneSet(s)
	}
	return c
}

func cloneSet(s Set) Set {
	c := s
	c.Notes = cloneString(s.Notes)
	if s.Strength != nil {
		c.Strength = &StrengthValues{
			Reps:   cloneInt(s.Strength.Reps),
			Weight: cloneFloat(s.Strength.Weight),
		}
	}
	if s.Cardio != nil {
		c.Cardio = &CardioValues{
			TimeSeconds: cloneInt(s.Cardio.TimeSeconds),
			Distance:    cloneFloat(s.Cardio.Distance),
		}
	}
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

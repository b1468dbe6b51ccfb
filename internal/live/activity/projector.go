package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/2beens/gymlive/internal/live/draft"
)

const dropSeparator = " → "

// Payload is what the live-activity surface shows for a running session.
type Payload struct {
	StartedAt       time.Time `json:"startedAt"`
	WorkoutTitle    string    `json:"workoutTitle"`
	CurrentExercise *string   `json:"currentExercise,omitempty"`
	SetLabel        *string   `json:"setLabel,omitempty"`
	PrevLabel       *string   `json:"prevLabel,omitempty"`
}

// History holds previously logged sets per exercise reference, see
// HistoryRef.
type History map[string][]draft.Set

// HistoryRef is the key the history of an exercise is looked up by: the
// template exercise id for plan workouts, the catalog id otherwise.
func HistoryRef(d draft.Draft, ex draft.Exercise) string {
	if d.PlanScoped() {
		return ex.ID
	}
	return ex.ExerciseID
}

// OpenExerciseIndex returns the exercise the session is on: the first
// one flagged open, else the first not completed one.
func OpenExerciseIndex(d draft.Draft) (int, bool) {
	for i, ex := range d.Exercises {
		if ex.Open {
			return i, true
		}
	}
	for i, ex := range d.Exercises {
		if !ex.Completed {
			return i, true
		}
	}
	return -1, false
}

// Project derives the live-activity payload of the draft.
func Project(d draft.Draft, history History) Payload {
	p := Payload{
		StartedAt:    d.StartedAt,
		WorkoutTitle: d.Title,
	}

	i, ok := OpenExerciseIndex(d)
	if !ok {
		return p
	}
	ex := d.Exercises[i]
	total := len(ex.Sets)

	idx := ex.CurrentSet
	if group := ex.SupersetGroup(); group != "" {
		idx = d.SupersetRound(group)
	}
	idx = clampIndex(idx, total)

	name := ex.Name
	setLabel := fmt.Sprintf("Set %d of %d", idx+1, total)
	p.CurrentExercise = &name
	p.SetLabel = &setLabel

	var prev string
	if idx == 0 {
		prev = historyLabel(ex, history[HistoryRef(d, ex)])
	} else {
		prevSet := ex.Sets[idx-1]
		prev = formatSet(prevSet)
		if prev != "" && d.DropsetMode(i) {
			prev = chainDrops(prev, ex.DropsFor(prevSet.SetNumber))
		}
	}
	if prev != "" {
		p.PrevLabel = &prev
	}

	return p
}

// historyLabel formats the first logged set of the last session. The
// exercise's own lastSession snapshot is used when the provider had
// nothing.
func historyLabel(ex draft.Exercise, sets []draft.Set) string {
	if label := firstFormattable(sets); label != "" {
		return label
	}
	if ex.LastSession != nil {
		return firstFormattable(ex.LastSession.Sets)
	}
	return ""
}

func firstFormattable(sets []draft.Set) string {
	for _, s := range sets {
		if s.DropIndex != 0 {
			continue
		}
		if label := formatSet(s); label != "" {
			return label
		}
	}
	return ""
}

func chainDrops(label string, drops []draft.Set) string {
	parts := []string{label}
	for _, drop := range drops {
		if dl := formatSet(drop); dl != "" {
			parts = append(parts, dl)
		}
	}
	return strings.Join(parts, dropSeparator)
}

// formatSet renders "{reps}×{weight}kg" for strength sets and
// "{distance} km • {time}s" for cardio ones. A set with nothing entered
// renders as "".
func formatSet(s draft.Set) string {
	switch {
	case s.Cardio != nil:
		c := s.Cardio
		if c.Distance == nil && c.TimeSeconds == nil {
			return ""
		}
		return fmt.Sprintf("%s km • %ss", formatFloat(c.Distance), formatInt(c.TimeSeconds))
	case s.Strength != nil:
		st := s.Strength
		if st.Reps == nil && st.Weight == nil {
			return ""
		}
		return fmt.Sprintf("%s×%skg", formatInt(st.Reps), formatFloat(st.Weight))
	default:
		return ""
	}
}

func formatInt(v *int) string {
	if v == nil {
		return "0"
	}
	return fmt.Sprintf("%d", *v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return "0"
	}
	return draft.FormatDecimal(*v)
}

func clampIndex(idx, total int) int {
	if total == 0 || idx < 0 {
		return 0
	}
	if idx > total-1 {
		return total - 1
	}
	return idx
}

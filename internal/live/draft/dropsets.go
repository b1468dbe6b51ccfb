package draft

import (
	"sort"
	"time"
)

// AddDrop appends the next drop row to the given set of the exercise
// at index i.
func AddDrop(d Draft, i, setNumber int, now time.Time) Draft {
	if i < 0 || i >= len(d.Exercises) || d.Exercises[i].setIndex(setNumber) < 0 {
		return d
	}
	c := d.Clone()
	ex := &c.Exercises[i]
	next := len(ex.DropsFor(setNumber)) + 1
	ex.Drops = renumberDrops(append(ex.Drops, NewSet(ex.Type, setNumber, next)))
	c.UpdatedAt = now
	return c
}

// RemoveDrop removes one drop row; trailing drops of the same set are
// renumbered so drop indexes stay dense.
func RemoveDrop(d Draft, i, setNumber, dropIndex int, now time.Time) Draft {
	if i < 0 || i >= len(d.Exercises) {
		return d
	}
	pos := dropPosition(d.Exercises[i].Drops, setNumber, dropIndex)
	if pos < 0 {
		return d
	}
	c := d.Clone()
	ex := &c.Exercises[i]
	ex.Drops = renumberDrops(append(ex.Drops[:pos], ex.Drops[pos+1:]...))
	c.UpdatedAt = now
	return c
}

// UpdateDropValue replaces the named field of one drop row.
func UpdateDropValue(d Draft, i, setNumber, dropIndex int, field Field, value *float64, now time.Time) Draft {
	if i < 0 || i >= len(d.Exercises) {
		return d
	}
	pos := dropPosition(d.Exercises[i].Drops, setNumber, dropIndex)
	if pos < 0 {
		return d
	}
	updated, ok := applyField(d.Exercises[i].Drops[pos], field, value)
	if !ok {
		return d
	}
	c := d.Clone()
	c.Exercises[i].Drops[pos] = updated
	c.UpdatedAt = now
	return c
}

// ToggleDropsetMode flips whether the drop-editing panel is shown for
// the exercise at index i. It never creates or removes drop rows.
func ToggleDropsetMode(d Draft, i int, now time.Time) Draft {
	if i < 0 || i >= len(d.Exercises) {
		return d
	}
	c := d.Clone()
	if c.UI.DropsetModeByExercise == nil {
		c.UI.DropsetModeByExercise = make(map[string]bool)
	}
	id := c.Exercises[i].ID
	if c.UI.DropsetModeByExercise[id] {
		delete(c.UI.DropsetModeByExercise, id)
	} else {
		c.UI.DropsetModeByExercise[id] = true
	}
	c.UpdatedAt = now
	return c
}

func dropPosition(drops []Set, setNumber, dropIndex int) int {
	for pos, drop := range drops {
		if drop.SetNumber == setNumber && drop.DropIndex == dropIndex {
			return pos
		}
	}
	return -1
}

func withoutDropsOf(drops []Set, setNumber int) []Set {
	kept := drops[:0]
	for _, drop := range drops {
		if drop.SetNumber != setNumber {
			kept = append(kept, drop)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// renumberDrops orders drop rows by set number and drop index, then
// reassigns drop indexes 1..N per set number.
func renumberDrops(drops []Set) []Set {
	if len(drops) == 0 {
		return nil
	}
	sort.SliceStable(drops, func(a, b int) bool {
		if drops[a].SetNumber != drops[b].SetNumber {
			return drops[a].SetNumber < drops[b].SetNumber
		}
		return drops[a].DropIndex < drops[b].DropIndex
	})
	next := map[int]int{}
	for i := range drops {
		next[drops[i].SetNumber]++
		drops[i].DropIndex = next[drops[i].SetNumber]
	}
	return drops
}

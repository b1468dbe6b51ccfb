package draft

import (
	"sort"
	"time"
)

// SupersetMembers returns the indexes of the exercises sharing the
// given superset group, ordered by their superset index.
func (d Draft) SupersetMembers(group string) []int {
	if group == "" {
		return nil
	}
	var members []int
	for i, ex := range d.Exercises {
		if ex.SupersetGroup() == group {
			members = append(members, i)
		}
	}
	sort.SliceStable(members, func(a, b int) bool {
		return supersetIndex(d.Exercises[members[a]]) < supersetIndex(d.Exercises[members[b]])
	})
	return members
}

// SupersetRound returns the shared 0-based round counter of a group.
func (d Draft) SupersetRound(group string) int {
	return d.UI.SupersetRoundByGroup[group]
}

// SetSupersetRound sets the shared round counter of a superset group,
// clamped to the largest set count among its members.
func SetSupersetRound(d Draft, group string, round int, now time.Time) Draft {
	members := d.SupersetMembers(group)
	if len(members) == 0 {
		return d
	}
	maxSets := 1
	for _, i := range members {
		maxSets = max(maxSets, len(d.Exercises[i].Sets))
	}
	round = clamp(round, 0, maxSets-1)
	if cur, ok := d.UI.SupersetRoundByGroup[group]; ok && cur == round {
		return d
	}
	c := d.Clone()
	if c.UI.SupersetRoundByGroup == nil {
		c.UI.SupersetRoundByGroup = make(map[string]int)
	}
	c.UI.SupersetRoundByGroup[group] = round
	c.UpdatedAt = now
	return c
}

// AdvanceSupersetRound moves a superset group to its next round.
func AdvanceSupersetRound(d Draft, group string, now time.Time) Draft {
	return SetSupersetRound(d, group, d.SupersetRound(group)+1, now)
}

func supersetIndex(ex Exercise) int {
	if ex.Prescription == nil || ex.Prescription.SupersetIndex == nil {
		return 0
	}
	return *ex.Prescription.SupersetIndex
}

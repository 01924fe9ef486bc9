// Package layout assigns side-by-side display columns to the time blocks of
// one day. Blocks that overlap, or sit within ten minutes of each other, are
// grouped and rendered at equal width so near-adjacent entries stay visually
// separated.
package layout

import (
	"sort"
	"time"
)

// ProximityThreshold is the maximum gap between two intervals that still
// counts as a conflict for grouping purposes.
const ProximityThreshold = 10 * time.Minute

// Interval is one time block with a stable identity.
type Interval struct {
	ID    string
	Start time.Time
	End   time.Time
}

// Placement is the display slot assigned to an interval. Column is
// zero-based; TotalColumns is the size of the interval's conflict group, so
// every member of a group renders at the same width.
type Placement struct {
	Interval
	Column       int
	TotalColumns int
}

// Compute assigns a Placement to every interval. Conflicts are transitive:
// the groups are the connected components of the pairwise conflict relation,
// found with a union-find over all pairs. n is bounded by one day's records,
// so the quadratic pass is fine.
func Compute(intervals []Interval) []Placement {
	if len(intervals) == 0 {
		return nil
	}

	// Sort by start time, keeping input order for equal starts so column
	// assignment stays deterministic.
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	parent := make([]int, len(sorted))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if conflicts(sorted[i], sorted[j]) {
				union(i, j)
			}
		}
	}

	// Collect components in order of their earliest member, then assign
	// columns by the sorted-by-start sequence within each.
	groups := make(map[int][]int)
	for i := range sorted {
		root := find(i)
		groups[root] = append(groups[root], i)
	}

	placements := make([]Placement, len(sorted))
	for _, members := range groups {
		for col, idx := range members {
			placements[idx] = Placement{
				Interval:     sorted[idx],
				Column:       col,
				TotalColumns: len(members),
			}
		}
	}
	return placements
}

// conflicts reports whether two intervals overlap in time or sit within the
// proximity threshold of each other. A zero-duration interval still
// participates as an instant.
func conflicts(a, b Interval) bool {
	if a.Start.Before(b.End) && b.Start.Before(a.End) {
		return true
	}
	return gap(a, b) <= ProximityThreshold
}

// gap is the distance from the end of the earlier interval to the start of
// the later one. Touching or overlapping intervals have zero gap.
func gap(a, b Interval) time.Duration {
	if a.Start.After(b.Start) {
		a, b = b, a
	}
	d := b.Start.Sub(a.End)
	if d < 0 {
		return 0
	}
	return d
}

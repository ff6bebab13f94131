package spacetime

import (
	"cmp"
	"fmt"

	"golang.org/x/exp/slices"
)

// index keeps every clip twice, ordered by start and by end, with a cursor
// into each list:
//
//	startIndex = number of clips with start <= playhead
//	endIndex   = number of clips with end   <= playhead
//
// As the playhead moves the scheduler walks the cursors instead of scanning.
// Inserting or removing a clip shifts a cursor by index arithmetic only, so a
// walk interrupted by a reentrant change resumes at the right place.
type index struct {
	byStart []*Clip
	byEnd   []*Clip

	startIndex int
	endIndex   int
}

func compareByStart(a, b *Clip) int {
	return cmp.Or(
		cmp.Compare(a.keyStart, b.keyStart),
		cmp.Compare(a.keyEnd, b.keyEnd),
		cmp.Compare(a.id, b.id),
	)
}

func compareByEnd(a, b *Clip) int {
	return cmp.Or(
		cmp.Compare(a.keyEnd, b.keyEnd),
		cmp.Compare(a.keyStart, b.keyStart),
		cmp.Compare(a.id, b.id),
	)
}

func (x *index) Len() int {
	return len(x.byStart)
}

// insert adds c under its current times. t is the playhead position.
func (x *index) insert(c *Clip, t float64) {
	if c.indexed {
		x.remove(c)
	}
	c.keyStart, c.keyEnd = c.start, c.end
	c.indexed = true

	i, _ := slices.BinarySearchFunc(x.byStart, c, compareByStart)
	x.byStart = slices.Insert(x.byStart, i, c)
	if i < x.startIndex || (i == x.startIndex && c.keyStart <= t) {
		x.startIndex++
	}

	i, _ = slices.BinarySearchFunc(x.byEnd, c, compareByEnd)
	x.byEnd = slices.Insert(x.byEnd, i, c)
	if i < x.endIndex || (i == x.endIndex && c.keyEnd <= t) {
		x.endIndex++
	}
}

// remove takes c out of both lists, locating it by the keys it was indexed under.
func (x *index) remove(c *Clip) bool {
	if !c.indexed {
		return false
	}
	c.indexed = false

	if i, ok := locate(x.byStart, c, compareByStart); ok {
		x.byStart = slices.Delete(x.byStart, i, i+1)
		if i < x.startIndex {
			x.startIndex--
		}
	}
	if i, ok := locate(x.byEnd, c, compareByEnd); ok {
		x.byEnd = slices.Delete(x.byEnd, i, i+1)
		if i < x.endIndex {
			x.endIndex--
		}
	}
	return true
}

func locate(list []*Clip, c *Clip, compare func(a, b *Clip) int) (int, bool) {
	if i, ok := slices.BinarySearchFunc(list, c, compare); ok && list[i] == c {
		return i, true
	}
	i := slices.Index(list, c)
	return i, i >= 0
}

// check verifies ordering, membership and cursor bounds.
func (x *index) check(clips map[string]*Clip) error {
	if len(x.byStart) != len(clips) || len(x.byEnd) != len(clips) {
		return fmt.Errorf("index holds %d/%d clips, composition has %d", len(x.byStart), len(x.byEnd), len(clips))
	}

	for name, list := range map[string][]*Clip{"start": x.byStart, "end": x.byEnd} {
		compare := compareByStart
		if name == "end" {
			compare = compareByEnd
		}

		seen := make(map[*Clip]bool, len(list))
		for i, c := range list {
			if seen[c] {
				return fmt.Errorf("by %s: clip %s indexed twice", name, c.id)
			}
			seen[c] = true
			if clips[c.id] != c {
				return fmt.Errorf("by %s: clip %s is not in the composition", name, c.id)
			}
			if c.keyStart != c.start || c.keyEnd != c.end {
				return fmt.Errorf("by %s: clip %s indexed under stale times", name, c.id)
			}
			if i > 0 && compare(list[i-1], c) >= 0 {
				return fmt.Errorf("by %s: clips %s and %s out of order", name, list[i-1].id, c.id)
			}
		}
	}

	if x.startIndex < 0 || x.startIndex > len(x.byStart) {
		return fmt.Errorf("start cursor %d out of range", x.startIndex)
	}
	if x.endIndex < 0 || x.endIndex > len(x.byEnd) {
		return fmt.Errorf("end cursor %d out of range", x.endIndex)
	}
	return nil
}

// checkCursors verifies that both cursors match playhead t.
func (x *index) checkCursors(t float64) error {
	starts, _ := slices.BinarySearchFunc(x.byStart, t, func(c *Clip, t float64) int {
		if c.keyStart <= t {
			return -1
		}
		return 1
	})
	ends, _ := slices.BinarySearchFunc(x.byEnd, t, func(c *Clip, t float64) int {
		if c.keyEnd <= t {
			return -1
		}
		return 1
	})
	if starts != x.startIndex || ends != x.endIndex {
		return fmt.Errorf("cursors at %d/%d, want %d/%d for t=%g", x.startIndex, x.endIndex, starts, ends, t)
	}
	return nil
}

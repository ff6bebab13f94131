// Package ranges implements a sorted set of half-open time intervals, the structure behind
// every "buffered" report in a composition.
package ranges

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Interval is a half-open time range [Start, End) in seconds.
type Interval struct {
	Start float64
	End   float64
}

// Reader is the read-only view of a set of intervals.
type Reader interface {
	Len() int
	Start(i int) float64
	End(i int) float64
}

// Set is an ordered collection of disjoint intervals.
// Neighbours never touch: End(i) < Start(i+1) always holds.
type Set struct {
	ranges []Interval
}

// New returns an empty set.
func New() *Set {
	return &Set{}
}

// Len returns the number of intervals in the set.
func (s *Set) Len() int {
	return len(s.ranges)
}

// Start returns the start of the i-th interval, or 0 when i is out of range.
func (s *Set) Start(i int) float64 {
	if i < 0 || i >= len(s.ranges) {
		return 0
	}
	return s.ranges[i].Start
}

// End returns the end of the i-th interval, or 0 when i is out of range.
func (s *Set) End(i int) float64 {
	if i < 0 || i >= len(s.ranges) {
		return 0
	}
	return s.ranges[i].End
}

// Intervals returns a copy of the intervals in order.
func (s *Set) Intervals() []Interval {
	out := make([]Interval, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// Add inserts [start, end), merging every interval it overlaps or touches.
func (s *Set) Add(start, end float64) {
	if !valid(start, end) {
		return
	}

	// lo is the first interval that could merge (its end reaches start),
	// hi is one past the last interval whose start is within reach of end.
	lo := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].End >= start
	})
	hi := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].Start > end
	})

	if lo == hi {
		s.ranges = append(s.ranges, Interval{})
		copy(s.ranges[lo+1:], s.ranges[lo:])
		s.ranges[lo] = Interval{Start: start, End: end}
		return
	}

	merged := Interval{
		Start: math.Min(start, s.ranges[lo].Start),
		End:   math.Max(end, s.ranges[hi-1].End),
	}
	s.ranges[lo] = merged
	s.ranges = append(s.ranges[:lo+1], s.ranges[hi:]...)
}

// Subtract removes [start, end) from the set, splitting an interval that strictly contains it.
func (s *Set) Subtract(start, end float64) {
	if !valid(start, end) {
		return
	}

	lo := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].End > start
	})
	hi := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].Start >= end
	})
	if lo >= hi {
		return
	}

	var keep []Interval
	if head := s.ranges[lo]; head.Start < start {
		keep = append(keep, Interval{Start: head.Start, End: start})
	}
	if tail := s.ranges[hi-1]; tail.End > end {
		keep = append(keep, Interval{Start: end, End: tail.End})
	}

	rest := append(keep, s.ranges[hi:]...)
	s.ranges = append(s.ranges[:lo], rest...)
}

// Reset replaces the content with the single interval [0, amount).
// A zero, negative or NaN amount empties the set.
func (s *Set) Reset(amount float64) {
	s.ranges = s.ranges[:0]
	if amount > 0 {
		s.ranges = append(s.ranges, Interval{Start: 0, End: amount})
	}
}

// Copy replaces the content of s with the intervals of r.
func (s *Set) Copy(r Reader) {
	s.ranges = s.ranges[:0]
	if r == nil {
		return
	}
	for i := 0; i < r.Len(); i++ {
		s.Add(r.Start(i), r.End(i))
	}
}

// Contains reports whether t falls inside one of the intervals.
func (s *Set) Contains(t float64) bool {
	i := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].End > t
	})
	return i < len(s.ranges) && s.ranges[i].Start <= t
}

// Equal reports whether both sets hold the same intervals. A nil set equals
// nothing.
func (s *Set) Equal(other *Set) bool {
	if other == nil || len(s.ranges) != len(other.ranges) {
		return false
	}
	for i, r := range s.ranges {
		if other.ranges[i] != r {
			return false
		}
	}
	return true
}

func (s *Set) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, r := range s.ranges {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%g-%g", r.Start, r.End)
	}
	b.WriteByte(']')
	return b.String()
}

func valid(start, end float64) bool {
	return !math.IsNaN(start) && !math.IsNaN(end) && start < end
}

type full struct{}

func (full) Len() int          { return 1 }
func (full) Start(int) float64 { return 0 }
func (full) End(int) float64   { return math.Inf(1) }

// Full reports everything from zero onwards as present.
var Full Reader = full{}

package ranges

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	Convey("Given an empty set", t, func() {
		s := New()

		Convey("It should report no intervals", func() {
			So(s.Len(), ShouldEqual, 0)
			So(s.Start(0), ShouldEqual, 0.0)
			So(s.End(0), ShouldEqual, 0.0)
		})

		Convey("Degenerate input should be ignored", func() {
			s.Add(4, 2)
			s.Add(3, 3)
			s.Add(math.NaN(), 3)
			So(s.Len(), ShouldEqual, 0)
		})

		Convey("When adding and merging", func() {
			s.Add(2, 4)
			s.Add(6, 8)
			So(s.Intervals(), ShouldResemble, []Interval{{2, 4}, {6, 8}})

			s.Add(1.5, 4)
			So(s.Intervals(), ShouldResemble, []Interval{{1.5, 4}, {6, 8}})

			s.Add(1, 1.5)
			So(s.Intervals(), ShouldResemble, []Interval{{1, 4}, {6, 8}})

			s.Add(0, 3)
			So(s.Intervals(), ShouldResemble, []Interval{{0, 4}, {6, 8}})

			s.Add(1, 3)
			So(s.Intervals(), ShouldResemble, []Interval{{0, 4}, {6, 8}})

			s.Add(4, 6)
			So(s.Intervals(), ShouldResemble, []Interval{{0, 8}})

			s.Add(10, 12)
			s.Add(8, 11)
			So(s.Intervals(), ShouldResemble, []Interval{{0, 12}})

			s.Add(13, 15)
			s.Add(8, 13)
			So(s.Intervals(), ShouldResemble, []Interval{{0, 15}})
		})

		Convey("An add spanning several intervals should coalesce them in one pass", func() {
			s.Add(1, 2)
			s.Add(3, 4)
			s.Add(5, 6)
			s.Add(7, 8)
			s.Add(1.5, 7)
			So(s.Intervals(), ShouldResemble, []Interval{{1, 8}})
		})

		Convey("When resetting", func() {
			s.Add(20, 30)
			s.Reset(10)
			So(s.Intervals(), ShouldResemble, []Interval{{0, 10}})

			s.Reset(0)
			So(s.Len(), ShouldEqual, 0)

			s.Reset(math.NaN())
			So(s.Len(), ShouldEqual, 0)
		})

		Convey("When subtracting", func() {
			s.Add(1, 10)

			s.Subtract(10, 12)
			So(s.Intervals(), ShouldResemble, []Interval{{1, 10}})

			s.Subtract(8, 10)
			So(s.Intervals(), ShouldResemble, []Interval{{1, 8}})

			s.Subtract(0, 2)
			So(s.Intervals(), ShouldResemble, []Interval{{2, 8}})

			s.Subtract(4, 6)
			So(s.Intervals(), ShouldResemble, []Interval{{2, 4}, {6, 8}})

			s.Subtract(0, 20)
			So(s.Len(), ShouldEqual, 0)
		})

		Convey("Copy should deep-copy another reader", func() {
			src := New()
			src.Add(1, 2)
			src.Add(5, 9)
			s.Copy(src)
			So(s.Equal(src), ShouldBeTrue)

			src.Add(2, 5)
			So(s.Len(), ShouldEqual, 2)
		})

		Convey("Equal should reject a nil set", func() {
			So(s.Equal(nil), ShouldBeFalse)
			s.Add(1, 2)
			So(s.Equal(nil), ShouldBeFalse)
		})

		Convey("Full should cover everything from zero", func() {
			s.Copy(Full)
			So(s.Contains(0), ShouldBeTrue)
			So(s.Contains(1e9), ShouldBeTrue)
			So(s.Contains(-1), ShouldBeFalse)
		})
	})
}

// model is a reference implementation over unit cells [i, i+1).
type model [48]bool

func (m *model) set(start, end int, v bool) {
	for i := start; i < end; i++ {
		m[i] = v
	}
}

func (m *model) intervals() []Interval {
	out := []Interval{}
	for i := 0; i < len(m); i++ {
		if !m[i] {
			continue
		}
		j := i
		for j < len(m) && m[j] {
			j++
		}
		out = append(out, Interval{float64(i), float64(j)})
		i = j
	}
	return out
}

func (m *model) overlaps(start, end int) bool {
	for i := start; i < end; i++ {
		if m[i] {
			return true
		}
	}
	return false
}

func checkInvariants(t *testing.T, s *Set) {
	t.Helper()
	for i, r := range s.ranges {
		require.Less(t, r.Start, r.End, "interval %d is empty", i)
		if i > 0 {
			require.Less(t, s.ranges[i-1].End, r.Start, "intervals %d and %d touch or overlap", i-1, i)
		}
	}
}

func TestSetProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for round := 0; round < 200; round++ {
		var m model
		s := New()

		for step := 0; step < 60; step++ {
			a := rng.Intn(len(m))
			b := a + 1 + rng.Intn(len(m)-a)

			switch rng.Intn(3) {
			case 0:
				s.Add(float64(a), float64(b))
				m.set(a, b, true)
			case 1:
				s.Subtract(float64(a), float64(b))
				m.set(a, b, false)
			default:
				if m.overlaps(a, b) {
					continue
				}
				before := s.Intervals()
				s.Add(float64(a), float64(b))
				s.Subtract(float64(a), float64(b))
				if diff := cmp.Diff(before, s.Intervals()); diff != "" {
					t.Fatalf("add then subtract of [%d,%d) did not restore the set (-want +got):\n%s", a, b, diff)
				}
			}

			checkInvariants(t, s)
			if diff := cmp.Diff(m.intervals(), s.Intervals()); diff != "" {
				t.Fatalf("round %d step %d diverged from model (-want +got):\n%s", round, step, diff)
			}
		}
	}
}

func TestSubtractDisjointIsNoop(t *testing.T) {
	for _, tc := range []struct {
		name       string
		start, end float64
	}{
		{"before", 0, 1},
		{"touching start", 0, 2},
		{"gap", 4, 6},
		{"touching end", 9, 12},
		{"after", 20, 30},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := New()
			s.Add(2, 4)
			s.Add(6, 9)
			before := s.Intervals()

			s.Subtract(tc.start, tc.end)
			assert.Equal(t, before, s.Intervals())
		})
	}
}

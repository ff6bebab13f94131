package timecode

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	tc "github.com/cbsinteractive/pkg/timecode"

	"github.com/anisan-cli/spacetime/ranges"
)

// ErrInvalidCut is returned for cut lists that are malformed or contain
// negative times.
var ErrInvalidCut = errors.New("invalid cut list")

// Window renders a [start, end) pair as a human readable range, e.g. "(1s-2.5s)".
// An unresolved end is rendered as "∞".
func Window(start, end float64) string {
	if math.IsInf(end, 1) {
		return fmt.Sprintf("(%s-∞)", time.Duration(start*float64(time.Second)))
	}
	return tc.Range{start, end}.Canon().String()
}

// Cuts parses a JSON list of [start, end] pairs such as "[[3,7],[9,10]]".
// Pairs are put in order, reversed pairs are swapped and zero-length pairs are dropped.
func Cuts(text string) ([]ranges.Interval, error) {
	var splice tc.Splice
	if err := splice.UnmarshalText([]byte(text)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCut, err)
	}

	for i := range splice {
		splice[i] = splice[i].Canon()
		if splice[i][0] < 0 {
			return nil, fmt.Errorf("%w: negative time in %s", ErrInvalidCut, splice[i])
		}
	}
	if !splice.Sorted() {
		sort.Sort(splice)
	}

	out := make([]ranges.Interval, 0, len(splice))
	for _, r := range splice {
		if r.Size() == 0 {
			continue
		}
		out = append(out, ranges.Interval{Start: r[0], End: r[1]})
	}
	return out, nil
}

// Span returns the smallest interval holding every cut.
func Span(cuts []ranges.Interval) ranges.Interval {
	splice := make(tc.Splice, len(cuts))
	for i, c := range cuts {
		splice[i] = tc.Range{c.Start, c.End}
	}
	u := splice.Union()
	return ranges.Interval{Start: u[0], End: u[1]}
}

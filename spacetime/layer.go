package spacetime

import (
	"cmp"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Layer is a lane of clips ordered by start. Clips on a layer never overlap.
type Layer struct {
	id    string
	comp  *Composition
	clips []*Clip
}

func newLayer(comp *Composition, id string) *Layer {
	return &Layer{id: id, comp: comp}
}

func (l *Layer) ID() string {
	return l.id
}

// Clips returns the clips on the layer in start order.
func (l *Layer) Clips() []*Clip {
	return slices.Clone(l.clips)
}

func (l *Layer) Len() int {
	return len(l.clips)
}

// Index returns the position of the layer in the composition, -1 once removed.
func (l *Layer) Index() int {
	if l.comp == nil {
		return -1
	}
	return slices.Index(l.comp.layers, l)
}

// overlapping returns the clips intersecting [start, end).
func (l *Layer) overlapping(start, end float64) []*Clip {
	return lo.Filter(l.clips, func(c *Clip, _ int) bool {
		return c.start < end && c.end > start
	})
}

// fits reports whether [start, end) can be placed without splicing anything.
func (l *Layer) fits(start, end float64) bool {
	return len(l.overlapping(start, end)) == 0
}

// add splices every clip overlapping c out of the way, then inserts c.
func (l *Layer) add(c *Clip) error {
	for _, incumbent := range l.overlapping(c.start, c.end) {
		if incumbent.removed {
			continue
		}
		if err := incumbent.Splice(c.start, c.end); err != nil {
			return err
		}
	}
	l.insert(c)
	return nil
}

func (l *Layer) insert(c *Clip) {
	c.layer = l
	c.layerHandle = c.On(ClipTimeChange, func(*Clip) { l.sort() })
	l.clips = append(l.clips, c)
	l.sort()
}

func (l *Layer) remove(c *Clip) bool {
	i := slices.Index(l.clips, c)
	if i < 0 {
		return false
	}
	c.Off(c.layerHandle)
	c.layer = nil
	l.clips = slices.Delete(l.clips, i, i+1)
	return true
}

func (l *Layer) sort() {
	slices.SortStableFunc(l.clips, func(a, b *Clip) int {
		return cmp.Or(
			cmp.Compare(a.start, b.start),
			cmp.Compare(a.end, b.end),
			cmp.Compare(a.id, b.id),
		)
	})
}

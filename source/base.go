package source

import (
	"math"

	"github.com/anisan-cli/spacetime/ranges"
)

// Base implements Adapter with the defaults used for sources that have no
// native media behind them. It recalls the last position it was given and
// reports itself as fully ready and fully buffered.
//
// Base reports play, playing, pause, seeking and seeked itself, so embedding
// types only need to override what they actually support.
type Base struct {
	sink   Sink
	time   float64
	paused bool
}

// NewBase creates a paused Base reporting to sink.
func NewBase(sink Sink) *Base {
	return &Base{sink: sink, paused: true}
}

// Notify forwards kind to the sink, if any.
func (b *Base) Notify(kind Kind) {
	if b.sink != nil {
		b.sink.Notify(kind)
	}
}

// Sink returns the sink the source reports to.
func (b *Base) Sink() Sink {
	return b.sink
}

func (b *Base) Play() {
	if b.paused {
		b.paused = false
		b.Notify(Play)
	}
	b.Notify(Playing)
}

func (b *Base) Pause() {
	if b.paused {
		return
	}
	b.paused = true
	b.Notify(Pause)
}

// Paused reports whether the source is paused.
func (b *Base) Paused() bool {
	return b.paused
}

func (b *Base) CurrentTime() float64 {
	return b.time
}

func (b *Base) SetCurrentTime(t float64) {
	if math.IsNaN(t) || t == b.time {
		return
	}
	b.time = t
	b.Notify(Seeking)
	b.Notify(Seeked)
}

func (b *Base) Duration() float64 {
	return math.Inf(1)
}

func (b *Base) ReadyState() ReadyState {
	return HaveEnoughData
}

func (b *Base) Seeking() bool {
	return false
}

func (b *Base) Buffered() ranges.Reader {
	return ranges.Full
}

func (b *Base) Load(start, end float64) {}

func (b *Base) Activate() {}

func (b *Base) Deactivate() {}

func (b *Base) Destroy() {}

package spacetime

import (
	"time"

	"github.com/samber/mo"

	"github.com/anisan-cli/spacetime/clock"
	"github.com/anisan-cli/spacetime/metrics"
)

const (
	// MinClipLength is the shortest a clip can be, in seconds.
	MinClipLength = 1.0 / 60

	// DefaultLoadAhead is how far ahead of the playhead clips are cued, in seconds at rate 1.
	DefaultLoadAhead = 10.0

	DefaultUpdateThrottle = 16 * time.Millisecond
	DefaultFrameInterval  = 16 * time.Millisecond

	// maxCued bounds the clips cued by a single scheduler update.
	maxCued = 10
)

// Options configure a composition. The zero value is usable.
type Options struct {
	// Clock drives the composition. Defaults to a clock.Loop, which the
	// host must Run.
	Clock clock.Clock

	// Registry supplies source plugins and compositors. Defaults to NewRegistry().
	Registry *Registry

	// Compositors names the registered compositors to instantiate.
	Compositors []string

	// LoadAhead is the cueing horizon in seconds at rate 1.
	LoadAhead float64

	// UpdateThrottle is the minimum wall time between updates triggered by Draw.
	UpdateThrottle time.Duration

	// FrameInterval is the Draw period when AutoDraw is set.
	FrameInterval time.Duration

	// AutoDraw calls Draw every FrameInterval.
	AutoDraw bool

	// Metrics records scheduler activity. Nil disables metrics.
	Metrics *metrics.Metrics
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = clock.NewLoop()
	}
	if o.Registry == nil {
		o.Registry = NewRegistry()
	}
	if o.LoadAhead <= 0 {
		o.LoadAhead = DefaultLoadAhead
	}
	if o.UpdateThrottle <= 0 {
		o.UpdateThrottle = DefaultUpdateThrottle
	}
	if o.FrameInterval <= 0 {
		o.FrameInterval = DefaultFrameInterval
	}
	return o
}

// ClipOptions describe a clip to add. Times are in seconds.
type ClipOptions struct {
	// ID must be unique within the composition. Generated when empty.
	ID string

	// Start is where the clip begins on the timeline.
	Start float64

	// End is where the clip stops. Unset means unresolved until the
	// source reports its duration.
	End mo.Option[float64]

	// From is where playback starts inside the source.
	From float64

	// To is where playback stops inside the source.
	To mo.Option[float64]

	// Layer places the clip on the layer with this id, creating it if needed.
	Layer string

	// LayerIndex places the clip on an existing layer by position.
	LayerIndex mo.Option[int]

	// Params are handed to the source plugin.
	Params map[string]any
}

package spacetime

import (
	"fmt"
	"math"
	"reflect"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/samber/mo"

	"github.com/anisan-cli/spacetime/event"
	"github.com/anisan-cli/spacetime/log"
	"github.com/anisan-cli/spacetime/ranges"
	"github.com/anisan-cli/spacetime/source"
	"github.com/anisan-cli/spacetime/timecode"
	"github.com/anisan-cli/spacetime/util"
)

// Clip is a time-bounded reference to one source on the timeline.
//
// A clip occupies [Start, End) in composition time. From and To select the
// part of the source that is played: composition time t maps to source time
// t - Start + From.
type Clip struct {
	id     string
	kind   string
	params map[string]any
	comp   *Composition
	src    source.Adapter
	events event.Emitter[ClipEvent, *Clip]

	start, end       float64
	from, to         float64
	minTime, maxTime float64

	enabled bool
	active  bool
	playing bool
	stalled bool
	failed  bool

	initialized bool
	removed     bool

	metadata map[string]any
	duration float64
	buffered *ranges.Set
	layer    *Layer

	// sort keys the clip is currently indexed under
	keyStart, keyEnd float64
	indexed          bool
	layerHandle      event.Handle
}

type clipSink struct {
	c *Clip
}

func (s clipSink) Notify(kind source.Kind) {
	s.c.handle(kind)
}

func (s clipSink) Metadata(values map[string]any) {
	s.c.LoadMetadata(values)
}

func validTimes(opts ClipOptions) error {
	if math.IsNaN(opts.Start) {
		return fmt.Errorf("%w: start %v", ErrInvalidTime, opts.Start)
	}
	if end, ok := opts.End.Get(); ok && math.IsNaN(end) {
		return fmt.Errorf("%w: end %v", ErrInvalidTime, end)
	}
	if math.IsNaN(opts.From) {
		return fmt.Errorf("%w: from %v", ErrInvalidTime, opts.From)
	}
	if to, ok := opts.To.Get(); ok && math.IsNaN(to) {
		return fmt.Errorf("%w: to %v", ErrInvalidTime, to)
	}
	return nil
}

func newClip(comp *Composition, kind string, factory source.Factory, opts ClipOptions) (*Clip, error) {
	if err := validTimes(opts); err != nil {
		return nil, err
	}

	inf := math.Inf(1)
	c := &Clip{
		id:       opts.ID,
		kind:     kind,
		params:   lo.Assign(opts.Params),
		comp:     comp,
		enabled:  true,
		end:      inf,
		to:       inf,
		maxTime:  inf,
		duration: inf,
		metadata: map[string]any{"duration": inf},
		buffered: ranges.New(),
	}

	c.setStart(opts.Start)
	if end, ok := opts.End.Get(); ok {
		c.setEnd(end)
	}
	c.setFrom(opts.From)
	if to, ok := opts.To.Get(); ok {
		c.setTo(to)
	}

	src, err := factory(source.Options{ID: c.id, Type: kind, Params: c.params}, clipSink{c})
	if err != nil {
		return nil, fmt.Errorf("create %q source: %w", kind, err)
	}
	c.src = src
	c.updateBuffered()
	c.initialized = true

	return c, nil
}

// clone copies c with a new id and a fresh source. The copy is not attached.
func (c *Clip) clone() (*Clip, error) {
	factory, ok := c.comp.plugins[c.kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlugin, c.kind)
	}

	opts := ClipOptions{
		ID:     uuid.NewString(),
		Start:  c.start,
		From:   c.from,
		Params: c.params,
	}
	if !math.IsInf(c.end, 1) {
		opts.End = mo.Some(c.end)
	}
	if !math.IsInf(c.to, 1) {
		opts.To = mo.Some(c.to)
	}

	n, err := newClip(c.comp, c.kind, factory, opts)
	if err != nil {
		return nil, err
	}
	n.LoadMetadata(c.Metadata())
	return n, nil
}

func (c *Clip) ID() string {
	return c.id
}

// Type returns the name of the source plugin.
func (c *Clip) Type() string {
	return c.kind
}

// Params returns a copy of the parameters handed to the source.
func (c *Clip) Params() map[string]any {
	return lo.Assign(c.params)
}

// Source returns the clip's source adapter.
func (c *Clip) Source() source.Adapter {
	return c.src
}

// Layer returns the layer holding the clip, nil once removed.
func (c *Clip) Layer() *Layer {
	return c.layer
}

func (c *Clip) Start() float64 {
	return c.start
}

// End returns the end of the clip, +Inf while unresolved.
func (c *Clip) End() float64 {
	return c.end
}

func (c *Clip) From() float64 {
	return c.from
}

// To returns where playback stops inside the source. Without an explicit
// value it follows the source duration and the length of the clip.
func (c *Clip) To() float64 {
	if !math.IsInf(c.to, 1) {
		return c.to
	}
	return math.Min(c.duration, c.end-c.start) + c.from
}

func (c *Clip) Enabled() bool {
	return c.enabled
}

// Active reports whether the clip is enabled and under the playhead.
func (c *Clip) Active() bool {
	return c.active
}

// Playing reports whether the source last said it was playing.
func (c *Clip) Playing() bool {
	return c.playing
}

// Removed reports whether the clip has left its composition.
func (c *Clip) Removed() bool {
	return c.removed
}

// Metadata returns a copy of the attributes reported by the source.
func (c *Clip) Metadata() map[string]any {
	return lo.Assign(c.metadata)
}

// Buffered returns the playable ranges in clip-local time, where 0 is Start.
func (c *Clip) Buffered() ranges.Reader {
	return c.buffered
}

// ReadyState returns the source readiness. A failed source never reports
// more than HaveMetadata.
func (c *Clip) ReadyState() source.ReadyState {
	if c.src == nil {
		return source.HaveNothing
	}
	state := c.src.ReadyState()
	if c.failed {
		state = min(state, source.HaveMetadata)
	}
	return state
}

func (c *Clip) Seeking() bool {
	return c.src != nil && c.src.Seeking()
}

// IsCurrent reports whether the playhead is inside [Start, End).
func (c *Clip) IsCurrent() bool {
	if c.comp == nil || c.removed {
		return false
	}
	t := c.comp.currentTime
	return c.start <= t && c.end > t
}

func (c *Clip) On(ev ClipEvent, fn func(*Clip)) event.Handle {
	return c.events.On(ev, fn)
}

func (c *Clip) Once(ev ClipEvent, fn func(*Clip)) event.Handle {
	return c.events.Once(ev, fn)
}

func (c *Clip) Off(h event.Handle) bool {
	return c.events.Off(h)
}

func (c *Clip) emit(ev ClipEvent) {
	c.events.Emit(ev, c)
}

func (c *Clip) changed() {
	if c.initialized && !c.removed {
		c.emit(ClipTimeChange)
	}
}

// SetStart moves the start of the clip. The end is pushed back if the clip
// would become shorter than MinClipLength.
func (c *Clip) SetStart(v float64) error {
	if c.removed {
		return ErrDetached
	}
	if math.IsNaN(v) {
		return fmt.Errorf("%w: start %v", ErrInvalidTime, v)
	}
	c.setStart(v)
	return nil
}

func (c *Clip) setStart(v float64) {
	oldStart, oldEnd := c.start, c.end

	c.start = math.Max(0, v)
	c.end = math.Max(c.start+MinClipLength, c.end)
	c.maxTime = math.Max(c.maxTime, c.end)
	c.minTime = math.Max(0, math.Min(c.minTime, c.start))

	if c.start != oldStart || c.end != oldEnd {
		c.changed()
	}
}

// SetEnd moves the end of the clip. The start is pulled forward if the clip
// would become shorter than MinClipLength.
func (c *Clip) SetEnd(v float64) error {
	if c.removed {
		return ErrDetached
	}
	if math.IsNaN(v) {
		return fmt.Errorf("%w: end %v", ErrInvalidTime, v)
	}
	c.setEnd(v)
	return nil
}

func (c *Clip) setEnd(v float64) {
	oldStart, oldEnd := c.start, c.end

	c.end = math.Max(v, MinClipLength)
	c.maxTime = math.Max(c.maxTime, c.end)
	c.start = math.Max(0, math.Min(c.start, c.end-MinClipLength))
	c.minTime = math.Max(0, math.Min(c.minTime, c.start))

	if c.start != oldStart || c.end != oldEnd {
		c.changed()
	}
}

// SetFrom sets where playback starts inside the source, clamped to the
// source duration once known.
func (c *Clip) SetFrom(v float64) error {
	if c.removed {
		return ErrDetached
	}
	if math.IsNaN(v) {
		return fmt.Errorf("%w: from %v", ErrInvalidTime, v)
	}
	c.setFrom(v)
	return nil
}

func (c *Clip) setFrom(v float64) {
	c.from = util.Clamp(v, 0, c.duration)
	c.to = math.Max(c.to, c.from)
}

// SetTo sets where playback stops inside the source. +Inf restores the default.
func (c *Clip) SetTo(v float64) error {
	if c.removed {
		return ErrDetached
	}
	if math.IsNaN(v) {
		return fmt.Errorf("%w: to %v", ErrInvalidTime, v)
	}
	c.setTo(v)
	return nil
}

func (c *Clip) setTo(v float64) {
	c.to = math.Max(c.from, v)
}

// Trim narrows the clip to [min, max). A NaN min means 0 and a NaN max
// means +Inf. From moves along with Start so the same source material stays
// under the same timeline position.
func (c *Clip) Trim(min, max float64) error {
	if c.removed {
		return ErrDetached
	}
	if math.IsNaN(min) {
		min = 0
	}
	if math.IsNaN(max) {
		max = math.Inf(1)
	}
	if max <= min {
		return fmt.Errorf("%w: trim [%v, %v)", ErrInvalidRange, min, max)
	}
	c.trim(min, max)
	return nil
}

func (c *Clip) trim(min, max float64) {
	oldStart, oldEnd := c.start, c.end

	c.minTime = math.Max(min, c.minTime)
	c.maxTime = math.Min(max, c.maxTime)

	c.start = math.Max(c.start, c.minTime)
	c.end = math.Max(c.start+MinClipLength, math.Min(c.end, c.maxTime))
	c.from += c.start - oldStart

	if c.start != oldStart || c.end != oldEnd {
		c.changed()
	}
}

// Splice cuts [min, max) out of the clip.
//
// A clip inside the range is removed from its composition. A range strictly
// inside the clip splits it: the clip keeps the part before min and a new
// clip on the same layer takes the part after max. A range over one edge
// trims that edge. Pieces shorter than MinClipLength are dropped.
func (c *Clip) Splice(min, max float64) error {
	if c.removed || c.comp == nil {
		return ErrDetached
	}
	if math.IsNaN(min) {
		return fmt.Errorf("%w: splice min %v", ErrInvalidTime, min)
	}
	if math.IsNaN(max) || max < min {
		max = min
	}
	if max <= min || c.end <= min || c.start >= max {
		return nil
	}

	head := min - c.start
	tail := 0.0
	if c.end > max {
		tail = c.end - max
	}
	comp := c.comp

	switch {
	case head < MinClipLength && tail < MinClipLength:
		log.Debugf("clip %s: spliced out by [%g, %g)", c.id, min, max)
		comp.metrics.Spliced("removed")
		comp.remove(c)
	case head >= MinClipLength && tail >= MinClipLength:
		rest, err := c.clone()
		if err != nil {
			return err
		}
		rest.trim(max, math.Inf(1))
		c.trim(0, min)
		comp.metrics.Spliced("split")
		log.Debugf("clip %s: split at [%g, %g) into %s", c.id, min, max, rest.id)
		comp.attach(rest, c.layer)
	case head >= MinClipLength:
		comp.metrics.Spliced("trimmed")
		c.trim(0, min)
	default:
		comp.metrics.Spliced("trimmed")
		c.trim(max, math.Inf(1))
	}
	return nil
}

// LoadMetadata merges source attributes into the clip. A changed "duration"
// resolves End, bounded by the trim window and Start + duration.
func (c *Clip) LoadMetadata(values map[string]any) {
	if len(values) == 0 || c.removed {
		return
	}

	changed := false
	durationChanged := false

	if raw, ok := values["duration"]; ok {
		d := timecode.Value(raw, 0)
		if !math.IsNaN(d) {
			if d <= 0 {
				d = math.Inf(1)
			}
			if d != c.duration {
				c.duration = d
				c.metadata["duration"] = d
				durationChanged = true
				changed = true
			}
		}
	}

	for k, v := range values {
		if k == "duration" {
			continue
		}
		if old, ok := c.metadata[k]; !ok || !reflect.DeepEqual(old, v) {
			c.metadata[k] = v
			changed = true
		}
	}

	if !changed {
		return
	}

	if durationChanged {
		end := math.Min(c.end, math.Min(c.maxTime, c.start+c.duration))
		end = math.Max(end, c.start+MinClipLength)
		if end != c.end {
			c.end = end
			c.changed()
		}
	}

	c.updateBuffered()
	c.emit(ClipLoadedMetadata)
}

// Seek positions the source for composition time t. The source is only
// touched when it has drifted by more than |epsilon|. Outside [From, To) the
// source is parked at the nearest edge and paused.
func (c *Clip) Seek(t, epsilon float64) {
	if c.src == nil || math.IsNaN(t) {
		return
	}

	current := c.src.CurrentTime()
	desired := t - c.start + c.from
	to := c.To()

	inside := true
	if desired >= to {
		desired = to
		inside = false
	} else if desired < c.from {
		desired = c.from
		inside = false
	}

	if !inside {
		c.Pause()
	}

	if math.Abs(desired-current) > math.Abs(epsilon) && desired < c.src.Duration() {
		c.src.SetCurrentTime(desired)
	}

	if inside && c.active && !c.playing && c.comp != nil && c.comp.playing {
		c.Play()
	}
}

// Load asks the source to prepare composition range [start, end).
func (c *Clip) Load(start, end float64) {
	if c.src == nil {
		return
	}
	c.src.Load(math.Max(0, c.local(start)), c.local(end))
}

func (c *Clip) local(t float64) float64 {
	return t - c.start + c.from
}

func (c *Clip) Play() {
	if c.src != nil {
		c.src.Play()
	}
}

func (c *Clip) Pause() {
	if c.src != nil {
		c.src.Pause()
	}
}

// Activate makes the clip active if it is enabled and under the playhead.
func (c *Clip) Activate() {
	if c.active || !c.enabled || !c.IsCurrent() {
		return
	}

	comp := c.comp
	t := comp.currentTime

	c.active = true
	c.src.Activate()
	comp.clipActivated(c)
	c.emit(ClipActivate)

	c.Seek(t, MinClipLength)
	c.Load(t, t+math.Max(comp.opts.LoadAhead*math.Abs(comp.rate), MinClipLength))

	if c.active && comp.playing {
		c.Play()
	}
}

// Deactivate pauses the clip and takes it off the playhead.
func (c *Clip) Deactivate() {
	if !c.active {
		return
	}

	c.active = false
	c.src.Deactivate()
	c.Pause()
	c.comp.clipDeactivated(c)
	c.emit(ClipDeactivate)
}

func (c *Clip) Enable() {
	if c.enabled {
		return
	}
	c.enabled = true
	c.Activate()
	c.emit(ClipEnabled)
}

func (c *Clip) Disable() {
	if !c.enabled {
		return
	}
	c.enabled = false
	c.Deactivate()
	c.emit(ClipDisabled)
}

// reconcile brings the activation state in line with the playhead.
func (c *Clip) reconcile() {
	if c.enabled && c.IsCurrent() {
		c.Activate()
	} else {
		c.Deactivate()
	}
}

func (c *Clip) handle(kind source.Kind) {
	switch kind {
	case source.Playing:
		c.playing = true
		c.stalled = false
	case source.Waiting, source.Stalled:
		c.playing = false
		c.stalled = true
	case source.Pause:
		c.playing = false
	case source.Progress:
		c.updateBuffered()
	case source.Error:
		c.failed = true
		c.playing = false
		c.stalled = true
		log.Warnf("clip %s: %q source failed", c.id, c.kind)
		if c.comp != nil {
			c.comp.metrics.SourceFailed(c.kind)
		}
	}

	c.emit(ClipEvent(kind))
	if kind == source.Error {
		c.emit(ClipWaiting)
	}
}

func (c *Clip) updateBuffered() {
	c.buffered.Reset(0)
	if c.src == nil || c.ReadyState() == source.HaveNothing {
		return
	}

	r := c.src.Buffered()
	if r == nil {
		return
	}
	for i := 0; i < r.Len(); i++ {
		c.buffered.Add(
			util.Clamp(r.Start(i)-c.from, 0, c.duration),
			util.Clamp(r.End(i)-c.from, 0, c.duration),
		)
	}
}

func (c *Clip) destroy() {
	c.removed = true
	c.active = false
	if c.src != nil {
		c.src.Destroy()
	}
	c.events.Clear()
}

func (c *Clip) String() string {
	return fmt.Sprintf("%s[%s %s]", c.kind, c.id, timecode.Window(c.start, c.end))
}

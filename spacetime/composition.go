// Package spacetime implements a media-composition timeline.
//
// A Composition holds clips on ordered layers and moves a single playhead
// across them. Clips are activated and deactivated as the playhead crosses
// their boundaries, buffering is aggregated into one set of ranges and the
// player state (playing, seeking, ended, ready) is derived from the clips
// under the playhead.
//
// A Composition is not safe for concurrent use. Every call, timer and
// source callback must be serialized, which clock.Loop does for real time
// and clock.Manual does for virtual time.
package spacetime

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"golang.org/x/exp/slices"

	"github.com/anisan-cli/spacetime/clock"
	"github.com/anisan-cli/spacetime/event"
	"github.com/anisan-cli/spacetime/log"
	"github.com/anisan-cli/spacetime/metrics"
	"github.com/anisan-cli/spacetime/ranges"
	"github.com/anisan-cli/spacetime/source"
)

// Composition is a timeline of clips on layers with one playhead.
type Composition struct {
	id          string
	opts        Options
	clock       clock.Clock
	metrics     *metrics.Metrics
	plugins     map[string]source.Factory
	compositors []Compositor
	events      event.Emitter[Event, Notice]

	clips      map[string]*Clip
	layers     []*Layer
	layersByID map[string]*Layer
	index      index
	active     []*Clip

	currentTime      float64
	duration         float64
	explicitDuration float64
	rate             float64
	paused           bool
	playing          bool
	seeking          bool
	ended            bool
	readyState       source.ReadyState
	buffered         *ranges.Set

	lastUpdate time.Time
	lastTime   float64
	timer      clock.Timer
	generation uint64
	stopDraw   func()

	updating      bool
	pendingUpdate bool
	checking      bool
	recheck       bool
	destroyed     bool
}

// Filter narrows FindClips.
type Filter struct {
	// From skips clips ending before it.
	From float64

	// To stops the search at clips starting after it.
	To mo.Option[float64]

	// Types keeps only clips of these plugin types. Empty keeps all.
	Types []string
}

// New creates an empty, paused composition.
func New(opts Options) (*Composition, error) {
	opts = opts.withDefaults()

	comp := &Composition{
		id:               uuid.NewString(),
		opts:             opts,
		clock:            opts.Clock,
		metrics:          opts.Metrics,
		plugins:          opts.Registry.snapshot(),
		clips:            make(map[string]*Clip),
		layersByID:       make(map[string]*Layer),
		explicitDuration: math.Inf(1),
		rate:             1,
		paused:           true,
		buffered:         ranges.New(),
		lastTime:         -1,
	}
	comp.lastUpdate = comp.clock.Now()

	for _, name := range opts.Compositors {
		factory, ok := opts.Registry.compositor(name)
		if !ok {
			return nil, fmt.Errorf("%w: compositor %q", ErrUnknownPlugin, name)
		}
		compositor, err := factory(comp)
		if err != nil {
			return nil, fmt.Errorf("create compositor %q: %w", name, err)
		}
		comp.compositors = append(comp.compositors, compositor)
	}

	if opts.AutoDraw {
		comp.stopDraw = comp.clock.Every(opts.FrameInterval, comp.Draw)
	}

	log.Debugf("composition %s: created", comp.id)
	return comp, nil
}

func (comp *Composition) ID() string {
	return comp.id
}

// Clock returns the clock driving the composition.
func (comp *Composition) Clock() clock.Clock {
	return comp.clock
}

func (comp *Composition) On(ev Event, fn func(Notice)) event.Handle {
	return comp.events.On(ev, fn)
}

func (comp *Composition) Once(ev Event, fn func(Notice)) event.Handle {
	return comp.events.Once(ev, fn)
}

func (comp *Composition) Off(h event.Handle) bool {
	return comp.events.Off(h)
}

func (comp *Composition) emit(ev Event, c *Clip) {
	comp.events.Emit(ev, Notice{Event: ev, Time: comp.currentTime, Clip: c})
}

// Plugin registers a source plugin on this composition only.
func (comp *Composition) Plugin(name string, factory source.Factory) error {
	if comp.destroyed {
		return ErrDestroyed
	}
	if factory == nil {
		return fmt.Errorf("plugin %q: nil factory", name)
	}
	if _, ok := comp.plugins[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicatePlugin, name)
	}
	comp.plugins[name] = factory
	return nil
}

// RemovePlugin unregisters a plugin and removes every clip using it.
func (comp *Composition) RemovePlugin(name string) {
	if _, ok := comp.plugins[name]; !ok {
		return
	}
	for _, c := range comp.Clips() {
		if c.kind == name {
			comp.remove(c)
		}
	}
	delete(comp.plugins, name)
}

// Add creates a clip of the given plugin type and places it on a layer.
//
// With neither Layer nor LayerIndex set, the clip goes on the top layer if
// it fits there without splicing anything, otherwise on a new top layer.
// An explicit layer splices every clip the new one overlaps.
func (comp *Composition) Add(kind string, opts ClipOptions) (string, error) {
	if comp.destroyed {
		return "", ErrDestroyed
	}

	factory, ok := comp.plugins[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlugin, kind)
	}
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	} else if _, dup := comp.clips[opts.ID]; dup {
		return "", fmt.Errorf("%w: %q", ErrDuplicateClip, opts.ID)
	}
	if err := validTimes(opts); err != nil {
		return "", err
	}

	var layer *Layer
	if i, ok := opts.LayerIndex.Get(); ok {
		if i < 0 || i >= len(comp.layers) {
			return "", fmt.Errorf("%w: index %d", ErrUnknownLayer, i)
		}
		layer = comp.layers[i]
	}

	c, err := newClip(comp, kind, factory, opts)
	if err != nil {
		return "", err
	}

	switch {
	case layer != nil:
	case opts.Layer != "":
		layer = comp.layersByID[opts.Layer]
		if layer == nil {
			layer = comp.addLayer(opts.Layer, -1)
		}
	default:
		if top, ok := lo.Last(comp.layers); ok && top.fits(c.start, c.end) {
			layer = top
		} else {
			layer = comp.addLayer(uuid.NewString(), -1)
		}
	}

	if err := comp.load(c, layer); err != nil {
		return "", err
	}
	return c.id, nil
}

func (comp *Composition) load(c *Clip, layer *Layer) error {
	comp.clips[c.id] = c
	if err := layer.add(c); err != nil {
		delete(comp.clips, c.id)
		c.destroy()
		return err
	}
	comp.track(c)
	return nil
}

// attach places a clip on a layer without splicing. Used for split remainders.
func (comp *Composition) attach(c *Clip, layer *Layer) {
	if layer == nil {
		layer = comp.addLayer(uuid.NewString(), -1)
	}
	comp.clips[c.id] = c
	layer.insert(c)
	comp.track(c)
}

func (comp *Composition) track(c *Clip) {
	c.On(ClipTimeChange, comp.reindex)
	c.On(ClipLoadedMetadata, func(*Clip) {
		comp.updateDuration()
		comp.checkPlayingState()
	})
	c.On(ClipProgress, func(c *Clip) {
		comp.updateBuffered(c.start, c.end)
		comp.checkPlayingState()
	})
	for _, ev := range []ClipEvent{ClipSeeking, ClipSeeked, ClipPlaying, ClipWaiting, ClipStalled} {
		c.On(ev, func(*Clip) { comp.checkPlayingState() })
	}

	for _, compositor := range comp.compositors {
		compositor.Add(c)
	}

	comp.metrics.SetClips(len(comp.clips))
	log.Debugf("clip %s: added on layer %s", c, c.layer.id)
	comp.emit(EventClipAdded, c)

	comp.index.insert(c, comp.currentTime)
	c.reconcile()
	comp.updateDuration()
	comp.updateFlow()
	comp.updateBuffered(c.start, c.end)
}

func (comp *Composition) reindex(c *Clip) {
	if c.removed || !c.indexed {
		return
	}
	lower, upper := math.Min(c.keyStart, c.start), math.Max(c.keyEnd, c.end)

	comp.index.insert(c, comp.currentTime)
	c.reconcile()
	comp.updateDuration()
	comp.updateFlow()
	comp.updateBuffered(lower, upper)
}

// Remove takes the clip with the given id out of the composition.
// It reports whether such a clip existed.
func (comp *Composition) Remove(id string) bool {
	c, ok := comp.clips[id]
	if !ok {
		return false
	}
	comp.remove(c)
	return true
}

func (comp *Composition) remove(c *Clip) {
	if c.removed {
		return
	}

	c.Deactivate()
	for _, compositor := range comp.compositors {
		compositor.Remove(c)
	}

	comp.index.remove(c)
	delete(comp.clips, c.id)
	if c.layer != nil {
		c.layer.remove(c)
	}

	comp.metrics.SetClips(len(comp.clips))
	log.Debugf("clip %s: removed", c)
	comp.emit(EventClipRemoved, c)

	start, end := c.start, c.end
	c.destroy()

	comp.updateDuration()
	comp.updateFlow()
	comp.updateBuffered(start, end)
}

func (comp *Composition) clipActivated(c *Clip) {
	comp.active = append(comp.active, c)
	for _, compositor := range comp.compositors {
		compositor.Activate(c)
	}
	comp.metrics.Activated()
	log.Debugf("clip %s: activated at %g", c, comp.currentTime)
}

func (comp *Composition) clipDeactivated(c *Clip) {
	comp.active = lo.Without(comp.active, c)
	for _, compositor := range comp.compositors {
		compositor.Deactivate(c)
	}
	comp.metrics.Deactivated()
	log.Debugf("clip %s: deactivated at %g", c, comp.currentTime)
}

// ClipByID returns the clip with the given id.
func (comp *Composition) ClipByID(id string) (*Clip, bool) {
	c, ok := comp.clips[id]
	return c, ok
}

// Clips returns every clip ordered by start.
func (comp *Composition) Clips() []*Clip {
	return slices.Clone(comp.index.byStart)
}

// Active returns the clips under the playhead in activation order.
func (comp *Composition) Active() []*Clip {
	return slices.Clone(comp.active)
}

// FindClips returns the clips matching f ordered by start.
func (comp *Composition) FindClips(f Filter) []*Clip {
	var found []*Clip
	for _, c := range comp.index.byStart {
		if to, ok := f.To.Get(); ok && c.start > to {
			break
		}
		if f.From > 0 && c.end < f.From {
			continue
		}
		if len(f.Types) > 0 && !lo.Contains(f.Types, c.kind) {
			continue
		}
		found = append(found, c)
	}
	return found
}

// AddLayer creates a layer at position order, counted from the bottom.
// A negative or out of range order puts it on top. An empty id is generated.
func (comp *Composition) AddLayer(id string, order int) (*Layer, error) {
	if comp.destroyed {
		return nil, ErrDestroyed
	}
	if id == "" {
		id = uuid.NewString()
	} else if _, dup := comp.layersByID[id]; dup {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateLayer, id)
	}
	return comp.addLayer(id, order), nil
}

func (comp *Composition) addLayer(id string, order int) *Layer {
	l := newLayer(comp, id)
	comp.layersByID[id] = l
	if order < 0 || order >= len(comp.layers) {
		comp.layers = append(comp.layers, l)
	} else {
		comp.layers = slices.Insert(comp.layers, order, l)
	}
	return l
}

// RemoveLayer removes a layer and every clip on it.
func (comp *Composition) RemoveLayer(id string) error {
	l, ok := comp.layersByID[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, id)
	}

	for _, c := range l.Clips() {
		comp.remove(c)
	}
	if i := slices.Index(comp.layers, l); i >= 0 {
		comp.layers = slices.Delete(comp.layers, i, i+1)
	}
	delete(comp.layersByID, id)
	l.comp = nil
	return nil
}

// Layers returns the layers from bottom to top.
func (comp *Composition) Layers() []*Layer {
	return slices.Clone(comp.layers)
}

// Layer returns the layer with the given id.
func (comp *Composition) Layer(id string) (*Layer, bool) {
	l, ok := comp.layersByID[id]
	return l, ok
}

// Cut splices [min, max) out of every layer. Nothing is shifted: the range
// is left empty.
func (comp *Composition) Cut(min, max float64) error {
	if comp.destroyed {
		return ErrDestroyed
	}
	if math.IsNaN(min) || math.IsNaN(max) {
		return fmt.Errorf("%w: cut [%v, %v)", ErrInvalidTime, min, max)
	}
	if max <= min {
		return fmt.Errorf("%w: cut [%v, %v)", ErrInvalidRange, min, max)
	}

	for _, l := range slices.Clone(comp.layers) {
		for _, c := range l.overlapping(min, max) {
			if c.removed {
				continue
			}
			if err := c.Splice(min, max); err != nil {
				return err
			}
		}
	}
	return nil
}

func (comp *Composition) CurrentTime() float64 {
	return comp.currentTime
}

// SetCurrentTime seeks the playhead to t, which must lie in [0, Duration()].
func (comp *Composition) SetCurrentTime(t float64) error {
	if comp.destroyed {
		return ErrDestroyed
	}
	if math.IsNaN(t) || t < 0 || t > comp.duration {
		return fmt.Errorf("%w: current time %v outside [0, %v]", ErrInvalidTime, t, comp.duration)
	}

	if math.Abs(t-comp.currentTime) > seekPrecision {
		comp.seeking = true
		comp.metrics.Seeked()
		comp.emit(EventSeeking, nil)
		comp.currentTime = t
		comp.lastUpdate = comp.clock.Now()
		comp.update(true)
	}

	comp.checkPlayingState()
	return nil
}

// Duration returns the explicit duration if set, otherwise the latest
// resolved clip end. Unresolved clips do not count.
func (comp *Composition) Duration() float64 {
	return comp.duration
}

// SetDuration overrides the duration. +Inf restores the derived value.
func (comp *Composition) SetDuration(d float64) error {
	if comp.destroyed {
		return ErrDestroyed
	}
	if math.IsNaN(d) || d < 0 {
		return fmt.Errorf("%w: duration %v", ErrInvalidTime, d)
	}
	if d != comp.explicitDuration {
		comp.explicitDuration = d
		comp.updateDuration()
	}
	return nil
}

func (comp *Composition) PlaybackRate() float64 {
	return comp.rate
}

// SetPlaybackRate changes speed and direction. Negative rates play backwards.
func (comp *Composition) SetPlaybackRate(r float64) error {
	if comp.destroyed {
		return ErrDestroyed
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return fmt.Errorf("%w: playback rate %v", ErrInvalidTime, r)
	}
	if r == comp.rate {
		return nil
	}

	comp.update(true)
	comp.rate = r
	comp.metrics.RateChanged()
	comp.emit(EventRateChange, nil)
	comp.update(true)
	comp.updateLoadingClips()
	comp.updateFlow()
	return nil
}

// Play starts playback. Playing from the end rewinds first.
func (comp *Composition) Play() {
	if comp.destroyed || !comp.paused {
		return
	}

	if comp.ended {
		switch {
		case comp.rate > 0:
			_ = comp.SetCurrentTime(0)
		case comp.rate < 0:
			_ = comp.SetCurrentTime(comp.duration)
		}
	}

	comp.paused = false
	log.Infof("composition %s: play at %g, rate %g", comp.id, comp.currentTime, comp.rate)
	comp.emit(EventPlay, nil)
	comp.updateLoadingClips()
	comp.checkPlayingState()
	comp.update(true)
}

// Pause stops playback at the current position.
func (comp *Composition) Pause() {
	if comp.destroyed || comp.paused {
		return
	}
	comp.update(true)
	comp.pause()
}

func (comp *Composition) pause() {
	if comp.paused {
		return
	}

	comp.paused = true
	comp.playing = false
	for _, c := range slices.Clone(comp.active) {
		c.Pause()
	}

	log.Infof("composition %s: pause at %g", comp.id, comp.currentTime)
	comp.emit(EventPause, nil)
	comp.updateFlow()
}

// Paused reports whether playback was paused, explicitly or by reaching the end.
func (comp *Composition) Paused() bool {
	return comp.paused
}

// Playing reports whether time is actually moving: not paused, not waiting.
func (comp *Composition) Playing() bool {
	return comp.playing
}

func (comp *Composition) Seeking() bool {
	return comp.seeking
}

func (comp *Composition) Ended() bool {
	return comp.ended
}

// ReadyState returns the lowest readiness among the active clips.
func (comp *Composition) ReadyState() source.ReadyState {
	return comp.readyState
}

// Buffered returns the ranges of the timeline that can play without loading.
func (comp *Composition) Buffered() ranges.Reader {
	return comp.buffered
}

// Draw brings the playhead up to date, at most once per UpdateThrottle,
// then lets every compositor render.
func (comp *Composition) Draw() {
	if comp.destroyed {
		return
	}
	if comp.clock.Now().Sub(comp.lastUpdate) > comp.opts.UpdateThrottle {
		comp.update(false)
	}
	for _, compositor := range comp.compositors {
		compositor.Draw()
	}
}

// Destroy removes every layer and clip and releases the compositors.
// Listeners still see clipremoved for each clip. Every later call is a
// no-op or returns ErrDestroyed.
func (comp *Composition) Destroy() {
	if comp.destroyed {
		return
	}

	comp.destroyed = true
	comp.playing = false
	comp.paused = true
	if comp.stopDraw != nil {
		comp.stopDraw()
	}
	comp.updateFlow()

	for i := len(comp.layers) - 1; i >= 0; i-- {
		_ = comp.RemoveLayer(comp.layers[i].id)
	}
	for _, compositor := range comp.compositors {
		compositor.Destroy()
	}

	comp.events.Clear()
	log.Debugf("composition %s: destroyed", comp.id)
}

func (comp *Composition) Destroyed() bool {
	return comp.destroyed
}

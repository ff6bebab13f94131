package spacetime

import (
	"math"

	"golang.org/x/exp/slices"

	"github.com/anisan-cli/spacetime/clock"
	"github.com/anisan-cli/spacetime/log"
	"github.com/anisan-cli/spacetime/source"
	"github.com/anisan-cli/spacetime/util"
)

const (
	// updates moving the playhead less than this are skipped unless forced
	updatePrecision = 0.005

	// seeks closer than this to the playhead are ignored
	seekPrecision = 0.01

	minTimerDelay = 1e-3

	// bound on reentrant re-runs of update and checkPlayingState
	maxReruns = 8
)

// update advances the playhead to the clock and runs one scheduler step.
// A call made while a step is running is folded into a forced re-run once
// that step returns.
func (comp *Composition) update(force bool) {
	if comp.destroyed {
		return
	}
	if comp.updating {
		comp.pendingUpdate = true
		return
	}

	comp.updating = true
	defer func() { comp.updating = false }()

	comp.step(force)
	for n := 0; comp.pendingUpdate && !comp.destroyed; n++ {
		if n == maxReruns {
			log.Warnf("composition %s: update still pending after %d re-runs", comp.id, n)
			comp.pendingUpdate = false
			break
		}
		comp.pendingUpdate = false
		comp.step(true)
	}
}

func (comp *Composition) step(force bool) {
	now := comp.clock.Now()
	t := comp.currentTime
	if comp.playing {
		t += now.Sub(comp.lastUpdate).Seconds() * comp.rate
	}
	if !force && math.Abs(t-comp.currentTime) < updatePrecision {
		return
	}
	comp.lastUpdate = now

	epsilon := 1.0 / 100
	if comp.playing {
		epsilon = 1.0 / 10
	}

	atEnd := false
	if comp.duration > 0 {
		switch {
		case comp.rate > 0:
			atEnd = t >= comp.duration
		case comp.rate < 0:
			atEnd = t <= 0
		}
	}

	t = util.Clamp(t, 0, comp.duration)
	comp.currentTime = t

	crossed := 0
	if comp.index.Len() > 0 {
		if comp.lastTime <= t {
			crossed = comp.advance(t)
		} else {
			epsilon = -epsilon
			crossed = comp.recede(t)
		}
		if crossed > 0 {
			comp.checkPlayingState()
		}
	}
	comp.metrics.Update(crossed)

	for _, c := range slices.Clone(comp.active) {
		c.Seek(t, epsilon)
	}
	comp.updateLoadingClips()
	comp.emit(EventTimeUpdate, nil)

	if atEnd {
		if !comp.ended {
			comp.ended = true
			comp.pause()
			comp.metrics.Finished()
			log.Infof("composition %s: ended at %g", comp.id, t)
			comp.emit(EventEnded, nil)
		}
	} else {
		comp.ended = false
	}

	comp.lastTime = t
}

// advance moves both cursors forward to t. Ends are processed first so a
// clip ending where the next one starts is gone before the next arrives.
// The lists are re-read on every iteration: a callback may insert or remove
// clips, and index arithmetic keeps the cursors valid.
func (comp *Composition) advance(t float64) (crossed int) {
	x := &comp.index

	for x.endIndex < len(x.byEnd) {
		c := x.byEnd[x.endIndex]
		if c.keyEnd > t {
			break
		}
		x.endIndex++
		crossed++
		c.Deactivate()
	}

	for x.startIndex < len(x.byStart) {
		c := x.byStart[x.startIndex]
		if c.keyStart > t {
			break
		}
		x.startIndex++
		if c.keyEnd > t {
			crossed++
			c.Activate()
		}
	}
	return crossed
}

// recede moves both cursors back to t.
func (comp *Composition) recede(t float64) (crossed int) {
	x := &comp.index

	for x.startIndex > 0 {
		c := x.byStart[x.startIndex-1]
		if c.keyStart <= t {
			break
		}
		x.startIndex--
		crossed++
		c.Deactivate()
	}

	for x.endIndex > 0 {
		c := x.byEnd[x.endIndex-1]
		if c.keyEnd <= t {
			break
		}
		x.endIndex--
		if c.keyStart <= t {
			crossed++
			c.Activate()
		}
	}
	return crossed
}

// updateFlow arms the one timer that wakes the scheduler at the next clip
// boundary or the end of the timeline. Any previous timer is cancelled.
func (comp *Composition) updateFlow() {
	if comp.timer != nil {
		comp.timer.Stop()
		comp.timer = nil
	}
	comp.generation++

	if comp.destroyed || !comp.playing || comp.rate == 0 {
		return
	}

	x := &comp.index
	t := comp.currentTime

	var delay float64
	if comp.rate > 0 {
		if t >= comp.duration {
			return
		}
		delay = comp.duration - t
		if x.startIndex < len(x.byStart) {
			if d := x.byStart[x.startIndex].keyStart - t; d > 0 && d < delay {
				delay = d
			}
		}
		if x.endIndex < len(x.byEnd) {
			if d := x.byEnd[x.endIndex].keyEnd - t; d > 0 && d < delay {
				delay = d
			}
		}
	} else {
		if t <= 0 {
			return
		}
		delay = t
		if x.startIndex > 0 {
			if d := t - x.byStart[x.startIndex-1].keyStart; d >= 0 && d < delay {
				delay = d
			}
		}
		if x.endIndex > 0 {
			if d := t - x.byEnd[x.endIndex-1].keyEnd; d >= 0 && d < delay {
				delay = d
			}
		}
	}

	wait := delay/math.Abs(comp.rate) - comp.clock.Now().Sub(comp.lastUpdate).Seconds()
	d := clock.Seconds(math.Max(wait, minTimerDelay))
	if d < math.MaxInt64 {
		// round up so the wake-up lands on or past the boundary
		d++
	}

	gen := comp.generation
	comp.timer = comp.clock.AfterFunc(d, func() {
		if gen != comp.generation || comp.destroyed {
			return
		}
		comp.timer = nil
		comp.update(true)
		comp.updateFlow()
	})
	comp.metrics.TimerArmed(d)
}

// updateLoadingClips cues the next clips in the direction of play that
// start within the load-ahead horizon.
func (comp *Composition) updateLoadingClips() {
	x := &comp.index
	t := comp.currentTime
	ahead := comp.opts.LoadAhead * math.Abs(comp.rate)
	reverse := comp.rate < 0

	for n := 0; n < maxCued; n++ {
		var (
			c          *Clip
			at, offset float64
		)
		if reverse {
			i := x.endIndex - 1 - n
			if i < 0 {
				break
			}
			c = x.byEnd[i]
			at, offset = c.keyEnd, t-c.keyEnd
		} else {
			i := x.startIndex + n
			if i >= len(x.byStart) {
				break
			}
			c = x.byStart[i]
			at, offset = c.keyStart, c.keyStart-t
		}
		if offset >= ahead {
			break
		}

		if !c.IsCurrent() {
			c.Seek(at, MinClipLength)
		}
		if reverse {
			c.Load(at-ahead, at)
		} else {
			c.Load(at, at+ahead)
		}
	}
}

// updateBuffered recomputes the composition buffered ranges over
// [start, end): the range is assumed playable, then every gap of every
// clip overlapping it is taken out.
func (comp *Composition) updateBuffered(start, end float64) {
	start = math.Max(0, start)
	end = math.Min(end, comp.duration)

	if start < end {
		comp.buffered.Add(start, end)

		for _, c := range comp.index.byStart {
			if c.keyStart > end {
				break
			}
			if c.keyEnd < start {
				continue
			}

			// gaps are clip-local and must stay inside the clip window
			at, length := c.keyStart, c.keyEnd-c.keyStart
			covered := 0.0
			for i := 0; i < c.buffered.Len() && covered < length; i++ {
				if gap := math.Min(c.buffered.Start(i), length); gap > covered {
					comp.buffered.Subtract(at+covered, at+gap)
				}
				covered = math.Max(covered, c.buffered.End(i))
			}
			if covered < length {
				comp.buffered.Subtract(at+covered, c.keyEnd)
			}
		}
	}

	comp.emit(EventProgress, nil)
}

// updateDuration derives the duration from the clips unless one was set
// explicitly, and re-clamps the playhead when it changes.
func (comp *Composition) updateDuration() {
	d := comp.explicitDuration
	if math.IsInf(d, 1) {
		d = 0
		for i := len(comp.index.byEnd) - 1; i >= 0; i-- {
			if end := comp.index.byEnd[i].keyEnd; !math.IsInf(end, 1) {
				d = end
				break
			}
		}
	}
	if d == comp.duration {
		return
	}

	comp.duration = d
	comp.metrics.SetDuration(d)
	log.Debugf("composition %s: duration %g", comp.id, d)

	comp.update(true)
	comp.emit(EventDurationChange, nil)
	comp.updateFlow()

	comp.buffered.Subtract(d, math.Inf(1))
	comp.updateBuffered(0, d)
}

// checkPlayingState derives readiness from the active clips and moves the
// composition between playing and waiting.
func (comp *Composition) checkPlayingState() {
	if comp.destroyed {
		return
	}
	if comp.checking {
		comp.recheck = true
		return
	}

	comp.checking = true
	defer func() { comp.checking = false }()

	comp.resolvePlayingState()
	for n := 0; comp.recheck && !comp.destroyed && n < maxReruns; n++ {
		comp.recheck = false
		comp.resolvePlayingState()
	}
	comp.recheck = false
}

func (comp *Composition) resolvePlayingState() {
	ready := source.HaveEnoughData
	stalled := false
	for _, c := range comp.active {
		state := c.ReadyState()
		if c.Seeking() {
			state = min(state, source.HaveMetadata)
		}
		ready = min(ready, state)
		stalled = stalled || c.stalled
	}
	comp.readyState = ready

	switch {
	case comp.playing && (ready < source.HaveCurrentData || stalled):
		comp.bank()
		comp.playing = false
		for _, c := range slices.Clone(comp.active) {
			c.Pause()
		}
		comp.metrics.Stalled()
		log.Debugf("composition %s: waiting at %g, ready state %s", comp.id, comp.currentTime, ready)
		comp.emit(EventWaiting, nil)
		comp.update(true)

	case ready >= source.HaveCurrentData:
		if comp.seeking {
			comp.seeking = false
			comp.emit(EventSeeked, nil)
		}
		if !comp.seeking && !comp.playing && !comp.paused {
			comp.playing = true
			comp.lastUpdate = comp.clock.Now()
			for _, c := range slices.Clone(comp.active) {
				c.stalled = false
				c.Play()
			}
			comp.emit(EventPlaying, nil)
		}
	}

	comp.updateFlow()
}

// bank moves the playhead by the time elapsed while playing, without
// walking. The next step walks from lastTime.
func (comp *Composition) bank() {
	if !comp.playing {
		return
	}
	now := comp.clock.Now()
	t := comp.currentTime + now.Sub(comp.lastUpdate).Seconds()*comp.rate
	comp.currentTime = util.Clamp(t, 0, comp.duration)
	comp.lastUpdate = now
}

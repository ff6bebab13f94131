// Package source defines the contract between a clip and the external media it plays.
package source

import (
	"fmt"

	"github.com/anisan-cli/spacetime/ranges"
)

// Kind is an event a source reports to its clip.
type Kind string

const (
	Play     Kind = "play"
	Pause    Kind = "pause"
	Playing  Kind = "playing"
	Waiting  Kind = "waiting"
	Seeking  Kind = "seeking"
	Seeked   Kind = "seeked"
	Progress Kind = "progress"
	Stalled  Kind = "stalled"
	Suspend  Kind = "suspend"
	Error    Kind = "error"
)

// Kinds lists every event a source may report.
var Kinds = []Kind{Play, Pause, Playing, Waiting, Seeking, Seeked, Progress, Stalled, Suspend, Error}

// ReadyState mirrors the readiness levels of an HTML media element.
type ReadyState int

const (
	HaveNothing ReadyState = iota
	HaveMetadata
	HaveCurrentData
	HaveFutureData
	HaveEnoughData
)

func (r ReadyState) String() string {
	switch r {
	case HaveNothing:
		return "nothing"
	case HaveMetadata:
		return "metadata"
	case HaveCurrentData:
		return "current"
	case HaveFutureData:
		return "future"
	case HaveEnoughData:
		return "enough"
	default:
		return fmt.Sprintf("ReadyState(%d)", int(r))
	}
}

// Sink receives reports from a source. Every clip provides one.
type Sink interface {
	// Notify reports a playback event.
	Notify(kind Kind)

	// Metadata reports source attributes, e.g. a resolved "duration" in seconds.
	Metadata(values map[string]any)
}

// Adapter is the capability set a clip expects from its source.
// Times are in the source's own timeline, in seconds.
type Adapter interface {
	// Play starts or resumes playback.
	Play()

	// Pause halts playback.
	Pause()

	// CurrentTime returns the playback position.
	CurrentTime() float64

	// SetCurrentTime seeks to t.
	SetCurrentTime(t float64)

	// Duration returns the total length, +Inf while unknown.
	Duration() float64

	// ReadyState returns how much of the media is ready to play.
	ReadyState() ReadyState

	// Seeking reports whether a seek is still in progress.
	Seeking() bool

	// Buffered returns the ranges that can be played without further loading.
	Buffered() ranges.Reader

	// Load hints that [start, end) will be needed soon.
	Load(start, end float64)

	// Activate is called when the clip enters the playhead.
	Activate()

	// Deactivate is called when the clip leaves the playhead.
	Deactivate()

	// Destroy releases every resource held by the source.
	Destroy()
}

// Options describe the clip a source is created for.
type Options struct {
	ID     string
	Type   string
	Params map[string]any
}

// Factory creates a source for a clip. The sink may be used right away,
// including before Factory returns.
type Factory func(opts Options, sink Sink) (Adapter, error)

package source

import (
	"math"
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"github.com/anisan-cli/spacetime/ranges"
	"github.com/anisan-cli/spacetime/timecode"
)

// Null is a source with no media at all. Clips of this type only mark time.
func Null(_ Options, sink Sink) (Adapter, error) {
	return NewBase(sink), nil
}

var lineBreak = regexp.MustCompile(`\r\n|\r|\n`)

// TextSource displays a block of text for as long as its clip is active.
type TextSource struct {
	*Base
	lines []string
}

// Text creates a TextSource from the "text" parameter.
func Text(opts Options, sink Sink) (Adapter, error) {
	t := &TextSource{Base: NewBase(sink)}
	t.SetText(cast.ToString(opts.Params["text"]))
	return t, nil
}

// SetText replaces the displayed text. Line breaks split it into lines.
func (t *TextSource) SetText(text string) {
	if text == "" {
		t.lines = nil
		return
	}
	t.lines = lineBreak.Split(text, -1)
}

// Lines returns the text split at line breaks.
func (t *TextSource) Lines() []string {
	return append([]string(nil), t.lines...)
}

func (t *TextSource) String() string {
	return strings.Join(t.lines, "\n")
}

// MediaSource simulates a media file of known length. Nothing is known about
// it until the first Load, which resolves its duration and buffers the
// requested range.
//
// Parameters:
//
//	duration  length of the media, seconds or a time code
//	buffer    seconds buffered per Load, 0 buffers everything
//	fail      report an error instead of loading
type MediaSource struct {
	*Base
	duration float64
	chunk    float64
	fail     bool

	loaded   bool
	failed   bool
	buffered *ranges.Set
}

// Media creates a MediaSource.
func Media(opts Options, sink Sink) (Adapter, error) {
	duration := timecode.Value(opts.Params["duration"], 0)
	if math.IsNaN(duration) || duration <= 0 {
		duration = math.Inf(1)
	}

	return &MediaSource{
		Base:     NewBase(sink),
		duration: duration,
		chunk:    math.Max(0, cast.ToFloat64(opts.Params["buffer"])),
		fail:     cast.ToBool(opts.Params["fail"]),
		buffered: ranges.New(),
	}, nil
}

func (m *MediaSource) Duration() float64 {
	if !m.loaded {
		return math.Inf(1)
	}
	return m.duration
}

func (m *MediaSource) ReadyState() ReadyState {
	switch {
	case m.failed:
		return HaveMetadata
	case !m.loaded:
		return HaveNothing
	case m.buffered.Contains(m.CurrentTime()):
		return HaveEnoughData
	default:
		return HaveMetadata
	}
}

func (m *MediaSource) Buffered() ranges.Reader {
	return m.buffered
}

func (m *MediaSource) Load(start, end float64) {
	if m.failed {
		return
	}
	if m.fail {
		m.failed = true
		m.Notify(Error)
		return
	}

	first := !m.loaded
	m.loaded = true
	if sink := m.Sink(); first && sink != nil {
		sink.Metadata(map[string]any{"duration": m.duration})
	}

	if m.chunk == 0 {
		m.buffered.Add(0, m.duration)
	} else {
		start = math.Max(0, start)
		m.buffered.Add(start, math.Min(start+m.chunk, m.duration))
	}
	m.Notify(Progress)
}

// Loaded reports whether the media has been loaded at least once.
func (m *MediaSource) Loaded() bool {
	return m.loaded
}

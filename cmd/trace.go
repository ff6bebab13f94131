package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"

	"github.com/anisan-cli/spacetime/icon"
	"github.com/anisan-cli/spacetime/source"
	"github.com/anisan-cli/spacetime/spacetime"
	"github.com/anisan-cli/spacetime/style"
	"github.com/anisan-cli/spacetime/timecode"
	"github.com/anisan-cli/spacetime/util"
)

const maxLineWidth = 120

// trace is a compositor that prints the timeline instead of rendering it.
type trace struct {
	out    io.Writer
	fps    float64
	comp   *spacetime.Composition
	frames int
}

func traceCompositor(out io.Writer, fps float64) spacetime.CompositorFactory {
	return func(comp *spacetime.Composition) (spacetime.Compositor, error) {
		return &trace{out: out, fps: fps, comp: comp}, nil
	}
}

func (t *trace) Kind() string { return "trace" }

func (t *trace) Add(c *spacetime.Clip) {
	t.line(icon.Clip, "added "+t.clip(c))
}

func (t *trace) Remove(c *spacetime.Clip) {
	t.line(icon.Clip, "removed "+t.clip(c))
}

func (t *trace) Activate(c *spacetime.Clip) {
	t.line(icon.Activate, t.clip(c))

	if text, ok := c.Source().(*source.TextSource); ok {
		indent := strings.Repeat(" ", len(t.stamp())+3)
		width := util.Max(util.Min(util.TerminalWidth(80), maxLineWidth)-len(indent), 10)
		for _, l := range text.Lines() {
			fmt.Fprintf(t.out, "%s%s\n", indent, style.Italic(lo.Substring(l, 0, uint(width))))
		}
	}
}

func (t *trace) Deactivate(c *spacetime.Clip) {
	t.line(icon.Deactivate, t.clip(c))
}

func (t *trace) Draw() {
	t.frames++
}

func (t *trace) Destroy() {}

func (t *trace) stamp() string {
	return timecode.Format(t.comp.CurrentTime(), t.fps)
}

func (t *trace) clip(c *spacetime.Clip) string {
	layer := c.Layer()
	if layer == nil {
		return style.Layer(-1)("-") + " " + c.String()
	}
	return style.Layer(layer.Index())(lo.Substring(layer.ID(), 0, 8)) + " " + c.String()
}

func (t *trace) line(i icon.Icon, text string) {
	fmt.Fprintf(t.out, "%s %s %s\n", style.Faint(t.stamp()), icon.Get(i), text)
}

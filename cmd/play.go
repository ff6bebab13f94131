package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"

	"github.com/anisan-cli/spacetime/clock"
	"github.com/anisan-cli/spacetime/config"
	"github.com/anisan-cli/spacetime/filesystem"
	"github.com/anisan-cli/spacetime/icon"
	"github.com/anisan-cli/spacetime/key"
	"github.com/anisan-cli/spacetime/log"
	"github.com/anisan-cli/spacetime/metrics"
	"github.com/anisan-cli/spacetime/spacetime"
	"github.com/anisan-cli/spacetime/style"
	"github.com/anisan-cli/spacetime/timecode"
	"github.com/anisan-cli/spacetime/util"
	"github.com/anisan-cli/spacetime/where"
)

var errInvalidClip = errors.New("invalid clip")

// clipPattern matches type@start-end[@layer][?key=value&...]. Both times may be empty.
var clipPattern = regexp.MustCompile(`^(?P<type>[\w-]*)@(?P<start>[^@?-]*)-(?P<end>[^@?]*)(?:@(?P<layer>[\w-]+))?(?:\?(?P<params>.*))?$`)

type parsedClip struct {
	kind string
	opts spacetime.ClipOptions
}

func parseClip(s string, fps float64) (parsedClip, error) {
	if !clipPattern.MatchString(s) {
		return parsedClip{}, fmt.Errorf("%w %q: expected type@start-end[@layer][?key=value]", errInvalidClip, s)
	}
	groups := util.ReGroups(clipPattern, s)

	parsed := parsedClip{
		kind: groups["type"],
		opts: spacetime.ClipOptions{Layer: groups["layer"]},
	}

	if start := groups["start"]; start != "" {
		parsed.opts.Start = timecode.Parse(start, fps)
		if math.IsNaN(parsed.opts.Start) {
			return parsedClip{}, fmt.Errorf("%w %q: bad start %q", errInvalidClip, s, start)
		}
	}
	if end := groups["end"]; end != "" {
		t := timecode.Parse(end, fps)
		if math.IsNaN(t) {
			return parsedClip{}, fmt.Errorf("%w %q: bad end %q", errInvalidClip, s, end)
		}
		parsed.opts.End = mo.Some(t)
	}

	if raw := groups["params"]; raw != "" {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return parsedClip{}, fmt.Errorf("%w %q: %v", errInvalidClip, s, err)
		}
		parsed.opts.Params = lo.MapValues(values, func(v []string, _ string) any {
			return v[0]
		})
	}

	return parsed, nil
}

type playOptions struct {
	clips    []string
	rate     float64
	seek     string
	duration string
	cuts     string
	realtime bool
	step     time.Duration
	limit    time.Duration
	metrics  bool
	fps      float64
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringArrayP("clip", "c", nil, "Clip to add, as type@start-end[@layer][?key=value&...]")
	playCmd.Flags().Float64P("rate", "r", 1, "Playback rate, negative plays backwards")
	lo.Must0(viper.BindPFlag(key.PlaybackRate, playCmd.Flags().Lookup("rate")))
	playCmd.Flags().StringP("seek", "s", "", "Time code to start from")
	playCmd.Flags().StringP("duration", "d", "", "Fixed duration instead of the end of the last clip")
	playCmd.Flags().String("cut", "", "JSON list of [start, end] ranges to cut out of every layer")
	playCmd.Flags().Bool("realtime", false, "Play on the wall clock instead of jumping from boundary to boundary")
	playCmd.Flags().Duration("step", 0, "Advance virtual time by this much per frame and draw each frame")
	playCmd.Flags().Duration("limit", time.Hour, "Stop after this much timeline time")
	playCmd.Flags().Bool("metrics", false, "Record scheduler metrics and write a snapshot after playback")
	lo.Must0(viper.BindPFlag(key.MetricsEnable, playCmd.Flags().Lookup("metrics")))

	playCmd.SetOut(os.Stdout)
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Build a composition from clips and play it through",
	Example: `  spacetime play -c text@0-5?text=hello -c media@2-@bg?duration=00:08
  spacetime play -c @0-10 -c @4-6 --cut '[[1,2]]' --rate -1 --seek 10`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := playOptions{
			clips:    lo.Must(cmd.Flags().GetStringArray("clip")),
			rate:     viper.GetFloat64(key.PlaybackRate),
			seek:     lo.Must(cmd.Flags().GetString("seek")),
			duration: lo.Must(cmd.Flags().GetString("duration")),
			cuts:     lo.Must(cmd.Flags().GetString("cut")),
			realtime: lo.Must(cmd.Flags().GetBool("realtime")),
			step:     lo.Must(cmd.Flags().GetDuration("step")),
			limit:    lo.Must(cmd.Flags().GetDuration("limit")),
			metrics:  viper.GetBool(key.MetricsEnable),
			fps:      viper.GetFloat64(key.TimecodeFrameRate),
		}
		if len(opts.clips) == 0 {
			handleErr(errors.New("at least one --clip is required"))
		}
		handleErr(play(cmd.Context(), cmd.OutOrStdout(), opts))
	},
}

func play(ctx context.Context, out io.Writer, o playOptions) error {
	reg := prometheus.NewRegistry()
	opts := config.Playback(reg)

	opts.Registry = spacetime.NewRegistry()
	if err := opts.Registry.Compositor("trace", traceCompositor(out, o.fps)); err != nil {
		return err
	}
	opts.Compositors = []string{"trace"}

	var (
		loop   *clock.Loop
		manual *clock.Manual
	)
	if o.realtime {
		loop = clock.NewLoop()
		opts.Clock = loop
		opts.AutoDraw = true
	} else {
		manual = clock.NewManual(time.Now())
		opts.Clock = manual
	}

	comp, err := spacetime.New(opts)
	if err != nil {
		return err
	}
	defer comp.Destroy()

	logger := log.WithField("composition", comp.ID())
	logger.Infof("playing %d clips at rate %g", len(o.clips), o.rate)

	watch(comp, out, o.fps)
	if err := build(comp, o); err != nil {
		return err
	}
	comp.Play()

	if o.realtime {
		err = runRealtime(ctx, loop, comp)
	} else {
		runVirtual(manual, comp, o)
	}

	summary(comp, out, o)
	if opts.Metrics != nil {
		if err := snapshot(reg, comp.ID(), out); err != nil {
			return err
		}
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func build(comp *spacetime.Composition, o playOptions) error {
	for _, s := range o.clips {
		parsed, err := parseClip(s, o.fps)
		if err != nil {
			return err
		}
		if _, err := comp.Add(parsed.kind, parsed.opts); err != nil {
			return fmt.Errorf("add %q: %w", s, err)
		}
	}

	if o.duration != "" {
		d := timecode.Parse(o.duration, o.fps)
		if err := comp.SetDuration(d); err != nil {
			return err
		}
	}

	if o.cuts != "" {
		cuts, err := timecode.Cuts(o.cuts)
		if err != nil {
			return err
		}
		for _, cut := range cuts {
			if err := comp.Cut(cut.Start, cut.End); err != nil {
				return err
			}
		}
	}

	if err := comp.SetPlaybackRate(o.rate); err != nil {
		return err
	}

	if o.seek != "" {
		return comp.SetCurrentTime(timecode.Parse(o.seek, o.fps))
	}
	if o.rate < 0 {
		return comp.SetCurrentTime(comp.Duration())
	}
	return nil
}

// runVirtual drives a manual clock until playback ends, stalls or exceeds the limit.
func runVirtual(clk *clock.Manual, comp *spacetime.Composition, o playOptions) {
	start := clk.Now()
	for !comp.Ended() && clk.Now().Sub(start) < o.limit {
		if o.step > 0 {
			if clk.Pending() == 0 {
				return
			}
			clk.Advance(o.step)
			comp.Draw()
			continue
		}
		if !clk.Step() {
			return
		}
	}
}

func runRealtime(ctx context.Context, loop *clock.Loop, comp *spacetime.Composition) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	comp.Once(spacetime.EventEnded, func(spacetime.Notice) { stop() })
	return loop.Run(ctx)
}

var eventIcons = map[spacetime.Event]icon.Icon{
	spacetime.EventPlay:           icon.Play,
	spacetime.EventPlaying:        icon.Play,
	spacetime.EventPause:          icon.Pause,
	spacetime.EventWaiting:        icon.Waiting,
	spacetime.EventSeeking:        icon.Seek,
	spacetime.EventSeeked:         icon.Seek,
	spacetime.EventRateChange:     icon.Rate,
	spacetime.EventDurationChange: icon.Clip,
	spacetime.EventEnded:          icon.Ended,
}

// watch prints composition state changes.
func watch(comp *spacetime.Composition, out io.Writer, fps float64) {
	events := lo.Keys(eventIcons)
	slices.Sort(events)

	for _, ev := range events {
		comp.On(ev, func(n spacetime.Notice) {
			detail := ""
			switch ev {
			case spacetime.EventRateChange:
				detail = fmt.Sprintf(" %g", comp.PlaybackRate())
			case spacetime.EventDurationChange:
				detail = " " + timecode.Format(comp.Duration(), fps)
			}
			fmt.Fprintf(out, "%s %s %s%s\n",
				style.Faint(timecode.Format(n.Time, fps)),
				icon.Get(eventIcons[ev]),
				style.Bold(string(ev)),
				detail,
			)
		})
	}
}

func summary(comp *spacetime.Composition, out io.Writer, o playOptions) {
	state := "ended"
	switch {
	case comp.Ended():
	case comp.Paused():
		state = "paused"
	case !comp.Playing():
		state = "stalled"
	default:
		state = "stopped"
	}

	fmt.Fprintf(out, "\n%s at %s of %s, %s on %s\n",
		style.Title(state),
		timecode.Format(comp.CurrentTime(), o.fps),
		timecode.Format(comp.Duration(), o.fps),
		util.Quantify(len(comp.Clips()), "clip", "clips"),
		util.Quantify(len(comp.Layers()), "layer", "layers"),
	)
}

func snapshot(reg *prometheus.Registry, id string, out io.Writer) error {
	totals, err := metrics.Totals(reg)
	if err != nil {
		return err
	}
	names := lo.Keys(totals)
	slices.Sort(names)

	width := lo.Max(lo.Map(names, func(n string, _ int) int { return len(n) }))
	for _, name := range names {
		fmt.Fprintf(out, "%s %g\n", style.Width(width)(name), totals[name])
	}

	var b strings.Builder
	if err := metrics.Write(reg, &b); err != nil {
		return err
	}
	path := filepath.Join(where.Metrics(), id+".prom")
	if err := filesystem.WriteFile(path, []byte(b.String())); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s metrics written to %s\n", icon.Get(icon.Success), path)
	return nil
}

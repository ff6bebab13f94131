package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"

	"github.com/anisan-cli/spacetime/filesystem"
	"github.com/anisan-cli/spacetime/key"
	"github.com/anisan-cli/spacetime/where"
)

func TestParseClip(t *testing.T) {
	Convey("Given clip descriptions", t, func() {
		Convey("A typed clip with params should parse fully", func() {
			parsed, err := parseClip("text@1.5-00:05@subs?text=hello&size=2", 0)
			So(err, ShouldBeNil)
			So(parsed.kind, ShouldEqual, "text")
			So(parsed.opts.Start, ShouldEqual, 1.5)
			So(parsed.opts.End, ShouldResemble, mo.Some(5.0))
			So(parsed.opts.Layer, ShouldEqual, "subs")
			So(parsed.opts.Params, ShouldResemble, map[string]any{"text": "hello", "size": "2"})
		})

		Convey("Missing times should mean 0 and unresolved", func() {
			parsed, err := parseClip("media@-", 0)
			So(err, ShouldBeNil)
			So(parsed.opts.Start, ShouldEqual, 0.0)
			So(parsed.opts.End.IsPresent(), ShouldBeFalse)
		})

		Convey("Frames should use the frame rate", func() {
			parsed, err := parseClip("@00:01;12-00:02", 24)
			So(err, ShouldBeNil)
			So(parsed.kind, ShouldEqual, "")
			So(parsed.opts.Start, ShouldEqual, 1.5)
		})

		Convey("Malformed descriptions should be rejected", func() {
			for _, s := range []string{"text", "text@a-2", "text@1-b", "text@1-2@"} {
				_, err := parseClip(s, 0)
				So(errors.Is(err, errInvalidClip), ShouldBeTrue)
			}
		})
	})
}

func TestPlay(t *testing.T) {
	Convey("Given a virtual playback", t, func() {
		filesystem.SetMemMapFs()
		t.Setenv(where.EnvConfigPath, "/config")
		Reset(viper.Reset)

		var out strings.Builder
		opts := playOptions{
			clips: []string{"@0-2", "text@2-4?text=hello", "media@1-@top?duration=2"},
			rate:  1,
			limit: time.Hour,
		}

		Convey("It should run to the end", func() {
			So(play(context.Background(), &out, opts), ShouldBeNil)

			text := out.String()
			So(text, ShouldContainSubstring, "play")
			So(text, ShouldContainSubstring, "hello")
			So(text, ShouldContainSubstring, "ended")
			So(text, ShouldContainSubstring, "at 00:00:04.000 of 00:00:04.000, 3 clips on 2 layers")
		})

		Convey("It should play backwards from the end", func() {
			opts.rate = -1
			So(play(context.Background(), &out, opts), ShouldBeNil)

			text := out.String()
			So(text, ShouldContainSubstring, "ratechange -1")
			So(text, ShouldContainSubstring, "at 00:00:00.000 of 00:00:04.000")
		})

		Convey("Frame stepping should reach the same end", func() {
			opts.step = 100 * time.Millisecond
			So(play(context.Background(), &out, opts), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "at 00:00:04.000 of 00:00:04.000")
		})

		Convey("Cuts should splice every layer", func() {
			opts.cuts = "[[0.5,1.5]]"
			So(play(context.Background(), &out, opts), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "4 clips on 2 layers")
		})

		Convey("Metrics should be summarised and written", func() {
			viper.Set(key.MetricsEnable, true)
			So(play(context.Background(), &out, opts), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "spacetime_ended_total")
			So(out.String(), ShouldContainSubstring, "metrics written to")
		})

		Convey("A bad clip should fail before playing", func() {
			opts.clips = append(opts.clips, "nope")
			err := play(context.Background(), &out, opts)
			So(errors.Is(err, errInvalidClip), ShouldBeTrue)
			So(out.String(), ShouldNotContainSubstring, "ended")
		})
	})
}

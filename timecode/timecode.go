// Package timecode converts clock-style time codes into seconds and back.
package timecode

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/spf13/cast"
)

// pattern matches [[HH:]MM:]SS[(.ms|;FF)]. The hour group is lazy so that
// a two-part code reads as MM:SS.
var pattern = regexp.MustCompile(`^(?:(\d+):)??(?:(?:(\d+):)?((\d+)(?:([.;])(\d+))?))$`)

// Parse converts s into seconds. Frames (;FF) are converted with frameRate
// and dropped when frameRate is not positive. Malformed input yields NaN.
func Parse(s string, frameRate float64) float64 {
	match := pattern.FindStringSubmatch(s)
	if match == nil {
		return math.NaN()
	}

	var hour, minute, second float64
	if match[1] != "" {
		hour = atof(match[1])
	}
	if match[2] != "" {
		minute = atof(match[2])
	}

	if match[5] == "." {
		second = atof(match[3])
	} else {
		second = atof(match[4])
		if match[5] == ";" && frameRate > 0 {
			second += atof(match[6]) / frameRate
		}
	}

	return (hour*60+minute)*60 + second
}

// Value accepts either a number, which is returned unchanged, or a time code
// string. Anything else, nil included, is NaN.
func Value(v any, frameRate float64) float64 {
	switch x := v.(type) {
	case nil, bool:
		return math.NaN()
	case string:
		return Parse(x, frameRate)
	case time.Duration:
		return x.Seconds()
	}

	f, err := cast.ToFloat64E(v)
	if err != nil {
		return math.NaN()
	}
	return f
}

// Format renders seconds as HH:MM:SS.mmm, or HH:MM:SS;FF when fps is positive.
func Format(seconds, fps float64) string {
	switch {
	case math.IsNaN(seconds):
		return "--:--:--"
	case math.IsInf(seconds, 0):
		return "∞"
	}

	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}

	if fps > 0 {
		whole := math.Floor(seconds)
		frame := int64(math.Floor((seconds-whole)*fps + 1e-9))
		total := int64(whole)
		return fmt.Sprintf("%s%02d:%02d:%02d;%02d", sign, total/3600, total/60%60, total%60, frame)
	}

	ms := int64(math.Round(seconds * 1000))
	total := ms / 1000
	return fmt.Sprintf("%s%02d:%02d:%02d.%03d", sign, total/3600, total/60%60, total%60, ms%1000)
}

func atof(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

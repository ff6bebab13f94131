// Package key defines the configuration keys understood by spacetime.
package key

// Logging - these keys manage the diagnostic log file.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI - these keys govern terminal output.
const (
	CliColored   = "cli.colored"
	IconsVariant = "icons.variant"
)

// Playback - these keys tune the scheduler of compositions built by the CLI.
const (
	PlaybackUpdateThrottle = "playback.update_throttle"
	PlaybackFrameInterval  = "playback.frame_interval"
	PlaybackLoadAhead      = "playback.load_ahead"
	PlaybackRate           = "playback.rate"
)

const (
	TimecodeFrameRate = "timecode.frame_rate"
)

const (
	MetricsEnable = "metrics.enable"
)

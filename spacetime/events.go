package spacetime

// ClipEvent is an event emitted by a clip.
type ClipEvent string

const (
	ClipActivate       ClipEvent = "activate"
	ClipDeactivate     ClipEvent = "deactivate"
	ClipTimeChange     ClipEvent = "timechange"
	ClipLoadedMetadata ClipEvent = "loadedmetadata"
	ClipProgress       ClipEvent = "progress"
	ClipEnabled        ClipEvent = "enabled"
	ClipDisabled       ClipEvent = "disabled"

	// forwarded from the source
	ClipPlay    ClipEvent = "play"
	ClipPause   ClipEvent = "pause"
	ClipPlaying ClipEvent = "playing"
	ClipWaiting ClipEvent = "waiting"
	ClipSeeking ClipEvent = "seeking"
	ClipSeeked  ClipEvent = "seeked"
	ClipStalled ClipEvent = "stalled"
	ClipSuspend ClipEvent = "suspend"
	ClipError   ClipEvent = "error"
)

// Event is an event emitted by a composition.
type Event string

const (
	EventTimeUpdate     Event = "timeupdate"
	EventDurationChange Event = "durationchange"
	EventProgress       Event = "progress"
	EventSeeking        Event = "seeking"
	EventSeeked         Event = "seeked"
	EventPlay           Event = "play"
	EventPause          Event = "pause"
	EventPlaying        Event = "playing"
	EventWaiting        Event = "waiting"
	EventEnded          Event = "ended"
	EventRateChange     Event = "ratechange"
	EventClipAdded      Event = "clipadded"
	EventClipRemoved    Event = "clipremoved"
)

// Notice is the payload of a composition event.
type Notice struct {
	Event Event

	// Time is the playhead position when the event was emitted.
	Time float64

	// Clip is set for clipadded and clipremoved.
	Clip *Clip
}

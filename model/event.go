package model

type EventType uint8

const (
	EventTempo EventType = iota
	EventNoteOn
	EventNoteOff
	EventControl
	EventOther
)

// Event is the already-decoded form of one timed message. Control and Other
// events keep their original wire bytes so they can be re-emitted untouched.
type Event struct {
	Type          EventType
	Channel       uint8
	Key           uint8
	Velocity      uint8
	MicrosPerBeat uint32
	Raw           []byte
}

// TrackEvent pairs an event with its delta time relative to the previous
// event in the same track. Deltas are signed so a malformed negative
// cumulative position is representable and can be rejected.
type TrackEvent struct {
	Delta int64
	Event Event
}

type Track = []TrackEvent

type TempoChange struct {
	Tick          uint64
	MicrosPerBeat uint32
}

package model

// NoteInterval is one matched note-on/note-off pair. Resolution never mutates
// intervals in place; clipped copies are produced instead.
type NoteInterval struct {
	Track        int
	Channel      uint8
	Key          uint8
	Velocity     uint8
	StartTick    uint64
	EndTick      uint64
	StartSeconds float64
	EndSeconds   float64
}

func (n NoteInterval) DurationSeconds() float64 {
	return n.EndSeconds - n.StartSeconds
}

func (n NoteInterval) DurationTicks() uint64 {
	return n.EndTick - n.StartTick
}

// OverlapRecord describes one detected overlap between two intervals on the
// same channel. Purely descriptive.
type OverlapRecord struct {
	A            NoteInterval
	B            NoteInterval
	StartSeconds float64
	EndSeconds   float64
	SameTrack    bool
	SameKey      bool
}

package model

// TriState reports one processing concern independently of the others.
type TriState uint8

const (
	NotApplicable TriState = iota
	NotChanged
	Changed
)

func (t TriState) String() string {
	switch t {
	case NotChanged:
		return "not changed"
	case Changed:
		return "changed"
	}
	return "n/a"
}

// Options selects what Process does to one file.
type Options struct {
	// TargetBPM is ignored unless ApplyTempoConversion is set.
	TargetBPM            float64
	ApplyTempoConversion bool
	StripControlEvents   bool
	// ForceVelocity overrides every note's velocity when non-nil. The value
	// is clamped to 1..127 on use.
	ForceVelocity         *uint8
	SkipIfAlreadyMatching bool
	DetectOverlaps        bool
	FixOverlaps           bool
	// ResolveCrossTrack pools all tracks' notes per channel when fixing
	// overlaps. When false, each track is resolved independently.
	ResolveCrossTrack bool
}

// Result describes what happened to one file.
type Result struct {
	// OriginalTempos holds every distinct µs/beat value encountered, in
	// order of first appearance. One entry means constant tempo.
	OriginalTempos []uint32
	MultiTempo     bool

	// Tracks is nil when the file was skipped.
	Tracks  []Track
	Skipped bool

	NotesBefore     int
	NotesAfter      int
	UnmatchedStarts int

	OverlapTotal     int
	OverlapSameTrack int
	OverlapCross     int

	Tempo    TriState
	Controls TriState
	Velocity TriState
	Overlaps TriState
}

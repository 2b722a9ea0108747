package tempomap

import (
	"fmt"
	"math"
	"sort"

	"github.com/jsphweid/retempo/model"
)

// DefaultMicrosPerBeat is the MIDI fallback tempo (120 BPM).
const DefaultMicrosPerBeat = 500000

// TempoMap converts between absolute ticks and absolute seconds for one
// file. Immutable once built; never shared across files.
type TempoMap struct {
	changes      []model.TempoChange
	ticksPerBeat uint16
}

// Collect gathers tempo observations from every track in a single forward
// scan. Tempo meta events may legally appear on any track.
func Collect(tracks []model.Track) ([]model.TempoChange, error) {
	var res []model.TempoChange
	for i, track := range tracks {
		var absTicks int64
		for _, evt := range track {
			absTicks += evt.Delta
			if absTicks < 0 {
				return nil, fmt.Errorf("track %v: negative cumulative tick %v", i, absTicks)
			}
			if evt.Event.Type == model.EventTempo {
				res = append(res, model.TempoChange{
					Tick:          uint64(absTicks),
					MicrosPerBeat: evt.Event.MicrosPerBeat,
				})
			}
		}
	}
	return res, nil
}

// New builds a normalized map from raw observations. A zero ticks-per-beat
// resolution means the file header is malformed. Non-positive tempo values
// are corrected to the default rather than rejected. The first entry is
// always at tick 0: time before the earliest explicit change is governed by
// that change's tempo.
func New(changes []model.TempoChange, ticksPerBeat uint16) (*TempoMap, error) {
	if ticksPerBeat == 0 {
		return nil, fmt.Errorf("invalid ticks per beat: %v", ticksPerBeat)
	}

	normalized := make([]model.TempoChange, len(changes))
	copy(normalized, changes)
	for i := range normalized {
		if normalized[i].MicrosPerBeat == 0 {
			normalized[i].MicrosPerBeat = DefaultMicrosPerBeat
		}
	}
	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].Tick < normalized[j].Tick
	})

	if len(normalized) == 0 {
		normalized = []model.TempoChange{{Tick: 0, MicrosPerBeat: DefaultMicrosPerBeat}}
	} else if normalized[0].Tick > 0 {
		first := model.TempoChange{Tick: 0, MicrosPerBeat: normalized[0].MicrosPerBeat}
		normalized = append([]model.TempoChange{first}, normalized...)
	}

	return &TempoMap{changes: normalized, ticksPerBeat: ticksPerBeat}, nil
}

// TicksToSeconds walks the change list, accumulating the seconds of every
// fully elapsed tempo segment plus the partial segment containing tick.
func (tm *TempoMap) TicksToSeconds(tick uint64) float64 {
	var total float64
	var lastTick uint64
	lastTempo := tm.changes[0].MicrosPerBeat

	for _, change := range tm.changes {
		if tick <= change.Tick {
			return total + segmentSeconds(tick-lastTick, lastTempo, tm.ticksPerBeat)
		}
		total += segmentSeconds(change.Tick-lastTick, lastTempo, tm.ticksPerBeat)
		lastTick = change.Tick
		lastTempo = change.MicrosPerBeat
	}
	return total + segmentSeconds(tick-lastTick, lastTempo, tm.ticksPerBeat)
}

func segmentSeconds(ticks uint64, microsPerBeat uint32, ticksPerBeat uint16) float64 {
	beats := float64(ticks) / float64(ticksPerBeat)
	return beats * float64(microsPerBeat) / 1000000.0
}

// SecondsToTicks inverts against a single target tempo, not the piecewise
// map. Used after retiming, where the whole file runs at one tempo.
// Rounding is half-away-from-zero.
func SecondsToTicks(seconds float64, microsPerBeat uint32, ticksPerBeat uint16) uint64 {
	secondsPerBeat := float64(microsPerBeat) / 1000000.0
	beats := seconds / secondsPerBeat
	return uint64(math.Round(beats * float64(ticksPerBeat)))
}

func (tm *TempoMap) TicksPerBeat() uint16 {
	return tm.ticksPerBeat
}

// FirstTempo is the tempo in effect at tick 0.
func (tm *TempoMap) FirstTempo() uint32 {
	return tm.changes[0].MicrosPerBeat
}

func (tm *TempoMap) Changes() []model.TempoChange {
	return tm.changes
}

// DistinctTempos lists every distinct tempo value in order of first use.
func (tm *TempoMap) DistinctTempos() []uint32 {
	seen := make(map[uint32]bool)
	var res []uint32
	for _, c := range tm.changes {
		if !seen[c.MicrosPerBeat] {
			seen[c.MicrosPerBeat] = true
			res = append(res, c.MicrosPerBeat)
		}
	}
	return res
}

// MultiTempo reports whether the file actually changes speed, i.e. carries
// more than one distinct tempo value.
func (tm *TempoMap) MultiTempo() bool {
	return len(tm.DistinctTempos()) > 1
}

func TempoToBPM(microsPerBeat uint32) float64 {
	if microsPerBeat == 0 {
		return 120.0
	}
	return 60000000.0 / float64(microsPerBeat)
}

func BPMToTempo(bpm float64) uint32 {
	if bpm <= 0 {
		return DefaultMicrosPerBeat
	}
	return uint32(60000000.0 / bpm)
}

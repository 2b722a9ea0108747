package retime

import (
	"sort"

	"github.com/jsphweid/retempo/model"
	"github.com/jsphweid/retempo/tempomap"
)

// Options selects how tracks are re-emitted.
type Options struct {
	// TargetTempo is the single µs/beat the output runs at.
	TargetTempo uint32
	// StripControls drops the control-change family instead of retiming it.
	StripControls bool
	// ForceVelocity overrides note velocities when non-nil (clamped 1..127).
	ForceVelocity *uint8
}

type absEvent struct {
	tick  uint64
	event model.Event
}

// Tracks re-emits every track against a single target tempo. Note events are
// synthesized fresh from the interval set; kept non-note events are moved to
// the tick that preserves their wall-clock position under the new tempo.
// Events are stably sorted by new absolute tick (ties keep original relative
// order) and converted back to consecutive deltas.
func Tracks(tracks []model.Track, notes []model.NoteInterval, tm *tempomap.TempoMap, opts Options) []model.Track {
	perTrack := make([][]absEvent, len(tracks))

	// The output tempo lives at tick 0 of the first track.
	if len(tracks) > 0 {
		perTrack[0] = append(perTrack[0], absEvent{
			tick:  0,
			event: model.Event{Type: model.EventTempo, MicrosPerBeat: opts.TargetTempo},
		})
	}

	for trackIdx, track := range tracks {
		var absTicks int64
		for _, evt := range track {
			absTicks += evt.Delta

			switch evt.Event.Type {
			case model.EventNoteOn, model.EventNoteOff:
				// re-synthesized from the interval set below
				continue
			case model.EventTempo:
				// replaced by the single target tempo
				continue
			case model.EventControl:
				if opts.StripControls {
					continue
				}
			}

			seconds := tm.TicksToSeconds(uint64(absTicks))
			newTick := tempomap.SecondsToTicks(seconds, opts.TargetTempo, tm.TicksPerBeat())
			perTrack[trackIdx] = append(perTrack[trackIdx], absEvent{tick: newTick, event: evt.Event})
		}
	}

	for _, n := range notes {
		if n.Track < 0 || n.Track >= len(tracks) {
			continue
		}
		startTick := tempomap.SecondsToTicks(n.StartSeconds, opts.TargetTempo, tm.TicksPerBeat())
		endTick := tempomap.SecondsToTicks(n.EndSeconds, opts.TargetTempo, tm.TicksPerBeat())

		velocity := n.Velocity
		if opts.ForceVelocity != nil {
			velocity = clampVelocity(*opts.ForceVelocity)
		}

		perTrack[n.Track] = append(perTrack[n.Track],
			absEvent{tick: startTick, event: model.Event{
				Type:     model.EventNoteOn,
				Channel:  n.Channel,
				Key:      n.Key,
				Velocity: velocity,
			}},
			absEvent{tick: endTick, event: model.Event{
				Type:    model.EventNoteOff,
				Channel: n.Channel,
				Key:     n.Key,
			}})
	}

	res := make([]model.Track, len(tracks))
	for trackIdx, events := range perTrack {
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].tick < events[j].tick
		})

		var lastTick uint64
		var out model.Track
		for _, ae := range events {
			out = append(out, model.TrackEvent{
				Delta: int64(ae.tick - lastTick),
				Event: ae.event,
			})
			lastTick = ae.tick
		}
		res[trackIdx] = out
	}
	return res
}

func clampVelocity(v uint8) uint8 {
	if v == 0 {
		return 1
	}
	if v > 127 {
		return 127
	}
	return v
}

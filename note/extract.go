package note

import (
	"fmt"
	"sort"

	"github.com/jsphweid/retempo/model"
	"github.com/jsphweid/retempo/tempomap"
)

type noteKey struct {
	key     uint8
	channel uint8
}

type pendingStart struct {
	tick     uint64
	velocity uint8
}

// ExtractTrack walks one track's event stream once and pairs note starts
// with note stops into closed intervals. A note-on with zero velocity is a
// stop. Pending starts for one (key, channel) form a FIFO queue: a file may
// start the same pitch again before stopping the first instance, and pairing
// must preserve the sounding order rather than swap durations around.
// Starts with no stop before end of track are dropped and counted.
func ExtractTrack(trackIdx int, track model.Track, tm *tempomap.TempoMap) ([]model.NoteInterval, int, error) {
	var res []model.NoteInterval
	pending := make(map[noteKey][]pendingStart)

	var absTicks int64
	for _, evt := range track {
		absTicks += evt.Delta
		if absTicks < 0 {
			return nil, 0, fmt.Errorf("track %v: negative cumulative tick %v", trackIdx, absTicks)
		}

		e := evt.Event
		switch {
		case e.Type == model.EventNoteOn && e.Velocity > 0:
			k := noteKey{key: e.Key, channel: e.Channel}
			pending[k] = append(pending[k], pendingStart{
				tick:     uint64(absTicks),
				velocity: e.Velocity,
			})

		case e.Type == model.EventNoteOff || (e.Type == model.EventNoteOn && e.Velocity == 0):
			k := noteKey{key: e.Key, channel: e.Channel}
			queue := pending[k]
			if len(queue) == 0 {
				// stop with no matching start, ignore
				continue
			}
			start := queue[0]
			if len(queue) == 1 {
				delete(pending, k)
			} else {
				pending[k] = queue[1:]
			}

			endTick := uint64(absTicks)
			res = append(res, model.NoteInterval{
				Track:        trackIdx,
				Channel:      e.Channel,
				Key:          e.Key,
				Velocity:     start.velocity,
				StartTick:    start.tick,
				EndTick:      endTick,
				StartSeconds: tm.TicksToSeconds(start.tick),
				EndSeconds:   tm.TicksToSeconds(endTick),
			})
		}
	}

	var unmatched int
	for _, queue := range pending {
		unmatched += len(queue)
	}
	if unmatched > 0 {
		fmt.Printf("Warning: track %v has %v note starts without a matching stop\n", trackIdx+1, unmatched)
	}

	return res, unmatched, nil
}

// Extract runs ExtractTrack over every track and returns the combined
// interval set, stably sorted by start seconds for deterministic downstream
// processing.
func Extract(tracks []model.Track, tm *tempomap.TempoMap) ([]model.NoteInterval, int, error) {
	var res []model.NoteInterval
	var unmatched int
	for i, track := range tracks {
		notes, u, err := ExtractTrack(i, track, tm)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, notes...)
		unmatched += u
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].StartSeconds < res[j].StartSeconds
	})
	return res, unmatched, nil
}

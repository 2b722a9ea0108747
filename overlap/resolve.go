package overlap

import (
	"sort"

	"github.com/jsphweid/retempo/constants"
	"github.com/jsphweid/retempo/model"
	"github.com/jsphweid/retempo/util"
)

// Resolve rewrites an interval set so no two resolvable notes on a channel
// overlap. Inputs are never mutated; the returned list may be shorter than
// the input (clips that leave a sub-millisecond remnant are dropped) but
// never longer.
//
// crossTrack chooses the scoping: true pools all tracks' notes per channel
// (the input is conceptually monophonic per channel), false resolves each
// track independently and leaves cross-track relationships untouched
// (intentional multi-instrument arrangement).
func Resolve(notes []model.NoteInterval, crossTrack bool) []model.NoteInterval {
	if len(notes) == 0 {
		return nil
	}

	groups := make(map[int][]model.NoteInterval)
	for _, n := range notes {
		k := groupKey(n, crossTrack)
		groups[k] = append(groups[k], n)
	}

	keys := util.GetKeys(groups)
	sort.Ints(keys)

	var res []model.NoteInterval
	for _, k := range keys {
		res = append(res, resolveGroup(groups[k])...)
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].StartSeconds < res[j].StartSeconds
	})
	return res
}

func groupKey(n model.NoteInterval, crossTrack bool) int {
	if crossTrack {
		return int(n.Channel)
	}
	return n.Track<<8 | int(n.Channel)
}

// resolveGroup runs the two passes over one channel's (or one track+channel's)
// notes. Same-pitch overlaps are judged first: once cross-pitch clipping has
// rewritten boundaries, two instances of one pitch can no longer be told
// apart from an ordinary chord change.
func resolveGroup(notes []model.NoteInterval) []model.NoteInterval {
	working := make([]model.NoteInterval, len(notes))
	copy(working, notes)

	sort.SliceStable(working, func(i, j int) bool {
		return working[i].StartSeconds < working[j].StartSeconds
	})

	working = fixSameKeyOverlaps(working)
	working = fixCrossKeyOverlaps(working)
	return working
}

// fixSameKeyOverlaps clips, within each pitch group, every instance that is
// still sounding when the next instance of the same pitch starts. The later
// instance wins: cur.end moves to next.start, never the other way around.
// Overlap is re-checked on current boundaries after each clip.
func fixSameKeyOverlaps(notes []model.NoteInterval) []model.NoteInterval {
	byKey := make(map[int][]int)
	for i, n := range notes {
		byKey[int(n.Key)] = append(byKey[int(n.Key)], i)
	}

	for _, indexes := range byKey {
		if len(indexes) < 2 {
			continue
		}
		sort.SliceStable(indexes, func(a, b int) bool {
			return notes[indexes[a]].StartSeconds < notes[indexes[b]].StartSeconds
		})
		for i := 0; i < len(indexes)-1; i++ {
			cur := &notes[indexes[i]]
			next := notes[indexes[i+1]]
			if cur.EndSeconds > next.StartSeconds {
				clipEnd(cur, next.StartSeconds)
			}
		}
	}

	var res []model.NoteInterval
	for _, n := range notes {
		if n.DurationSeconds() > constants.MinNoteSeconds {
			res = append(res, n)
		}
	}
	return res
}

// fixCrossKeyOverlaps scans adjacent pairs of different pitches in start
// order and clips the earlier-starting note to the later one's start. A clip
// that leaves at most a millisecond drops the note instead of emitting a
// degenerate near-zero one; the scan stays put because the list shrank.
func fixCrossKeyOverlaps(notes []model.NoteInterval) []model.NoteInterval {
	working := make([]model.NoteInterval, len(notes))
	copy(working, notes)
	sort.SliceStable(working, func(i, j int) bool {
		return working[i].StartSeconds < working[j].StartSeconds
	})

	i := 0
	for i < len(working)-1 {
		cur := &working[i]
		next := working[i+1]

		if cur.Key != next.Key &&
			cur.StartSeconds < next.EndSeconds &&
			next.StartSeconds < cur.EndSeconds {
			clipEnd(cur, next.StartSeconds)
			if cur.DurationSeconds() <= constants.MinNoteSeconds {
				working = append(working[:i], working[i+1:]...)
				continue
			}
		}
		i++
	}
	return working
}

// clipEnd shortens a note to end at newEnd, shrinking its tick duration in
// proportion to the shortened second duration.
func clipEnd(n *model.NoteInterval, newEnd float64) {
	oldDur := n.DurationSeconds()
	if oldDur > 0 {
		ratio := (newEnd - n.StartSeconds) / oldDur
		if ratio < 0 {
			ratio = 0
		}
		n.EndTick = n.StartTick + uint64(float64(n.DurationTicks())*ratio)
	}
	n.EndSeconds = newEnd
}

package overlap

import (
	"github.com/jsphweid/retempo/model"
)

// Summary aggregates every detected overlap in one interval set.
type Summary struct {
	Records   []model.OverlapRecord
	SameTrack int
	CrossTrack int
}

func (s Summary) Total() int {
	return len(s.Records)
}

func (s Summary) HasOverlap() bool {
	return len(s.Records) > 0
}

// Analyze finds all pairwise temporal overlaps between notes sharing a
// channel. The test is on open intervals: notes that merely touch at a
// boundary do not overlap. Pairwise comparison is fine at the scale of
// typical files; the contract is "detect all true overlaps", not a specific
// algorithm.
func Analyze(notes []model.NoteInterval) Summary {
	var res Summary
	for i := 0; i < len(notes); i++ {
		for j := i + 1; j < len(notes); j++ {
			a, b := notes[i], notes[j]
			if a.Channel != b.Channel {
				continue
			}
			if !(a.StartSeconds < b.EndSeconds && b.StartSeconds < a.EndSeconds) {
				continue
			}

			rec := model.OverlapRecord{
				A:            a,
				B:            b,
				StartSeconds: maxFloat(a.StartSeconds, b.StartSeconds),
				EndSeconds:   minFloat(a.EndSeconds, b.EndSeconds),
				SameTrack:    a.Track == b.Track,
				SameKey:      a.Key == b.Key,
			}
			res.Records = append(res.Records, rec)
			if rec.SameTrack {
				res.SameTrack++
			} else {
				res.CrossTrack++
			}
		}
	}
	return res
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

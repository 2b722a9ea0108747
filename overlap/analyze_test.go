package overlap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/retempo/model"
)

func interval(track int, channel uint8, key uint8, start, end float64) model.NoteInterval {
	return model.NoteInterval{
		Track:        track,
		Channel:      channel,
		Key:          key,
		Velocity:     80,
		StartTick:    uint64(start * 960),
		EndTick:      uint64(end * 960),
		StartSeconds: start,
		EndSeconds:   end,
	}
}

func TestDetectsTrueOverlap(t *testing.T) {
	assert := assert.New(t)

	sum := Analyze([]model.NoteInterval{
		interval(0, 0, 60, 0.0, 2.0),
		interval(0, 0, 62, 1.0, 3.0),
	})

	assert.Equal(1, sum.Total())
	assert.True(sum.HasOverlap())
	rec := sum.Records[0]
	assert.InDelta(1.0, rec.StartSeconds, 1e-9)
	assert.InDelta(2.0, rec.EndSeconds, 1e-9)
	assert.True(rec.SameTrack)
	assert.False(rec.SameKey)
}

func TestTouchingIntervalsDoNotOverlap(t *testing.T) {
	sum := Analyze([]model.NoteInterval{
		interval(0, 0, 60, 0.0, 1.0),
		interval(0, 0, 62, 1.0, 2.0),
	})
	assert.Equal(t, 0, sum.Total())
}

func TestDifferentChannelsNeverOverlap(t *testing.T) {
	sum := Analyze([]model.NoteInterval{
		interval(0, 0, 60, 0.0, 2.0),
		interval(0, 1, 60, 0.0, 2.0),
	})
	assert.Equal(t, 0, sum.Total())
}

func TestSameTrackVsCrossTrackCounts(t *testing.T) {
	assert := assert.New(t)

	sum := Analyze([]model.NoteInterval{
		interval(0, 0, 60, 0.0, 2.0),
		interval(0, 0, 60, 1.0, 3.0), // same track, same key
		interval(1, 0, 64, 0.5, 1.5), // cross track vs both
	})

	assert.Equal(3, sum.Total())
	assert.Equal(1, sum.SameTrack)
	assert.Equal(2, sum.CrossTrack)

	var sameKey int
	for _, rec := range sum.Records {
		if rec.SameKey {
			sameKey++
		}
	}
	assert.Equal(1, sameKey)
}

func TestEmptySetHasNoOverlaps(t *testing.T) {
	sum := Analyze(nil)
	assert.False(t, sum.HasOverlap())
}

package note

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/retempo/model"
	"github.com/jsphweid/retempo/tempomap"
)

func constantTempoMap(t *testing.T) *tempomap.TempoMap {
	tm, err := tempomap.New([]model.TempoChange{{Tick: 0, MicrosPerBeat: 500000}}, 480)
	if err != nil {
		t.Fatal(err)
	}
	return tm
}

func noteOn(delta int64, key uint8, velocity uint8) model.TrackEvent {
	return model.TrackEvent{Delta: delta, Event: model.Event{
		Type: model.EventNoteOn, Key: key, Velocity: velocity,
	}}
}

func noteOff(delta int64, key uint8) model.TrackEvent {
	return model.TrackEvent{Delta: delta, Event: model.Event{
		Type: model.EventNoteOff, Key: key,
	}}
}

func TestFIFOPairingOfOverlappingSamePitch(t *testing.T) {
	assert := assert.New(t)

	// two starts of pitch 60 at ticks 0 and 10, stops at ticks 20 and 30:
	// first sounded pairs with first stopped
	track := model.Track{
		noteOn(0, 60, 80),
		noteOn(10, 60, 90),
		noteOff(10, 60),
		noteOff(10, 60),
	}

	notes, unmatched, err := ExtractTrack(0, track, constantTempoMap(t))
	assert.NoError(err)
	assert.Equal(0, unmatched)
	assert.Equal(2, len(notes))

	assert.Equal(uint64(0), notes[0].StartTick)
	assert.Equal(uint64(20), notes[0].EndTick)
	assert.Equal(uint8(80), notes[0].Velocity)

	assert.Equal(uint64(10), notes[1].StartTick)
	assert.Equal(uint64(30), notes[1].EndTick)
	assert.Equal(uint8(90), notes[1].Velocity)
}

func TestZeroVelocityNoteOnIsAStop(t *testing.T) {
	assert := assert.New(t)

	track := model.Track{
		noteOn(0, 64, 100),
		noteOn(480, 64, 0),
	}

	notes, unmatched, err := ExtractTrack(0, track, constantTempoMap(t))
	assert.NoError(err)
	assert.Equal(0, unmatched)
	assert.Equal(1, len(notes))
	assert.Equal(uint64(480), notes[0].EndTick)
	assert.InDelta(0.5, notes[0].EndSeconds, 1e-9)
}

func TestUnmatchedStartsAreDroppedAndCounted(t *testing.T) {
	assert := assert.New(t)

	track := model.Track{
		noteOn(0, 60, 80),
		noteOn(10, 62, 80),
		noteOff(10, 62),
	}

	notes, unmatched, err := ExtractTrack(0, track, constantTempoMap(t))
	assert.NoError(err)
	assert.Equal(1, unmatched)
	assert.Equal(1, len(notes))
	assert.Equal(uint8(62), notes[0].Key)
}

func TestStopWithoutStartIsIgnored(t *testing.T) {
	assert := assert.New(t)

	track := model.Track{
		noteOff(0, 60),
		noteOn(10, 60, 80),
		noteOff(10, 60),
	}

	notes, unmatched, err := ExtractTrack(0, track, constantTempoMap(t))
	assert.NoError(err)
	assert.Equal(0, unmatched)
	assert.Equal(1, len(notes))
	assert.Equal(uint64(10), notes[0].StartTick)
}

func TestChannelsPairIndependently(t *testing.T) {
	assert := assert.New(t)

	track := model.Track{
		{Delta: 0, Event: model.Event{Type: model.EventNoteOn, Channel: 0, Key: 60, Velocity: 80}},
		{Delta: 10, Event: model.Event{Type: model.EventNoteOn, Channel: 1, Key: 60, Velocity: 80}},
		{Delta: 10, Event: model.Event{Type: model.EventNoteOff, Channel: 1, Key: 60}},
		{Delta: 10, Event: model.Event{Type: model.EventNoteOff, Channel: 0, Key: 60}},
	}

	notes, _, err := ExtractTrack(0, track, constantTempoMap(t))
	assert.NoError(err)
	assert.Equal(2, len(notes))
	// channel 0 spans everything, channel 1 nests inside
	for _, n := range notes {
		if n.Channel == 0 {
			assert.Equal(uint64(0), n.StartTick)
			assert.Equal(uint64(30), n.EndTick)
		} else {
			assert.Equal(uint64(10), n.StartTick)
			assert.Equal(uint64(20), n.EndTick)
		}
	}
}

func TestExtractSortsByStartSeconds(t *testing.T) {
	assert := assert.New(t)

	tracks := []model.Track{
		{noteOn(480, 60, 80), noteOff(480, 60)},
		{noteOn(0, 62, 80), noteOff(240, 62)},
	}

	notes, _, err := Extract(tracks, constantTempoMap(t))
	assert.NoError(err)
	assert.Equal(2, len(notes))
	assert.Equal(uint8(62), notes[0].Key)
	assert.Equal(1, notes[0].Track)
	assert.Equal(uint8(60), notes[1].Key)
	assert.Equal(0, notes[1].Track)
}

func TestRejectsNegativeCumulativeTick(t *testing.T) {
	track := model.Track{
		noteOn(10, 60, 80),
		noteOff(-20, 60),
	}
	_, _, err := ExtractTrack(0, track, constantTempoMap(t))
	assert.Error(t, err)
}

func TestEmptyTrackIsValid(t *testing.T) {
	assert := assert.New(t)

	notes, unmatched, err := Extract([]model.Track{{}}, constantTempoMap(t))
	assert.NoError(err)
	assert.Equal(0, unmatched)
	assert.Equal(0, len(notes))
}

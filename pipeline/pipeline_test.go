package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/retempo/model"
)

func tempoEvent(delta int64, micros uint32) model.TrackEvent {
	return model.TrackEvent{Delta: delta, Event: model.Event{
		Type: model.EventTempo, MicrosPerBeat: micros,
	}}
}

func noteOn(delta int64, key, velocity uint8) model.TrackEvent {
	return model.TrackEvent{Delta: delta, Event: model.Event{
		Type: model.EventNoteOn, Key: key, Velocity: velocity,
	}}
}

func noteOff(delta int64, key uint8) model.TrackEvent {
	return model.TrackEvent{Delta: delta, Event: model.Event{
		Type: model.EventNoteOff, Key: key,
	}}
}

func control(delta int64) model.TrackEvent {
	return model.TrackEvent{Delta: delta, Event: model.Event{
		Type: model.EventControl, Raw: []byte{0xB0, 0x40, 0x7F},
	}}
}

// one track at 120 BPM with a single clean quarter note
func simpleTracks() []model.Track {
	return []model.Track{{
		tempoEvent(0, 500000),
		noteOn(0, 60, 80),
		noteOff(480, 60),
	}}
}

func TestConvertsTempo(t *testing.T) {
	assert := assert.New(t)

	res, err := Process(simpleTracks(), 480, model.Options{
		TargetBPM:            90,
		ApplyTempoConversion: true,
	})
	assert.Nil(err)
	assert.False(res.Skipped)
	assert.Equal(model.Changed, res.Tempo)
	assert.Equal(model.NotApplicable, res.Controls)
	assert.Equal(model.NotApplicable, res.Velocity)
	assert.Equal(model.NotApplicable, res.Overlaps)
	assert.Equal([]uint32{500000}, res.OriginalTempos)
	assert.False(res.MultiTempo)
	assert.Equal(1, res.NotesBefore)
	assert.Equal(1, res.NotesAfter)

	// 90 BPM = 666666 us/beat
	assert.Equal(model.EventTempo, res.Tracks[0][0].Event.Type)
	assert.Equal(uint32(666666), res.Tracks[0][0].Event.MicrosPerBeat)
}

func TestSkipsWhenAlreadyMatching(t *testing.T) {
	assert := assert.New(t)

	res, err := Process(simpleTracks(), 480, model.Options{
		TargetBPM:             120,
		ApplyTempoConversion:  true,
		SkipIfAlreadyMatching: true,
	})
	assert.Nil(err)
	assert.True(res.Skipped)
	assert.Nil(res.Tracks)
	assert.Equal(model.NotChanged, res.Tempo)

	// running the same input again must make the same call
	res2, err := Process(simpleTracks(), 480, model.Options{
		TargetBPM:             120,
		ApplyTempoConversion:  true,
		SkipIfAlreadyMatching: true,
	})
	assert.Nil(err)
	assert.True(res2.Skipped)
}

func TestProcessingTwiceIsStable(t *testing.T) {
	assert := assert.New(t)

	tracks := []model.Track{{
		tempoEvent(0, 500000),
		noteOn(0, 60, 80),
		noteOn(240, 64, 80), // overlaps the first note
		noteOff(240, 60),
		noteOff(240, 64),
		control(0),
	}}
	opts := model.Options{
		TargetBPM:            100,
		ApplyTempoConversion: true,
		FixOverlaps:          true,
	}

	first, err := Process(tracks, 480, opts)
	assert.Nil(err)

	second, err := Process(first.Tracks, 480, opts)
	assert.Nil(err)
	assert.Equal(first.Tracks, second.Tracks)
	assert.Equal(first.NotesAfter, second.NotesBefore)
}

func TestMultiTempoNeverCountsAsMatching(t *testing.T) {
	assert := assert.New(t)

	tracks := []model.Track{{
		tempoEvent(0, 500000),
		noteOn(0, 60, 80),
		tempoEvent(240, 250000),
		noteOff(240, 60),
	}}

	res, err := Process(tracks, 480, model.Options{
		TargetBPM:             120,
		ApplyTempoConversion:  true,
		SkipIfAlreadyMatching: true,
	})
	assert.Nil(err)
	assert.False(res.Skipped)
	assert.True(res.MultiTempo)
	assert.Equal(model.Changed, res.Tempo)
	assert.Equal([]uint32{500000, 250000}, res.OriginalTempos)
}

func TestCrossTrackOverlapDoesNotBlockSkip(t *testing.T) {
	assert := assert.New(t)

	// same window on two different tracks: an overlap exists, but without
	// cross-track resolution it is not actionable
	tracks := []model.Track{
		{tempoEvent(0, 500000), noteOn(0, 60, 80), noteOff(480, 60)},
		{noteOn(0, 64, 80), noteOff(480, 64)},
	}
	opts := model.Options{
		TargetBPM:             120,
		ApplyTempoConversion:  true,
		SkipIfAlreadyMatching: true,
		FixOverlaps:           true,
	}

	res, err := Process(tracks, 480, opts)
	assert.Nil(err)
	assert.True(res.Skipped)
	assert.Equal(1, res.OverlapCross)
	assert.Equal(0, res.OverlapSameTrack)

	opts.ResolveCrossTrack = true
	res, err = Process(tracks, 480, opts)
	assert.Nil(err)
	assert.False(res.Skipped)
	assert.Equal(model.Changed, res.Overlaps)
	assert.Equal(2, res.NotesBefore)
	assert.Equal(1, res.NotesAfter) // cross-pitch pass drops the zero-length clip
}

func TestStripControlsBlocksSkip(t *testing.T) {
	assert := assert.New(t)

	tracks := []model.Track{{
		tempoEvent(0, 500000),
		control(0),
		noteOn(0, 60, 80),
		noteOff(480, 60),
	}}

	res, err := Process(tracks, 480, model.Options{
		TargetBPM:             120,
		ApplyTempoConversion:  true,
		SkipIfAlreadyMatching: true,
		StripControlEvents:    true,
	})
	assert.Nil(err)
	assert.False(res.Skipped)
	assert.Equal(model.Changed, res.Controls)
	for _, track := range res.Tracks {
		for _, evt := range track {
			assert.NotEqual(model.EventControl, evt.Event.Type)
		}
	}
}

func TestVelocityClassification(t *testing.T) {
	assert := assert.New(t)

	v := uint8(80)
	res, err := Process(simpleTracks(), 480, model.Options{ForceVelocity: &v})
	assert.Nil(err)
	assert.Equal(model.NotChanged, res.Velocity)

	other := uint8(100)
	res, err = Process(simpleTracks(), 480, model.Options{ForceVelocity: &other})
	assert.Nil(err)
	assert.Equal(model.Changed, res.Velocity)
	assert.Equal(uint8(100), res.Tracks[0][1].Event.Velocity)
}

func TestDetectWithoutFixReportsOnly(t *testing.T) {
	assert := assert.New(t)

	tracks := []model.Track{{
		tempoEvent(0, 500000),
		noteOn(0, 60, 80),
		noteOn(240, 64, 80),
		noteOff(240, 60),
		noteOff(240, 64),
	}}

	res, err := Process(tracks, 480, model.Options{DetectOverlaps: true})
	assert.Nil(err)
	assert.Equal(1, res.OverlapTotal)
	assert.Equal(1, res.OverlapSameTrack)
	assert.Equal(model.NotApplicable, res.Overlaps)
	assert.Equal(res.NotesBefore, res.NotesAfter)
}

func TestZeroResolutionIsAnError(t *testing.T) {
	assert := assert.New(t)

	_, err := Process(simpleTracks(), 0, model.Options{})
	assert.NotNil(err)
}

func TestEmptyInput(t *testing.T) {
	assert := assert.New(t)

	res, err := Process(nil, 480, model.Options{DetectOverlaps: true})
	assert.Nil(err)
	assert.Equal(0, res.NotesBefore)
	assert.Equal(0, res.OverlapTotal)
	assert.Equal([]uint32{500000}, res.OriginalTempos)
}

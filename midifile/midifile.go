package midifile

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/retempo/model"
	"github.com/jsphweid/retempo/tempomap"
)

// ReadFile parses a standard MIDI file into the in-memory track form the
// pipeline operates on, plus the file's ticks-per-beat resolution.
func ReadFile(filepath string) (tracks []model.Track, ticksPerBeat uint16, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, 0, fmt.Errorf("Error reading midi file... %s", err.Error())
	}
	s, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, 0, fmt.Errorf("Error parsing midi file... %s", err.Error())
	}
	return Convert(s)
}

// Convert decodes an already-parsed SMF into model tracks.
func Convert(s *smf.SMF) ([]model.Track, uint16, error) {
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, 0, fmt.Errorf("unsupported time format: %v", s.TimeFormat)
	}

	res := make([]model.Track, len(s.Tracks))
	for i, track := range s.Tracks {
		var out model.Track
		for _, evt := range track {
			ev, keep := classify(evt.Message)
			if !keep {
				// only end-of-track is dropped and nothing follows it
				continue
			}
			out = append(out, model.TrackEvent{Delta: int64(evt.Delta), Event: ev})
		}
		res[i] = out
	}
	return res, uint16(mt), nil
}

func classify(msg smf.Message) (model.Event, bool) {
	var channel, key, velocity, controller, value, program, pressure uint8
	var rel int16
	var abs uint16
	var bpm float64
	var sysex []byte

	switch {
	case msg.GetMetaTempo(&bpm):
		micros := uint32(tempomap.DefaultMicrosPerBeat)
		if bpm > 0 {
			micros = uint32(math.Round(60000000.0 / bpm))
		}
		return model.Event{Type: model.EventTempo, MicrosPerBeat: micros}, true

	case msg.GetNoteOn(&channel, &key, &velocity):
		return model.Event{Type: model.EventNoteOn, Channel: channel, Key: key, Velocity: velocity}, true

	case msg.GetNoteOff(&channel, &key, &velocity):
		return model.Event{Type: model.EventNoteOff, Channel: channel, Key: key}, true

	case msg.GetControlChange(&channel, &controller, &value),
		msg.GetProgramChange(&channel, &program),
		msg.GetPitchBend(&channel, &rel, &abs),
		msg.GetAfterTouch(&channel, &pressure),
		msg.GetPolyAfterTouch(&channel, &key, &pressure),
		msg.GetSysEx(&sysex):
		return model.Event{Type: model.EventControl, Channel: channel, Raw: append([]byte(nil), msg...)}, true

	case msg.Is(smf.MetaEndOfTrackMsg):
		return model.Event{}, false

	default:
		return model.Event{Type: model.EventOther, Raw: append([]byte(nil), msg...)}, true
	}
}

// WriteFile re-encodes model tracks as a type-1 SMF.
func WriteFile(filepath string, tracks []model.Track, ticksPerBeat uint16) error {
	var out smf.SMF
	out.TimeFormat = smf.MetricTicks(ticksPerBeat)

	for _, track := range tracks {
		var newTrack smf.Track
		for _, te := range track {
			msg, ok := encode(te.Event)
			if !ok {
				continue
			}
			newTrack = append(newTrack, smf.Event{
				Delta:   uint32(te.Delta),
				Message: msg,
			})
		}
		newTrack.Close(0)
		out.Tracks = append(out.Tracks, newTrack)
	}

	f, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("Error creating midi file... %s", err.Error())
	}
	defer f.Close()

	if _, err := out.WriteTo(f); err != nil {
		return fmt.Errorf("Error writing midi file... %s", err.Error())
	}
	return nil
}

func encode(ev model.Event) (smf.Message, bool) {
	switch ev.Type {
	case model.EventTempo:
		return smf.MetaTempo(tempomap.TempoToBPM(ev.MicrosPerBeat)), true
	case model.EventNoteOn:
		return smf.Message(midi.NoteOn(ev.Channel, ev.Key, ev.Velocity)), true
	case model.EventNoteOff:
		return smf.Message(midi.NoteOff(ev.Channel, ev.Key)), true
	case model.EventControl, model.EventOther:
		if len(ev.Raw) == 0 {
			return nil, false
		}
		return smf.Message(ev.Raw), true
	}
	return nil, false
}

package pipeline

import (
	"math"

	"github.com/pkg/errors"

	"github.com/jsphweid/retempo/constants"
	"github.com/jsphweid/retempo/model"
	"github.com/jsphweid/retempo/note"
	"github.com/jsphweid/retempo/overlap"
	"github.com/jsphweid/retempo/retime"
	"github.com/jsphweid/retempo/tempomap"
)

// Process runs the full single-file pipeline over already-decoded tracks:
// build the tempo map, extract note intervals, detect and optionally resolve
// overlaps, retime, and re-emit. Everything is file-local; nothing is shared
// between calls.
func Process(tracks []model.Track, ticksPerBeat uint16, opts model.Options) (model.Result, error) {
	var res model.Result

	changes, err := tempomap.Collect(tracks)
	if err != nil {
		return res, errors.Wrap(err, "collecting tempo changes")
	}
	tm, err := tempomap.New(changes, ticksPerBeat)
	if err != nil {
		return res, errors.Wrap(err, "building tempo map")
	}

	notes, unmatched, err := note.Extract(tracks, tm)
	if err != nil {
		return res, errors.Wrap(err, "extracting note intervals")
	}

	res.OriginalTempos = tm.DistinctTempos()
	res.MultiTempo = tm.MultiTempo()
	res.NotesBefore = len(notes)
	res.NotesAfter = len(notes)
	res.UnmatchedStarts = unmatched

	var sum overlap.Summary
	if opts.DetectOverlaps || opts.FixOverlaps {
		sum = overlap.Analyze(notes)
		res.OverlapTotal = sum.Total()
		res.OverlapSameTrack = sum.SameTrack
		res.OverlapCross = sum.CrossTrack
	}

	// Cross-track overlap is normal (multi-instrument voicing) and only
	// actionable when the caller opted into cross-track resolution.
	actionable := sum.SameTrack > 0
	if opts.ResolveCrossTrack {
		actionable = sum.Total() > 0
	}
	needsOverlapFix := opts.FixOverlaps && actionable

	tempoMatches := !tm.MultiTempo() &&
		math.Abs(tempomap.TempoToBPM(tm.FirstTempo())-opts.TargetBPM) < constants.BPMTolerance
	tempoSatisfied := !opts.ApplyTempoConversion || tempoMatches
	needsStrip := opts.StripControlEvents && hasControlEvents(tracks)

	if opts.SkipIfAlreadyMatching && tempoSatisfied && !needsStrip && !needsOverlapFix {
		res.Skipped = true
		res.Tempo = classify(opts.ApplyTempoConversion, false)
		res.Controls = classify(opts.StripControlEvents, false)
		res.Velocity = classify(opts.ForceVelocity != nil, false)
		res.Overlaps = classify(opts.FixOverlaps, false)
		return res, nil
	}

	resolved := notes
	if opts.FixOverlaps {
		resolved = overlap.Resolve(notes, opts.ResolveCrossTrack)
	}

	target := tm.FirstTempo()
	if opts.ApplyTempoConversion {
		target = tempomap.BPMToTempo(opts.TargetBPM)
	}

	res.Tracks = retime.Tracks(tracks, resolved, tm, retime.Options{
		TargetTempo:   target,
		StripControls: opts.StripControlEvents,
		ForceVelocity: opts.ForceVelocity,
	})
	res.NotesAfter = len(resolved)

	res.Tempo = classify(opts.ApplyTempoConversion, !tempoMatches)
	res.Controls = classify(opts.StripControlEvents, needsStrip)
	res.Velocity = classify(opts.ForceVelocity != nil, velocityDiffers(notes, opts.ForceVelocity))
	res.Overlaps = classify(opts.FixOverlaps, needsOverlapFix)
	return res, nil
}

func classify(requested bool, applied bool) model.TriState {
	if !requested {
		return model.NotApplicable
	}
	if applied {
		return model.Changed
	}
	return model.NotChanged
}

func hasControlEvents(tracks []model.Track) bool {
	for _, track := range tracks {
		for _, evt := range track {
			if evt.Event.Type == model.EventControl {
				return true
			}
		}
	}
	return false
}

func velocityDiffers(notes []model.NoteInterval, force *uint8) bool {
	if force == nil {
		return false
	}
	target := *force
	if target == 0 {
		target = 1
	}
	if target > 127 {
		target = 127
	}
	for _, n := range notes {
		if n.Velocity != target {
			return true
		}
	}
	return false
}

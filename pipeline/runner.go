package pipeline

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/pkg/errors"

	"github.com/jsphweid/retempo/midifile"
	"github.com/jsphweid/retempo/model"
	"github.com/jsphweid/retempo/util"
)

// FileResult is the outcome for one input file. Err is set for malformed
// inputs; a failed file never aborts the batch.
type FileResult struct {
	Path   string
	Result model.Result
	Err    error
}

type ProgressFunc func(done, total int)

// Runner processes every MIDI file under a directory sequentially, mirroring
// the input tree into the output directory. State is per-file, so nothing
// here needs locking.
type Runner struct {
	Opts model.Options
	// Progress is called as files complete. Calls are debounced so a large
	// batch doesn't flood the consumer; the final call always arrives.
	Progress ProgressFunc
}

func (r *Runner) RunDir(inputDir, outputDir string) []FileResult {
	paths := util.GatherAllMidiPaths(inputDir, 0)
	results := make([]FileResult, 0, len(paths))

	debounced := debounce.New(100 * time.Millisecond)
	var done int

	for _, path := range paths {
		fr := FileResult{Path: path}
		fr.Result, fr.Err = r.processFile(path, inputDir, outputDir)
		results = append(results, fr)

		done++
		if r.Progress != nil {
			d := done
			debounced(func() { r.Progress(d, len(paths)) })
		}
	}

	if r.Progress != nil {
		r.Progress(done, len(paths))
	}
	return results
}

func (r *Runner) processFile(path, inputDir, outputDir string) (model.Result, error) {
	tracks, ticksPerBeat, err := midifile.ReadFile(path)
	if err != nil {
		return model.Result{}, errors.Wrapf(err, "reading %v", path)
	}

	res, err := Process(tracks, ticksPerBeat, r.Opts)
	if err != nil {
		return res, errors.Wrapf(err, "processing %v", path)
	}
	if res.Skipped || res.Tracks == nil {
		return res, nil
	}

	rel, err := filepath.Rel(inputDir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	outPath := filepath.Join(outputDir, rel)
	if err := os.MkdirAll(filepath.Dir(outPath), 0777); err != nil {
		return res, errors.Wrapf(err, "creating output dir for %v", outPath)
	}
	if err := midifile.WriteFile(outPath, res.Tracks, ticksPerBeat); err != nil {
		return res, errors.Wrapf(err, "writing %v", outPath)
	}
	return res, nil
}

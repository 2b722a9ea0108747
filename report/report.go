package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jsphweid/retempo/pipeline"
	"github.com/jsphweid/retempo/tempomap"
)

// DefaultFilename names one batch run's report.
func DefaultFilename() string {
	return "report-" + uuid.New().String() + ".csv"
}

var header = []string{
	"file", "status", "original_bpm", "multi_tempo",
	"tempo", "controls", "velocity", "overlaps",
	"notes_before", "notes_after", "unmatched_starts",
	"overlaps_total", "overlaps_same_track", "overlaps_cross_track",
	"error",
}

// WriteCSV renders one row per processed file, with every concern reported
// independently rather than as a single status string.
func WriteCSV(path string, results []pipeline.FileResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("Could not create report file: %s", err.Error())
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, fr := range results {
		if err := w.Write(row(fr)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func row(fr pipeline.FileResult) []string {
	if fr.Err != nil {
		return []string{fr.Path, "failed", "", "", "", "", "", "", "", "", "", "", "", "", fr.Err.Error()}
	}

	r := fr.Result
	status := "processed"
	if r.Skipped {
		status = "skipped"
	}

	var bpms []string
	for _, t := range r.OriginalTempos {
		bpms = append(bpms, fmt.Sprintf("%.2f", tempomap.TempoToBPM(t)))
	}

	return []string{
		fr.Path,
		status,
		strings.Join(bpms, ";"),
		strconv.FormatBool(r.MultiTempo),
		r.Tempo.String(),
		r.Controls.String(),
		r.Velocity.String(),
		r.Overlaps.String(),
		strconv.Itoa(r.NotesBefore),
		strconv.Itoa(r.NotesAfter),
		strconv.Itoa(r.UnmatchedStarts),
		strconv.Itoa(r.OverlapTotal),
		strconv.Itoa(r.OverlapSameTrack),
		strconv.Itoa(r.OverlapCross),
		"",
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsphweid/retempo/midifile"
	"github.com/jsphweid/retempo/note"
	"github.com/jsphweid/retempo/overlap"
	"github.com/jsphweid/retempo/tempomap"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Inspects one MIDI file's tempo map and overlaps",
	Long:  `Inspects one MIDI file's tempo map and overlaps`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need 1 arg...")
		}
		inspect(args[0])
	},
}

func inspect(path string) {
	tracks, ticksPerBeat, err := midifile.ReadFile(path)
	if err != nil {
		panic("Could not read file: " + err.Error())
	}

	changes, err := tempomap.Collect(tracks)
	if err != nil {
		panic("Could not collect tempo changes: " + err.Error())
	}
	tm, err := tempomap.New(changes, ticksPerBeat)
	if err != nil {
		panic("Could not build tempo map: " + err.Error())
	}

	fmt.Printf("Ticks per beat: %v\n", ticksPerBeat)
	fmt.Printf("Tempo changes (%v):\n", len(tm.Changes()))
	for i, c := range tm.Changes() {
		fmt.Printf("  %v. tick %v (%.3f s): %.2f BPM (%v us/beat)\n",
			i+1, c.Tick, tm.TicksToSeconds(c.Tick), tempomap.TempoToBPM(c.MicrosPerBeat), c.MicrosPerBeat)
	}

	notes, unmatched, err := note.Extract(tracks, tm)
	if err != nil {
		panic("Could not extract notes: " + err.Error())
	}
	fmt.Printf("Notes: %v (%v unmatched starts)\n", len(notes), unmatched)

	sum := overlap.Analyze(notes)
	fmt.Printf("Overlaps: %v total, %v same-track, %v cross-track\n",
		sum.Total(), sum.SameTrack, sum.CrossTrack)
	for _, rec := range sum.Records {
		kind := "different notes"
		if rec.SameKey {
			kind = "same note"
		}
		scope := "cross-track"
		if rec.SameTrack {
			scope = fmt.Sprintf("track %v", rec.A.Track+1)
		}
		fmt.Printf("  %v: note %v [%.3f-%.3f] vs note %v [%.3f-%.3f] overlap [%.3f-%.3f] (%v)\n",
			scope,
			rec.A.Key, rec.A.StartSeconds, rec.A.EndSeconds,
			rec.B.Key, rec.B.StartSeconds, rec.B.EndSeconds,
			rec.StartSeconds, rec.EndSeconds, kind)
	}
}

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/retempo/midifile"
	"github.com/jsphweid/retempo/model"
	"github.com/jsphweid/retempo/note"
	"github.com/jsphweid/retempo/overlap"
	"github.com/jsphweid/retempo/tempomap"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves an HTTP analysis endpoint",
	Long:  `Serves an HTTP analysis endpoint`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}

// HandleAnalyze accepts a raw MIDI file body and returns the tempo and
// overlap analysis without writing anything to disk.
func HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, 400, "Could not read request body: "+err.Error())
		return
	}

	s, err := smf.ReadFrom(bytes.NewReader(body))
	if err != nil {
		writeError(w, 400, "Could not parse midi: "+err.Error())
		return
	}
	tracks, ticksPerBeat, err := midifile.Convert(s)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}

	changes, err := tempomap.Collect(tracks)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	tm, err := tempomap.New(changes, ticksPerBeat)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}

	notes, unmatched, err := note.Extract(tracks, tm)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	sum := overlap.Analyze(notes)

	var infos []model.TempoChangeInfo
	for _, c := range tm.Changes() {
		infos = append(infos, model.TempoChangeInfo{
			Tick:          c.Tick,
			Seconds:       tm.TicksToSeconds(c.Tick),
			MicrosPerBeat: c.MicrosPerBeat,
			BPM:           tempomap.TempoToBPM(c.MicrosPerBeat),
		})
	}

	res := model.AnalyzeResponse{
		OriginalBPM:      tempomap.TempoToBPM(tm.FirstTempo()),
		MultiTempo:       tm.MultiTempo(),
		TempoChanges:     infos,
		NoteCount:        len(notes),
		UnmatchedStarts:  unmatched,
		OverlapTotal:     sum.Total(),
		OverlapSameTrack: sum.SameTrack,
		OverlapCross:     sum.CrossTrack,
	}
	json.NewEncoder(w).Encode(res)
}

func serve() {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/analyze", HandleAnalyze).Methods("POST")
	handler := cors.Default().Handler(router)
	fmt.Println("Listening on :8080")
	log.Fatal(http.ListenAndServe(":8080", handler))
}

package constants

import "os"

func GetOutputDir() string {
	path := os.Getenv("OUTPUT_PATH")
	if path != "" {
		return path
	}
	return "./out"
}

// BPMTolerance is how close the original tempo must be to the target before
// a file counts as already matching.
const BPMTolerance = 0.1

// MinNoteSeconds is the shortest note the resolver will emit. Clips at or
// below this drop the note instead.
const MinNoteSeconds = 0.001

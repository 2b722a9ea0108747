package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jsphweid/retempo/bucket"
	"github.com/jsphweid/retempo/constants"
	"github.com/jsphweid/retempo/model"
	"github.com/jsphweid/retempo/pipeline"
	"github.com/jsphweid/retempo/report"
)

var (
	targetBPM     float64
	convertTempo  bool
	stripControls bool
	forceVelocity int
	skipMatched   bool
	detectOverlap bool
	fixOverlap    bool
	crossTrack    bool
	outputDir     string
	reportPath    string
	uploadBucket  string
	uploadPrefix  string
)

func init() {
	processCmd.Flags().Float64Var(&targetBPM, "bpm", 120.0, "target BPM")
	processCmd.Flags().BoolVar(&convertTempo, "convert", true, "retime to the target BPM (false keeps the original speed)")
	processCmd.Flags().BoolVar(&stripControls, "strip-cc", true, "drop control-change family events")
	processCmd.Flags().IntVar(&forceVelocity, "velocity", -1, "force all note velocities to this value, -1 keeps originals")
	processCmd.Flags().BoolVar(&skipMatched, "skip-matched", true, "skip files that already match the target")
	processCmd.Flags().BoolVar(&detectOverlap, "detect-overlap", false, "detect overlapping notes")
	processCmd.Flags().BoolVar(&fixOverlap, "fix-overlap", false, "resolve overlapping notes")
	processCmd.Flags().BoolVar(&crossTrack, "cross-track", false, "pool tracks per channel when resolving overlaps")
	processCmd.Flags().StringVar(&outputDir, "out", constants.GetOutputDir(), "output directory")
	processCmd.Flags().StringVar(&reportPath, "report", "", "CSV report path (default: uuid-stamped file in the output dir)")
	processCmd.Flags().StringVar(&uploadBucket, "upload-bucket", "", "S3 bucket to upload processed files to")
	processCmd.Flags().StringVar(&uploadPrefix, "upload-prefix", "retempo", "S3 key prefix")
	rootCmd.AddCommand(processCmd)
}

var processCmd = &cobra.Command{
	Use:   "process [input dir]",
	Short: "Processes all MIDI files under a directory",
	Long:  `Processes all MIDI files under a directory`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need 1 arg...")
		}
		process(args[0])
	},
}

func buildOptions() model.Options {
	opts := model.Options{
		TargetBPM:             targetBPM,
		ApplyTempoConversion:  convertTempo,
		StripControlEvents:    stripControls,
		SkipIfAlreadyMatching: skipMatched,
		DetectOverlaps:        detectOverlap,
		FixOverlaps:           fixOverlap,
		ResolveCrossTrack:     crossTrack,
	}
	if forceVelocity >= 0 {
		v := uint8(forceVelocity)
		opts.ForceVelocity = &v
	}
	return opts
}

func process(inputDir string) {
	runner := pipeline.Runner{
		Opts: buildOptions(),
		Progress: func(done, total int) {
			fmt.Printf("Processed %v of %v midi files\n", done, total)
		},
	}
	results := runner.RunDir(inputDir, outputDir)

	var processed, skipped, failed int
	for _, fr := range results {
		switch {
		case fr.Err != nil:
			failed++
			fmt.Printf("Failed %v because: %v\n", fr.Path, fr.Err)
		case fr.Result.Skipped:
			skipped++
		default:
			processed++
		}
	}
	fmt.Printf("Done: %v processed, %v skipped, %v failed\n", processed, skipped, failed)

	path := reportPath
	if path == "" {
		path = filepath.Join(outputDir, report.DefaultFilename())
	}
	if err := report.WriteCSV(path, results); err != nil {
		fmt.Printf("Could not write report: %v\n", err)
	} else {
		fmt.Printf("Report written to %v\n", path)
	}

	if uploadBucket != "" {
		if err := bucket.UploadDir(uploadBucket, uploadPrefix, outputDir); err != nil {
			fmt.Printf("Upload failed: %v\n", err)
		}
	}
}

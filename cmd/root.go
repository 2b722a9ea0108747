package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "retempo",
	Short: "MIDI retiming and note overlap cleanup",
	Long:  `Remaps MIDI files onto a fixed tempo while preserving wall-clock note positions, and detects/fixes overlapping notes.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

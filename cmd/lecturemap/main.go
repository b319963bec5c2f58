package main

import (
	"os"

	"github.com/OFFIS-RIT/lecturemap/internal/bootstrap"
	"github.com/OFFIS-RIT/lecturemap/internal/util"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lecturemap",
		Short: "Turn lecture recordings into concept dependency graphs",
		Long: `lecturemap transcribes a lecture, extracts its key concepts and
the dependencies between them, and writes the result as a graph.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			util.LoadEnv()
			bootstrap.InitLogger("lecturemap")
		},
	}

	rootCmd.AddCommand(newBuildCmd(), newChunkCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/OFFIS-RIT/lecturemap/pkg/graph"

	"github.com/spf13/cobra"
)

func newChunkCmd() *cobra.Command {
	var (
		transcript string
		size       int
		overlap    int
	)

	cmd := &cobra.Command{
		Use:   "chunk",
		Short: "Show how a transcript is split into extraction chunks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(transcript)
			if err != nil {
				return err
			}
			return printChunks(cmd.OutOrStdout(), string(text), size, overlap)
		},
	}

	cmd.Flags().StringVar(&transcript, "transcript", "", "transcript to split")
	cmd.Flags().IntVar(&size, "size", graph.DefaultChunkSize, "chunk size in characters")
	cmd.Flags().IntVar(&overlap, "overlap", graph.DefaultChunkOverlap, "overlap between chunks in characters")
	_ = cmd.MarkFlagRequired("transcript")
	return cmd
}

func printChunks(w io.Writer, text string, size, overlap int) error {
	spans, err := graph.ChunkSpans(text, size, overlap)
	if err != nil {
		return err
	}
	runes := []rune(text)
	for i, s := range spans {
		preview := string(runes[s.Start:min(s.End, s.Start+40)])
		fmt.Fprintf(w, "%d\t%d\t%d\t%q\n", i+1, s.Start, s.End, preview)
	}
	return nil
}

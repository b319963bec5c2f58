package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/OFFIS-RIT/lecturemap/internal/bootstrap"
	"github.com/OFFIS-RIT/lecturemap/internal/timing"
	"github.com/OFFIS-RIT/lecturemap/pkg/graph"
	fileio "github.com/OFFIS-RIT/lecturemap/pkg/loader/io"
	"github.com/OFFIS-RIT/lecturemap/pkg/logger"

	"github.com/spf13/cobra"
)

type buildFlags struct {
	audio      string
	transcript string
	out        string
	report     bool
}

func (f buildFlags) validate() error {
	switch {
	case f.audio == "" && f.transcript == "":
		return errors.New("one of --audio or --transcript is required")
	case f.audio != "" && f.transcript != "":
		return errors.New("--audio and --transcript are mutually exclusive")
	}
	return nil
}

func newBuildCmd() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the concept graph of a lecture",
		Example: `  lecturemap build --audio lecture.mp3 --out graph.json
  lecturemap build --transcript lecture.txt --report`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(); err != nil {
				return err
			}

			aiClient, err := bootstrap.NewAIClient()
			if err != nil {
				return err
			}
			client, err := bootstrap.NewGraphClient(aiClient, fileio.NewIOFileLoader())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), bootstrap.BuildTimeout())
			defer cancel()

			result, err := runBuild(ctx, client, flags)
			if err != nil {
				return err
			}

			m := aiClient.GetMetrics()
			logger.Info("AI Metrics",
				"requests", m.Requests,
				"total_tokens", m.TotalTokens,
				"duration", timing.FormatDuration(result.Report.Duration),
			)

			out := cmd.OutOrStdout()
			if flags.out != "" {
				f, err := os.Create(flags.out)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return writeResult(out, result, flags.report)
		},
	}

	cmd.Flags().StringVar(&flags.audio, "audio", "", "lecture recording (mp3, mp4, wav, ogg, m4a, flac)")
	cmd.Flags().StringVar(&flags.transcript, "transcript", "", "existing transcript, skips transcription")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "write the graph to this file instead of stdout")
	cmd.Flags().BoolVar(&flags.report, "report", false, "include the build report in the output")
	return cmd
}

type graphBuilder interface {
	BuildGraph(ctx context.Context, audioPath string, opts ...graph.BuildOption) (*graph.BuildResult, error)
	BuildGraphFromText(ctx context.Context, text string, opts ...graph.BuildOption) (*graph.BuildResult, error)
}

func runBuild(ctx context.Context, b graphBuilder, flags buildFlags) (*graph.BuildResult, error) {
	onStage := graph.WithStageHook(func(s graph.Stage) {
		logger.Debug("[CLI] Stage", "stage", s)
	})
	if flags.transcript != "" {
		text, err := os.ReadFile(flags.transcript)
		if err != nil {
			return nil, fmt.Errorf("read transcript: %w", err)
		}
		return b.BuildGraphFromText(ctx, string(text), onStage)
	}
	return b.BuildGraph(ctx, flags.audio, onStage)
}

func writeResult(w io.Writer, result *graph.BuildResult, withReport bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if withReport {
		return enc.Encode(result)
	}
	return enc.Encode(result.Graph)
}

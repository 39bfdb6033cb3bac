package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_ytcode/internal/config"
	"github.com/anatolykoptev/go_ytcode/internal/engine"
	"github.com/anatolykoptev/go_ytcode/internal/engine/codegen"
	"github.com/anatolykoptev/go_ytcode/internal/engine/store"
	"github.com/anatolykoptev/go_ytcode/internal/extraction"
)

const demoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

var extractFlags struct {
	url     string
	out     string
	offline bool
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract code from one video and print the record",
	RunE:  runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.StringVar(&extractFlags.url, "url", demoURL, "YouTube URL or 11-character video ID")
	f.StringVar(&extractFlags.out, "out", "", "Directory for the ZIP archive (skipped when empty)")
	f.BoolVar(&extractFlags.offline, "offline", false, "Skip LLM providers and use the template generator")
}

func runExtract(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	engine.Init(config.Engine())

	var gen *codegen.Client
	if extractFlags.offline {
		gen = codegen.NewClientWithProviders(config.Codegen())
	} else {
		var err error
		if gen, err = codegen.NewClient(ctx, config.Codegen()); err != nil {
			return fmt.Errorf("codegen: %w", err)
		}
	}

	svcCfg := config.Service()
	if extractFlags.out != "" {
		svcCfg.ArchiveDir = extractFlags.out
	}
	svc := extraction.NewService(svcCfg, store.NewMemory(),
		extraction.NewPipeline(extraction.DefaultStages(), gen), nil)
	defer svc.Close(ctx)

	rec, err := svc.Extract(ctx, extractFlags.url)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Video:   %s\n", rec.VideoID)
	fmt.Fprintf(out, "Title:   %s\n", rec.Title)
	fmt.Fprintf(out, "Status:  %s\n", rec.Status)
	fmt.Fprintf(out, "Source:  %s\n", rec.Source)

	if extractFlags.out != "" {
		path, _, err := svc.Download(ctx, rec.ID)
		switch {
		case errors.Is(err, extraction.ErrNoCode), errors.Is(err, extraction.ErrNotCompleted):
			fmt.Fprintf(out, "Archive: none (%v)\n", err)
		case err != nil:
			return fmt.Errorf("archive: %w", err)
		default:
			fmt.Fprintf(out, "Archive: %s\n", path)
		}
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s\n", data)
	return nil
}

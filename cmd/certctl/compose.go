package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"certforge/internal/adapters/pdf"
	"certforge/internal/adapters/storage"
	"certforge/internal/assets"
	"certforge/internal/compose"
	"certforge/internal/config"
	"certforge/internal/domain"
	"certforge/internal/layout"
	"certforge/internal/layout/layouttest"
	"certforge/internal/ports"
)

type composeOptions struct {
	in         string
	out        string
	format     string
	photos     string
	storageURL string
	bucket     string
	threshold  int
	dryRun     bool
}

func newComposeCmd(root *rootOptions) *cobra.Command {
	opts := &composeOptions{}
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Compose a certificate from a JSON record",
		Long: `Compose reads a certificate record, either bare or wrapped as a submission
with "record", "inspectionItems", "observations" and "options" keys, and writes
the composed PDF to the output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompose(cmd.Context(), cmd.OutOrStdout(), root, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.in, "in", "", "record JSON file (- for stdin)")
	f.StringVar(&opts.out, "out", ".", "output directory")
	f.StringVar(&opts.format, "format", "", "page format, A4 or Letter (overrides the record's options)")
	f.StringVar(&opts.photos, "photos", "", "JSON file mapping observation ids to photo paths")
	f.StringVar(&opts.storageURL, "storage-url", "", "public base URL that photo paths resolve against")
	f.StringVar(&opts.bucket, "bucket", "inspection-photos", "storage bucket for photo paths")
	f.IntVar(&opts.threshold, "threshold", compose.DefaultThreshold, "quality score below which the draft watermark is applied")
	f.BoolVar(&opts.dryRun, "dry-run", false, "lay the document out and print the quality summary without writing a PDF")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func runCompose(ctx context.Context, stdout io.Writer, root *rootOptions, opts *composeOptions) error {
	log, err := root.logger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	sub, err := readSubmission(opts.in)
	if err != nil {
		return err
	}
	options := sub.Options.Resolve()
	if opts.format != "" {
		options.Format = domain.ParsePageFormat(opts.format)
	}

	var index ports.PhotoIndex
	if opts.photos != "" {
		m, err := readPhotoIndex(opts.photos)
		if err != nil {
			return err
		}
		index = m
	}
	storageCfg := config.Storage{PublicBaseURL: opts.storageURL, Bucket: opts.bucket}
	var urls ports.URLResolver
	if opts.storageURL != "" {
		pu, err := storage.NewPublicURLs(storageCfg)
		if err != nil {
			return err
		}
		urls = pu
	}
	resolver := assets.NewResolver(index, urls, assets.NewFetcher(storageCfg), log, nil)

	newDoc := func(f domain.PageFormat) layout.Document { return pdf.New(f) }
	if opts.dryRun {
		newDoc = func(f domain.PageFormat) layout.Document { return layouttest.New(f) }
	}
	composer := compose.New(newDoc,
		compose.WithAssets(func() compose.PhotoSource { return resolver.Scoped() }),
		compose.WithLogger(log),
		compose.WithThreshold(opts.threshold),
	)

	art, err := composer.Compose(ctx, compose.Input{
		Record:          sub.Record,
		InspectionItems: sub.InspectionItems,
		Observations:    sub.Observations,
		Options:         options,
	})
	if err != nil {
		return err
	}

	if !opts.dryRun {
		if err := os.MkdirAll(opts.out, 0o755); err != nil {
			return err
		}
		path := filepath.Join(opts.out, art.FileName)
		if err := os.WriteFile(path, art.Content, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintln(stdout, path)
	}
	printSummary(stdout, art, opts.dryRun)
	return nil
}

func printSummary(w io.Writer, art *domain.Artifact, dryRun bool) {
	m := art.Metrics
	if dryRun {
		fmt.Fprintf(w, "%s (dry run)\n", art.FileName)
	}
	fmt.Fprintf(w, "pages: %d\n", art.Pages)
	fmt.Fprintf(w, "quality: %d/100, %d%% complete\n", m.Score, m.CompletionPercent)
	fmt.Fprintf(w, "items: %d satisfactory, %d critical, %d improvement, %d limitation\n",
		m.Satisfactory, m.Critical, m.Improvement, m.Limitation)
	for _, s := range art.CriticalIssues {
		fmt.Fprintf(w, "critical: %s\n", s)
	}
	for _, s := range art.Warnings {
		fmt.Fprintf(w, "warning: %s\n", s)
	}
}

func readSubmission(path string) (domain.Submission, error) {
	var sub domain.Submission
	data, err := readInput(path)
	if err != nil {
		return sub, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return sub, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, wrapped := raw["record"].(map[string]any); !wrapped {
		sub.Record = raw
		return sub, nil
	}
	if err := json.Unmarshal(data, &sub); err != nil {
		return sub, fmt.Errorf("parse %s: %w", path, err)
	}
	return sub, nil
}

func readPhotoIndex(path string) (assets.MapIndex, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	var m assets.MapIndex
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}

func readInput(path string) ([]byte, error) {
	if strings.TrimSpace(path) == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vearutop/uhdrsplit"
	"github.com/vearutop/uhdrsplit/internal/batch"
	"github.com/vearutop/uhdrsplit/internal/config"
	"github.com/vearutop/uhdrsplit/internal/output"
)

// fileReport summarizes one split file for --json output.
type fileReport struct {
	File     string                `json:"file"`
	Images   []uhdrsplit.SubImage  `json:"images"`
	Metadata []*uhdrsplit.Metadata `json:"metadata"`
	MPF      *uhdrsplit.MPFInfo    `json:"mpf,omitempty"`
	Outputs  []string              `json:"outputs"`
}

func newSplitCommand(ctx *commandContext) *cobra.Command {
	var (
		outDir    string
		jobs      int
		legacy    bool
		overwrite bool
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "split FILE...",
		Short: "Write the base image, gain map and hdrgm metadata of each file",
		Long: `Split UltraHDR JPEG files.

Every image found in a file is written as <stem>_split_<n>.jpg and every
UltraHDR metadata record as <stem>_hdrgm.txt. Files are processed in
parallel; a malformed file does not stop the others.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("out-dir") {
				dir, err := config.ExpandPath(outDir)
				if err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}
				cfg.Output.Dir = dir
			}
			if flags.Changed("jobs") {
				cfg.Batch.Jobs = jobs
			}
			if flags.Changed("legacy-scan") {
				cfg.Scan.LegacyEntropyScan = legacy
			}
			if flags.Changed("overwrite") {
				cfg.Output.Overwrite = overwrite
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			w := output.New(output.Options{
				Dir:             cfg.Output.Dir,
				ImagePattern:    cfg.Output.ImagePattern,
				MetadataPattern: cfg.Output.MetadataPattern,
				Overwrite:       cfg.Output.Overwrite,
			})
			scanOpt := func(o *uhdrsplit.ScanOptions) {
				o.LegacyEntropyScan = cfg.Scan.LegacyEntropyScan
			}

			var (
				mu      sync.Mutex
				reports = make(map[string]fileReport, len(args))
			)
			runErr := batch.Run(cmd.Context(), args, cfg.Batch.Jobs, func(c context.Context, path string) error {
				rep, err := splitFile(c, logger.With("file", path), w, path, scanOpt)
				if err != nil {
					return err
				}
				mu.Lock()
				reports[path] = rep
				mu.Unlock()
				return nil
			})

			if jsonOut {
				ordered := make([]fileReport, 0, len(reports))
				for _, path := range args {
					if rep, ok := reports[path]; ok {
						ordered = append(ordered, rep)
					}
				}
				if err := writeJSON(cmd, ordered); err != nil {
					return err
				}
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Directory for outputs (default: next to each input)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "Number of files processed in parallel")
	cmd.Flags().BoolVar(&legacy, "legacy-scan", false, "End scan data at the first 0xFFD9 byte pair")
	cmd.Flags().BoolVar(&overwrite, "overwrite", true, "Replace existing output files")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print a JSON report to stdout")
	return cmd
}

func splitFile(ctx context.Context, logger *slog.Logger, w *output.Writer, path string, scanOpt func(o *uhdrsplit.ScanOptions)) (fileReport, error) {
	logger.Info("splitting")

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fileReport{}, err
	}

	res, err := uhdrsplit.Split(data, scanOpt)
	if err != nil {
		var se *uhdrsplit.ScanError
		if errors.As(err, &se) {
			logger.Error("scan failed", "offset", fmt.Sprintf("%#x", se.Offset), "marker", se.Marker, "error", se.Err)
		}
		return fileReport{}, err
	}
	logEvents(logger, res.Events)

	written, err := w.Write(ctx, path, res)
	logEvents(logger, written)
	if err != nil {
		return fileReport{}, err
	}

	if len(res.Images) != 2 {
		logger.Warn("unexpected image count", "images", len(res.Images))
	}
	if len(res.Metadata) == 0 {
		logger.Warn("no UltraHDR metadata found")
	}

	rep := fileReport{File: path, Images: res.Scan.Images, Metadata: res.Metadata, MPF: res.MPF}
	for _, ev := range written {
		rep.Outputs = append(rep.Outputs, ev.Path)
	}
	return rep, nil
}

func logEvents(logger *slog.Logger, events []uhdrsplit.Event) {
	for _, ev := range events {
		offset := fmt.Sprintf("%#x", ev.Offset)
		switch ev.Kind {
		case uhdrsplit.EventSegment:
			logger.Debug("segment", "marker", ev.Marker, "offset", offset, "length", ev.Length)
		case uhdrsplit.EventImage:
			logger.Info("image found", "index", ev.Index, "offset", offset, "size", humanize.Bytes(uint64(ev.Length)))
		case uhdrsplit.EventMetadata:
			logger.Info("UltraHDR metadata parsed", "index", ev.Index, "offset", offset)
		case uhdrsplit.EventMetadataSkipped:
			logger.Debug("APP1 segment skipped", "offset", offset, "reason", ev.Err)
		case uhdrsplit.EventMPFMismatch:
			if ev.Err != nil {
				logger.Warn("MPF segment unreadable", "error", ev.Err)
			} else {
				logger.Warn("MPF layout disagrees with scanned images", "secondary_offset", offset, "secondary_size", ev.Length)
			}
		case uhdrsplit.EventFileWritten:
			logger.Info("file written", "path", ev.Path, "size", humanize.Bytes(uint64(ev.Length)))
		}
	}
}

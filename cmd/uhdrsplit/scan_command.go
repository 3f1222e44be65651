package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vearutop/uhdrsplit"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var (
		legacy  bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "scan FILE",
		Short: "List the marker segments and images of a JPEG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("legacy-scan") {
				cfg.Scan.LegacyEntropyScan = legacy
			}

			data, err := os.ReadFile(filepath.Clean(args[0]))
			if err != nil {
				return err
			}
			res, err := uhdrsplit.Scan(data, func(o *uhdrsplit.ScanOptions) {
				o.LegacyEntropyScan = cfg.Scan.LegacyEntropyScan
			})
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, struct {
					Segments []uhdrsplit.Segment  `json:"segments"`
					Images   []uhdrsplit.SubImage `json:"images"`
				}{res.Segments, res.Images})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderSegments(res.Segments))
			fmt.Fprintln(out, renderImages(res.Images))
			return nil
		},
	}

	cmd.Flags().BoolVar(&legacy, "legacy-scan", false, "End scan data at the first 0xFFD9 byte pair")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print segments as JSON")
	return cmd
}

func renderSegments(segments []uhdrsplit.Segment) string {
	rows := make([][]string, 0, len(segments))
	for i, seg := range segments {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			seg.Marker.Name(),
			fmt.Sprintf("%08X", seg.Offset),
			strconv.Itoa(seg.Len()),
			humanize.Bytes(uint64(seg.Len())),
		})
	}
	return renderTable(
		[]string{"#", "Marker", "Offset", "Bytes", "Size"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight},
	)
}

func renderImages(images []uhdrsplit.SubImage) string {
	rows := make([][]string, 0, len(images))
	for i, img := range images {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			fmt.Sprintf("%08X", img.Start),
			fmt.Sprintf("%08X", img.End),
			humanize.Bytes(uint64(img.Len())),
		})
	}
	return renderTable(
		[]string{"Image", "Start", "End", "Size"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
	)
}

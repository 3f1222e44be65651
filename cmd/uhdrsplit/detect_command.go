package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vearutop/uhdrsplit"
)

func newDetectCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "detect FILE...",
		Short:       "Report whether each file carries an UltraHDR gain map",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, path := range args {
				ok, err := detectFile(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				verdict := "not ultrahdr"
				if ok {
					verdict = "ultrahdr"
				}
				fmt.Fprintf(out, "%s: %s\n", path, verdict)
			}
			return nil
		},
	}
}

func detectFile(path string) (bool, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return false, err
	}
	defer f.Close()

	return uhdrsplit.IsUltraHDR(bufio.NewReader(f))
}

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/vearutop/uhdrsplit/internal/config"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	want := filepath.Join(tempHome, ".config", "uhdrsplit", "config.toml")
	if resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if cfg.Output.ImagePattern != "{stem}_split_{index}.jpg" {
		t.Fatalf("unexpected image pattern: %q", cfg.Output.ImagePattern)
	}
	if cfg.Output.Dir != "" {
		t.Fatalf("expected empty output dir, got %q", cfg.Output.Dir)
	}
	if !cfg.Output.Overwrite {
		t.Fatal("expected overwrite enabled by default")
	}
	if cfg.Scan.LegacyEntropyScan {
		t.Fatal("expected stuffing-aware scan by default")
	}
	if cfg.Batch.Jobs != config.Default().Batch.Jobs {
		t.Fatalf("unexpected jobs: %d", cfg.Batch.Jobs)
	}
}

func TestLoadFileOverridesAndExpandsDir(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg := config.Default()
	cfg.Output.Dir = "~/out"
	cfg.Scan.LegacyEntropyScan = true
	cfg.Batch.Jobs = 2
	cfg.Logging.Format = "JSON"

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "uhdrsplit.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if loaded.Output.Dir != filepath.Join(tempHome, "out") {
		t.Fatalf("unexpected output dir: %q", loaded.Output.Dir)
	}
	if !loaded.Scan.LegacyEntropyScan {
		t.Fatal("expected legacy scan from file")
	}
	if loaded.Batch.Jobs != 2 {
		t.Fatalf("unexpected jobs: %d", loaded.Batch.Jobs)
	}
	if loaded.Logging.Format != "json" {
		t.Fatalf("expected normalized log format, got %q", loaded.Logging.Format)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{name: "jobs", content: "[batch]\njobs = 0\n", want: "batch.jobs"},
		{name: "pattern", content: "[output]\nimage_pattern = \"image.jpg\"\n", want: "{index}"},
		{name: "path pattern", content: "[output]\nmetadata_pattern = \"a/b.txt\"\n", want: "file name"},
		{name: "level", content: "[logging]\nlevel = \"loud\"\n", want: "logging.level"},
		{name: "unknown key", content: "[output]\nfolder = \"x\"\n", want: "parse config"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCreateSampleLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Output.MetadataPattern != "{stem}_hdrgm.txt" {
		t.Fatalf("unexpected metadata pattern: %q", cfg.Output.MetadataPattern)
	}
}

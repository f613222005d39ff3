package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CanvasWidth != 1200 || cfg.CanvasHeight != 900 || cfg.HandleSize != 20 || cfg.MinBoxSize != 10 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.ZoomStep != 1.2 || cfg.ZoomMin != 0.5 || cfg.ZoomMax != 3.0 || !cfg.StrictLabels {
		t.Fatalf("unexpected zoom/label defaults %+v", cfg)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.DatasetPath = "/data/set"
	cfg.StrictLabels = false
	cfg.Classes = []ClassSeed{{Name: "cat", Index: 0}, {Name: "dog", Index: 1}}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.DatasetPath != "/data/set" || got.StrictLabels || len(got.Classes) != 2 || got.Classes[1].Name != "dog" {
		t.Fatalf("round trip mismatch %+v", got)
	}
}

func TestLoad_BadJSONReturnsDefaultsAndError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if cfg == nil || cfg.CanvasWidth != 1200 {
		t.Fatalf("expected defaults alongside error, got %+v", cfg)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	cfg.DatasetPath = "/from/file"
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOXLABEL_DATASET_PATH", "/from/env")
	t.Setenv("BOXLABEL_STRICT_LABELS", "false")
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.DatasetPath != "/from/env" || got.StrictLabels {
		t.Fatalf("env overrides not applied: %+v", got)
	}
	if got.CanvasWidth != 1200 {
		t.Fatalf("unset env must keep file value, got %d", got.CanvasWidth)
	}
}

func TestValidate_Clamps(t *testing.T) {
	cfg := &Config{ZoomStep: 0.5, ZoomMin: 2, ZoomMax: 1}
	_ = cfg.Validate()
	if cfg.CanvasWidth != 1200 || cfg.HandleSize != 20 || cfg.MinBoxSize != 10 {
		t.Fatalf("sizes not clamped: %+v", cfg)
	}
	if cfg.ZoomStep != 1.2 || cfg.ZoomMax != 2 {
		t.Fatalf("zoom not clamped: %+v", cfg)
	}
	if len(cfg.ImageExtensions) != 3 || cfg.FrameCacheSize != 16 {
		t.Fatalf("list defaults not applied: %+v", cfg)
	}
}

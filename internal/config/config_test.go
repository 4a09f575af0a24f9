package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Learn.C != 1000 {
		t.Errorf("expected C=1000, got %g", cfg.Learn.C)
	}
	if cfg.Learn.Epsilon != 0.001 {
		t.Errorf("expected Epsilon=0.001, got %g", cfg.Learn.Epsilon)
	}
	if cfg.Learn.MaxIterations != 1000 {
		t.Errorf("expected MaxIterations=1000, got %d", cfg.Learn.MaxIterations)
	}
	if !cfg.Learn.MarginRescaling {
		t.Error("expected MarginRescaling on by default")
	}
	if !cfg.Learn.LossAugmented {
		t.Error("expected LossAugmented on by default")
	}
	if cfg.Learn.UseL1Regularization {
		t.Error("expected L1 off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Learn.C = 50
	cfg.Learn.UseL1Regularization = true

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Learn.C != 50 {
		t.Errorf("expected C=50, got %g", loaded.Learn.C)
	}
	if !loaded.Learn.UseL1Regularization {
		t.Error("expected L1 enabled")
	}
}

func TestConfig_RejectsNegativeMaxIterations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Learn.MaxIterations = -3
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for negative max_iterations")
	}
}

func TestConfig_RejectsBadSolverSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Solver.WeightScale = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for zero weight_scale")
	}
}

func TestConfig_LoadRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	bad := []byte("learn:\n  max_iterations: -1\n")
	if err := os.WriteFile(path, bad, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected Load to reject negative max_iterations")
	}
}

func TestConfig_EnvOverridesStorePath(t *testing.T) {
	t.Setenv("MARLIN_STORE_PATH", "/tmp/other.db")
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	if err := DefaultConfig().Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Store.Path != "/tmp/other.db" {
		t.Errorf("expected env override, got %s", loaded.Store.Path)
	}
}

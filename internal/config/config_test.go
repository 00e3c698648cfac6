package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.VerificationThreshold != 0.5 {
		t.Errorf("VerificationThreshold = %v, want 0.5", cfg.VerificationThreshold)
	}
	if cfg.DecayRate != 0.0 {
		t.Errorf("DecayRate = %v, want 0.0", cfg.DecayRate)
	}
	if cfg.MaxRecursionDepth != 1000 {
		t.Errorf("MaxRecursionDepth = %v, want 1000", cfg.MaxRecursionDepth)
	}
	if cfg.HostCallTimeout != 10*time.Second {
		t.Errorf("HostCallTimeout = %v, want 10s", cfg.HostCallTimeout)
	}
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("Load(\"\") = %+v, want Defaults()", cfg)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load(missing file): %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("Load(missing file) = %+v, want Defaults()", cfg)
	}
}

func TestLoad_OverridesSpecifiedKeysOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prism.yaml")
	yamlContent := "verification_threshold: 0.9\nmax_recursion_depth: 50\n"
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.VerificationThreshold != 0.9 {
		t.Errorf("VerificationThreshold = %v, want 0.9", cfg.VerificationThreshold)
	}
	if cfg.MaxRecursionDepth != 50 {
		t.Errorf("MaxRecursionDepth = %v, want 50", cfg.MaxRecursionDepth)
	}
	// Keys absent from the file keep their default values.
	if cfg.DecayRate != Defaults().DecayRate {
		t.Errorf("DecayRate = %v, want unchanged default %v", cfg.DecayRate, Defaults().DecayRate)
	}
	if cfg.HostCallTimeout != Defaults().HostCallTimeout {
		t.Errorf("HostCallTimeout = %v, want unchanged default %v", cfg.HostCallTimeout, Defaults().HostCallTimeout)
	}
}

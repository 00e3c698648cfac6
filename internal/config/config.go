// Package config loads Prism's embedder/CLI configuration: the
// verification threshold, confidence decay rate, recursion limit,
// and host-call timeout, merging an optional prism.yaml file over
// built-in defaults the way the embedder would otherwise have to
// hard-code them.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds every tunable the evaluator and CLI read at startup.
type Config struct {
	VerificationThreshold float64       `koanf:"verification_threshold"`
	DecayRate             float64       `koanf:"decay_rate"`
	MaxRecursionDepth     int           `koanf:"max_recursion_depth"`
	HostCallTimeout       time.Duration `koanf:"host_call_timeout"`
}

// Defaults returns the configuration used when no prism.yaml is
// present or a key is omitted from one.
func Defaults() Config {
	return Config{
		VerificationThreshold: 0.5,
		DecayRate:             0.0,
		MaxRecursionDepth:     1000,
		HostCallTimeout:       10 * time.Second,
	}
}

// Load reads path (if it exists) as YAML and merges it over Defaults.
// A missing file is not an error: Load simply returns the defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return cfg, err
	}

	// Unmarshal over the already-populated defaults so keys absent
	// from prism.yaml keep their default value instead of zeroing out.
	if k.Exists("verification_threshold") {
		cfg.VerificationThreshold = k.Float64("verification_threshold")
	}
	if k.Exists("decay_rate") {
		cfg.DecayRate = k.Float64("decay_rate")
	}
	if k.Exists("max_recursion_depth") {
		cfg.MaxRecursionDepth = k.Int("max_recursion_depth")
	}
	if k.Exists("host_call_timeout") {
		cfg.HostCallTimeout = k.Duration("host_call_timeout")
	}
	return cfg, nil
}

// Package config loads the YAML job file that drives the batch pipelines,
// plus the environment-backed credentials for the imagery service.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config is one job file. Every pipeline reads its own section; unrelated
// sections can stay empty.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogFile   string `yaml:"log_file"`

	Merge   MergeJob   `yaml:"merge"`
	Join    JoinJob    `yaml:"admin_join"`
	Match   MatchJob   `yaml:"match"`
	Sample  SampleJob  `yaml:"sample"`
	Clip    ClipJob    `yaml:"clip"`
	Imagery ImageryJob `yaml:"imagery"`
}

// MergeJob configures the deduplicating merge.
type MergeJob struct {
	Inputs           []string `yaml:"inputs"`
	Output           string   `yaml:"output"`
	ExpectedCRS      string   `yaml:"expected_crs"`
	FallbackCRS      string   `yaml:"fallback_crs"`
	PreferInstrument string   `yaml:"prefer_instrument"`
	Version          bool     `yaml:"version"`
}

// Validate checks the fields the merge cannot run without.
func (j MergeJob) Validate() error {
	if len(j.Inputs) == 0 {
		return errors.New("merge: inputs is required")
	}
	if j.Output == "" {
		return errors.New("merge: output is required")
	}
	return nil
}

// JoinJob configures the administrative attribute join.
type JoinJob struct {
	Points            string `yaml:"points"`
	Admin             string `yaml:"admin"`
	DepartmentField   string `yaml:"department_field"`
	MunicipalityField string `yaml:"municipality_field"`
	Output            string `yaml:"output"`
	Version           bool   `yaml:"version"`
}

// Validate checks the fields the join cannot run without.
func (j JoinJob) Validate() error {
	if j.Points == "" || j.Admin == "" || j.Output == "" {
		return errors.New("admin_join: points, admin and output are required")
	}
	return nil
}

// MatchJob configures the hotspot-vs-report matching.
type MatchJob struct {
	Points     string `yaml:"points"`
	Events     string `yaml:"events"`
	Output     string `yaml:"output"`
	WindowDays int    `yaml:"window_days"`
	Version    bool   `yaml:"version"`
}

// Validate checks the fields the match cannot run without.
func (j MatchJob) Validate() error {
	if j.Points == "" || j.Events == "" || j.Output == "" {
		return errors.New("match: points, events and output are required")
	}
	if j.WindowDays < 0 {
		return errors.New("match: window_days must not be negative")
	}
	return nil
}

// SampleJob configures the absence-point sampler.
type SampleJob struct {
	AOI               string  `yaml:"aoi"`
	Exclusions        string  `yaml:"exclusions"`
	CRS               string  `yaml:"crs"`
	BufferMeters      float64 `yaml:"buffer_meters"`
	Count             int     `yaml:"count"`
	Seed              uint64  `yaml:"seed"`
	MaxAttemptsFactor int     `yaml:"max_attempts_factor"`
	Output            string  `yaml:"output"`
	Version           bool    `yaml:"version"`
}

// Validate checks the fields the sampler cannot run without.
func (j SampleJob) Validate() error {
	if j.AOI == "" || j.Exclusions == "" || j.Output == "" {
		return errors.New("sample: aoi, exclusions and output are required")
	}
	if j.CRS == "" {
		return errors.New("sample: crs is required, and must be a projected system")
	}
	if j.BufferMeters <= 0 {
		return errors.New("sample: buffer_meters must be positive")
	}
	if j.Count <= 0 {
		return errors.New("sample: count must be positive")
	}
	return nil
}

// ClipJob configures the batch clipper.
type ClipJob struct {
	InputDir  string `yaml:"input_dir"`
	Pattern   string `yaml:"pattern"`
	AOI       string `yaml:"aoi"`
	OutputDir string `yaml:"output_dir"`
	Suffix    string `yaml:"suffix"`
	Version   bool   `yaml:"version"`
}

// Validate checks the fields the clipper cannot run without.
func (j ClipJob) Validate() error {
	if j.InputDir == "" || j.AOI == "" {
		return errors.New("clip: input_dir and aoi are required")
	}
	return nil
}

// ImageryJob configures the imagery export client. The token comes from
// the environment, never the job file.
type ImageryJob struct {
	BaseURL   string `yaml:"base_url"`
	Timeout   string `yaml:"timeout"`
	CacheSize int    `yaml:"cache_size"`
}

// ClientTimeout parses the configured timeout, defaulting to 30s.
func (j ImageryJob) ClientTimeout() (time.Duration, error) {
	if j.Timeout == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(j.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("imagery: invalid timeout %q", j.Timeout)
	}
	return d, nil
}

// Load reads and validates a job file, applying defaults where unset.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse job file %s: %w", path, err)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.Imagery.CacheSize <= 0 {
		cfg.Imagery.CacheSize = 1000
	}
	return &cfg, nil
}

// ImageryToken reads the imagery service token from the environment,
// loading a .env file first when one exists next to the working directory.
func ImageryToken() (string, error) {
	_ = godotenv.Load()
	token := os.Getenv("IMAGERY_TOKEN")
	if token == "" {
		return "", errors.New("IMAGERY_TOKEN is not set")
	}
	return token, nil
}

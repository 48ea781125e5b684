package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	leadgenius "github.com/ronfux/LeadGenius"
	"github.com/ronfux/LeadGenius/backoff"
	"github.com/ronfux/LeadGenius/executor"
	"github.com/ronfux/LeadGenius/store"
)

// DefaultSettingsFile is where the CLI looks when --config is not given.
const DefaultSettingsFile = "settings.yaml"

// DefaultManagerModel is the planning model used when none is configured.
// The worker default lives in the executor package.
const DefaultManagerModel = "gemini-2.5-pro"

// Backoff kinds accepted in settings.
const (
	BackoffConstant    = "constant"
	BackoffLinear      = "linear"
	BackoffExponential = "exponential"
	BackoffJitter      = "jitter"
)

// Settings is the runtime configuration for a research run.
type Settings struct {
	Parallelism    Parallelism      `yaml:"parallelism"`
	Retries        Retries          `yaml:"retries"`
	PerTaskTimeout Duration         `yaml:"per_task_timeout"`
	Executor       ExecutorSettings `yaml:"executor"`
	Paths          Paths            `yaml:"paths"`

	// Store selects the record backend: "fs" (default), "sqlite", or
	// "memory" for dry runs.
	Store string `yaml:"store"`

	// LogLevel is a slog level name: "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`
}

// Parallelism bounds how fast tasks launch.
type Parallelism struct {
	MaxConcurrency int      `yaml:"max_concurrency"`
	SpawnDelay     Duration `yaml:"spawn_delay"`
}

// Retries shapes the per-task retry policy.
type Retries struct {
	MaxRetries  int      `yaml:"max_retries"`
	Backoff     string   `yaml:"backoff"`
	BackoffBase Duration `yaml:"backoff_base"`
	BackoffCap  Duration `yaml:"backoff_cap"`
}

// ExecutorSettings names the model CLI and its models.
type ExecutorSettings struct {
	Binary       string `yaml:"binary"`
	ManagerModel string `yaml:"manager_model"`
	WorkerModel  string `yaml:"worker_model"`
	WebSearch    bool   `yaml:"web_search"`
}

// Paths places run artifacts on disk.
type Paths struct {
	// OutputDir is the root for records, exports, and the SQLite archive.
	OutputDir string `yaml:"output_dir"`
	// InstructionsDir holds standing-procedure markdown files, one per
	// task kind plus "manager.md" for the planner.
	InstructionsDir string `yaml:"instructions_dir"`
}

// RecordsDir is where per-task record files land.
func (p Paths) RecordsDir() string { return filepath.Join(p.OutputDir, "records") }

// AggregatedDir is where dataset exports land.
func (p Paths) AggregatedDir() string { return filepath.Join(p.OutputDir, "aggregated") }

// DatabasePath is the SQLite archive location.
func (p Paths) DatabasePath() string { return filepath.Join(p.OutputDir, "leadgenius.db") }

// InstructionsFile returns the standing-procedure file for a role name,
// e.g. "city_search" or "manager".
func (p Paths) InstructionsFile(role string) string {
	return filepath.Join(p.InstructionsDir, role+".md")
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		Parallelism: Parallelism{
			MaxConcurrency: 4,
			SpawnDelay:     Duration(20 * time.Second),
		},
		Retries: Retries{
			MaxRetries:  2,
			Backoff:     BackoffJitter,
			BackoffBase: Duration(2 * time.Second),
			BackoffCap:  Duration(30 * time.Second),
		},
		PerTaskTimeout: Duration(10 * time.Minute),
		Executor: ExecutorSettings{
			Binary:       executor.DefaultBinary,
			ManagerModel: DefaultManagerModel,
			WorkerModel:  executor.DefaultModel,
			WebSearch:    true,
		},
		Paths: Paths{
			OutputDir:       "data",
			InstructionsDir: "instructions",
		},
		Store:    string(store.KindFS),
		LogLevel: "info",
	}
}

// LoadSettings reads a settings file over the defaults, so absent keys keep
// their default values. A missing file is reported with an error satisfying
// errors.Is(err, fs.ErrNotExist); callers may fall back to DefaultSettings.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("config: read settings: %w", err)
	}

	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("config: parse settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("config: settings %s: %w", path, err)
	}
	return s, nil
}

// Validate reports the first problem in the settings.
func (s Settings) Validate() error {
	if _, err := s.DispatchConfig(); err != nil {
		return err
	}
	if s.Executor.Binary == "" {
		return ErrNoBinary
	}
	if s.Executor.ManagerModel == "" || s.Executor.WorkerModel == "" {
		return ErrNoModel
	}
	if s.Paths.OutputDir == "" {
		return ErrNoOutputDir
	}
	switch store.Kind(s.Store) {
	case store.KindFS, store.KindSQLite, store.KindMemory, "":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, s.Store)
	}
	if _, err := s.Level(); err != nil {
		return err
	}
	return nil
}

// DispatchConfig converts the settings into the dispatcher configuration.
func (s Settings) DispatchConfig() (leadgenius.Config, error) {
	strategy, err := s.Retries.strategy()
	if err != nil {
		return leadgenius.Config{}, err
	}

	cfg := leadgenius.Config{
		MaxConcurrency: s.Parallelism.MaxConcurrency,
		SpawnDelay:     s.Parallelism.SpawnDelay.Std(),
		TaskTimeout:    s.PerTaskTimeout.Std(),
		MaxRetries:     s.Retries.MaxRetries,
		RetryBackoff:   strategy,
	}
	return cfg, cfg.Validate()
}

// StoreConfig derives the record backend selection.
func (s Settings) StoreConfig() store.Config {
	return store.Config{
		Kind: store.Kind(s.Store),
		Dir:  s.Paths.RecordsDir(),
		Path: s.Paths.DatabasePath(),
	}
}

// Level parses the configured log level.
func (s Settings) Level() (slog.Level, error) {
	if s.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLogLevel, s.LogLevel)
	}
	return l, nil
}

func (r Retries) strategy() (backoff.Strategy, error) {
	base := r.BackoffBase.Std()
	maxDelay := r.BackoffCap.Std()
	switch r.Backoff {
	case BackoffConstant:
		return backoff.NewConstant(base), nil
	case BackoffLinear:
		return backoff.NewLinear(base, maxDelay), nil
	case BackoffExponential:
		return backoff.NewExponential(base, maxDelay), nil
	case BackoffJitter, "":
		return backoff.NewExponentialWithJitter(base, maxDelay), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackoff, r.Backoff)
	}
}

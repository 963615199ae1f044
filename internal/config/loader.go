package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ConfigDir is the directory name under ~/.config
	ConfigDir = "luxxit"
	// ConfigFile is the config file name
	ConfigFile = "config.json"
	// ProjectFile is the per-workspace config file name
	ProjectFile = "luxxit.json"
)

// FileSystem abstracts file operations for testability
type FileSystem interface {
	UserHomeDir() (string, error)
	ReadFile(path string) ([]byte, error)
}

// ConfigFileReader implements FileSystem using the real OS for config loading
type ConfigFileReader struct{}

func (ConfigFileReader) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

func (ConfigFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader handles configuration loading with injected dependencies
type Loader struct {
	fs         FileSystem
	environ    func() []string
	projectDir string
}

// NewLoader creates a production Loader using the real filesystem and process environment.
// projectDir is searched for luxxit.json; empty skips the project file.
func NewLoader(projectDir string) *Loader {
	return &Loader{fs: ConfigFileReader{}, environ: os.Environ, projectDir: projectDir}
}

// NewLoaderWithFS creates a Loader with a custom filesystem and environment (for testing)
func NewLoaderWithFS(fs FileSystem, environ []string, projectDir string) *Loader {
	return &Loader{
		fs:         fs,
		environ:    func() []string { return environ },
		projectDir: projectDir,
	}
}

// Load merges, in increasing precedence: defaults, ~/.config/luxxit/config.json,
// <projectDir>/luxxit.json and LUXXIT_* environment variables.
// Missing files are skipped. Returns an error for parse errors, permission issues,
// or validation failures.
//
// NOTE: JSON keys are unmarshalled directly over the current configuration, so explicit
// zero values in a file override defaults.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	var paths []string
	if homeDir, err := l.fs.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", ConfigDir, ConfigFile))
	}
	if l.projectDir != "" {
		paths = append(paths, filepath.Join(l.projectDir, ProjectFile))
	}

	for _, path := range paths {
		if err := l.mergeFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg, l.environ()); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (l *Loader) mergeFile(cfg *Config, path string) error {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err // Return error for permission issues
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return nil
}

// Load is a convenience function using the default loader for the current directory
func Load() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}
	return NewLoader(wd).Load()
}

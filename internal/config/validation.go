package config

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/opencontainers/go-digest"
)

// Validate checks config values for correctness.
// Returns an error listing every invalid value.
func (c *Config) Validate() error {
	var errs []string

	// Paths validation
	paths := map[string]string{
		"paths.work_dir":       c.Paths.WorkDir,
		"paths.java_dir":       c.Paths.JavaDir,
		"paths.game_dir":       c.Paths.GameDir,
		"paths.maven_dir":      c.Paths.MavenDir,
		"paths.fernflower_dir": c.Paths.FernflowerDir,
		"paths.project_dir":    c.Paths.ProjectDir,
		"paths.info_file":      c.Paths.InfoFile,
	}
	for _, key := range sortedKeys(paths) {
		if strings.TrimSpace(paths[key]) == "" {
			errs = append(errs, key+" must not be empty")
		}
	}

	// Sources validation
	sources := map[string]Source{
		"sources.jdk_windows": c.Sources.JDKWindows,
		"sources.jdk_linux":   c.Sources.JDKLinux,
		"sources.game":        c.Sources.Game,
		"sources.maven":       c.Sources.Maven,
		"sources.fernflower":  c.Sources.Fernflower,
		"sources.exe4j_lib":   c.Sources.Exe4jLib,
	}
	for i, src := range c.Sources.UpdateFiles {
		sources[fmt.Sprintf("sources.update_files[%d]", i)] = src
	}
	for _, key := range sortedKeys(sources) {
		errs = append(errs, validateSource(key, sources[key])...)
	}

	// Tools validation
	if c.Tools.MaxCommandOutputSize < 1 {
		errs = append(errs, "tools.max_command_output_size must be >= 1")
	}
	if c.Tools.GracefulShutdownMs < 1 {
		errs = append(errs, "tools.graceful_shutdown_ms must be >= 1")
	}
	if c.Tools.DecompileTimeout < 1 {
		errs = append(errs, "tools.decompile_timeout must be >= 1")
	}
	if c.Tools.BuildTimeout < 1 {
		errs = append(errs, "tools.build_timeout must be >= 1")
	}
	if c.Tools.PatchTimeout < 1 {
		errs = append(errs, "tools.patch_timeout must be >= 1")
	}
	if c.Tools.DownloadTimeout < 1 {
		errs = append(errs, "tools.download_timeout must be >= 1")
	}
	if c.Tools.ParallelDownloads < 1 {
		errs = append(errs, "tools.parallel_downloads must be >= 1")
	}
	if c.Tools.ProgressIntervalMs < 1 {
		errs = append(errs, "tools.progress_interval_ms must be >= 1")
	}

	// Build validation
	if c.Build.GameJar == "" {
		errs = append(errs, "build.game_jar must not be empty")
	}
	if c.Build.ArtifactName == "" {
		errs = append(errs, "build.artifact_name must not be empty")
	}
	if c.Build.OutputJar == "" {
		errs = append(errs, "build.output_jar must not be empty")
	}
	for _, ext := range c.Build.ResourceExts {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Sprintf("build.resource_exts entry %q must start with '.'", ext))
		}
	}

	// Server validation
	if c.Server.MainClass == "" {
		errs = append(errs, "server.main_class must not be empty")
	}
	if c.Server.Conts < 0 {
		errs = append(errs, "server.conts must be >= 0")
	}
	if c.Server.Time < 1 {
		errs = append(errs, "server.time must be >= 1")
	}
	if strings.ContainsAny(c.Server.Description, " \t\"") {
		errs = append(errs, "server.description must not contain whitespace or quotes")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}

func validateSource(key string, src Source) []string {
	var errs []string
	u, err := url.Parse(src.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, key+".url must be an absolute http(s) URL")
	}
	if src.Digest != "" {
		if _, err := digest.Parse(src.Digest); err != nil {
			errs = append(errs, fmt.Sprintf("%s.digest is invalid: %v", key, err))
		}
	}
	return errs
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

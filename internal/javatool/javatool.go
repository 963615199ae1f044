// Package javatool drives the downloaded JDK, the Fernflower decompiler and Maven.
package javatool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/luxdlx/buildtools/internal/config"
	"github.com/luxdlx/buildtools/internal/service/executor"
)

// CommandRunner runs external commands. Implemented by executor.OSCommandExecutor.
type CommandRunner interface {
	RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*executor.Result, error)
}

// Toolchain invokes Java based tools with an explicit environment.
type Toolchain struct {
	runner CommandRunner
	config *config.Config
	goos   string
	base   []string
}

// NewToolchain creates a Toolchain for the current platform and process environment.
func NewToolchain(runner CommandRunner, cfg *config.Config) *Toolchain {
	if runner == nil {
		panic("runner is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &Toolchain{runner: runner, config: cfg, goos: runtime.GOOS, base: os.Environ()}
}

// ForPlatform returns a copy of the toolchain that builds commands for goos using base as
// the inherited environment.
func (t *Toolchain) ForPlatform(goos string, base []string) *Toolchain {
	return &Toolchain{runner: t.runner, config: t.config, goos: goos, base: base}
}

// FindJavaBin returns the bin directory of the first JDK unpacked under javaDir.
func FindJavaBin(javaDir string) (string, error) {
	entries, err := os.ReadDir(javaDir)
	if err != nil {
		return "", fmt.Errorf("failed to scan %s: %w", javaDir, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		bin := filepath.Join(javaDir, e.Name(), "bin")
		if info, err := os.Stat(bin); err == nil && info.IsDir() {
			return bin, nil
		}
	}
	return "", &JavaNotFoundError{Dir: javaDir}
}

// FindMavenHome returns the first directory under mavenDir that contains bin/mvn.
func FindMavenHome(mavenDir string) (string, error) {
	entries, err := os.ReadDir(mavenDir)
	if err != nil {
		return "", fmt.Errorf("failed to scan %s: %w", mavenDir, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		home := filepath.Join(mavenDir, e.Name())
		if _, err := os.Stat(filepath.Join(home, "bin", "mvn")); err == nil {
			return home, nil
		}
	}
	return "", &MavenNotFoundError{Dir: mavenDir}
}

// Env returns base with JAVA_HOME set to the parent of binDir and binDir prepended to PATH.
// base is not modified.
func Env(binDir string, base []string) []string {
	env := make([]string, 0, len(base)+2)
	path := ""
	for _, kv := range base {
		key, value, _ := strings.Cut(kv, "=")
		switch strings.ToUpper(key) {
		case "JAVA_HOME":
			continue
		case "PATH":
			path = value
			continue
		}
		env = append(env, kv)
	}
	if path != "" {
		path = binDir + string(os.PathListSeparator) + path
	} else {
		path = binDir
	}
	return append(env, "JAVA_HOME="+filepath.Dir(binDir), "PATH="+path)
}

// Decompile runs Fernflower over inputJar, writing the decompiled jar into outDir.
func (t *Toolchain) Decompile(ctx context.Context, binDir, fernflowerJar, inputJar, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", outDir, err)
	}
	command := []string{t.executable(binDir, "java"), "-jar", fernflowerJar, inputJar, outDir}
	timeout := time.Duration(t.config.Tools.DecompileTimeout) * time.Second
	return t.run(ctx, "fernflower", command, filepath.Dir(fernflowerJar), binDir, timeout)
}

// MavenPackage runs "mvn clean package" on pomPath with the configured extra arguments.
func (t *Toolchain) MavenPackage(ctx context.Context, mavenHome, binDir, pomPath string) error {
	launcher := "mvn"
	if t.goos == "windows" {
		launcher = "mvn.cmd"
	}
	mvn := filepath.Join(mavenHome, "bin", launcher)
	if t.goos != "windows" {
		if err := ensureExecutable(mvn); err != nil {
			return err
		}
	}

	command := []string{mvn, "-f", pomPath, "clean", "package"}
	command = append(command, t.config.Build.MavenArgs...)
	command = append(command, "-Dmaven.compiler.executable="+t.executable(binDir, "javac"))

	timeout := time.Duration(t.config.Tools.BuildTimeout) * time.Second
	return t.run(ctx, "maven", command, filepath.Dir(pomPath), binDir, timeout)
}

func (t *Toolchain) run(ctx context.Context, tool string, command []string, dir, binDir string, timeout time.Duration) error {
	res, err := t.runner.RunWithTimeout(ctx, command, dir, Env(binDir, t.base), timeout)
	if err == nil {
		return nil
	}
	var cmdErr *executor.CommandError
	if res == nil || errors.As(err, &cmdErr) {
		return fmt.Errorf("failed to run %s: %w", tool, err)
	}
	return &CommandFailedError{Tool: tool, ExitCode: res.ExitCode, Stderr: failureOutput(res), Cause: err}
}

func (t *Toolchain) executable(binDir, name string) string {
	if t.goos == "windows" {
		name += ".exe"
	}
	return filepath.Join(binDir, name)
}

// failureOutput prefers stderr, falling back to stdout for tools that log everything there.
func failureOutput(res *executor.Result) string {
	if strings.TrimSpace(res.Stderr) != "" {
		return res.Stderr
	}
	lines := strings.Split(strings.TrimRight(res.Stdout, "\n"), "\n")
	if len(lines) > 40 {
		lines = lines[len(lines)-40:]
	}
	return strings.Join(lines, "\n")
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &MavenNotFoundError{Dir: filepath.Dir(filepath.Dir(path))}
	}
	if info.Mode().Perm()&0o111 == 0o111 {
		return nil
	}
	if err := os.Chmod(path, info.Mode().Perm()|0o111); err != nil {
		return fmt.Errorf("failed to make %s executable: %w", path, err)
	}
	return nil
}

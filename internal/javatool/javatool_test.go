package javatool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/luxdlx/buildtools/internal/config"
	"github.com/luxdlx/buildtools/internal/service/executor"
	"github.com/luxdlx/buildtools/internal/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envValue(env []string, key string) (string, bool) {
	for _, kv := range env {
		if len(kv) > len(key) && kv[:len(key)+1] == key+"=" {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

func TestNewToolchainPanics(t *testing.T) {
	assert.PanicsWithValue(t, "runner is required", func() { NewToolchain(nil, config.DefaultConfig()) })
	assert.PanicsWithValue(t, "cfg is required", func() { NewToolchain(mocks.NewMockCommandExecutor(nil), nil) })
}

func TestFindJavaBin(t *testing.T) {
	t.Run("first directory with bin", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "OpenJDK.tar.gz"), nil, 0o644))
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "legal"), 0o755))
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "jdk-23.0.2+7", "bin"), 0o755))

		bin, err := FindJavaBin(dir)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "jdk-23.0.2+7", "bin"), bin)
	})

	t.Run("no jdk", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0o755))

		_, err := FindJavaBin(dir)

		var notFound *JavaNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, dir, notFound.Dir)
	})

	t.Run("missing dir", func(t *testing.T) {
		_, err := FindJavaBin(filepath.Join(t.TempDir(), "missing"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestFindMavenHome(t *testing.T) {
	dir := t.TempDir()
	home := filepath.Join(dir, "apache-maven-3.9.11")
	require.NoError(t, os.MkdirAll(filepath.Join(home, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, "bin", "mvn"), []byte("#!/bin/sh\n"), 0o644))

	got, err := FindMavenHome(dir)
	require.NoError(t, err)
	assert.Equal(t, home, got)

	_, err = FindMavenHome(t.TempDir())
	var notFound *MavenNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestEnv(t *testing.T) {
	bin := filepath.Join("work", "jdk", "bin")
	base := []string{"HOME=/home/lux", "JAVA_HOME=/usr/lib/jvm/old", "PATH=/usr/bin"}

	env := Env(bin, base)

	home, ok := envValue(env, "JAVA_HOME")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("work", "jdk"), home)
	path, ok := envValue(env, "PATH")
	require.True(t, ok)
	assert.Equal(t, bin+string(os.PathListSeparator)+"/usr/bin", path)
	assert.Contains(t, env, "HOME=/home/lux")
	assert.NotContains(t, env, "JAVA_HOME=/usr/lib/jvm/old")
	assert.Equal(t, []string{"HOME=/home/lux", "JAVA_HOME=/usr/lib/jvm/old", "PATH=/usr/bin"}, base, "base must not change")

	t.Run("no PATH in base", func(t *testing.T) {
		path, ok := envValue(Env(bin, nil), "PATH")
		require.True(t, ok)
		assert.Equal(t, bin, path)
	})
}

func TestDecompile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	runner := mocks.NewMockCommandExecutor(nil)
	tc := NewToolchain(runner, cfg).ForPlatform("linux", []string{"PATH=/usr/bin"})
	bin := filepath.Join(dir, "jdk", "bin")
	fernflower := filepath.Join(dir, ".fernflower", "fernflower.jar")
	in := filepath.Join(dir, ".fernflower", "LuxCore.jar")
	out := filepath.Join(dir, ".fernflower", "decompiled")

	require.NoError(t, tc.Decompile(context.Background(), bin, fernflower, in, out))

	assert.DirExists(t, out)
	require.Len(t, runner.Calls, 1)
	c := runner.Calls[0]
	assert.Equal(t, []string{filepath.Join(bin, "java"), "-jar", fernflower, in, out}, c.Command)
	assert.Equal(t, filepath.Dir(fernflower), c.Dir)
	assert.Equal(t, 1800*time.Second, c.Timeout)
	home, _ := envValue(c.Env, "JAVA_HOME")
	assert.Equal(t, filepath.Join(dir, "jdk"), home)
}

func TestDecompileFailure(t *testing.T) {
	runner := mocks.NewMockCommandExecutor(nil).Fail(3, "INFO: Decompiling class A\n", "java.lang.OutOfMemoryError\n")
	tc := NewToolchain(runner, config.DefaultConfig()).ForPlatform("linux", nil)
	dir := t.TempDir()

	err := tc.Decompile(context.Background(), "bin", "fernflower.jar", "in.jar", filepath.Join(dir, "out"))

	var failed *CommandFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "fernflower", failed.Tool)
	assert.Equal(t, 3, failed.ExitCode)
	assert.Contains(t, failed.Error(), "OutOfMemoryError")
}

func TestMavenPackage(t *testing.T) {
	newMaven := func(t *testing.T) (string, string) {
		dir := t.TempDir()
		home := filepath.Join(dir, "apache-maven-3.9.11")
		require.NoError(t, os.MkdirAll(filepath.Join(home, "bin"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(home, "bin", "mvn"), []byte("#!/bin/sh\n"), 0o644))
		return dir, home
	}

	t.Run("linux", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("unix permission bits")
		}
		dir, home := newMaven(t)
		runner := mocks.NewMockCommandExecutor(nil)
		tc := NewToolchain(runner, config.DefaultConfig()).ForPlatform("linux", nil)
		pom := filepath.Join(dir, "Luxxit", "pom.xml")
		bin := filepath.Join(dir, "jdk", "bin")

		require.NoError(t, tc.MavenPackage(context.Background(), home, bin, pom))

		info, err := os.Stat(filepath.Join(home, "bin", "mvn"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

		require.Len(t, runner.Calls, 1)
		assert.Equal(t, []string{
			filepath.Join(home, "bin", "mvn"), "-f", pom, "clean", "package", "-X",
			"-Dmaven.compiler.executable=" + filepath.Join(bin, "javac"),
		}, runner.Calls[0].Command)
		assert.Equal(t, filepath.Dir(pom), runner.Calls[0].Dir)
	})

	t.Run("windows uses mvn.cmd", func(t *testing.T) {
		dir, home := newMaven(t)
		runner := mocks.NewMockCommandExecutor(nil)
		tc := NewToolchain(runner, config.DefaultConfig()).ForPlatform("windows", nil)

		require.NoError(t, tc.MavenPackage(context.Background(), home, "bin", filepath.Join(dir, "pom.xml")))

		require.Len(t, runner.Calls, 1)
		assert.Equal(t, filepath.Join(home, "bin", "mvn.cmd"), runner.Calls[0].Command[0])
		assert.Equal(t, "-Dmaven.compiler.executable="+filepath.Join("bin", "javac.exe"), runner.Calls[0].Command[len(runner.Calls[0].Command)-1])
	})

	t.Run("missing launcher", func(t *testing.T) {
		tc := NewToolchain(mocks.NewMockCommandExecutor(nil), config.DefaultConfig()).ForPlatform("linux", nil)
		err := tc.MavenPackage(context.Background(), t.TempDir(), "bin", "pom.xml")

		var notFound *MavenNotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("start failure is not a command failure", func(t *testing.T) {
		dir, home := newMaven(t)
		runner := mocks.NewMockCommandExecutor(nil)
		runner.RunWithTimeoutFunc = func(context.Context, []string, string, []string, time.Duration) (*executor.Result, error) {
			return nil, &executor.CommandError{Cmd: "mvn", Stage: "start", Cause: os.ErrPermission}
		}
		tc := NewToolchain(runner, config.DefaultConfig()).ForPlatform("windows", nil)

		err := tc.MavenPackage(context.Background(), home, "bin", filepath.Join(dir, "pom.xml"))

		require.Error(t, err)
		var failed *CommandFailedError
		assert.False(t, errors.As(err, &failed))
		assert.ErrorIs(t, err, os.ErrPermission)
	})
}

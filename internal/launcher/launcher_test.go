package launcher

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/luxdlx/buildtools/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	p := ParamsFromConfig(config.DefaultConfig(), "ABCD-1234", "qwertz")

	scripts, err := Render(p)
	require.NoError(t, err)

	win := string(scripts[WindowsScript])
	assert.True(t, strings.HasPrefix(win, "@rem LUXXIT SERVER STARTUP SCRIPT - WINDOWS\r\n"))
	assert.Contains(t, win, `"./java/bin/java" -Djava.awt.headless=true -cp * com.sillysoft.lux.Lux -headless -network=true -public=true -map=RomanEmpireII -cards=4e3 -conts=5 -time=30 -name=qwertz -desc=LuxxitPoweredServer! -regCode=ABCD-1234`)

	sh := string(scripts[UnixScript])
	assert.True(t, strings.HasPrefix(sh, "#!/bin/sh\n"))
	assert.Contains(t, sh, `-cp "Luxxit.jar:lib/*" com.sillysoft.lux.Lux`)
	assert.Contains(t, sh, "-name=qwertz -desc=LuxxitPoweredServer! -regCode=ABCD-1234\n")
}

func TestRenderEmptyCredentials(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Public = false
	cfg.Server.Map = "Europe"

	scripts, err := Render(ParamsFromConfig(cfg, "", ""))
	require.NoError(t, err)

	sh := string(scripts[UnixScript])
	assert.Contains(t, sh, "-public=false -map=Europe")
	assert.Contains(t, sh, "-name= -desc=LuxxitPoweredServer! -regCode=\n")
}

func TestWriteScripts(t *testing.T) {
	dir := t.TempDir()

	written, err := WriteScripts(dir, ParamsFromConfig(config.DefaultConfig(), "code", "user"))
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, WindowsScript), filepath.Join(dir, UnixScript)}, written)
	for _, path := range written {
		assert.FileExists(t, path)
	}
	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(dir, UnixScript))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	}

	t.Run("missing dir", func(t *testing.T) {
		_, err := WriteScripts(filepath.Join(dir, "missing"), Params{})
		assert.Error(t, err)
	})
}

// Package launcher writes the server startup scripts placed next to Luxxit.jar.
package launcher

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/luxdlx/buildtools/internal/config"
)

const (
	WindowsScript = "luxxit.cmd"
	UnixScript    = "luxxit.sh"
)

// Params fills the startup scripts.
type Params struct {
	Server   config.ServerConfig
	JavaDir  string
	Jar      string
	RegCode  string
	Username string
}

// ParamsFromConfig builds Params from cfg with the given credentials.
func ParamsFromConfig(cfg *config.Config, regCode, username string) Params {
	return Params{
		Server:   cfg.Server,
		JavaDir:  cfg.Build.JavaOutputDir,
		Jar:      cfg.Build.OutputJar,
		RegCode:  regCode,
		Username: username,
	}
}

const serverArgs = `{{.Server.MainClass}} -headless -network=true -public={{.Server.Public}} -map={{.Server.Map}} -cards={{.Server.Cards}} -conts={{.Server.Conts}} -time={{.Server.Time}} -name={{.Username}} -desc={{.Server.Description}} -regCode={{.RegCode}}`

var (
	windowsTmpl = template.Must(template.New(WindowsScript).Parse(
		"@rem LUXXIT SERVER STARTUP SCRIPT - WINDOWS\r\n" +
			`"./{{.JavaDir}}/bin/java" -Djava.awt.headless=true -cp * ` + serverArgs + "\r\n" +
			"@rem Thanks for using Luxxit!\r\n" +
			"@rem Made by QWERTZ\r\n"))

	unixTmpl = template.Must(template.New(UnixScript).Parse(
		"#!/bin/sh\n" +
			"# LUXXIT SERVER STARTUP SCRIPT - LINUX\n" +
			`cd "$(dirname "$0")" || exit 1` + "\n" +
			`"./{{.JavaDir}}/bin/java" -Djava.awt.headless=true -cp "{{.Jar}}:lib/*" ` + serverArgs + "\n" +
			"# Thanks for using Luxxit!\n" +
			"# Made by QWERTZ\n"))
)

// Render returns the contents of both scripts keyed by file name.
func Render(p Params) (map[string][]byte, error) {
	out := make(map[string][]byte, 2)
	for _, tmpl := range []*template.Template{windowsTmpl, unixTmpl} {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, p); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
		}
		out[tmpl.Name()] = buf.Bytes()
	}
	return out, nil
}

// WriteScripts writes luxxit.cmd and luxxit.sh into dir. The shell script is made executable.
func WriteScripts(dir string, p Params) ([]string, error) {
	scripts, err := Render(p)
	if err != nil {
		return nil, err
	}
	var written []string
	for _, name := range []string{WindowsScript, UnixScript} {
		perm := os.FileMode(0o644)
		if name == UnixScript {
			perm = 0o755
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, scripts[name], perm); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		if err := os.Chmod(path, perm); err != nil {
			return written, fmt.Errorf("failed to chmod %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

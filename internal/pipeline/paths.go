package pipeline

import (
	"path/filepath"

	"github.com/luxdlx/buildtools/internal/config"
)

// Paths holds the absolute locations used by a build.
type Paths struct {
	Root       string
	Work       string
	Java       string
	Game       string
	Maven      string
	Fernflower string
	Decompiled string
	Project    string
	Info       string
}

// ResolvePaths resolves the configured directory names against root.
func ResolvePaths(cfg *config.Config, root string) Paths {
	work := filepath.Join(root, cfg.Paths.WorkDir)
	fernflower := filepath.Join(work, cfg.Paths.FernflowerDir)
	return Paths{
		Root:       root,
		Work:       work,
		Java:       filepath.Join(work, cfg.Paths.JavaDir),
		Game:       filepath.Join(work, cfg.Paths.GameDir),
		Maven:      filepath.Join(work, cfg.Paths.MavenDir),
		Fernflower: fernflower,
		Decompiled: filepath.Join(fernflower, "decompiled"),
		Project:    filepath.Join(work, cfg.Paths.ProjectDir),
		Info:       filepath.Join(work, cfg.Paths.InfoFile),
	}
}

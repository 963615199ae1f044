package pipeline

import (
	"context"
	"path/filepath"

	"github.com/luxdlx/buildtools/internal/fetch"
	"github.com/luxdlx/buildtools/internal/launcher"
	"github.com/luxdlx/buildtools/internal/ui"
)

// pluginsDir is created by the game server at runtime.
const pluginsDir = "plugins"

// Clean removes the work directory and everything a build placed in the root.
// Items that do not exist are ignored.
func (p *Pipeline) Clean() error {
	return p.step("Cleaning up Luxxit directories", func() error {
		targets := []string{
			p.paths.Work,
			filepath.Join(p.paths.Root, pluginsDir),
			filepath.Join(p.paths.Root, p.cfg.Build.SupportDir),
			filepath.Join(p.paths.Root, p.cfg.Build.JavaOutputDir),
			filepath.Join(p.paths.Root, p.cfg.Build.OutputJar),
			filepath.Join(p.paths.Root, launcher.WindowsScript),
			filepath.Join(p.paths.Root, launcher.UnixScript),
		}
		for _, t := range targets {
			if err := p.fs.RemoveAll(t); err != nil {
				return err
			}
		}
		p.ui.WriteStatus(ui.PhaseDone, "Cleaned up Luxxit directories.")
		return nil
	})
}

// Update downloads the configured support files (renames, patch) into the root.
func (p *Pipeline) Update(ctx context.Context) error {
	return p.step("Updating BuildTools", func() error {
		artifacts := make([]fetch.Artifact, 0, len(p.cfg.Sources.UpdateFiles))
		for _, src := range p.cfg.Sources.UpdateFiles {
			artifacts = append(artifacts, artifact(src, p.paths.Root))
		}
		if err := p.fetcher.FetchAll(ctx, artifacts); err != nil {
			return err
		}
		for _, a := range artifacts {
			p.ui.WriteStatus(ui.PhaseDone, "Updated "+filepath.Base(a.Dest))
		}
		return nil
	})
}

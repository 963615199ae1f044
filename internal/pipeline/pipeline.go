// Package pipeline runs the Luxxit build from downloads to startup scripts.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/luxdlx/buildtools/internal/archive"
	"github.com/luxdlx/buildtools/internal/config"
	"github.com/luxdlx/buildtools/internal/fetch"
	"github.com/luxdlx/buildtools/internal/jar"
	"github.com/luxdlx/buildtools/internal/javatool"
	"github.com/luxdlx/buildtools/internal/launcher"
	"github.com/luxdlx/buildtools/internal/layout"
	"github.com/luxdlx/buildtools/internal/ui"
	"github.com/opencontainers/go-digest"
)

// Downloader fetches artifacts. Implemented by fetch.Fetcher.
type Downloader interface {
	Fetch(ctx context.Context, a fetch.Artifact) error
	FetchAll(ctx context.Context, artifacts []fetch.Artifact) error
}

// Toolchain runs the decompiler and the build. Implemented by javatool.Toolchain.
type Toolchain interface {
	Decompile(ctx context.Context, binDir, fernflowerJar, inputJar, outDir string) error
	MavenPackage(ctx context.Context, mavenHome, binDir, pomPath string) error
}

// Patcher applies the Luxxit patch. Implemented by patch.Patcher.
type Patcher interface {
	Apply(ctx context.Context, targetDir, patchFile string) error
}

// FileSystem is the subset of filesystem operations the pipeline uses.
// Implemented by fs.OSFileSystem.
type FileSystem interface {
	layout.FileSystem
	Exists(path string) bool
	WriteFile(path string, content []byte, perm os.FileMode) error
	Copy(src, dst string) error
}

// Credentials are written into the startup scripts. Both may be empty.
type Credentials struct {
	RegCode  string
	Username string
}

// Pipeline runs build, clean and update.
type Pipeline struct {
	cfg     *config.Config
	paths   Paths
	fs      FileSystem
	fetcher Downloader
	tools   Toolchain
	patcher Patcher
	ui      ui.UserInterface
	goos    string
}

// New creates a Pipeline that works below root.
func New(cfg *config.Config, root string, fs FileSystem, fetcher Downloader, tools Toolchain, patcher Patcher, u ui.UserInterface) *Pipeline {
	if cfg == nil {
		panic("cfg is required")
	}
	if fs == nil {
		panic("fs is required")
	}
	if fetcher == nil {
		panic("fetcher is required")
	}
	if tools == nil {
		panic("tools is required")
	}
	if patcher == nil {
		panic("patcher is required")
	}
	if u == nil {
		panic("ui is required")
	}
	return &Pipeline{
		cfg:     cfg,
		paths:   ResolvePaths(cfg, root),
		fs:      fs,
		fetcher: fetcher,
		tools:   tools,
		patcher: patcher,
		ui:      u,
		goos:    runtime.GOOS,
	}
}

// DetectOS maps goos to the platform names used by the build.
func DetectOS(goos string) (string, error) {
	switch goos {
	case "windows", "linux":
		return goos, nil
	default:
		return "", &UnsupportedOSError{GOOS: goos}
	}
}

// step runs fn and reports it. Failures are wrapped in a StepError.
func (p *Pipeline) step(name string, fn func() error) error {
	p.ui.WriteStatus(ui.PhaseRunning, name)
	if err := fn(); err != nil {
		p.ui.WriteStatus(ui.PhaseError, fmt.Sprintf("%s failed", name))
		return &StepError{Step: name, Cause: err}
	}
	return nil
}

// buildState carries values discovered by earlier steps.
type buildState struct {
	osName    string
	javaBin   string
	mavenHome string
}

// Build runs the whole build.
func (p *Pipeline) Build(ctx context.Context, creds Credentials) error {
	st := &buildState{}
	steps := []struct {
		name string
		run  func(context.Context, *buildState) error
	}{
		{"Detecting OS", p.detectOS},
		{"Preparing directories", p.prepareDirs},
		{"Writing info file", p.writeInfo},
		{"Downloading Java runtime, LuxDelux and Maven", p.downloadToolchain},
		{"Extracting archives", p.extractToolchain},
		{"Downloading Fernflower", p.downloadFernflower},
		{"Copying game jar", p.copyGameJar},
		{"Decompiling game jar", p.decompile},
		{"Extracting decompiled sources", p.extractSources},
		{"Restructuring project", p.restructure},
		{"Downloading exe4j library", p.downloadExe4j},
		{"Applying renames", p.applyRenames},
		{"Applying patch", p.applyPatch},
		{"Building with Maven", p.mavenBuild},
		{"Collecting build outputs", p.collectOutputs},
		{"Writing startup scripts", func(_ context.Context, _ *buildState) error {
			return p.writeScripts(creds)
		}},
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.step(s.name, func() error { return s.run(ctx, st) }); err != nil {
			return err
		}
	}

	p.ui.WriteStatus(ui.PhaseDone, "LUXXIT BUILD SUCCESS!")
	p.ui.WriteMessage(instructions(st.osName))
	return nil
}

func (p *Pipeline) detectOS(_ context.Context, st *buildState) error {
	name, err := DetectOS(p.goos)
	if err != nil {
		return err
	}
	st.osName = name
	p.ui.WriteStatus(ui.PhaseDone, "Detected OS: "+name)
	return nil
}

func (p *Pipeline) prepareDirs(_ context.Context, _ *buildState) error {
	if err := p.fs.RemoveAll(p.paths.Work); err != nil {
		return err
	}
	for _, dir := range []string{p.paths.Java, p.paths.Game, p.paths.Maven, p.paths.Fernflower, p.paths.Decompiled, p.paths.Project} {
		if err := p.fs.EnsureDirs(dir); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) writeInfo(_ context.Context, st *buildState) error {
	return p.fs.WriteFile(p.paths.Info, []byte("OS: "+st.osName+"\n"), 0o644)
}

// toolchainArchives lists the archives fetched in the first download step with the directory
// each one is unpacked into.
func (p *Pipeline) toolchainArchives(osName string) []fetch.Artifact {
	jdk := p.cfg.Sources.JDKLinux
	if osName == "windows" {
		jdk = p.cfg.Sources.JDKWindows
	}
	return []fetch.Artifact{
		artifact(jdk, p.paths.Java),
		artifact(p.cfg.Sources.Game, p.paths.Game),
		artifact(p.cfg.Sources.Maven, p.paths.Maven),
	}
}

func artifact(src config.Source, dir string) fetch.Artifact {
	name := src.Name
	if name == "" {
		name = fetch.FileName(src.URL)
	}
	return fetch.Artifact{URL: src.URL, Dest: filepath.Join(dir, name), Digest: digest.Digest(src.Digest)}
}

func (p *Pipeline) downloadToolchain(ctx context.Context, st *buildState) error {
	return p.fetcher.FetchAll(ctx, p.toolchainArchives(st.osName))
}

func (p *Pipeline) extractToolchain(_ context.Context, st *buildState) error {
	for _, a := range p.toolchainArchives(st.osName) {
		p.ui.WriteStatus(ui.PhaseRunning, "Extracting "+filepath.Base(a.Dest))
		if err := archive.Extract(a.Dest, filepath.Dir(a.Dest)); err != nil {
			return err
		}
		if err := p.fs.RemoveAll(a.Dest); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) fernflowerJar() string {
	return artifact(p.cfg.Sources.Fernflower, p.paths.Fernflower).Dest
}

func (p *Pipeline) downloadFernflower(ctx context.Context, _ *buildState) error {
	return p.fetcher.Fetch(ctx, artifact(p.cfg.Sources.Fernflower, p.paths.Fernflower))
}

func (p *Pipeline) copyGameJar(_ context.Context, _ *buildState) error {
	src := filepath.Join(p.paths.Game, p.cfg.Build.GameJarDir, p.cfg.Build.GameJar)
	if !p.fs.Exists(src) {
		return &MissingFileError{Path: src}
	}
	return p.fs.Copy(src, filepath.Join(p.paths.Fernflower, p.cfg.Build.GameJar))
}

func (p *Pipeline) decompile(ctx context.Context, st *buildState) error {
	bin, err := javatool.FindJavaBin(p.paths.Java)
	if err != nil {
		return err
	}
	st.javaBin = bin
	in := filepath.Join(p.paths.Fernflower, p.cfg.Build.GameJar)
	return p.tools.Decompile(ctx, bin, p.fernflowerJar(), in, p.paths.Decompiled)
}

func (p *Pipeline) extractSources(_ context.Context, _ *buildState) error {
	decompiled := filepath.Join(p.paths.Decompiled, p.cfg.Build.GameJar)
	if !p.fs.Exists(decompiled) {
		return &MissingFileError{Path: decompiled}
	}
	src, err := jar.OpenZip(decompiled)
	if err != nil {
		return err
	}
	defer src.Close()

	var stats jar.Stats
	if err := jar.NewExtractor(p.fs, jar.WithStats(&stats)).Extract(src, p.paths.Project); err != nil {
		return err
	}
	p.ui.WriteStatus(ui.PhaseDone, fmt.Sprintf("Extracted %d entries, %d renamed to avoid case conflicts", stats.Entries, stats.Renamed))
	return nil
}

func (p *Pipeline) report(r *layout.Report) {
	if r == nil {
		return
	}
	for _, w := range r.Warnings {
		p.ui.WriteStatus(ui.PhaseWarning, w)
	}
}

func (p *Pipeline) restructure(_ context.Context, _ *buildState) error {
	r, err := layout.NewLayout(p.fs, p.cfg.Build.ResourceExts).Restructure(p.paths.Project)
	p.report(r)
	return err
}

func (p *Pipeline) downloadExe4j(ctx context.Context, _ *buildState) error {
	a := artifact(p.cfg.Sources.Exe4jLib, filepath.Join(p.paths.Project, layout.LibDir))
	if p.fs.Exists(a.Dest) {
		p.ui.WriteStatus(ui.PhaseDone, filepath.Base(a.Dest)+" already exists")
		return nil
	}
	return p.fetcher.Fetch(ctx, a)
}

func (p *Pipeline) applyRenames(_ context.Context, _ *buildState) error {
	file, err := os.Open(filepath.Join(p.paths.Root, p.cfg.Build.RenamesFile))
	if err != nil {
		return err
	}
	defer file.Close()

	renames, skipped, err := layout.ParseRenames(file)
	if err != nil {
		return err
	}
	for _, line := range skipped {
		p.ui.WriteStatus(ui.PhaseWarning, "Skipping invalid line: "+line)
	}
	r, err := layout.NewLayout(p.fs, p.cfg.Build.ResourceExts).ApplyRenames(filepath.Join(p.paths.Project, layout.JavaRoot), renames)
	p.report(r)
	if err != nil {
		return err
	}
	p.ui.WriteStatus(ui.PhaseDone, fmt.Sprintf("Renamed %d of %d paths", len(r.Moved), len(renames)))
	return nil
}

func (p *Pipeline) applyPatch(ctx context.Context, _ *buildState) error {
	return p.patcher.Apply(ctx, p.paths.Project, filepath.Join(p.paths.Root, p.cfg.Build.PatchFile))
}

func (p *Pipeline) mavenBuild(ctx context.Context, st *buildState) error {
	home := p.cfg.Build.MavenHome
	if home == "" {
		found, err := javatool.FindMavenHome(p.paths.Maven)
		if err != nil {
			return err
		}
		home = found
	} else if !filepath.IsAbs(home) {
		home = filepath.Join(p.paths.Maven, home)
	}
	st.mavenHome = home
	return p.tools.MavenPackage(ctx, home, st.javaBin, filepath.Join(p.paths.Project, "pom.xml"))
}

func (p *Pipeline) collectOutputs(_ context.Context, st *buildState) error {
	built := filepath.Join(p.paths.Project, "target", p.cfg.Build.ArtifactName)
	if !p.fs.Exists(built) {
		return &MissingFileError{Path: built}
	}
	moves := []struct{ src, dst string }{
		{built, filepath.Join(p.paths.Root, p.cfg.Build.OutputJar)},
		{filepath.Dir(st.javaBin), filepath.Join(p.paths.Root, p.cfg.Build.JavaOutputDir)},
		{filepath.Join(p.paths.Game, p.cfg.Build.GameJarDir, p.cfg.Build.SupportDir), filepath.Join(p.paths.Root, p.cfg.Build.SupportDir)},
	}
	for _, m := range moves {
		if err := p.fs.RemoveAll(m.dst); err != nil {
			return err
		}
		if err := p.fs.Move(m.src, m.dst); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) writeScripts(creds Credentials) error {
	_, err := launcher.WriteScripts(p.paths.Root, launcher.ParamsFromConfig(p.cfg, creds.RegCode, creds.Username))
	return err
}

func instructions(osName string) string {
	if osName == "windows" {
		return "## Instructions for your OS\n\nRun `luxxit.cmd` to start the server.\n"
	}
	return "## Instructions for your OS\n\nRun `./luxxit.sh` to start the server.\n"
}

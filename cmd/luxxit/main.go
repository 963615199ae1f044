// Package main provides the luxxit command-line build tool.
// It downloads the game and its toolchain, decompiles the game jar, patches the sources and
// builds Luxxit.jar together with the server startup scripts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/luxdlx/buildtools/internal/config"
	"github.com/luxdlx/buildtools/internal/fetch"
	"github.com/luxdlx/buildtools/internal/jar"
	"github.com/luxdlx/buildtools/internal/javatool"
	"github.com/luxdlx/buildtools/internal/patch"
	"github.com/luxdlx/buildtools/internal/pipeline"
	"github.com/luxdlx/buildtools/internal/service/executor"
	"github.com/luxdlx/buildtools/internal/service/fs"
	"github.com/luxdlx/buildtools/internal/ui"
)

const usage = `Usage:
  luxxit [build] [-reg-code CODE] [-username NAME]
  luxxit clean
  luxxit update
  luxxit extract <jar> <output_dir>
  luxxit patch create <original_dir> <modified_dir> <patch_file>
  luxxit patch apply <target_dir> <patch_file>
`

// errUsage marks invalid command lines.
var errUsage = errors.New("invalid arguments")

// Dependencies holds the components required to run the application.
type Dependencies struct {
	Config *config.Config
	UI     ui.UserInterface
	FS     *fs.OSFileSystem
	Root   string
	Stderr io.Writer
}

func createExecutor(deps Dependencies) *executor.OSCommandExecutor {
	return executor.NewOSCommandExecutor(deps.Config)
}

func createPipeline(deps Dependencies) *pipeline.Pipeline {
	cfg := deps.Config
	fetcher := fetch.NewFetcher(
		fetch.WithParallelism(cfg.Tools.ParallelDownloads),
		fetch.WithProgress(pipeline.ReportProgress(deps.UI), time.Duration(cfg.Tools.ProgressIntervalMs)*time.Millisecond),
	)
	runner := createExecutor(deps)
	tools := javatool.NewToolchain(runner.WithStream(deps.Stderr), cfg)
	patcher := patch.NewPatcher(runner, deps.FS, cfg)
	return pipeline.New(cfg, deps.Root, deps.FS, fetcher, tools, patcher, deps.UI)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration.\n")
		cfg = config.DefaultConfig()
	}

	root, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to get working directory: %v\n", err)
		os.Exit(1)
	}

	deps := Dependencies{
		Config: cfg,
		UI:     ui.NewStdConsole(),
		FS:     fs.NewOSFileSystem(),
		Root:   root,
		Stderr: os.Stderr,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], deps))
}

// run executes one command line and returns the process exit status.
func run(ctx context.Context, args []string, deps Dependencies) int {
	err := dispatch(ctx, args, deps)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(deps.Stderr, "Error: %v\n\n%s", err, usage)
		return 2
	default:
		deps.UI.WriteStatus(ui.PhaseError, err.Error())
		return 1
	}
}

func dispatch(ctx context.Context, args []string, deps Dependencies) error {
	cmd := "build"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "build":
		return runBuild(ctx, args, deps)
	case "clean":
		if len(args) != 0 {
			return fmt.Errorf("%w: clean takes no arguments", errUsage)
		}
		return createPipeline(deps).Clean()
	case "update":
		if len(args) != 0 {
			return fmt.Errorf("%w: update takes no arguments", errUsage)
		}
		return createPipeline(deps).Update(ctx)
	case "extract":
		return runExtract(args, deps)
	case "patch":
		return runPatch(ctx, args, deps)
	case "help":
		fmt.Fprint(deps.Stderr, usage)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func runBuild(ctx context.Context, args []string, deps Dependencies) error {
	flags := flag.NewFlagSet("build", flag.ContinueOnError)
	flags.SetOutput(deps.Stderr)
	regCode := flags.String("reg-code", "", "registration code written into the startup scripts")
	username := flags.String("username", "", "server name written into the startup scripts")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if flags.NArg() != 0 {
		return fmt.Errorf("%w: unexpected argument %q", errUsage, flags.Arg(0))
	}

	set := map[string]bool{}
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })

	creds := pipeline.Credentials{RegCode: *regCode, Username: *username}
	var err error
	if !set["reg-code"] {
		if creds.RegCode, err = deps.UI.ReadInput(ctx, "Enter your registration code (or leave empty to set it later): "); err != nil {
			return err
		}
	}
	if !set["username"] {
		if creds.Username, err = deps.UI.ReadInput(ctx, "Enter your username (or leave empty to set it later): "); err != nil {
			return err
		}
	}
	return createPipeline(deps).Build(ctx, creds)
}

func runExtract(args []string, deps Dependencies) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: extract needs <jar> <output_dir>", errUsage)
	}
	jarPath, outDir := deps.path(args[0]), deps.path(args[1])

	deps.UI.WriteStatus(ui.PhaseRunning, fmt.Sprintf("Extracting %s with case-aware method...", filepath.Base(jarPath)))
	var stats jar.Stats
	if err := jar.ExtractFile(jarPath, outDir, jar.WithStats(&stats)); err != nil {
		return err
	}
	deps.UI.WriteStatus(ui.PhaseDone, fmt.Sprintf("Extraction complete! %d entries renamed.", stats.Renamed))
	return nil
}

func runPatch(ctx context.Context, args []string, deps Dependencies) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: patch needs create or apply", errUsage)
	}
	patcher := patch.NewPatcher(createExecutor(deps), deps.FS, deps.Config)

	switch action, rest := args[0], args[1:]; {
	case action == "create" && len(rest) == 3:
		file := deps.path(rest[2])
		deps.UI.WriteStatus(ui.PhaseRunning, fmt.Sprintf("Creating patch file %s ...", file))
		if err := patcher.Create(ctx, deps.path(rest[0]), deps.path(rest[1]), file); err != nil {
			return err
		}
		deps.UI.WriteStatus(ui.PhaseDone, "Patch created: "+file)
		return nil
	case action == "apply" && len(rest) == 2:
		target, file := deps.path(rest[0]), deps.path(rest[1])
		deps.UI.WriteStatus(ui.PhaseRunning, fmt.Sprintf("Applying patch %s to %s ...", file, target))
		if err := patcher.Apply(ctx, target, file); err != nil {
			return err
		}
		deps.UI.WriteStatus(ui.PhaseDone, "Patch applied successfully!")
		return nil
	default:
		return fmt.Errorf("%w: patch create <original_dir> <modified_dir> <patch_file> | patch apply <target_dir> <patch_file>", errUsage)
	}
}

// path resolves p against the workspace root.
func (d Dependencies) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(d.Root, p)
}

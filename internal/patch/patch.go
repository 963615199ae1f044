// Package patch creates and applies the unified diff that turns the decompiled sources into
// Luxxit.
package patch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/luxdlx/buildtools/internal/config"
	"github.com/luxdlx/buildtools/internal/service/executor"
)

// CommandRunner finds and runs the external patch tools.
type CommandRunner interface {
	LookPath(name string) (string, error)
	RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*executor.Result, error)
}

// FileSystem copies trees into the staging repository.
type FileSystem interface {
	Copy(src, dst string) error
	EnsureDirs(path string) error
	RemoveAll(path string) error
}

// Patcher creates and applies patches.
type Patcher struct {
	runner  CommandRunner
	fs      FileSystem
	timeout time.Duration
}

// NewPatcher creates a Patcher.
func NewPatcher(runner CommandRunner, fs FileSystem, cfg *config.Config) *Patcher {
	if runner == nil {
		panic("runner is required")
	}
	if fs == nil {
		panic("fs is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &Patcher{
		runner:  runner,
		fs:      fs,
		timeout: time.Duration(cfg.Tools.PatchTimeout) * time.Second,
	}
}

var signature = object.Signature{Name: "luxxit", Email: "buildtools@luxxit.invalid"}

// Create writes a unified diff from originalDir to modifiedDir into patchFile. Files present
// only in originalDir are not recorded as deletions.
func (p *Patcher) Create(ctx context.Context, originalDir, modifiedDir, patchFile string) error {
	tmp, err := os.MkdirTemp("", "luxxit-patch-")
	if err != nil {
		return fmt.Errorf("failed to create staging dir: %w", err)
	}
	defer p.fs.RemoveAll(tmp)

	repo, err := git.PlainInit(tmp, false)
	if err != nil {
		return &RepoError{Dir: tmp, Op: "init", Cause: err}
	}
	wt, err := repo.Worktree()
	if err != nil {
		return &RepoError{Dir: tmp, Op: "worktree", Cause: err}
	}

	if err := p.overlay(ctx, originalDir, tmp); err != nil {
		return err
	}
	base, err := commitAll(wt, tmp, "original")
	if err != nil {
		return err
	}

	if err := p.overlay(ctx, modifiedDir, tmp); err != nil {
		return err
	}
	head, err := commitAll(wt, tmp, "modified")
	if err != nil {
		return err
	}

	from, err := repo.CommitObject(base)
	if err != nil {
		return &RepoError{Dir: tmp, Op: "log", Cause: err}
	}
	to, err := repo.CommitObject(head)
	if err != nil {
		return &RepoError{Dir: tmp, Op: "log", Cause: err}
	}
	diff, err := from.PatchContext(ctx, to)
	if err != nil {
		return &RepoError{Dir: tmp, Op: "diff", Cause: err}
	}

	if err := p.fs.EnsureDirs(filepath.Dir(patchFile)); err != nil {
		return err
	}
	out, err := os.Create(patchFile)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", patchFile, err)
	}
	if err := diff.Encode(out); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write %s: %w", patchFile, err)
	}
	return out.Close()
}

// overlay copies every non-ignored file of src into dst, replacing existing files.
func (p *Patcher) overlay(ctx context.Context, src, dst string) error {
	ignore, err := newIgnoreMatcher(src)
	if err != nil {
		return fmt.Errorf("failed to read ignore rules of %s: %w", src, err)
	}
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil || rel == "." {
			return err
		}
		if ignore.ShouldIgnore(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		return p.fs.Copy(path, filepath.Join(dst, rel))
	})
}

func commitAll(wt *git.Worktree, dir, msg string) (plumbing.Hash, error) {
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return plumbing.ZeroHash, &RepoError{Dir: dir, Op: "add", Cause: err}
	}
	sig := signature
	sig.When = time.Now()
	hash, err := wt.Commit(msg, &git.CommitOptions{Author: &sig, AllowEmptyCommits: true})
	if err != nil {
		return plumbing.ZeroHash, &RepoError{Dir: dir, Op: "commit", Cause: err}
	}
	return hash, nil
}

// Apply applies patchFile to targetDir. The tree is first staged in a git repository so that
// git apply resolves paths against it; without git, patch -p1 is used instead.
func (p *Patcher) Apply(ctx context.Context, targetDir, patchFile string) error {
	patchPath, err := filepath.Abs(patchFile)
	if err != nil {
		return err
	}
	if _, err := os.Stat(patchPath); err != nil {
		return fmt.Errorf("patch file: %w", err)
	}

	if gitPath, err := p.runner.LookPath("git"); err == nil {
		if err := stage(targetDir); err != nil {
			return err
		}
		cmd := []string{gitPath, "apply", "--ignore-space-change", "--ignore-whitespace", patchPath}
		return p.run(ctx, "git", cmd, targetDir)
	}
	if patchTool, err := p.runner.LookPath("patch"); err == nil {
		cmd := []string{patchTool, "-p1", "-d", targetDir, "-i", patchPath}
		return p.run(ctx, "patch", cmd, "")
	}
	return ErrNoPatchTool
}

// stage initialises (or reopens) a repository in dir and adds every file to its index.
func stage(dir string) error {
	repo, err := git.PlainInit(dir, false)
	if errors.Is(err, git.ErrRepositoryAlreadyExists) {
		repo, err = git.PlainOpen(dir)
	}
	if err != nil {
		return &RepoError{Dir: dir, Op: "init", Cause: err}
	}
	wt, err := repo.Worktree()
	if err != nil {
		return &RepoError{Dir: dir, Op: "worktree", Cause: err}
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return &RepoError{Dir: dir, Op: "add", Cause: err}
	}
	return nil
}

func (p *Patcher) run(ctx context.Context, tool string, cmd []string, dir string) error {
	res, err := p.runner.RunWithTimeout(ctx, cmd, dir, os.Environ(), p.timeout)
	if err == nil {
		return nil
	}
	if res == nil {
		return fmt.Errorf("failed to run %s: %w", tool, err)
	}
	return &ApplyError{Tool: tool, ExitCode: res.ExitCode, Output: res.Stderr + res.Stdout, Cause: err}
}

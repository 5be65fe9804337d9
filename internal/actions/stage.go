package actions

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/example/actpack/internal/manifest"
	"golang.org/x/sync/errgroup"
)

const copyConcurrency = 8

type copyJob struct {
	src, dst string
	mode     fs.FileMode
}

// resetDir recreates dir empty.
func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clean %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// copyTree copies the regular files and directories under src into dst.
func copyTree(ctx context.Context, src, dst string) error {
	var jobs []copyJob
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		jobs = append(jobs, copyJob{src: path, dst: target, mode: info.Mode().Perm()})
		return nil
	})
	if err != nil {
		return fmt.Errorf("stage %s: %w", src, err)
	}
	return runCopies(ctx, jobs)
}

// stageIncludes copies every file matched by includes to
// <dst>/<include dest>/<basename>. A pattern matching nothing is fine.
func stageIncludes(ctx context.Context, m Matcher, root, dst string, includes []manifest.Include) error {
	var jobs []copyJob
	for _, inc := range includes {
		matches, err := m.Match(ctx, root, inc.Pattern)
		if err != nil {
			return fmt.Errorf("resolve include %q: %w", inc.Pattern, err)
		}
		destDir := filepath.Join(dst, filepath.FromSlash(inc.Dest))
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return fmt.Errorf("stat include %s: %w", match, err)
			}
			if info.IsDir() {
				continue
			}
			jobs = append(jobs, copyJob{src: match, dst: filepath.Join(destDir, filepath.Base(match)), mode: info.Mode().Perm()})
		}
	}
	return runCopies(ctx, jobs)
}

func runCopies(ctx context.Context, jobs []copyJob) error {
	if len(jobs) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(copyConcurrency)
	for _, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return copyFile(job)
		})
	}
	return g.Wait()
}

func copyFile(job copyJob) error {
	if err := os.MkdirAll(filepath.Dir(job.dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(job.src)
	if err != nil {
		return err
	}
	defer in.Close()
	mode := job.mode
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(job.dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s: %w", job.src, err)
	}
	return out.Close()
}

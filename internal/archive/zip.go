// File: internal/archive/zip.go
// Brief: Zip archiver for staged action folders.

// Package archive packs staged action directories into deployable zip files.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Zipper writes one zip archive per source directory. Entries are stored
// with slash-separated paths relative to the source directory, in lexical
// walk order.
type Zipper struct {
	// Method is the zip compression method; zero means Deflate.
	Method uint16
}

// NewZipper returns a Zipper using Deflate.
func NewZipper() *Zipper { return &Zipper{Method: zip.Deflate} }

// Archive packs srcDir into dst. The archive is written to a temp file next
// to dst and renamed into place, so a failed run never leaves a truncated
// archive behind.
func (z *Zipper) Archive(ctx context.Context, srcDir, dst string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	srcDir = strings.TrimSpace(srcDir)
	dst = strings.TrimSpace(dst)
	if srcDir == "" {
		return errors.New("archive source directory is required")
	}
	if dst == "" {
		return errors.New("archive destination is required")
	}
	info, err := os.Stat(srcDir)
	if err != nil {
		return fmt.Errorf("stat archive source: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("archive source %s is not a directory", srcDir)
	}

	outDir := filepath.Dir(dst)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(outDir, "actpack-*.zip.tmp")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	tmpPath := tmpFile.Name()
	cleanupTmp := func() { _ = os.Remove(tmpPath) }

	if err := z.write(ctx, tmpFile, srcDir); err != nil {
		_ = tmpFile.Close()
		cleanupTmp()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		cleanupTmp()
		return fmt.Errorf("close temp archive: %w", err)
	}
	_ = os.Remove(dst)
	if err := os.Rename(tmpPath, dst); err != nil {
		cleanupTmp()
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}

func (z *Zipper) write(ctx context.Context, w io.Writer, srcDir string) error {
	method := z.Method
	if method == 0 {
		method = zip.Deflate
	}
	zw := zip.NewWriter(w)
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == srcDir {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			hdr, err := zip.FileInfoHeader(info)
			if err != nil {
				return err
			}
			hdr.Name = name + "/"
			_, err = zw.CreateHeader(hdr)
			return err
		}
		if !info.Mode().IsRegular() {
			// only regular files are archived
			return nil
		}
		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = name
		hdr.Method = method
		entry, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		return copyFile(entry, path)
	})
	if err != nil {
		_ = zw.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// File: internal/actions/build.go
// Brief: Sequential classify, stage, bundle and archive pipeline per action.

// Package actions turns the actions declared in a manifest into zip
// archives ready for deployment.
package actions

import (
	"context"
	"fmt"

	"github.com/example/actpack/internal/archive"
	"github.com/example/actpack/internal/bundler"
	"github.com/example/actpack/internal/fsmatch"
	"github.com/go-logr/logr"
)

type Bundler interface {
	Run(ctx context.Context, cfg *bundler.Config) (*bundler.Stats, error)
}

type Archiver interface {
	Archive(ctx context.Context, srcDir, dst string) error
}

type Matcher interface {
	Match(ctx context.Context, root string, patterns ...string) ([]string, error)
}

type Locator interface {
	Locate(ctx context.Context, dir string) (string, error)
}

// Dependencies are the collaborators a Builder drives. Nil fields get the
// default implementation.
type Dependencies struct {
	Bundler  Bundler
	Archiver Archiver
	Matcher  Matcher
	Locator  Locator
	Logger   logr.Logger
}

// Builder builds targets one at a time and stops at the first failure.
type Builder struct {
	bundler  Bundler
	archiver Archiver
	matcher  Matcher
	locator  Locator
	log      logr.Logger
}

// Result is the outcome of one target. Exactly one of Archive and Err is set.
type Result struct {
	Target  Target
	Source  Source
	Archive string
	Err     error
}

// Planned describes where a target will be staged and archived.
type Planned struct {
	Target  Target
	Source  Source
	TempDir string
	Archive string
	// Err is the classification failure, if any.
	Err error
}

// Composition is the bundler config composed for one bundle-file target
// together with its inputs.
type Composition struct {
	Source   Source
	Defaults bundler.Defaults
	Override *bundler.Override
	Config   *bundler.Config
}

func New(deps Dependencies) *Builder {
	log := deps.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	m := deps.Matcher
	if m == nil {
		m = fsmatch.New()
	}
	loc := deps.Locator
	if loc == nil {
		loc = bundler.NewFileLocator(m)
	}
	bn := deps.Bundler
	if bn == nil {
		bn = bundler.NewExecBundler("", "", log)
	}
	ar := deps.Archiver
	if ar == nil {
		ar = archive.NewZipper()
	}
	return &Builder{
		bundler:  bn,
		archiver: ar,
		matcher:  m,
		locator:  loc,
		log:      log,
	}
}

// Build builds every selected target and returns their archive paths in
// traversal order. On failure no paths are returned.
func (b *Builder) Build(ctx context.Context, cfg Config, filters []string) ([]string, error) {
	results, err := b.Run(ctx, cfg, filters)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(results))
	for _, r := range results {
		paths = append(paths, r.Archive)
	}
	return paths, nil
}

// Run builds the selected targets in order. It stops at the first failed
// target; the returned results end with that target.
func (b *Builder) Run(ctx context.Context, cfg Config, filters []string) ([]Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	targets, err := Targets(cfg, filters)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(targets))
	for _, t := range targets {
		res := b.buildTarget(ctx, cfg, t)
		results = append(results, res)
		if res.Err != nil {
			b.log.Error(res.Err, "action build failed", "action", t.Name())
			return results, &TargetError{Target: t, Err: res.Err}
		}
		b.log.V(1).Info("action built", "action", t.Name(), "archive", res.Archive)
	}
	return results, nil
}

func (b *Builder) buildTarget(ctx context.Context, cfg Config, t Target) Result {
	res := Result{Target: t}
	src, err := Classify(cfg.Root, t)
	if err != nil {
		res.Err = err
		return res
	}
	res.Source = src
	log := b.log.WithValues("action", t.Name(), "kind", src.Kind.String())

	tempDir := TempDir(cfg.Dist, t)
	if err := resetDir(tempDir); err != nil {
		res.Err = err
		return res
	}

	switch src.Kind {
	case KindZipFolder:
		log.V(1).Info("staging folder", "dir", src.Dir, "temp", tempDir)
		if err := copyTree(ctx, src.Dir, tempDir); err != nil {
			res.Err = err
			return res
		}
		if err := stageIncludes(ctx, b.matcher, cfg.Root, tempDir, t.Include); err != nil {
			res.Err = err
			return res
		}
	case KindBundleFile:
		if err := stageIncludes(ctx, b.matcher, cfg.Root, tempDir, t.Include); err != nil {
			res.Err = err
			return res
		}
		comp, err := b.compose(ctx, cfg, t, src)
		if err != nil {
			res.Err = err
			return res
		}
		log.V(1).Info("bundling", "entry", comp.Config.Entry, "override", overridePath(comp.Override))
		if err := b.bundle(ctx, log, comp.Config); err != nil {
			res.Err = err
			return res
		}
	}

	dst := ArchivePath(cfg.Dist, t)
	log.V(1).Info("archiving", "temp", tempDir, "archive", dst)
	if err := b.archiver.Archive(ctx, tempDir, dst); err != nil {
		res.Err = fmt.Errorf("archive %s: %w", dst, err)
		return res
	}
	res.Archive = dst
	return res
}

// bundle runs the bundler and evaluates its stats. Warnings are logged even
// when the same run also reports errors.
func (b *Builder) bundle(ctx context.Context, log logr.Logger, cfg *bundler.Config) error {
	stats, err := b.bundler.Run(ctx, cfg)
	if err != nil {
		return &BuildInvocationError{Err: err}
	}
	if stats.HasWarnings() {
		log.Info("bundler compilation warnings:\n" + stats.WarningPayload())
	}
	if stats.HasErrors() {
		return &CompilationError{Payload: stats.ErrorPayload()}
	}
	return nil
}

// ComposeFor returns the bundler config a build of t would use, without
// running the bundler.
func (b *Builder) ComposeFor(ctx context.Context, cfg Config, t Target) (*Composition, error) {
	src, err := Classify(cfg.Root, t)
	if err != nil {
		return nil, err
	}
	if src.Kind != KindBundleFile {
		return nil, fmt.Errorf("%s is a folder action and is archived without bundling", t.Name())
	}
	return b.compose(ctx, cfg, t, src)
}

func (b *Builder) compose(ctx context.Context, cfg Config, t Target, src Source) (*Composition, error) {
	ov, err := bundler.FindOverride(ctx, b.locator, src.Dir, cfg.ActionsRoot)
	if err != nil {
		return nil, err
	}
	d := bundler.Defaults{
		Entry:      src.Entry,
		OutputPath: TempDir(cfg.Dist, t),
		Env:        cfg.Env,
	}
	if keys := bundler.PinnedOutputKeys(ov); len(keys) > 0 {
		b.log.V(1).Info("ignoring pinned output keys from bundler override", "action", t.Name(), "override", ov.Path, "keys", keys)
	}
	return &Composition{
		Source:   src,
		Defaults: d,
		Override: ov,
		Config:   bundler.Compose(d, ov),
	}, nil
}

// Plan lists the selected targets with their output paths. Classification
// failures are reported per target rather than returned.
func (b *Builder) Plan(cfg Config, filters []string) ([]Planned, error) {
	targets, err := Targets(cfg, filters)
	if err != nil {
		return nil, err
	}
	out := make([]Planned, 0, len(targets))
	for _, t := range targets {
		src, err := Classify(cfg.Root, t)
		out = append(out, Planned{
			Target:  t,
			Source:  src,
			TempDir: TempDir(cfg.Dist, t),
			Archive: ArchivePath(cfg.Dist, t),
			Err:     err,
		})
	}
	return out, nil
}

func overridePath(ov *bundler.Override) string {
	if ov == nil {
		return ""
	}
	return ov.Path
}

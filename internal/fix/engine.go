// Package fix orchestrates a full normalization run: scan the namespace for
// roles, build the rename map, rename directories deepest first, rewrite
// references throughout the tree, then sweep leftover hyphenated duplicates.
package fix

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/galaxykit/rolefix/internal/docs"
	"github.com/galaxykit/rolefix/internal/errors"
	"github.com/galaxykit/rolefix/internal/logging"
	"github.com/galaxykit/rolefix/internal/registry"
	"github.com/galaxykit/rolefix/internal/renamer"
	"github.com/galaxykit/rolefix/internal/rewrite"
	"github.com/galaxykit/rolefix/internal/scanner"
	"github.com/galaxykit/rolefix/internal/types"
)

// DefaultCacheSize bounds the document cache for one run.
const DefaultCacheSize = 512

// Options configures a normalization run.
type Options struct {
	// Root is the collection root containing the namespace directory and
	// any consumer documents (playbooks, inventories)
	Root string
	// NamespaceDir holds the roles; defaults to <Root>/roles
	NamespaceDir string
	// DryRun reports every decision without touching the file system
	DryRun bool
	// Backup writes a timestamped copy before each document rewrite
	Backup bool
	// SkipDirs are directory names excluded from consumer rewriting;
	// nil selects rewrite.DefaultSkipDirs
	SkipDirs []string
	// CacheSize bounds the document cache; zero selects DefaultCacheSize
	CacheSize int
}

// Report is the outcome of one run.
type Report struct {
	Root         string
	NamespaceDir string
	DryRun       bool
	RolesFound   int
	Renames      types.RenameMap
	Results      []renamer.RenameResult
	Rewritten    []string
	Swept        []string
	Warnings     []errors.Warning
	Duration     time.Duration
}

// Summary aggregates rename outcomes by kind.
type Summary struct {
	Renamed           int
	ReplacedSymlinks  int
	DuplicatesRemoved int
	SkippedStale      int
	Conflicts         int
	Rewritten         int
	Swept             int
	Warnings          int
}

// Summary tallies the report for display.
func (r *Report) Summary() Summary {
	s := Summary{
		Rewritten: len(r.Rewritten),
		Swept:     len(r.Swept),
		Warnings:  len(r.Warnings),
	}
	for _, res := range r.Results {
		switch res.Outcome {
		case renamer.OutcomeRenamed:
			s.Renamed++
		case renamer.OutcomeReplacedSymlink:
			s.ReplacedSymlinks++
		case renamer.OutcomeDuplicateRemoved:
			s.DuplicatesRemoved++
		case renamer.OutcomeSkippedStale:
			s.SkippedStale++
		case renamer.OutcomeConflictFile:
			s.Conflicts++
		}
	}
	return s
}

// Clean reports whether the tree needed no changes.
func (r *Report) Clean() bool {
	return len(r.Renames) == 0
}

// Engine runs the normalization pipeline.
type Engine struct {
	opts     Options
	log      logging.Logger
	registry *registry.RoleRegistry
}

// NewEngine creates an engine. The registry is retained across runs so watch
// mode can observe role lifecycle events.
func NewEngine(opts Options, log logging.Logger) *Engine {
	if opts.NamespaceDir == "" {
		opts.NamespaceDir = filepath.Join(opts.Root, "roles")
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	log = log.WithComponent("fix")
	if opts.DryRun {
		log = log.With("dry_run", true)
	}
	return &Engine{
		opts:     opts,
		log:      log,
		registry: registry.NewRoleRegistry(),
	}
}

// Registry exposes the role registry for event subscribers.
func (e *Engine) Registry() *registry.RoleRegistry {
	return e.registry
}

// Run executes one full pass. The only fatal error is a missing root; every
// per-role and per-document failure is recovered, logged, and reported.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	if info, err := os.Stat(e.opts.Root); err != nil || !info.IsDir() {
		return nil, errors.ErrRootNotFound(e.opts.Root)
	}

	report := &Report{
		Root:         e.opts.Root,
		NamespaceDir: e.opts.NamespaceDir,
		DryRun:       e.opts.DryRun,
	}

	sc := scanner.NewRoleScanner(e.registry)
	roles := sc.ScanTree(e.opts.NamespaceDir)
	report.RolesFound = len(roles)
	e.log.Info(ctx, "scanned namespace", "dir", e.opts.NamespaceDir, "roles", len(roles))

	loader, err := docs.NewLoader(e.opts.CacheSize)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInternalError, "creating document cache", err)
	}

	builder := renamer.NewMapBuilder(loader, e.log)
	report.Renames = builder.BuildRenameMap(ctx, roles, e.opts.NamespaceDir, e.opts.Root)

	if report.Clean() {
		e.log.Info(ctx, "no invalid role names found, nothing to do")
		report.Duration = time.Since(start)
		return report, nil
	}
	e.log.Info(ctx, "built rename map", "entries", len(report.Renames))

	exec := renamer.NewExecutor(e.opts.DryRun, e.log)
	report.Results = exec.Execute(ctx, roles, report.Renames)

	rw := rewrite.NewRewriter(report.Renames, loader, rewrite.Options{
		DryRun:   e.opts.DryRun,
		Backup:   e.opts.Backup,
		SkipDirs: e.opts.SkipDirs,
	}, e.log)
	report.Rewritten = rw.RewriteTree(ctx, e.opts.Root)
	report.Warnings = rw.Warnings()

	report.Swept = renamer.Sweep(ctx, e.opts.NamespaceDir, e.opts.DryRun, e.log)

	report.Duration = time.Since(start)
	s := report.Summary()
	e.log.Info(ctx, "run complete",
		"renamed", s.Renamed,
		"rewritten", s.Rewritten,
		"swept", s.Swept,
		"conflicts", s.Conflicts,
		"warnings", s.Warnings,
		"duration", report.Duration)

	return report, nil
}

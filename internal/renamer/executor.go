package renamer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/galaxykit/rolefix/internal/errors"
	"github.com/galaxykit/rolefix/internal/logging"
	"github.com/galaxykit/rolefix/internal/types"
)

// RenameOutcome classifies the result of one directory rename attempt.
type RenameOutcome int

const (
	// OutcomeRenamed is an ordinary move to a previously absent target
	OutcomeRenamed RenameOutcome = iota
	// OutcomeReplacedSymlink means the target was a symlink that was removed
	// before moving the source into its place
	OutcomeReplacedSymlink
	// OutcomeDuplicateRemoved means the target directory already existed, so
	// the source was deleted as a stale duplicate (existing target wins)
	OutcomeDuplicateRemoved
	// OutcomeSkippedStale means the source path no longer existed, an
	// expected consequence of an earlier ancestor rename
	OutcomeSkippedStale
	// OutcomeConflictFile means the target was a plain file; the rename was
	// aborted and the role keeps its invalid name for this run
	OutcomeConflictFile
)

// String returns the string representation of the outcome
func (o RenameOutcome) String() string {
	switch o {
	case OutcomeRenamed:
		return "renamed"
	case OutcomeReplacedSymlink:
		return "replaced-symlink"
	case OutcomeDuplicateRemoved:
		return "duplicate-removed"
	case OutcomeSkippedStale:
		return "skipped-stale"
	case OutcomeConflictFile:
		return "conflict-file"
	default:
		return "unknown"
	}
}

// RenameResult reports one rename attempt. Err is set only for
// OutcomeConflictFile; every other outcome is a success or an expected skip.
type RenameResult struct {
	Role    types.Role
	OldPath string
	NewPath string
	Outcome RenameOutcome
	Err     error
}

// pathMapping records one performed rename for ancestor-path compensation.
type pathMapping struct {
	oldPath string
	newPath string
}

// Executor applies the rename map to the directory tree. Roles must be
// supplied deepest first; the executor keeps an ordered old-path to new-path
// table and rewrites any stale ancestor prefix before touching a role.
// Execution is strictly sequential: concurrent renames would race on shared
// parent directories.
type Executor struct {
	dryRun  bool
	log     logging.Logger
	renamed []pathMapping
}

// NewExecutor creates a rename executor. With dryRun set, every decision is
// logged but the file system is never touched.
func NewExecutor(dryRun bool, log logging.Logger) *Executor {
	log = log.WithComponent("executor")
	if dryRun {
		log = log.With("dry_run", true)
	}
	return &Executor{dryRun: dryRun, log: log}
}

// RenamedPaths returns the accumulated old-path to new-path pairs in
// execution order.
func (e *Executor) RenamedPaths() map[string]string {
	result := make(map[string]string, len(e.renamed))
	for _, pm := range e.renamed {
		result[pm.oldPath] = pm.newPath
	}
	return result
}

// Execute processes the deepest-first role sequence against the rename map.
// Failure of one rename never aborts the batch.
func (e *Executor) Execute(ctx context.Context, roles []types.Role, m types.RenameMap) []RenameResult {
	var results []RenameResult

	for _, role := range roles {
		newName, ok := m.Resolve(role.Name)
		if !ok {
			continue
		}

		current := e.compensate(role.Path)

		if _, err := os.Lstat(current); err != nil {
			e.log.Warn(ctx, errors.ErrStalePath(role.Name, role.Path),
				"skipping rename", "role", role.Name, "path", role.Path)
			results = append(results, RenameResult{
				Role:    role,
				OldPath: current,
				Outcome: OutcomeSkippedStale,
			})
			continue
		}

		newPath := filepath.Join(filepath.Dir(current), newName)
		e.log.Info(ctx, "renaming role directory", "from", current, "to", newPath)

		outcome, err := e.move(ctx, current, newPath)
		if err == nil {
			// Keyed by the discovery-time path so descendants found under
			// the old location compensate correctly.
			e.renamed = append(e.renamed, pathMapping{oldPath: role.Path, newPath: newPath})
		} else {
			e.log.Error(ctx, err, "rename failed", "role", role.Name, "target", newPath)
		}

		results = append(results, RenameResult{
			Role:    role,
			OldPath: current,
			NewPath: newPath,
			Outcome: outcome,
			Err:     err,
		})
	}

	return results
}

// compensate rewrites the ancestor prefix of path if a previously performed
// rename moved one of its ancestors.
func (e *Executor) compensate(path string) string {
	sep := string(filepath.Separator)
	for _, pm := range e.renamed {
		if strings.HasPrefix(path, pm.oldPath+sep) {
			return pm.newPath + path[len(pm.oldPath):]
		}
	}
	return path
}

// move applies the target-exists policy: a symlink target is replaced, an
// existing directory wins over the source, a plain file aborts this one
// rename, and an absent target means an ordinary move.
func (e *Executor) move(ctx context.Context, src, dst string) (RenameOutcome, error) {
	info, err := os.Lstat(dst)
	if err != nil {
		if e.dryRun {
			return OutcomeRenamed, nil
		}
		if renameErr := os.Rename(src, dst); renameErr != nil {
			return OutcomeConflictFile, errors.NewRenameError(
				errors.ErrCodeRenameConflict, "moving directory", renameErr).WithPath(src)
		}
		return OutcomeRenamed, nil
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		e.log.Info(ctx, "target is a symlink, replacing it", "target", dst)
		if !e.dryRun {
			if err := os.Remove(dst); err != nil {
				return OutcomeConflictFile, errors.NewRenameError(
					errors.ErrCodeRenameConflict, "removing symlink target", err).WithPath(dst)
			}
			if err := os.Rename(src, dst); err != nil {
				return OutcomeConflictFile, errors.NewRenameError(
					errors.ErrCodeRenameConflict, "moving directory", err).WithPath(src)
			}
		}
		return OutcomeReplacedSymlink, nil

	case info.IsDir():
		e.log.Info(ctx, "target directory already exists, deleting duplicate source",
			"target", dst, "source", src)
		if !e.dryRun {
			if err := os.RemoveAll(src); err != nil {
				return OutcomeConflictFile, errors.NewRenameError(
					errors.ErrCodeRenameConflict, "removing duplicate source", err).WithPath(src)
			}
		}
		return OutcomeDuplicateRemoved, nil

	default:
		return OutcomeConflictFile, errors.ErrRenameConflict(filepath.Base(src), dst)
	}
}

// Package rewrite updates role references inside YAML documents after a
// rename. Documents are parsed into the generic yaml.Node tree (mappings,
// sequences, scalars) and visited recursively; any scalar reachable under a
// role or name key, and any scalar element of a sequence, is matched against
// the rename map in its three shapes: bare (role_name), slash-qualified
// (namespace/role_name), and dot-qualified (collection.role_name).
//
// Rewriting reserializes the whole document, so original comments and
// formatting may be lost. That is a known fidelity limitation of this pass,
// mitigated by the timestamped backup written before each live rewrite.
package rewrite

import (
	"bytes"
	"context"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/galaxykit/rolefix/internal/docs"
	"github.com/galaxykit/rolefix/internal/errors"
	"github.com/galaxykit/rolefix/internal/logging"
	"github.com/galaxykit/rolefix/internal/types"
)

// DefaultSkipDirs are path segments whose documents are never rewritten as
// consumers: their YAML belongs to role payloads, not to playbook logic.
var DefaultSkipDirs = []string{"tests", "files", "templates", "library"}

// Options configures a Rewriter.
type Options struct {
	// DryRun logs every would-be rewrite without touching any file
	DryRun bool
	// Backup writes a timestamped copy of each document before overwriting
	Backup bool
	// SkipDirs overrides DefaultSkipDirs when non-nil
	SkipDirs []string
}

// Rewriter applies a rename map to the documents of a collection tree.
type Rewriter struct {
	renames   types.RenameMap
	sortedOld []string
	loader    *docs.Loader
	collector *errors.ErrorCollector
	log       logging.Logger
	dryRun    bool
	backup    bool
	skipDirs  []string
}

// NewRewriter creates a rewriter for the given rename map.
func NewRewriter(renames types.RenameMap, loader *docs.Loader, opts Options, log logging.Logger) *Rewriter {
	sortedOld := make([]string, 0, len(renames))
	for old := range renames {
		sortedOld = append(sortedOld, old)
	}
	sort.Strings(sortedOld)

	skipDirs := opts.SkipDirs
	if skipDirs == nil {
		skipDirs = DefaultSkipDirs
	}

	log = log.WithComponent("rewriter")
	if opts.DryRun {
		log = log.With("dry_run", true)
	}

	return &Rewriter{
		renames:   renames,
		sortedOld: sortedOld,
		loader:    loader,
		collector: errors.NewErrorCollector(),
		log:       log,
		dryRun:    opts.DryRun,
		backup:    opts.Backup,
		skipDirs:  skipDirs,
	}
}

// Warnings returns the per-document failures collected so far.
func (r *Rewriter) Warnings() []errors.Warning {
	return r.collector.Warnings()
}

// RewriteTree rewrites every eligible document under root and returns the
// paths that changed. Dependency documents (meta/main.yml) are processed
// first, then every other YAML consumer document outside the skip dirs.
func (r *Rewriter) RewriteTree(ctx context.Context, root string) []string {
	var rewritten []string

	for _, path := range docs.FindMetaMains(root) {
		if changed, _ := r.RewriteFile(ctx, path); changed {
			rewritten = append(rewritten, path)
		}
	}

	for _, path := range docs.FindYAML(root) {
		if docs.IsMetaMain(path) {
			continue
		}
		if r.skipPath(path) {
			continue
		}
		if changed, _ := r.RewriteFile(ctx, path); changed {
			rewritten = append(rewritten, path)
		}
	}

	return rewritten
}

// RewriteFile rewrites a single document. It reports whether the document
// changed; a parse failure is returned as a recoverable error after being
// collected, never propagated as fatal.
func (r *Rewriter) RewriteFile(ctx context.Context, path string) (bool, error) {
	content, err := r.loader.Read(path)
	if err != nil {
		return false, err
	}

	if !r.mentionsOldName(content) {
		return false, nil
	}

	if docs.IsForeign(content) {
		r.log.Debug(ctx, "skipping foreign document", "path", path)
		return false, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		// Multi-document files and templated YAML land here; they were
		// already covered by the textual scan during map building.
		parseErr := errors.ErrParseFailed(path, err)
		r.collector.Add(errors.Warning{Path: path, Message: "could not parse document", Err: err})
		r.log.Warn(ctx, parseErr, "skipping unparseable document", "path", path)
		return false, parseErr
	}

	changed := r.rewriteNode(&doc)
	if changed == 0 {
		return false, nil
	}

	r.log.Info(ctx, "rewriting document", "path", path, "references", changed)

	if r.dryRun {
		return true, nil
	}

	if r.backup {
		if _, err := docs.Backup(path, content); err != nil {
			r.collector.Add(errors.Warning{Path: path, Message: "could not write backup", Err: err})
			r.log.Warn(ctx, err, "skipping rewrite, backup failed", "path", path)
			return false, err
		}
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return false, errors.NewInternalError(errors.ErrCodeInternalError, "reserializing document", err).WithPath(path)
	}
	if err := enc.Close(); err != nil {
		return false, errors.NewInternalError(errors.ErrCodeInternalError, "reserializing document", err).WithPath(path)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return false, errors.NewIOError(errors.ErrCodePermissionDenied, "writing document", err).WithPath(path)
	}
	r.loader.Invalidate(path)

	return true, nil
}

// rewriteNode walks the parsed tree and returns how many scalars changed.
// Scalars under role/name keys and scalar sequence elements are candidates;
// dependency lists are covered by the sequence rule.
func (r *Rewriter) rewriteNode(node *yaml.Node) int {
	changed := 0

	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			changed += r.rewriteNode(child)
		}

	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if key.Kind == yaml.ScalarNode && isReferenceKey(key.Value) && value.Kind == yaml.ScalarNode {
				changed += r.rewriteScalar(value)
				continue
			}
			changed += r.rewriteNode(value)
		}

	case yaml.SequenceNode:
		for _, item := range node.Content {
			if item.Kind == yaml.ScalarNode {
				changed += r.rewriteScalar(item)
				continue
			}
			changed += r.rewriteNode(item)
		}
	}

	return changed
}

// isReferenceKey reports whether a mapping key may hold a role reference.
func isReferenceKey(key string) bool {
	return key == "role" || key == "name"
}

// rewriteScalar applies RewriteValue in place.
func (r *Rewriter) rewriteScalar(node *yaml.Node) int {
	fixed := r.RewriteValue(node.Value)
	if fixed == node.Value {
		return 0
	}
	node.Value = fixed
	return 1
}

// RewriteValue maps a single reference through the rename map. Slash
// references have every path segment matched independently; note this is
// pure string matching with no namespace scoping, so a segment equal to a
// renamed name is rewritten regardless of which namespace it came from.
// Bare references require full equality; dot references match on the suffix
// after the last dot.
func (r *Rewriter) RewriteValue(value string) string {
	if strings.Contains(value, "/") {
		parts := strings.Split(value, "/")
		for i, part := range parts {
			if fixed, ok := r.renames.Resolve(part); ok {
				parts[i] = fixed
			}
		}
		return strings.Join(parts, "/")
	}

	if fixed, ok := r.renames.Resolve(value); ok {
		return fixed
	}

	for _, old := range r.sortedOld {
		if strings.HasSuffix(value, "."+old) {
			return strings.ReplaceAll(value, "."+old, "."+r.renames[old])
		}
	}

	return value
}

// mentionsOldName reports whether content contains any old name textually.
// Documents without a single occurrence are never parsed.
func (r *Rewriter) mentionsOldName(content []byte) bool {
	for _, old := range r.sortedOld {
		if bytes.Contains(content, []byte(old)) {
			return true
		}
	}
	return false
}

// skipPath reports whether path lies in a directory excluded from consumer
// rewriting.
func (r *Rewriter) skipPath(path string) bool {
	sep := string(os.PathSeparator)
	for _, dir := range r.skipDirs {
		if strings.Contains(path, sep+dir+sep) {
			return true
		}
	}
	return false
}

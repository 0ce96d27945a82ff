// Package renamer builds the rename map for a collection tree and applies it
// to the directory structure: the map builder merges invalid names from role
// discovery, namespace-level directories, and a textual reference scan; the
// executor performs the physical renames deepest first; the sweep removes
// leftover hyphenated duplicates at the namespace root.
package renamer

import (
	"context"
	"os"
	"regexp"
	"strings"

	"github.com/galaxykit/rolefix/internal/docs"
	"github.com/galaxykit/rolefix/internal/logging"
	"github.com/galaxykit/rolefix/internal/naming"
	"github.com/galaxykit/rolefix/internal/types"
)

// Reference-shaped tokens in role: fields. The charset deliberately admits
// hyphens, dots, and slashes so invalid qualified names are captured.
var roleRefPattern = regexp.MustCompile(`role:\s+([a-z0-9_\-./]+)`)

// name: fields are only trusted as role references in documents that use
// role-inclusion directives; elsewhere "name" is an arbitrary label.
var nameRefPattern = regexp.MustCompile(`name:\s+([a-z0-9_\-./]+)`)

// MapBuilder accumulates the old-name to new-name mapping from the three
// sources described by BuildRenameMap.
type MapBuilder struct {
	loader *docs.Loader
	log    logging.Logger
}

// NewMapBuilder creates a map builder reading documents through loader.
func NewMapBuilder(loader *docs.Loader, log logging.Logger) *MapBuilder {
	return &MapBuilder{
		loader: loader,
		log:    log.WithComponent("renamer"),
	}
}

// BuildRenameMap produces the global rename map for a run by merging three
// sources: discovered roles with invalid names, invalid directories directly
// under the namespace root, and invalid hyphenated segments of reference
// tokens found by a textual scan of every YAML document under root. Every
// key fails the validity predicate; every value passes it.
func (b *MapBuilder) BuildRenameMap(ctx context.Context, roles []types.Role, namespaceDir, root string) types.RenameMap {
	m := make(types.RenameMap)

	for _, role := range roles {
		if naming.IsValid(role.Name) {
			continue
		}
		fixed := naming.Normalize(role.Name)
		if m.Add(role.Name, fixed) {
			b.log.Info(ctx, "invalid role name", "name", role.Name, "fixed", fixed)
		}
	}

	// Namespace-level directories are never classified as roles but still
	// appear as path segments in qualified references.
	if entries, err := os.ReadDir(namespaceDir); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			name := entry.Name()
			if naming.IsValid(name) {
				continue
			}
			fixed := naming.Normalize(name)
			if m.Add(name, fixed) {
				b.log.Info(ctx, "invalid namespace directory", "name", name, "fixed", fixed)
			}
		}
	}

	b.scanReferences(ctx, root, m)

	return m
}

// scanReferences adds invalid hyphenated segments of reference-shaped tokens
// to the map. This textual pass exists because not every reference can be
// safely structurally parsed (multi-document files, templating syntax).
func (b *MapBuilder) scanReferences(ctx context.Context, root string, m types.RenameMap) {
	for _, path := range docs.FindYAML(root) {
		content, err := b.loader.Read(path)
		if err != nil {
			continue
		}
		text := string(content)

		refs := roleRefPattern.FindAllStringSubmatch(text, -1)
		if strings.Contains(text, "import_role") || strings.Contains(text, "include_role") {
			refs = append(refs, nameRefPattern.FindAllStringSubmatch(text, -1)...)
		}

		for _, match := range refs {
			for _, part := range strings.Split(match[1], "/") {
				if !strings.Contains(part, "-") || naming.IsValid(part) {
					continue
				}
				fixed := naming.Normalize(part)
				if m.Add(part, fixed) {
					b.log.Info(ctx, "invalid reference segment", "name", part, "fixed", fixed, "path", path)
				}
			}
		}
	}
}

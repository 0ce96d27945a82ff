// Package scanner provides role discovery for Ansible collection trees.
//
// The scanner traverses the namespace directory to find role directories,
// classifying them by their marker subdirectories (meta/, tasks/) or, for
// grouping directories, by the presence of defaults/vars markers or nested
// roles. Discovered roles are registered with the role registry and returned
// ordered deepest first, which the rename executor relies on: a child must
// be fully renamed before its parent so child paths computed at discovery
// time are never invalidated by a pending parent rename.
package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/galaxykit/rolefix/internal/registry"
	"github.com/galaxykit/rolefix/internal/types"
)

// reservedDirs are marker directory names that belong to a role's internal
// layout and must never be classified as roles themselves.
var reservedDirs = map[string]struct{}{
	"meta":      {},
	"tasks":     {},
	"handlers":  {},
	"defaults":  {},
	"vars":      {},
	"files":     {},
	"templates": {},
	"library":   {},
	"molecule":  {},
	"tests":     {},
}

// IsReservedDir reports whether name is a role-internal marker directory.
func IsReservedDir(name string) bool {
	_, reserved := reservedDirs[name]
	return reserved
}

// RoleScanner discovers role directories beneath a namespace root.
type RoleScanner struct {
	// registry receives discovered roles and broadcasts change events
	registry *registry.RoleRegistry
}

// NewRoleScanner creates a new role scanner
func NewRoleScanner(reg *registry.RoleRegistry) *RoleScanner {
	return &RoleScanner{registry: reg}
}

// GetRegistry returns the role registry
func (s *RoleScanner) GetRegistry() *registry.RoleRegistry {
	return s.registry
}

// ScanTree discovers all roles under namespaceDir and returns them ordered
// by descending depth. A missing namespace directory yields an empty result,
// and unreadable subtrees are skipped.
func (s *RoleScanner) ScanTree(namespaceDir string) []types.Role {
	var roles []types.Role

	if info, err := os.Stat(namespaceDir); err != nil || !info.IsDir() {
		return roles
	}

	s.search(namespaceDir, namespaceDir, &roles)

	// Deepest first so child renames always precede parent renames
	sort.SliceStable(roles, func(i, j int) bool {
		return roles[i].Depth > roles[j].Depth
	})

	if s.registry != nil {
		for i := range roles {
			s.registry.Register(&roles[i])
		}
	}

	return roles
}

// search recursively collects roles under dir and reports whether any role
// was found in the subtree. Scanning continues into discovered roles because
// nested roles are permitted and common.
func (s *RoleScanner) search(dir, base string, out *[]types.Role) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		// Permission errors on individual directories are swallowed
		return false
	}

	found := false
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		name := entry.Name()
		path := filepath.Join(dir, name)

		if hasMarker(path, "meta") || hasMarker(path, "tasks") {
			*out = append(*out, types.Role{
				Name:  name,
				Path:  path,
				Depth: depthOf(path, base),
			})
			s.search(path, base, out)
			found = true
			continue
		}

		childFound := s.search(path, base, out)
		if childFound {
			found = true
		}

		if IsReservedDir(name) {
			continue
		}

		// A grouping directory counts as a parent role when it carries a
		// defaults/vars marker or holds at least one nested role.
		if childFound || hasMarker(path, "defaults") || hasMarker(path, "vars") {
			*out = append(*out, types.Role{
				Name:  name,
				Path:  path,
				Depth: depthOf(path, base),
			})
			found = true
		}
	}

	return found
}

// hasMarker reports whether dir contains a child directory named marker.
func hasMarker(dir, marker string) bool {
	info, err := os.Stat(filepath.Join(dir, marker))
	return err == nil && info.IsDir()
}

// depthOf returns the number of path segments between base and path.
func depthOf(path, base string) int {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

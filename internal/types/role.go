// Package types provides common type definitions used throughout the rolefix CLI.
// This package contains shared types to avoid circular dependencies between packages.
package types

import "time"

// Role describes a discovered role directory in the collection tree. A role
// is any directory carrying a meta/ or tasks/ marker, or a parent directory
// that groups nested roles.
type Role struct {
	// Name is the role identifier, derived from the final path segment
	Name string
	// Path is the absolute path to the role directory. It reflects the
	// on-disk location at discovery time; renames performed later are
	// tracked separately by the rename executor.
	Path string
	// Depth is the number of path segments between the namespace root and
	// this role. Deeper roles are processed first during renaming.
	Depth int
}

// RenameMap maps invalid role names to their normalized replacements. It is
// built once per run and threaded explicitly through the rename executor,
// the reference rewriter, and the consistency sweep.
type RenameMap map[string]string

// Add records a rename for old unless one is already present. First write
// wins, matching discovery order across the three map sources.
func (m RenameMap) Add(old, fixed string) bool {
	if _, exists := m[old]; exists {
		return false
	}
	m[old] = fixed
	return true
}

// Resolve returns the replacement for name and whether one exists.
func (m RenameMap) Resolve(name string) (string, bool) {
	fixed, ok := m[name]
	return fixed, ok
}

// EventType represents the type of role registry event.
type EventType string

const (
	EventTypeAdded   EventType = "added"
	EventTypeUpdated EventType = "updated"
	EventTypeRemoved EventType = "removed"
)

// RoleEvent represents a change in the role registry, used for notifications
// to watchers like the validation watch loop.
type RoleEvent struct {
	// Type indicates the kind of change (added, updated, removed)
	Type EventType
	// Role contains the role information (may be nil for removed events)
	Role *Role
	// Timestamp records when the event occurred for ordering and filtering
	Timestamp time.Time
}

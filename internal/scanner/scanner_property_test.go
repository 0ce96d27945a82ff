//go:build property
// +build property

package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestScannerProperties tests invariant properties of role discovery over
// generated directory trees.
func TestScannerProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// A role name generator that avoids the reserved marker names
	roleName := gen.RegexMatch(`^[a-z][a-z0-9_\-]{2,20}$`).SuchThat(func(v interface{}) bool {
		return !IsReservedDir(v.(string))
	})

	// Property 1: results are ordered by non-increasing depth
	properties.Property("deepest-first ordering", prop.ForAll(
		func(names []string) bool {
			nsDir := buildNestedTree(t, names)
			roles := NewRoleScanner(nil).ScanTree(nsDir)
			for i := 1; i < len(roles); i++ {
				if roles[i-1].Depth < roles[i].Depth {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(4, roleName),
	))

	// Property 2: every directory given a marker is discovered
	properties.Property("all marker roles found", prop.ForAll(
		func(names []string) bool {
			nsDir := buildFlatTree(t, names)
			roles := NewRoleScanner(nil).ScanTree(nsDir)

			want := make(map[string]bool)
			for _, name := range names {
				want[name] = true
			}
			found := make(map[string]bool)
			for _, role := range roles {
				found[role.Name] = true
			}
			for name := range want {
				if !found[name] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(5, roleName),
	))

	properties.TestingRun(t)
}

// buildFlatTree creates one marker role per name directly under a fresh
// namespace dir. Duplicate names collapse onto the same directory.
func buildFlatTree(t *testing.T, names []string) string {
	nsDir, err := os.MkdirTemp(t.TempDir(), "ns")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if err := os.MkdirAll(filepath.Join(nsDir, name, "tasks"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return nsDir
}

// buildNestedTree nests each role inside the previous one so the scan sees
// a chain of increasing depths.
func buildNestedTree(t *testing.T, names []string) string {
	nsDir, err := os.MkdirTemp(t.TempDir(), "ns")
	if err != nil {
		t.Fatal(err)
	}
	base := nsDir
	for _, name := range names {
		base = filepath.Join(base, name)
		if err := os.MkdirAll(filepath.Join(base, "meta"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return nsDir
}

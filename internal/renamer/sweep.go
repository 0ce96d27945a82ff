package renamer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/galaxykit/rolefix/internal/logging"
)

// Sweep removes leftover hyphenated directories at the namespace root whose
// underscore equivalent already exists. Such duplicates are produced by
// partial earlier runs or by the duplicate-removed branch of the executor.
// The removed paths are returned.
func Sweep(ctx context.Context, namespaceDir string, dryRun bool, log logging.Logger) []string {
	log = log.WithComponent("sweep")
	if dryRun {
		log = log.With("dry_run", true)
	}

	entries, err := os.ReadDir(namespaceDir)
	if err != nil {
		return nil
	}

	var removed []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.Contains(name, "-") {
			continue
		}

		sibling := strings.ReplaceAll(name, "-", "_")
		siblingPath := filepath.Join(namespaceDir, sibling)
		if _, err := os.Stat(siblingPath); err != nil {
			continue
		}

		path := filepath.Join(namespaceDir, name)
		log.Info(ctx, "removing duplicate invalid directory", "path", path, "kept", siblingPath)
		if !dryRun {
			if err := os.RemoveAll(path); err != nil {
				log.Error(ctx, err, "could not remove duplicate", "path", path)
				continue
			}
		}
		removed = append(removed, path)
	}

	return removed
}

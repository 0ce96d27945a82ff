// Package docs handles document access for the fix engine: enumerating YAML
// files in the tree, caching file contents so the reference scan and the
// rewriter read each document once, sniffing foreign manifests that must not
// be touched, and writing timestamped backup copies before live rewrites.
package docs

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// foreignSniffLen bounds how much of a document the foreign-format check
// inspects.
const foreignSniffLen = 500

// foreignMarkers identify Kubernetes manifests and similar non-Ansible
// documents whose opening bytes resemble the consumed format.
var foreignMarkers = []string{"apiVersion:", "kind: ", "metadata:"}

// Loader reads documents with an LRU content cache.
type Loader struct {
	cache *lru.Cache[string, []byte]
}

// NewLoader creates a loader caching up to size file contents.
func NewLoader(size int) (*Loader, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &Loader{cache: cache}, nil
}

// Read returns the contents of path, served from cache when possible.
func (l *Loader) Read(path string) ([]byte, error) {
	if content, ok := l.cache.Get(path); ok {
		return content, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	l.cache.Add(path, content)
	return content, nil
}

// Invalidate drops the cached contents for path. Called after a rewrite so
// a later read observes the new contents.
func (l *Loader) Invalidate(path string) {
	l.cache.Remove(path)
}

// IsForeign reports whether content opens like a non-Ansible manifest
// (Kubernetes and friends). Foreign documents are exempt from rewriting.
func IsForeign(content []byte) bool {
	head := content
	if len(head) > foreignSniffLen {
		head = head[:foreignSniffLen]
	}
	for _, marker := range foreignMarkers {
		if bytes.Contains(head, []byte(marker)) {
			return true
		}
	}
	return false
}

// FindYAML returns every .yml/.yaml file under root. Unreadable subtrees are
// skipped.
func FindYAML(root string) []string {
	var files []string
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext == ".yml" || ext == ".yaml" {
			files = append(files, path)
		}
		return nil
	})
	return files
}

// FindMetaMains returns every meta/main.yml dependency document under root.
func FindMetaMains(root string) []string {
	var files []string
	for _, path := range FindYAML(root) {
		if IsMetaMain(path) {
			files = append(files, path)
		}
	}
	return files
}

// IsMetaMain reports whether path is a role dependency document.
func IsMetaMain(path string) bool {
	return filepath.Base(filepath.Dir(path)) == "meta" &&
		strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) == "main"
}

// BackupStampFormat is the UTC timestamp layout used for backup file names.
const BackupStampFormat = "20060102T150405Z"

// Backup writes a timestamped copy of path next to it and returns the backup
// path.
func Backup(path string, content []byte) (string, error) {
	stamp := time.Now().UTC().Format(BackupStampFormat)
	backupPath := path + "." + stamp + ".bak"
	if err := os.WriteFile(backupPath, content, 0o644); err != nil {
		return "", err
	}
	return backupPath, nil
}

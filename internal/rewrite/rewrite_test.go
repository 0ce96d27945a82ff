package rewrite

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/galaxykit/rolefix/internal/docs"
	"github.com/galaxykit/rolefix/internal/logging"
	"github.com/galaxykit/rolefix/internal/types"
)

func quietLogger() logging.Logger {
	cfg := logging.DefaultConfig()
	cfg.Output = io.Discard
	return logging.NewLogger(cfg)
}

func newRewriter(t *testing.T, renames types.RenameMap, opts Options) *Rewriter {
	t.Helper()
	loader, err := docs.NewLoader(64)
	require.NoError(t, err)
	return NewRewriter(renames, loader, opts, quietLogger())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func testRenames() types.RenameMap {
	return types.RenameMap{
		"etcd-cluster": "etcd_cluster",
		"kube-node":    "kube_node",
	}
}

func TestRewriteValue_Bare(t *testing.T) {
	r := newRewriter(t, testRenames(), Options{})

	assert.Equal(t, "etcd_cluster", r.RewriteValue("etcd-cluster"))
	assert.Equal(t, "already_fine", r.RewriteValue("already_fine"))
	assert.Equal(t, "etcd-clusterish", r.RewriteValue("etcd-clusterish"),
		"bare references require full equality")
}

func TestRewriteValue_SlashSegments(t *testing.T) {
	r := newRewriter(t, testRenames(), Options{})

	assert.Equal(t, "acme/etcd_cluster", r.RewriteValue("acme/etcd-cluster"))
	assert.Equal(t, "acme/other-role", r.RewriteValue("acme/other-role"))

	// Segment matching is textual: a leading segment that happens to equal
	// a renamed role is rewritten too. Pinned so a change here is loud.
	assert.Equal(t, "etcd_cluster/kube_node", r.RewriteValue("etcd-cluster/kube-node"))
}

func TestRewriteValue_DotSuffix(t *testing.T) {
	r := newRewriter(t, testRenames(), Options{})

	assert.Equal(t, "acme.base.etcd_cluster", r.RewriteValue("acme.base.etcd-cluster"))
	assert.Equal(t, "acme.unrelated", r.RewriteValue("acme.unrelated"))
	assert.Equal(t, "etcd-cluster.something", r.RewriteValue("etcd-cluster.something"),
		"dot matching is suffix only")
}

func TestRewriteFile_RoleAndNameKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playbook.yml")
	writeFile(t, path, strings.Join([]string{
		"- hosts: all",
		"  roles:",
		"    - role: etcd-cluster",
		"      etcd_version: v3.5",
		"  tasks:",
		"    - name: kube-node",
		"      import_role:",
		"        name: kube-node",
	}, "\n")+"\n")

	r := newRewriter(t, testRenames(), Options{})
	changed, err := r.RewriteFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, changed)

	out := readFile(t, path)
	assert.True(t, strings.HasPrefix(out, "---\n"))
	assert.Contains(t, out, "role: etcd_cluster")
	assert.Contains(t, out, "name: kube_node")
	assert.NotContains(t, out, "kube-node")
}

func TestRewriteFile_SequenceElements(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yml")
	writeFile(t, path, strings.Join([]string{
		"- hosts: all",
		"  roles: [etcd-cluster, kube-node, common]",
	}, "\n")+"\n")

	r := newRewriter(t, testRenames(), Options{})
	changed, err := r.RewriteFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, changed)

	out := readFile(t, path)
	assert.Contains(t, out, "etcd_cluster")
	assert.Contains(t, out, "kube_node")
	assert.Contains(t, out, "common")
	assert.NotContains(t, out, "etcd-cluster")
}

func TestRewriteFile_DependenciesInMeta(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meta", "main.yml")
	writeFile(t, path, strings.Join([]string{
		"galaxy_info:",
		"  author: acme",
		"dependencies:",
		"  - etcd-cluster",
		"  - role: kube-node",
	}, "\n")+"\n")

	r := newRewriter(t, testRenames(), Options{})
	changed, err := r.RewriteFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, changed)

	var parsed struct {
		Dependencies []yaml.Node `yaml:"dependencies"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(readFile(t, path)), &parsed))
	require.Len(t, parsed.Dependencies, 2)
	assert.Equal(t, "etcd_cluster", parsed.Dependencies[0].Value)
}

func TestRewriteFile_NoOldNameLeavesFileUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clean.yml")
	original := "- hosts: all\n  roles:\n    - common\n"
	writeFile(t, path, original)

	r := newRewriter(t, testRenames(), Options{})
	changed, err := r.RewriteFile(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, changed)

	if diff := cmp.Diff(original, readFile(t, path)); diff != "" {
		t.Errorf("untouched file changed (-want +got):\n%s", diff)
	}
}

func TestRewriteFile_ForeignDocumentByteIdentical(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deploy.yml")
	original := strings.Join([]string{
		"apiVersion: apps/v1",
		"kind: Deployment",
		"metadata:",
		"  name: etcd-cluster",
	}, "\n") + "\n"
	writeFile(t, path, original)

	r := newRewriter(t, testRenames(), Options{})
	changed, err := r.RewriteFile(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, changed)

	if diff := cmp.Diff(original, readFile(t, path)); diff != "" {
		t.Errorf("foreign document changed (-want +got):\n%s", diff)
	}
}

func TestRewriteFile_ParseErrorIsRecoverable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yml")
	original := "role: etcd-cluster\n\t bad: [unclosed\n"
	writeFile(t, path, original)

	r := newRewriter(t, testRenames(), Options{})
	changed, err := r.RewriteFile(context.Background(), path)
	assert.Error(t, err)
	assert.False(t, changed)
	assert.Equal(t, original, readFile(t, path), "unparseable file must not change")
	assert.Len(t, r.Warnings(), 1)
}

func TestRewriteFile_BackupWritten(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "play.yml")
	original := "- role: etcd-cluster\n"
	writeFile(t, path, original)

	r := newRewriter(t, testRenames(), Options{Backup: true})
	changed, err := r.RewriteFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, changed)

	backups, err := filepath.Glob(path + ".*.bak")
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, original, readFile(t, backups[0]))
}

func TestRewriteFile_DryRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "play.yml")
	original := "- role: etcd-cluster\n"
	writeFile(t, path, original)

	r := newRewriter(t, testRenames(), Options{DryRun: true, Backup: true})
	changed, err := r.RewriteFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, changed, "dry run still reports what would change")

	assert.Equal(t, original, readFile(t, path))
	backups, err := filepath.Glob(path + ".*.bak")
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestRewriteFile_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "play.yml")
	writeFile(t, path, "- hosts: all\n  roles:\n    - role: etcd-cluster\n")

	r := newRewriter(t, testRenames(), Options{})
	changed, err := r.RewriteFile(context.Background(), path)
	require.NoError(t, err)
	require.True(t, changed)

	after := readFile(t, path)
	changed, err = r.RewriteFile(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, after, readFile(t, path))
}

func TestRewriteTree_OrderAndSkips(t *testing.T) {
	root := t.TempDir()

	meta := filepath.Join(root, "roles", "app", "meta", "main.yml")
	writeFile(t, meta, "dependencies:\n  - etcd-cluster\n")

	play := filepath.Join(root, "playbooks", "site.yml")
	writeFile(t, play, "- hosts: all\n  roles:\n    - kube-node\n")

	skipped := filepath.Join(root, "roles", "app", "templates", "conf.yml")
	skippedContent := "ref: etcd-cluster\n"
	writeFile(t, skipped, skippedContent)

	r := newRewriter(t, testRenames(), Options{})
	rewritten := r.RewriteTree(context.Background(), root)

	require.Len(t, rewritten, 2)
	assert.Equal(t, meta, rewritten[0], "dependency documents come first")
	assert.Equal(t, play, rewritten[1])
	assert.Equal(t, skippedContent, readFile(t, skipped))
}

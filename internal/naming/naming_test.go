package naming

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"simple lowercase", "etcd_cluster", true},
		{"digits allowed", "node2", true},
		{"minimum length", "ab", true},
		{"single char too short", "a", false},
		{"empty", "", false},
		{"hyphen invalid", "etcd-cluster", false},
		{"uppercase invalid", "EtcdCluster", false},
		{"leading digit invalid", "2node", false},
		{"dot invalid", "geerlingguy.docker", false},
		{"slash invalid", "infra/etcd", false},
		{"55 chars ok", strings.Repeat("a", 55), true},
		{"56 chars too long", strings.Repeat("a", 56), false},
		{"underscore only", "__", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValid(tt.input))
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"hyphens become underscores", "etcd-cluster", "etcd_cluster"},
		{"uppercase lowered", "Kube-Node", "kube_node"},
		{"already valid unchanged", "kube_node", "kube_node"},
		{"dots stripped", "geerlingguy.docker", "geerlingguydocker"},
		{"leading digit prefixed", "2node", "role_2node"},
		{"single char prefixed", "a", "role_a"},
		{"empty prefixed", "", "role_"},
		{"accents transliterated", "rôle-á", "role_a"},
		{"spaces stripped", "my role", "myrole"},
		{"long name truncated", strings.Repeat("x", 60), strings.Repeat("x", 55)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeProducesValidNames(t *testing.T) {
	inputs := []string{
		"etcd-cluster", "Kube-Node", "2node", "a", "", "-", "--",
		"my role!", "rôle", strings.Repeat("9", 80), "UPPER-CASE-NAME",
	}
	for _, in := range inputs {
		assert.True(t, IsValid(Normalize(in)), "Normalize(%q) = %q should be valid", in, Normalize(in))
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"etcd-cluster", "Kube-Node", "2node", "", "role_", strings.Repeat("b", 70),
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "Normalize should be idempotent for %q", in)
	}
}

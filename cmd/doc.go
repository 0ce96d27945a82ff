// Package cmd provides the command-line interface for rolefix.
//
// This package implements all CLI commands using the Cobra framework,
// providing the tools for normalizing Ansible Galaxy role names across a
// collection tree.
//
// # Available Commands
//
//   - fix: Rename invalid role directories and rewrite every reference
//   - scan: List discovered roles with their validity and proposed names
//   - watch: Re-run normalization when the tree changes
//   - version: Show version information
//
// # Command Examples
//
//	// Preview what a run would change
//	rolefix fix --dry-run
//
//	// Normalize a specific collection root without backups
//	rolefix fix /srv/galaxy --no-backup
//
//	// List only the roles that need renaming, as JSON
//	rolefix scan --invalid-only --format json
//
//	// Keep a tree normalized while editing it
//	rolefix watch
//
// # Configuration
//
// Commands read .rolefix.yml from the current directory, a file given via
// --config or ROLEFIX_CONFIG_FILE, and ROLEFIX_* environment variables.
// Flags take precedence over all of these.
package cmd

// Package internal contains the core implementation packages for rolefix.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the rolefix CLI tool.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - naming: Role name validation and normalization rules
//   - scanner: Role discovery across the namespace directory tree
//   - registry: Role registry and event broadcasting
//   - renamer: Rename map construction, directory renaming, duplicate sweep
//   - rewrite: Reference rewriting inside YAML documents
//   - docs: Document loading, caching, foreign-document detection, backups
//   - fix: Pipeline orchestration and run reporting
//   - watcher: File system monitoring with debouncing
//   - config: Configuration management with validation
//   - errors: Structured errors and per-item warning collection
//   - logging: Structured logging built on slog
package internal

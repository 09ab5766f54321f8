// Package types defines the core types and interfaces shared across csync:
// the filesystem abstraction, machine and sync state tokens, and the
// remote status classification.
package types

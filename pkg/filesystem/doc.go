// Package filesystem provides the OS-backed types.FS implementation and the
// FileEntry variant used to copy, move and remove files, directories and
// symlinks without inspecting their kind at every call site.
package filesystem

package paths

import (
	"path/filepath"
	"strings"

	"github.com/jtele2/csync/pkg/errors"
)

// ValidatePath rejects empty paths, null bytes and overlong paths.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New(errors.ErrInvalidInput, "path cannot be empty")
	}

	if strings.Contains(path, "\x00") {
		return errors.New(errors.ErrInvalidInput, "path contains null bytes")
	}

	// Check path length (common filesystem limit)
	if len(path) > 4096 {
		return errors.New(errors.ErrInvalidInput, "path exceeds maximum length")
	}

	return nil
}

// ContainsPath checks if child is contained within parent.
// Both paths are cleaned before comparison.
func ContainsPath(parent, child string) bool {
	parent = filepath.Clean(parent)
	child = filepath.Clean(child)

	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ValidateRelative ensures rel is a relative path that stays below its base
// once joined. Used for marked entries and archive members.
func ValidateRelative(rel string) error {
	if err := ValidatePath(rel); err != nil {
		return err
	}
	if filepath.IsAbs(rel) {
		return errors.Newf(errors.ErrInvalidInput, "%s must be relative", rel)
	}
	if !ContainsPath("/base", filepath.Join("/base", rel)) {
		return errors.Newf(errors.ErrInvalidInput, "%s escapes its base directory", rel)
	}
	return nil
}

package path

import (
	"errors"
	"strings"
)

var (
	ErrEmptyName     = errors.New("filename cannot be empty")
	ErrInvalidName   = errors.New("filename format is invalid")
	ErrPathTraversal = errors.New("filename contains directory traversal")
)

// ValidateFilename checks that name is a single path element safe to append
// to a blob prefix. It rejects:
// - empty names
// - path separators and NUL bytes
// - names made only of dots ("." and "..")
// - any ".." sequence
func ValidateFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}

	if strings.Contains(name, "..") {
		return ErrPathTraversal
	}

	if strings.ContainsAny(name, "/\\\x00") {
		return ErrInvalidName
	}

	if strings.Trim(name, ".") == "" {
		return ErrPathTraversal
	}

	return nil
}

// DispositionName makes name safe for an unquoted Content-Disposition
// filename parameter by replacing control characters, quotes and separators.
func DispositionName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r < 0x20 || r == 0x7f:
			return '_'
		case r == '"' || r == ';' || r == '\\':
			return '_'
		}
		return r
	}, name)
}

// Package step implements the tagged step algebra of §3/§4.2: one Go type
// per step tag, each exposing Execute(space, settings) -> (space', sinks,
// error), plus the JSON tag-discriminated step decoder (§6).
package step

import (
	"path/filepath"
	"strings"

	errors "gopkg.in/src-d/go-errors.v1"
)

// Settings is the workflow-wide configuration threaded through every
// step's Execute call (§4.3), mirroring the teacher's Config struct
// passed by value into engine construction.
type Settings struct {
	RootFolder string
}

// ErrInvalidPath is a structural error (§7.2): an absolute path or one
// that escapes RootFolder via "..".
var ErrInvalidPath = errors.NewKind("invalid path %q: %s")

// NormalizePath converts file to the host's path separators and rejects
// absolute paths or paths that escape the root folder once cleaned
// (§4.2), matching the orchestrator's path convention.
func NormalizePath(file string) (string, error) {
	if filepath.IsAbs(file) || strings.HasPrefix(file, "/") || strings.HasPrefix(file, "\\") {
		return "", ErrInvalidPath.New(file, "absolute paths are not allowed")
	}
	cleaned := filepath.Clean(filepath.FromSlash(file))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", ErrInvalidPath.New(file, "path escapes the root folder")
	}
	return cleaned, nil
}

// ResolvePath joins RootFolder with the normalized form of file.
func (s Settings) ResolvePath(file string) (string, error) {
	normalized, err := NormalizePath(file)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.RootFolder, normalized), nil
}

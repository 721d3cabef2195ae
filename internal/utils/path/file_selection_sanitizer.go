package pathutils

import (
	"path/filepath"
	"strings"
)

// FileSelectionSanitizer normalizes file selection arguments consistently
// across command invocations.
type FileSelectionSanitizer struct{}

// NewFileSelectionSanitizer constructs a FileSelectionSanitizer.
func NewFileSelectionSanitizer() *FileSelectionSanitizer {
	return &FileSelectionSanitizer{}
}

// Sanitize trims whitespace, cleans each path, and removes empty and duplicate
// entries while preserving the original ordering.
func (sanitizer *FileSelectionSanitizer) Sanitize(candidatePaths []string) []string {
	if len(candidatePaths) == 0 {
		return nil
	}

	seenPaths := make(map[string]struct{}, len(candidatePaths))
	sanitizedPaths := make([]string, 0, len(candidatePaths))
	for candidateIndex := range candidatePaths {
		trimmedCandidate := strings.TrimSpace(candidatePaths[candidateIndex])
		if len(trimmedCandidate) == 0 {
			continue
		}

		cleanedPath := filepath.Clean(trimmedCandidate)
		if _, alreadySeen := seenPaths[cleanedPath]; alreadySeen {
			continue
		}
		seenPaths[cleanedPath] = struct{}{}
		sanitizedPaths = append(sanitizedPaths, cleanedPath)
	}

	if len(sanitizedPaths) == 0 {
		return nil
	}
	return sanitizedPaths
}

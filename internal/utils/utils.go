// Package utils contains general helper functions shared by the structure packages.
package utils

import (
	"path/filepath"
	"strings"
)

// DeduplicatePatterns removes duplicate and blank entries from a slice while preserving order.
// The first occurrence of each unique entry is kept. Non-blank entries are kept verbatim,
// so a folder name with surrounding spaces still matches exactly.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// NormalizeRelativePath returns the cleaned, forward-slash form of a relative path.
// Only the host separator is converted, so `backend\app` names a single directory on Unix.
func NormalizeRelativePath(relativePath string) string {
	return filepath.ToSlash(filepath.Clean(relativePath))
}

// RelativePathOrSelf calculates the relative path from root to fullPath in forward-slash form.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, absoluteError := filepath.Abs(root)
	if absoluteError != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)

	if cleanPath == cleanAbsoluteRoot {
		return "."
	}

	relativePath, relativeError := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relativeError != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}

// NewStringSet builds a membership set from values.
func NewStringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}

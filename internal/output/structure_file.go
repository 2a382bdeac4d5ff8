// Package output writes rendered tree lines to their destination.
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/natefinch/atomic"
)

const (
	lineSeparator        = "\n"
	structureFileMode    = 0o644
	errorWriteFileFormat = "writing %s: %w"
	errorChmodFileFormat = "setting permissions on %s: %w"
)

// JoinLines joins lines with a single newline. No newline follows the last line.
func JoinLines(lines []string) string {
	return strings.Join(lines, lineSeparator)
}

// WriteStructureFile replaces the contents of destinationPath with the joined lines.
// The replacement is atomic, so a failed write leaves any existing file untouched.
// A newly created file gets mode 0644; an existing file keeps its mode.
func WriteStructureFile(destinationPath string, lines []string) error {
	_, statError := os.Stat(destinationPath)
	isNewFile := os.IsNotExist(statError)

	if writeError := atomic.WriteFile(destinationPath, strings.NewReader(JoinLines(lines))); writeError != nil {
		return fmt.Errorf(errorWriteFileFormat, destinationPath, writeError)
	}
	if isNewFile {
		if chmodError := os.Chmod(destinationPath, structureFileMode); chmodError != nil {
			return fmt.Errorf(errorChmodFileFormat, destinationPath, chmodError)
		}
	}
	return nil
}

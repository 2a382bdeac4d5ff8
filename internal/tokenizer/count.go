package tokenizer

import (
	"errors"

	"github.com/temirov/structure/internal/output"
)

// CountLines estimates tokens for lines joined exactly as they are written to disk.
func CountLines(counter Counter, lines []string) (int, error) {
	if counter == nil {
		return 0, errors.New("nil tokenizer counter")
	}
	return counter.CountString(output.JoinLines(lines))
}

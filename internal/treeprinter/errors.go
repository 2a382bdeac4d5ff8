package treeprinter

import "fmt"

const traversalErrorFormat = "reading directory %s: %v"

// TraversalError reports a directory that could not be listed. A render that
// encounters one is aborted; no partial tree is returned.
type TraversalError struct {
	Path string
	Err  error
}

func (traversalError *TraversalError) Error() string {
	return fmt.Sprintf(traversalErrorFormat, traversalError.Path, traversalError.Err)
}

// Unwrap returns the underlying filesystem error.
func (traversalError *TraversalError) Unwrap() error {
	return traversalError.Err
}

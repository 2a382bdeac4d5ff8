// Package treeprinter renders a directory hierarchy as the lines of a tree listing.
//
// Folders are listed before files, each group sorted by name. Folders named in
// the ignore set are skipped at every depth. Files are always listed at the
// traversal root; below it they are listed only for directories whose path,
// relative to the start directory, is in the visible-files set.
package treeprinter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/temirov/structure/internal/utils"
)

const (
	// DirectorySuffix is appended to every directory name in the listing.
	DirectorySuffix = "/"

	middleConnector = "├── "
	lastConnector   = "└── "
	middleExtension = "│   "
	lastExtension   = "    "

	errorAbsolutePathFormat     = "getting absolute path for %s: %w"
	errorWorkingDirectoryFormat = "determining start directory: %w"
)

// Options controls which entries appear in the rendered tree.
type Options struct {
	// IgnoreFolders lists directory names skipped anywhere in the tree.
	IgnoreFolders []string
	// ShowFilesIn lists directories, relative to StartDirectory, whose direct files are listed.
	ShowFilesIn []string
	// StartDirectory is the base for ShowFilesIn lookups. The process working
	// directory is used when it is empty.
	StartDirectory string
}

type entryKind int

const (
	entryKindFolder entryKind = iota
	entryKindFile
)

type treeEntry struct {
	name string
	kind entryKind
}

type treePrinter struct {
	ignoreFolders  map[string]struct{}
	showFilesIn    map[string]struct{}
	startDirectory string
}

// Render lists root and returns the tree lines. The first line is the base name
// of root followed by DirectorySuffix. A directory that cannot be listed aborts
// the render with a *TraversalError.
func Render(root string, options Options) ([]string, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(root)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, root, absolutePathError)
	}

	printer, printerError := newTreePrinter(options)
	if printerError != nil {
		return nil, printerError
	}

	childLines, buildError := printer.buildTree(absoluteRootPath, "", true)
	if buildError != nil {
		return nil, buildError
	}

	lines := make([]string, 0, len(childLines)+1)
	lines = append(lines, rootLine(absoluteRootPath))
	return append(lines, childLines...), nil
}

// rootLine names the traversal root. A filesystem root has no base name and
// renders as DirectorySuffix alone.
func rootLine(absoluteRootPath string) string {
	baseName := filepath.Base(absoluteRootPath)
	if baseName == string(filepath.Separator) || baseName == "." {
		return DirectorySuffix
	}
	return baseName + DirectorySuffix
}

func newTreePrinter(options Options) (*treePrinter, error) {
	startDirectory := options.StartDirectory
	if startDirectory == "" {
		workingDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return nil, fmt.Errorf(errorWorkingDirectoryFormat, workingDirectoryError)
		}
		startDirectory = workingDirectory
	}
	absoluteStartDirectory, absolutePathError := filepath.Abs(startDirectory)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, startDirectory, absolutePathError)
	}

	normalizedVisiblePaths := make([]string, 0, len(options.ShowFilesIn))
	for _, visiblePath := range options.ShowFilesIn {
		normalizedVisiblePaths = append(normalizedVisiblePaths, utils.NormalizeRelativePath(visiblePath))
	}

	return &treePrinter{
		ignoreFolders:  utils.NewStringSet(options.IgnoreFolders),
		showFilesIn:    utils.NewStringSet(normalizedVisiblePaths),
		startDirectory: absoluteStartDirectory,
	}, nil
}

// buildTree returns the lines for the children of directoryPath, depth first.
func (printer *treePrinter) buildTree(directoryPath string, prefix string, isRoot bool) ([]string, error) {
	entries, listError := printer.listEntries(directoryPath)
	if listError != nil {
		return nil, listError
	}

	var lines []string
	for index, entry := range entries {
		isLast := index == len(entries)-1
		connector := middleConnector
		extension := middleExtension
		if isLast {
			connector = lastConnector
			extension = lastExtension
		}

		switch entry.kind {
		case entryKindFolder:
			lines = append(lines, prefix+connector+entry.name+DirectorySuffix)
			childLines, childError := printer.buildTree(filepath.Join(directoryPath, entry.name), prefix+extension, false)
			if childError != nil {
				return nil, childError
			}
			lines = append(lines, childLines...)
		case entryKindFile:
			if isRoot || printer.showsFilesOf(directoryPath) {
				lines = append(lines, prefix+connector+entry.name)
			}
		}
	}
	return lines, nil
}

// listEntries returns the non-ignored folders of directoryPath followed by its
// regular files, each group sorted by name. Symlinks and special files are dropped.
func (printer *treePrinter) listEntries(directoryPath string) ([]treeEntry, error) {
	directoryEntries, readDirectoryError := os.ReadDir(directoryPath)
	if readDirectoryError != nil {
		return nil, &TraversalError{Path: directoryPath, Err: readDirectoryError}
	}
	sort.Slice(directoryEntries, func(left, right int) bool {
		return directoryEntries[left].Name() < directoryEntries[right].Name()
	})

	var folders []treeEntry
	var files []treeEntry
	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		entryType := directoryEntry.Type()
		switch {
		case entryType.IsDir():
			if _, ignored := printer.ignoreFolders[entryName]; ignored {
				continue
			}
			folders = append(folders, treeEntry{name: entryName, kind: entryKindFolder})
		case entryType.IsRegular():
			files = append(files, treeEntry{name: entryName, kind: entryKindFile})
		}
	}
	return append(folders, files...), nil
}

// showsFilesOf reports whether direct files of a non-root directory are listed.
// The lookup key is the directory path relative to the start directory, not to
// the traversal root.
func (printer *treePrinter) showsFilesOf(directoryPath string) bool {
	relativeParent := utils.NormalizeRelativePath(utils.RelativePathOrSelf(directoryPath, printer.startDirectory))
	_, visible := printer.showFilesIn[relativeParent]
	return visible
}

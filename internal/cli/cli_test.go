package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/structure/internal/tokenizer"
	"github.com/temirov/structure/internal/treeprinter"
	"github.com/temirov/structure/internal/utils"
)

const projectDirectoryName = "proj"

type recordingClipboard struct {
	copied []string
	err    error
}

func (clipboard *recordingClipboard) Copy(text string) error {
	if clipboard.err != nil {
		return clipboard.err
	}
	clipboard.copied = append(clipboard.copied, text)
	return nil
}

type runeCounter struct{}

func (runeCounter) CountString(input string) (int, error) { return len([]rune(input)), nil }

func runeCounterFactory(tokenizer.Config) (tokenizer.Counter, string, error) {
	return runeCounter{}, "runes", nil
}

// prepareProject creates a project tree, isolates HOME, and changes into the project.
func prepareProject(testingHandle *testing.T, relativePaths ...string) string {
	testingHandle.Helper()
	homeDirectory := testingHandle.TempDir()
	testingHandle.Setenv("HOME", homeDirectory)
	testingHandle.Setenv("USERPROFILE", homeDirectory)

	projectDirectory := filepath.Join(testingHandle.TempDir(), projectDirectoryName)
	for _, relativePath := range relativePaths {
		absolutePath := filepath.Join(projectDirectory, filepath.FromSlash(relativePath))
		if makeDirectoryError := os.MkdirAll(filepath.Dir(absolutePath), 0o755); makeDirectoryError != nil {
			testingHandle.Fatalf("failed to create %s: %v", filepath.Dir(absolutePath), makeDirectoryError)
		}
		if writeError := os.WriteFile(absolutePath, []byte(relativePath), 0o644); writeError != nil {
			testingHandle.Fatalf("failed to write %s: %v", absolutePath, writeError)
		}
	}
	if makeDirectoryError := os.MkdirAll(projectDirectory, 0o755); makeDirectoryError != nil {
		testingHandle.Fatalf("failed to create %s: %v", projectDirectory, makeDirectoryError)
	}
	changeWorkingDirectory(testingHandle, projectDirectory)
	return projectDirectory
}

func executeCommand(testingHandle *testing.T, dependencies Dependencies, arguments ...string) (string, error) {
	testingHandle.Helper()
	rootCommand := NewRootCommand(dependencies)
	var stdout bytes.Buffer
	rootCommand.SetOut(&stdout)
	rootCommand.SetErr(&stdout)
	rootCommand.SetArgs(arguments)
	executionError := rootCommand.Execute()
	return stdout.String(), executionError
}

func readStructureFile(testingHandle *testing.T, path string) string {
	testingHandle.Helper()
	contents, readError := os.ReadFile(path)
	if readError != nil {
		testingHandle.Fatalf("failed to read %s: %v", path, readError)
	}
	return string(contents)
}

func TestRootCommandWritesStructureFile(t *testing.T) {
	projectDirectory := prepareProject(t,
		"README.md",
		"app/index.ts",
		"node_modules/left-pad/index.js",
		"src/main.go",
	)
	core, recorded := observer.New(zapcore.InfoLevel)

	if _, executionError := executeCommand(t, Dependencies{Logger: zap.New(core), Clipboard: &recordingClipboard{}}); executionError != nil {
		t.Fatalf("execute failed: %v", executionError)
	}

	expected := strings.Join([]string{
		"proj/",
		"├── app/",
		"│   └── index.ts",
		"├── src/",
		"└── README.md",
	}, "\n")
	structurePath := filepath.Join(projectDirectory, utils.DefaultOutputFileName)
	if contents := readStructureFile(t, structurePath); contents != expected {
		t.Fatalf("unexpected structure:\n got: %q\nwant: %q", contents, expected)
	}
	if recorded.FilterMessage(structureWrittenMessage).Len() != 1 {
		t.Fatalf("expected a %q log entry, got %v", structureWrittenMessage, recorded.All())
	}
}

func TestRootCommandIsIdempotent(t *testing.T) {
	prepareProject(t, "app/a.txt", "app/b.txt", "lib/c.txt")
	structurePath := filepath.Join(t.TempDir(), utils.DefaultOutputFileName)

	if _, executionError := executeCommand(t, Dependencies{}, "--output", structurePath); executionError != nil {
		t.Fatalf("first execute failed: %v", executionError)
	}
	firstContents := readStructureFile(t, structurePath)
	if _, executionError := executeCommand(t, Dependencies{}, "--output", structurePath); executionError != nil {
		t.Fatalf("second execute failed: %v", executionError)
	}
	secondContents := readStructureFile(t, structurePath)
	if firstContents != secondContents {
		t.Fatalf("expected identical output:\n%q\n%q", firstContents, secondContents)
	}
}

func TestRootCommandAppliesFlags(t *testing.T) {
	projectDirectory := prepareProject(t, "internal/cli/cli.go", "vendor/mod/mod.go", "docs/guide.md")

	_, executionError := executeCommand(t, Dependencies{},
		"--ignore", "vendor",
		"--show-files", "internal/cli",
		"--output", "tree.txt",
	)
	if executionError != nil {
		t.Fatalf("execute failed: %v", executionError)
	}

	expected := strings.Join([]string{
		"proj/",
		"├── docs/",
		"└── internal/",
		"    └── cli/",
		"        └── cli.go",
	}, "\n")
	if contents := readStructureFile(t, filepath.Join(projectDirectory, "tree.txt")); contents != expected {
		t.Fatalf("unexpected structure:\n got: %q\nwant: %q", contents, expected)
	}
	if _, statError := os.Stat(filepath.Join(projectDirectory, utils.DefaultOutputFileName)); !os.IsNotExist(statError) {
		t.Fatalf("expected no default structure file, stat returned %v", statError)
	}
}

func TestRootCommandReadsLocalConfiguration(t *testing.T) {
	projectDirectory := prepareProject(t, "pkg/a.go", "tools/b.go")
	configuration := "ignore_folders:\n  - tools\nshow_files_in:\n  - pkg\noutput: layout.txt\n"
	if writeError := os.WriteFile(filepath.Join(projectDirectory, utils.LocalConfigFileName), []byte(configuration), 0o600); writeError != nil {
		t.Fatalf("failed to write configuration: %v", writeError)
	}

	if _, executionError := executeCommand(t, Dependencies{}); executionError != nil {
		t.Fatalf("execute failed: %v", executionError)
	}

	expected := strings.Join([]string{
		"proj/",
		"├── pkg/",
		"│   └── a.go",
		"└── " + utils.LocalConfigFileName,
	}, "\n")
	if contents := readStructureFile(t, filepath.Join(projectDirectory, "layout.txt")); contents != expected {
		t.Fatalf("unexpected structure:\n got: %q\nwant: %q", contents, expected)
	}
}

func TestRootCommandKeepsExistingFileOnTraversalError(t *testing.T) {
	projectDirectory := prepareProject(t, "app/a.txt")
	structurePath := filepath.Join(projectDirectory, utils.DefaultOutputFileName)
	if writeError := os.WriteFile(structurePath, []byte("previous"), 0o644); writeError != nil {
		t.Fatalf("failed to seed structure file: %v", writeError)
	}

	_, executionError := executeCommand(t, Dependencies{}, filepath.Join(projectDirectory, "missing"))
	var traversalError *treeprinter.TraversalError
	if !errors.As(executionError, &traversalError) {
		t.Fatalf("expected TraversalError, got %v", executionError)
	}
	if contents := readStructureFile(t, structurePath); contents != "previous" {
		t.Fatalf("expected existing structure file to be untouched, got %q", contents)
	}
}

func TestRootCommandCopiesToClipboard(t *testing.T) {
	prepareProject(t, "main.go")

	testCases := []struct {
		name            string
		clipboardError  error
		expectedCopies  int
		expectedMessage string
	}{
		{name: "copy succeeds", expectedCopies: 1, expectedMessage: clipboardCopiedMessage},
		{name: "copy failure is a warning", clipboardError: errors.New("no clipboard"), expectedCopies: 0, expectedMessage: clipboardFailedMessage},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.InfoLevel)
			clipboard := &recordingClipboard{err: testCase.clipboardError}

			if _, executionError := executeCommand(t, Dependencies{Logger: zap.New(core), Clipboard: clipboard}, "--clipboard"); executionError != nil {
				t.Fatalf("execute failed: %v", executionError)
			}
			if len(clipboard.copied) != testCase.expectedCopies {
				t.Fatalf("expected %d copies, got %d", testCase.expectedCopies, len(clipboard.copied))
			}
			if testCase.expectedCopies > 0 && !strings.HasPrefix(clipboard.copied[0], projectDirectoryName+"/\n") {
				t.Fatalf("unexpected clipboard contents %q", clipboard.copied[0])
			}
			if recorded.FilterMessage(testCase.expectedMessage).Len() != 1 {
				t.Fatalf("expected a %q log entry, got %v", testCase.expectedMessage, recorded.All())
			}
		})
	}
}

func TestRootCommandLogsTokenCount(t *testing.T) {
	prepareProject(t, "main.go")
	core, recorded := observer.New(zapcore.InfoLevel)

	_, executionError := executeCommand(t, Dependencies{Logger: zap.New(core), NewCounter: runeCounterFactory}, "--tokens")
	if executionError != nil {
		t.Fatalf("execute failed: %v", executionError)
	}

	entries := recorded.FilterMessage(tokenCountMessage).All()
	if len(entries) != 1 {
		t.Fatalf("expected one token log entry, got %v", recorded.All())
	}
	expectedTokens := int64(len([]rune("proj/\n└── main.go")))
	if tokens := entries[0].ContextMap()[logFieldTokens]; tokens != expectedTokens {
		t.Fatalf("expected %d tokens, got %v", expectedTokens, tokens)
	}
}

func TestRootCommandPrintsVersion(t *testing.T) {
	prepareProject(t)

	stdout, executionError := executeCommand(t, Dependencies{}, "--version")
	if executionError != nil {
		t.Fatalf("execute failed: %v", executionError)
	}
	if !strings.HasPrefix(stdout, "structure version: ") {
		t.Fatalf("unexpected version output %q", stdout)
	}
	if _, statError := os.Stat(utils.DefaultOutputFileName); !os.IsNotExist(statError) {
		t.Fatalf("expected no structure file for --version, stat returned %v", statError)
	}
}

func TestInitCommandWritesLocalConfiguration(t *testing.T) {
	projectDirectory := prepareProject(t)

	if _, executionError := executeCommand(t, Dependencies{}, "init"); executionError != nil {
		t.Fatalf("init failed: %v", executionError)
	}
	if _, statError := os.Stat(filepath.Join(projectDirectory, utils.LocalConfigFileName)); statError != nil {
		t.Fatalf("expected configuration file: %v", statError)
	}
	if _, executionError := executeCommand(t, Dependencies{}, "init"); executionError == nil {
		t.Fatalf("expected second init without --force to fail")
	}
	if _, executionError := executeCommand(t, Dependencies{}, "init", "--force"); executionError != nil {
		t.Fatalf("init --force failed: %v", executionError)
	}
}

// changeWorkingDirectory switches the process working directory for the duration of the test
// and restores the previous one on cleanup (equivalent to testing.T.Chdir on Go 1.24+).
func changeWorkingDirectory(testingHandle *testing.T, directory string) {
	testingHandle.Helper()
	previousDirectory, getwdError := os.Getwd()
	if getwdError != nil {
		testingHandle.Fatalf("failed to get working directory: %v", getwdError)
	}
	if chdirError := os.Chdir(directory); chdirError != nil {
		testingHandle.Fatalf("failed to change directory to %s: %v", directory, chdirError)
	}
	testingHandle.Cleanup(func() {
		if restoreError := os.Chdir(previousDirectory); restoreError != nil {
			testingHandle.Errorf("failed to restore working directory %s: %v", previousDirectory, restoreError)
		}
	})
}

// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/structure/internal/config"
	"github.com/temirov/structure/internal/output"
	"github.com/temirov/structure/internal/services/clipboard"
	"github.com/temirov/structure/internal/tokenizer"
	"github.com/temirov/structure/internal/treeprinter"
	"github.com/temirov/structure/internal/utils"
)

const (
	configFlagName     = "config"
	outputFlagName     = "output"
	outputFlagShort    = "o"
	ignoreFlagName     = "ignore"
	ignoreFlagShort    = "i"
	showFilesFlagName  = "show-files"
	showFilesFlagShort = "s"
	clipboardFlagName  = "clipboard"
	tokensFlagName     = "tokens"
	modelFlagName      = "model"
	versionFlagName    = "version"
	globalFlagName     = "global"
	forceFlagName      = "force"

	versionTemplate      = "structure version: %s\n"
	rootUse              = "structure [root]"
	rootShortDescription = "write the folder structure of a directory to " + utils.DefaultOutputFileName
	rootLongDescription  = `structure renders a directory as a tree and writes it to ` + utils.DefaultOutputFileName + `.
Folders named in the ignore set are skipped everywhere. Files are listed at the root
and, below it, only inside directories named in the visible-files set. Visible-files
paths are relative to the directory structure is run from.`
	rootUsageExample = `  # Write structure.txt for the current directory
  structure

  # Also list files under internal/cli and skip vendor folders
  structure -s internal/cli -i vendor

  # Copy the tree to the clipboard as well
  structure --clipboard`

	initUse              = "init"
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Write the default configuration to ` + utils.LocalConfigFileName + ` in the working directory,
or to ~/` + utils.GlobalConfigDirectoryName + `/` + utils.ConfigFileName + ` with --global.`

	configFlagDescription    = "configuration file to use instead of " + utils.LocalConfigFileName
	outputFlagDescription    = "output file, relative to the working directory"
	ignoreFlagDescription    = "additional folder name to skip"
	showFilesFlagDescription = "additional directory whose files are listed"
	clipboardFlagDescription = "copy the rendered structure to the clipboard"
	tokensFlagDescription    = "log the token count of the rendered structure"
	modelFlagDescription     = "tokenizer model to use for token counting"
	versionFlagDescription   = "display application version"
	globalFlagDescription    = "write the global configuration instead of the local one"
	forceFlagDescription     = "overwrite an existing configuration file"

	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	loadConfigurationFormat     = "loading configuration: %w"
	renderStructureFormat       = "rendering %s: %w"
	writeStructureFormat        = "writing structure: %w"

	structureWrittenMessage = "structure written"
	configurationWritten    = "configuration written"
	clipboardCopiedMessage  = "structure copied to clipboard"
	clipboardFailedMessage  = "failed to copy structure to clipboard"
	tokenCountMessage       = "structure tokens"
	tokenCountFailedMessage = "failed to count structure tokens"
	logFieldPath            = "path"
	logFieldLines           = "lines"
	logFieldTokens          = "tokens"
	logFieldModel           = "model"
)

// CounterFactory builds the token counter used by --tokens.
type CounterFactory func(tokenizer.Config) (tokenizer.Counter, string, error)

// Dependencies carries the collaborators used by the commands.
type Dependencies struct {
	Logger     *zap.Logger
	Clipboard  clipboard.Copier
	NewCounter CounterFactory
}

func (dependencies Dependencies) withDefaults() Dependencies {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.Clipboard == nil {
		dependencies.Clipboard = clipboard.NewService()
	}
	if dependencies.NewCounter == nil {
		dependencies.NewCounter = tokenizer.NewCounter
	}
	return dependencies
}

// Execute runs the structure application.
func Execute(logger *zap.Logger) error {
	rootCommand := NewRootCommand(Dependencies{Logger: logger})
	return rootCommand.Execute()
}

// runOptions stores the flag values of the root command.
type runOptions struct {
	configPath  string
	outputPath  string
	ignore      []string
	showFilesIn []string
	clipboard   bool
	tokens      bool
	model       string
	showVersion bool
}

// NewRootCommand builds the root Cobra command.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	dependencies = dependencies.withDefaults()
	var options runOptions

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if options.showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return nil
			}
			return runStructure(command, arguments, options, dependencies)
		},
	}
	rootCommand.Flags().StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	rootCommand.Flags().StringVarP(&options.outputPath, outputFlagName, outputFlagShort, utils.DefaultOutputFileName, outputFlagDescription)
	rootCommand.Flags().StringArrayVarP(&options.ignore, ignoreFlagName, ignoreFlagShort, nil, ignoreFlagDescription)
	rootCommand.Flags().StringArrayVarP(&options.showFilesIn, showFilesFlagName, showFilesFlagShort, nil, showFilesFlagDescription)
	rootCommand.Flags().BoolVar(&options.clipboard, clipboardFlagName, false, clipboardFlagDescription)
	rootCommand.Flags().BoolVar(&options.tokens, tokensFlagName, false, tokensFlagDescription)
	rootCommand.Flags().StringVar(&options.model, modelFlagName, "", modelFlagDescription)
	rootCommand.Flags().BoolVar(&options.showVersion, versionFlagName, false, versionFlagDescription)

	rootCommand.AddCommand(createInitCommand(dependencies))
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand(dependencies Dependencies) *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			destinationPath, initError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if initError != nil {
				return initError
			}
			dependencies.Logger.Info(configurationWritten, zap.String(logFieldPath, destinationPath))
			return nil
		},
	}
	initCommand.Flags().BoolVar(&global, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// runStructure renders the tree and writes it. The output file is only touched
// once the whole tree has been rendered.
func runStructure(command *cobra.Command, arguments []string, options runOptions, dependencies Dependencies) error {
	startDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}

	configuration, configurationError := config.LoadConfiguration(config.LoadOptions{
		WorkingDirectory: startDirectory,
		ExplicitFilePath: options.configPath,
	})
	if configurationError != nil {
		return fmt.Errorf(loadConfigurationFormat, configurationError)
	}
	configuration = applyFlagOverrides(command, configuration, options)

	rootDirectory := startDirectory
	if len(arguments) > 0 {
		rootDirectory = arguments[0]
	}

	lines, renderError := treeprinter.Render(rootDirectory, configuration.TreeOptions(startDirectory))
	if renderError != nil {
		return fmt.Errorf(renderStructureFormat, rootDirectory, renderError)
	}

	destinationPath := configuration.Output
	if !filepath.IsAbs(destinationPath) {
		destinationPath = filepath.Join(startDirectory, destinationPath)
	}
	if writeError := output.WriteStructureFile(destinationPath, lines); writeError != nil {
		return fmt.Errorf(writeStructureFormat, writeError)
	}
	dependencies.Logger.Info(structureWrittenMessage, zap.String(logFieldPath, destinationPath), zap.Int(logFieldLines, len(lines)))

	if configuration.ClipboardEnabled() {
		copyStructure(dependencies, lines)
	}
	if configuration.TokensEnabled() {
		logTokenCount(dependencies, configuration.Tokens.Model, lines)
	}
	return nil
}

// applyFlagOverrides layers explicitly set flags over the loaded configuration.
func applyFlagOverrides(command *cobra.Command, configuration config.Configuration, options runOptions) config.Configuration {
	flags := command.Flags()
	if flags.Changed(outputFlagName) {
		configuration.Output = options.outputPath
	}
	configuration = configuration.AddIgnoreFolders(options.ignore).AddShowFilesIn(options.showFilesIn)
	if flags.Changed(clipboardFlagName) {
		clipboardEnabled := options.clipboard
		configuration.Clipboard = &clipboardEnabled
	}
	if flags.Changed(tokensFlagName) {
		tokensEnabled := options.tokens
		configuration.Tokens.Enabled = &tokensEnabled
	}
	if flags.Changed(modelFlagName) {
		configuration.Tokens.Model = options.model
	}
	return configuration
}

func copyStructure(dependencies Dependencies, lines []string) {
	if copyError := dependencies.Clipboard.Copy(output.JoinLines(lines)); copyError != nil {
		dependencies.Logger.Warn(clipboardFailedMessage, zap.Error(copyError))
		return
	}
	dependencies.Logger.Info(clipboardCopiedMessage)
}

func logTokenCount(dependencies Dependencies, model string, lines []string) {
	counter, resolvedModel, counterError := dependencies.NewCounter(tokenizer.Config{Model: model})
	if counterError != nil {
		dependencies.Logger.Warn(tokenCountFailedMessage, zap.Error(counterError))
		return
	}
	tokenCount, countError := tokenizer.CountLines(counter, lines)
	if countError != nil {
		dependencies.Logger.Warn(tokenCountFailedMessage, zap.Error(countError))
		return
	}
	dependencies.Logger.Info(tokenCountMessage, zap.Int(logFieldTokens, tokenCount), zap.String(logFieldModel, resolvedModel))
}

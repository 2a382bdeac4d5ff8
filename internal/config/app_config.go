// Package config resolves the folder rules and output settings used to render a structure file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/structure/internal/treeprinter"
	"github.com/temirov/structure/internal/utils"
)

const defaultTokenizerModel = "gpt-4o"

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// Configuration holds the folder rules and output settings.
type Configuration struct {
	IgnoreFolders []string           `mapstructure:"ignore_folders"`
	ShowFilesIn   []string           `mapstructure:"show_files_in"`
	Output        string             `mapstructure:"output"`
	Clipboard     *bool              `mapstructure:"clipboard"`
	Tokens        TokenConfiguration `mapstructure:"tokens"`
}

// TokenConfiguration controls token counting of the rendered structure.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// DefaultConfiguration returns the built-in folder rules.
func DefaultConfiguration() Configuration {
	return Configuration{
		IgnoreFolders: []string{
			"node_modules", utils.GitDirectoryName, ".expo", ".expo-shared",
			".idea", ".vscode", "build", "dist", ".next",
			"__pycache__", ".DS_Store",
		},
		ShowFilesIn: []string{"backend", "app", "backend/app"},
		Output:      utils.DefaultOutputFileName,
		Tokens:      TokenConfiguration{Model: defaultTokenizerModel},
	}
}

// LoadConfiguration overlays the global and local configuration files on the defaults.
// Missing files are skipped.
func LoadConfiguration(options LoadOptions) (Configuration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return Configuration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	merged := DefaultConfiguration()

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return Configuration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localConfig, loadErr := loadConfigurationFromPath(resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath))
	if loadErr != nil {
		return Configuration{}, loadErr
	}
	return merged.Merge(localConfig), nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) string {
	if explicitPath == "" {
		return filepath.Join(workingDirectory, utils.LocalConfigFileName)
	}
	if filepath.IsAbs(explicitPath) {
		return explicitPath
	}
	return filepath.Join(workingDirectory, explicitPath)
}

func loadConfigurationFromPath(path string) (Configuration, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return Configuration{}, nil
		}
		return Configuration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return Configuration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return Configuration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config Configuration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return Configuration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
// A list present in override replaces the receiver's list.
func (config Configuration) Merge(override Configuration) Configuration {
	result := config
	if override.IgnoreFolders != nil {
		result.IgnoreFolders = utils.DeduplicatePatterns(override.IgnoreFolders)
	}
	if override.ShowFilesIn != nil {
		result.ShowFilesIn = utils.DeduplicatePatterns(override.ShowFilesIn)
	}
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

// AddIgnoreFolders returns a copy with extra folder names appended to the ignore set.
func (config Configuration) AddIgnoreFolders(folderNames []string) Configuration {
	result := config
	result.IgnoreFolders = utils.DeduplicatePatterns(append(append([]string{}, config.IgnoreFolders...), folderNames...))
	return result
}

// AddShowFilesIn returns a copy with extra directories appended to the visible-files set.
func (config Configuration) AddShowFilesIn(relativePaths []string) Configuration {
	result := config
	result.ShowFilesIn = utils.DeduplicatePatterns(append(append([]string{}, config.ShowFilesIn...), relativePaths...))
	return result
}

// ClipboardEnabled reports whether the rendered structure is copied to the clipboard.
func (config Configuration) ClipboardEnabled() bool {
	return config.Clipboard != nil && *config.Clipboard
}

// TokensEnabled reports whether the rendered structure's token count is logged.
func (config Configuration) TokensEnabled() bool {
	return config.Tokens.Enabled != nil && *config.Tokens.Enabled
}

// TreeOptions converts the folder rules into traversal options keyed off startDirectory.
func (config Configuration) TreeOptions(startDirectory string) treeprinter.Options {
	return treeprinter.Options{
		IgnoreFolders:  append([]string{}, config.IgnoreFolders...),
		ShowFilesIn:    append([]string{}, config.ShowFilesIn...),
		StartDirectory: startDirectory,
	}
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

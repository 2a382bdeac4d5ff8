package utils

const (
	// ApplicationName is the name of the command and of its configuration directory.
	ApplicationName = "structure"
	// DefaultOutputFileName is the file the rendered tree is written to.
	DefaultOutputFileName = "structure.txt"
	// ConfigFileName is the name of the global configuration file.
	ConfigFileName = "config.yaml"
	// LocalConfigFileName is the name of the per-project configuration file.
	LocalConfigFileName = ".structure.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home that holds ConfigFileName.
	GlobalConfigDirectoryName = "." + ApplicationName
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"

	// LoggerInitializationFailedMessageFormat reports a logger that could not be built.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes the fatal error logged by main.
	ApplicationExecutionFailedMessage = "structure failed"
)

package compage

import (
	"github.com/goliatone/go-compage/internal/runtimeconfig"
	"github.com/goliatone/go-compage/internal/validation"
)

var (
	ErrRootNamespaceRequired  = runtimeconfig.ErrRootNamespaceRequired
	ErrContentRootRequired    = runtimeconfig.ErrContentRootRequired
	ErrOutputDirRequired      = runtimeconfig.ErrOutputDirRequired
	ErrExtensionInvalid       = runtimeconfig.ErrExtensionInvalid
	ErrWorkersInvalid         = runtimeconfig.ErrWorkersInvalid
	ErrCachePathRequired      = runtimeconfig.ErrCachePathRequired
	ErrBaseURLRequired        = runtimeconfig.ErrBaseURLRequired
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
	ErrConfigFileInvalid      = runtimeconfig.ErrConfigFileInvalid
)

type (
	Config         = runtimeconfig.Config
	MarkdownConfig = runtimeconfig.MarkdownConfig
	CacheConfig    = runtimeconfig.CacheConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a JSON configuration file, validates it against the
// embedded schema, and overlays it on DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.LoadFile(path, validation.NewSchemaCache())
}

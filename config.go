package bookcheck

import "github.com/goliatone/go-bookcheck/internal/runtimeconfig"

var (
	ErrContentDirRequired      = runtimeconfig.ErrContentDirRequired
	ErrContentPatternInvalid   = runtimeconfig.ErrContentPatternInvalid
	ErrStorageDSNRequired      = runtimeconfig.ErrStorageDSNRequired
	ErrCheckWorkersInvalid     = runtimeconfig.ErrCheckWorkersInvalid
	ErrCheckFailOnInvalid      = runtimeconfig.ErrCheckFailOnInvalid
	ErrRuleSeverityInvalid     = runtimeconfig.ErrRuleSeverityInvalid
	ErrWatchDebounceInvalid    = runtimeconfig.ErrWatchDebounceInvalid
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	ContentConfig  = runtimeconfig.ContentConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	RulesConfig    = runtimeconfig.RulesConfig
	SnippetConfig  = runtimeconfig.SnippetConfig
	CheckConfig    = runtimeconfig.CheckConfig
	StorageConfig  = runtimeconfig.StorageConfig
	WatchConfig    = runtimeconfig.WatchConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

package config

const (
	defaultSourceDir          = "~/Downloads"
	defaultArchiveDirName     = "Organized_Archive"
	defaultLogDir             = "~/.local/share/curator/logs"
	defaultGeminiModel        = "gemini-2.5-flash"
	defaultGeminiTimeout      = 60
	defaultRecencyWindowHours = 24
	defaultRetryAttempts      = 3
	defaultRetryDelaySeconds  = 10
	defaultCodeSnippetLines   = 50
	defaultImageBatchSize     = 10
	defaultImageBatchDelay    = 5
	defaultNotifyTimeout      = 10
	defaultLogLevel           = "info"
	defaultLogFormat          = "console"
	defaultWatchSettleSeconds = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir: defaultSourceDir,
			LogDir:    defaultLogDir,
		},
		Gemini: Gemini{
			Model:          defaultGeminiModel,
			TimeoutSeconds: defaultGeminiTimeout,
		},
		Triage: Triage{
			RecencyWindowHours: defaultRecencyWindowHours,
			RetryAttempts:      defaultRetryAttempts,
			RetryDelaySeconds:  defaultRetryDelaySeconds,
			CodeSnippetLines:   defaultCodeSnippetLines,
		},
		Images: Images{
			BatchSize:         defaultImageBatchSize,
			BatchDelaySeconds: defaultImageBatchDelay,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Watch: Watch{
			SettleSeconds: defaultWatchSettleSeconds,
		},
	}
}

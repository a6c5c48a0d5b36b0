package config

const (
	defaultConfigPath       = "~/.config/kiln/config.toml"
	projectConfigName       = "kiln.toml"
	defaultStateDir         = "~/.local/share/kiln"
	defaultJournalPath      = "~/.local/share/kiln/journal.db"
	defaultConflictPolicy   = "last"
	defaultCoverFormat      = "jpeg"
	defaultCoverQuality     = 90
	defaultCoverDescription = "cover"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

var defaultExtensions = []string{".mp3"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Set: Set{
			Preserve:   []string{},
			Extensions: append([]string(nil), defaultExtensions...),
		},
		Merge: Merge{
			Conflict: defaultConflictPolicy,
		},
		Cover: Cover{
			Format:      defaultCoverFormat,
			Quality:     defaultCoverQuality,
			Description: defaultCoverDescription,
		},
		Journal: Journal{
			Enabled: true,
			Path:    defaultJournalPath,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package config

// ConfigDiff describes what changed between two configs. Only fields that
// can be safely hot-reloaded are tracked; provider and path changes require
// a restart.
type ConfigDiff struct {
	LogLevelChanged  bool
	NewLogLevel      LogLevel
	AssistantChanged bool
	HistoryChanged   bool
	NewMaxTurns      int
}

// Any reports whether the diff contains any hot-reloadable change.
func (d ConfigDiff) Any() bool {
	return d.LogLevelChanged || d.AssistantChanged || d.HistoryChanged
}

// Diff compares old and new configs and returns what changed. Only tracks
// changes that are safe to apply without restart.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}
	if old.Assistant != new.Assistant {
		d.AssistantChanged = true
	}
	if old.History.MaxTurns != new.History.MaxTurns {
		d.HistoryChanged = true
		d.NewMaxTurns = new.History.MaxTurns
	}
	return d
}

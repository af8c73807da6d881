package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the
// configuration. Pattern: CCONFORM_[SECTION]_[KEY]
// (e.g., CCONFORM_DB_PATH).
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Paths.ProjectRoot, "CCONFORM_PATHS_PROJECT_ROOT")
	setEnvString(&cfg.Paths.StateDir, "CCONFORM_PATHS_STATE_DIR")
	setEnvString(&cfg.Paths.DatabaseDir, "CCONFORM_PATHS_DATABASE_DIR")

	setEnvBool(&cfg.DB.Enabled, "CCONFORM_DB_ENABLED")
	setEnvString(&cfg.DB.Path, "CCONFORM_DB_PATH")
	setEnvDuration(&cfg.DB.BusyTimeout, "CCONFORM_DB_BUSY_TIMEOUT")

	setEnvInt(&cfg.Rules.IndentWidth, "CCONFORM_RULES_INDENT_WIDTH")
	setEnvInt(&cfg.Rules.MaxLineLength, "CCONFORM_RULES_MAX_LINE_LENGTH")

	setEnvDuration(&cfg.Watch.Debounce, "CCONFORM_WATCH_DEBOUNCE")

	setEnvBool(&cfg.Observability.Enabled, "CCONFORM_OBSERVABILITY_ENABLED")
	setEnvString(&cfg.Observability.Address, "CCONFORM_OBSERVABILITY_ADDRESS")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Info("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Info("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Info("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Info("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}

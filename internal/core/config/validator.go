package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/gobwas/glob"

	"cconform/internal/engine/rules"
)

func validateVersion(cfg *Config) error {
	if cfg.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", cfg.Version)
	}
	if cfg.Version > 1 {
		return fmt.Errorf("unsupported config version %d; only version 1 is supported", cfg.Version)
	}
	return nil
}

func validateRules(cfg *Config) error {
	r := cfg.Rules
	if r.IndentWidth < 1 || r.IndentWidth > 16 {
		return fmt.Errorf("rules.indent_width must be between 1 and 16, got %d", r.IndentWidth)
	}
	if r.MaxLineLength < 40 {
		return fmt.Errorf("rules.max_line_length must be at least 40, got %d", r.MaxLineLength)
	}
	for _, suffix := range r.TypeSuffixes {
		if strings.TrimSpace(suffix) == "" {
			return fmt.Errorf("rules.type_suffixes must not include empty values")
		}
	}

	known := knownRuleIDs()
	for _, id := range r.Enabled {
		if !known[id] {
			return fmt.Errorf("rules.enabled references unknown rule %q", id)
		}
	}
	return nil
}

func knownRuleIDs() map[string]bool {
	ids := make(map[string]bool)
	for _, rule := range rules.StandardRules() {
		ids[rule.ID()] = true
	}
	return ids
}

func validateExclude(cfg *Config) error {
	for _, pattern := range append(append([]string{}, cfg.Exclude.Dirs...), cfg.Exclude.Files...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}
	return nil
}

func validateDatabase(cfg *Config) error {
	if cfg.DB.Driver != "sqlite" {
		return fmt.Errorf("db.driver must be sqlite, got %q", cfg.DB.Driver)
	}
	if strings.TrimSpace(cfg.DB.Path) == "" {
		return fmt.Errorf("db.path must not be empty")
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if cfg.Watch.MaxRate <= 0 {
		return fmt.Errorf("watch.max_rate must be positive")
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if !cfg.Observability.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Observability.Address); err != nil {
		return fmt.Errorf("observability.address %q is not host:port: %w", cfg.Observability.Address, err)
	}
	return nil
}

package config

import (
	"time"

	"cconform/internal/engine/rules"
)

type Config struct {
	Version       int           `toml:"version"`
	Paths         Paths         `toml:"paths"`
	ScanPaths     []string      `toml:"scan_paths"`
	Exclude       Exclude       `toml:"exclude"`
	Rules         Rules         `toml:"rules"`
	Watch         Watch         `toml:"watch"`
	DB            Database      `toml:"db"`
	Output        Output        `toml:"output"`
	Observability Observability `toml:"observability"`
	Alerts        Alerts        `toml:"alerts"`
}

type Paths struct {
	ProjectRoot string `toml:"project_root"`
	StateDir    string `toml:"state_dir"`
	DatabaseDir string `toml:"database_dir"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

// Rules carries the knobs the standard leaves to each project.
type Rules struct {
	IndentWidth         int      `toml:"indent_width"`
	MaxLineLength       int      `toml:"max_line_length"`
	Verbs               []string `toml:"verbs"`
	ExtraVerbs          []string `toml:"extra_verbs"`
	AllowedMagicNumbers []int    `toml:"allowed_magic_numbers"`
	TypeSuffixes        []string `toml:"type_suffixes"`
	Enabled             []string `toml:"enabled"`
	IncludeInfo         bool     `toml:"include_info"`
}

// Options converts the TOML section into the engine's option set.
// An explicit verbs list replaces the built-in vocabulary; extra_verbs
// extends it.
func (r Rules) Options() rules.Options {
	opts := rules.DefaultOptions()
	if r.IndentWidth > 0 {
		opts.IndentWidth = r.IndentWidth
	}
	if r.MaxLineLength > 0 {
		opts.MaxLineLength = r.MaxLineLength
	}
	if len(r.Verbs) > 0 {
		opts.VerbWhitelist = r.Verbs
	}
	opts.VerbWhitelist = append(opts.VerbWhitelist, r.ExtraVerbs...)
	if r.AllowedMagicNumbers != nil {
		opts.AllowedMagicNumbers = r.AllowedMagicNumbers
	}
	if len(r.TypeSuffixes) > 0 {
		opts.TypeSuffixes = r.TypeSuffixes
	}
	opts.Enabled = r.Enabled
	opts.IncludeInfo = r.IncludeInfo
	return opts
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	MaxRate  float64       `toml:"max_rate"`
}

type Database struct {
	Enabled     bool          `toml:"enabled"`
	Driver      string        `toml:"driver"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Output struct {
	SARIF    string `toml:"sarif"`
	Markdown string `toml:"markdown"`
	TSV      string `toml:"tsv"`
}

type Observability struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
}

type Alerts struct {
	Beep     bool `toml:"beep"`
	Terminal bool `toml:"terminal"`
}

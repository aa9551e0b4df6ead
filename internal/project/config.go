package project

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"swimat/internal/format"
)

// Config is the decoded content of .swimat.toml.
type Config struct {
	// Path is the file the config was read from; empty for defaults.
	Path   string       `toml:"-"`
	Format FormatConfig `toml:"format"`
}

// FormatConfig holds the [format] section.
type FormatConfig struct {
	Indent     int      `toml:"indent"`
	Tabs       bool     `toml:"tabs"`
	Extensions []string `toml:"extensions"`
	Exclude    []string `toml:"exclude"`
}

// MaxIndent is the widest accepted indent, in spaces.
const MaxIndent = 16

// DefaultConfig returns the settings used when no config file is found.
func DefaultConfig() Config {
	return Config{
		Format: FormatConfig{
			Indent:     4,
			Extensions: []string{".swift"},
			Exclude:    []string{".build", ".git", "Pods", "Carthage"},
		},
	}
}

// LoadConfig reads and validates a config file. Keys missing from the file
// keep their defaults; unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("format", "indent") && (cfg.Format.Indent < 1 || cfg.Format.Indent > MaxIndent) {
		return Config{}, fmt.Errorf("%s: [format].indent must be between 1 and %d, got %d", path, MaxIndent, cfg.Format.Indent)
	}
	for i, ext := range cfg.Format.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return Config{}, fmt.Errorf("%s: [format].extensions[%d] is empty", path, i)
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Format.Extensions[i] = ext
	}
	cfg.Path = path
	return cfg, nil
}

// Discover finds the config for start and loads it, falling back to
// DefaultConfig when there is none.
func Discover(start string) (Config, error) {
	path, ok, err := FindConfig(start)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// Options converts the [format] section to engine options.
func (c Config) Options() format.Options {
	return format.Options{IndentWidth: c.Format.Indent, UseTabs: c.Format.Tabs}
}

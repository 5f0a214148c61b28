package preview

import "time"

// DefaultDebounce is the quiet period before a render runs.
const DefaultDebounce = 200 * time.Millisecond

// DefaultTagBase is the link prefix for hashtags.
const DefaultTagBase = "/tags/"

// Config holds the settings shared by the preview hosts.
type Config struct {
	// Debounce is the render debounce window.
	Debounce time.Duration `yaml:"debounce"`
	// Mode is the initial preview visibility.
	Mode string `yaml:"mode"`
	// Strict fails renders whose patch diverges instead of recovering.
	Strict bool `yaml:"strict"`
	// Addr enables the HTTP mirror when non-empty.
	Addr string `yaml:"addr"`
	// Sanitize applies the markup policy before the tree is built.
	Sanitize bool `yaml:"sanitize"`
	// Hashtags turns #tag text into tag links.
	Hashtags bool `yaml:"hashtags"`
	// Math enables $...$ spans and the typesetting pass.
	Math bool `yaml:"math"`
	// TagBase is the href prefix for hashtag links.
	TagBase string `yaml:"tag_base"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	c := Config{
		Mode:     ModeSideBySide.String(),
		Sanitize: true,
		Hashtags: true,
		Math:     true,
	}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.Mode == "" {
		c.Mode = ModeSideBySide.String()
	}
	if c.TagBase == "" {
		c.TagBase = DefaultTagBase
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// PreviewMode returns the parsed Mode, defaulting to side by side.
func (c Config) PreviewMode() Mode {
	if m, ok := ParseMode(c.Mode); ok {
		return m
	}
	return ModeSideBySide
}

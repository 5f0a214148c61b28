// Package yaml loads preview configuration files.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/preview"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML configuration file. Fields the file leaves out keep
// the values of preview.DefaultConfig.
func LoadFile(path string) (preview.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return preview.Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return preview.Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document into a Config. Unknown keys are rejected.
func Parse(data []byte) (preview.Config, error) {
	cfg := preview.DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return preview.Config{}, fmt.Errorf("parse: %w", err)
	}
	cfg.ApplyDefaults()
	if err := validate(cfg); err != nil {
		return preview.Config{}, err
	}
	return cfg, nil
}

func validate(c preview.Config) error {
	if _, ok := preview.ParseMode(c.Mode); !ok {
		return fmt.Errorf("mode %q: %w", c.Mode, preview.ErrValidation)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q: %w", c.LogLevel, preview.ErrValidation)
	}
	return nil
}

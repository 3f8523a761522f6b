package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrExists is returned by WriteDefault when the target file exists and
// overwriting was not requested.
var ErrExists = errors.New("config file already exists")

const fileHeader = "# wiretool configuration. Flags override these values.\n"

// DefaultPath is where Save and WriteDefault write when no path is given.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), FileName)
}

// Marshal encodes the config as YAML with a short header.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(fileHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the config to DefaultPath.
func (c *Config) Save() error {
	return c.SaveTo(DefaultPath())
}

// SaveTo validates the config and writes it to path, creating parent
// directories.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// WriteDefault writes Default() to path, or to DefaultPath when path is
// empty, and returns the path written. An existing file is kept unless
// force is set.
func WriteDefault(path string, force bool) (string, error) {
	if path == "" {
		path = DefaultPath()
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%w: %s", ErrExists, path)
		}
	}
	if err := Default().SaveTo(path); err != nil {
		return path, fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// Package yaml loads and validates the YAML configuration files the scanner
// ships with, such as the per-source reliability policies.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads path and decodes it into target. Decoding is strict: a field
// the target struct does not declare is an error, so typos in a policy file
// fail at startup instead of silently keeping defaults.
func Load(path string, target interface{}) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	if target == nil {
		return fmt.Errorf("target cannot be nil")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(target); err != nil {
		// An empty file decodes to nothing, which is a valid empty config.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

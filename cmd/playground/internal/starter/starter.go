// Package starter provides the embedded configuration file written by
// `playground init`.
package starter

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed playground.yaml
var config []byte

// ErrExists is returned by Write when the target file exists and force is off.
var ErrExists = errors.New("starter: config file already exists")

// Write writes the starter configuration to path, creating parent
// directories. An existing file is only replaced when force is set.
func Write(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("starter: create dir: %w", err)
		}
	}

	if err := os.WriteFile(path, config, 0o600); err != nil {
		return fmt.Errorf("starter: write config: %w", err)
	}

	return nil
}

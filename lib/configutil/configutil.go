// Package configutil loads the json5 configuration files the matchview
// binaries read on startup (matchview.json5, telemetry.json5). A sibling
// <name>.local.<ext> file, when present, is merged on top of the base file
// so machine-specific settings stay out of version control.
package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// localVariant turns "dir/matchview.json5" into "dir/matchview.local.json5".
func localVariant(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

func readInto[T any](path string, out *T) (bool, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading config %q: %w", path, err)
	}
	if err := json5.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return true, nil
}

// ReadConfig reads the config file at `name` plus its .local variant and
// merges the two, with local values winning. Returns os.ErrNotExist when
// neither file is present.
func ReadConfig[T any](name string) (T, error) {
	var out T

	found, err := readInto(name, &out)
	if err != nil {
		return out, err
	}

	localPath := localVariant(name)
	var override T
	foundLocal, err := readInto(localPath, &override)
	if err != nil {
		return out, err
	}
	if foundLocal {
		if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
			return out, fmt.Errorf("merging config %q: %w", localPath, err)
		}
		slog.Info("applied local config overrides", "local", localPath)
	}

	if !found && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively looks for `name` in the working directory and then each
// parent up to the filesystem root, so the CLI can run from anywhere inside
// a checkout. Returns os.ErrNotExist when no directory on the way up has it.
func ReadRecursively[T any](name string) (T, error) {
	var zero T

	dir, err := os.Getwd()
	if err != nil {
		return zero, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(dir, name))
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(err) {
			return zero, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return zero, os.ErrNotExist
		}
		dir = parent
	}
}

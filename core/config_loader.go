package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLFileLoader reads raw config values from a YAML document on disk.
type YAMLFileLoader struct {
	Path string
	// Optional makes a missing file load as empty config.
	Optional bool
}

func (l YAMLFileLoader) LoadRaw(context.Context) (map[string]any, error) {
	path := strings.TrimSpace(l.Path)
	if path == "" {
		if l.Optional {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("core: config path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if l.Optional && errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("core: read config %s: %w", path, err)
	}
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("core: parse config %s: %w", path, err)
	}
	if raw == nil {
		return map[string]any{}, nil
	}
	return raw, nil
}

package core

import (
	"fmt"
	"strings"
)

type TransportConfig struct {
	// Priority lists transport ids that are preferred over rank order.
	Priority []string      `koanf:"priority" mapstructure:"priority"`
	Disabled []string      `koanf:"disabled" mapstructure:"disabled"`
	IOUring  IOUringConfig `koanf:"io_uring" mapstructure:"io_uring"`
}

// IOUringConfig tunes the io_uring provider. Zero values keep its defaults.
type IOUringConfig struct {
	Entries   int    `koanf:"entries" mapstructure:"entries"`
	MinKernel string `koanf:"min_kernel" mapstructure:"min_kernel"`
}

func (c IOUringConfig) IsZero() bool {
	return c.Entries == 0 && strings.TrimSpace(c.MinKernel) == ""
}

type IsolationConfig struct {
	PolicyFile      string `koanf:"policy_file" mapstructure:"policy_file"`
	DestinationRoot string `koanf:"destination_root" mapstructure:"destination_root"`
}

type Config struct {
	ModuleName string          `koanf:"module_name" mapstructure:"module_name"`
	Transport  TransportConfig `koanf:"transport" mapstructure:"transport"`
	Isolation  IsolationConfig `koanf:"isolation" mapstructure:"isolation"`
}

func DefaultConfig() Config {
	return Config{
		ModuleName: "guestboot",
		Transport:  TransportConfig{},
		Isolation:  IsolationConfig{},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ModuleName) == "" {
		return fmt.Errorf("core: module_name is required")
	}
	seen := map[string]struct{}{}
	for _, id := range c.Transport.Priority {
		id = normalizeID(id)
		if id == "" {
			return fmt.Errorf("core: transport.priority entries must not be empty")
		}
		if _, exists := seen[id]; exists {
			return fmt.Errorf("core: transport.priority lists %q twice", id)
		}
		seen[id] = struct{}{}
	}
	if c.Transport.IOUring.Entries < 0 {
		return fmt.Errorf("core: transport.io_uring.entries must not be negative")
	}
	for _, id := range c.Transport.Disabled {
		if normalizeID(id) == TransportPortable {
			return fmt.Errorf("core: transport.disabled must not include the %q fallback", TransportPortable)
		}
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// Load loads the host configuration.
// Search order: customPath -> ~/.luaframe/config.yaml -> ./configs/luaframe.yaml -> embedded default
// Values missing from a file keep their defaults.
func Load(customPath string) (HostConfig, error) {
	cfg := DefaultHostConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, cfg.Validate()
	}

	// Try user config directory
	if userCfgPath := userConfigPath("config.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, cfg.Validate()
			}
			cfg = DefaultHostConfig()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/luaframe.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, cfg.Validate()
		}
		cfg = DefaultHostConfig()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultHostYAML, &cfg); err != nil {
		return DefaultHostConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, cfg.Validate()
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".luaframe", filename)
}

// Validate rejects values the runtime cannot use.
func (c HostConfig) Validate() error {
	if c.LogicFPS <= 0 {
		return fmt.Errorf("config: logic_fps must be positive, got %d", c.LogicFPS)
	}
	if c.ViewportFPS <= 0 {
		return fmt.Errorf("config: viewport_fps must be positive, got %d", c.ViewportFPS)
	}
	if c.Host.TickRate <= 0 {
		return fmt.Errorf("config: host.tick_rate must be positive, got %d", c.Host.TickRate)
	}
	switch c.Fault {
	case FaultAbort, FaultPropagate:
	default:
		return fmt.Errorf("config: unknown fault mode %q", c.Fault)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// LogLevel returns the parsed log level, defaulting to info.
func (c HostConfig) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: failed to get home dir: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

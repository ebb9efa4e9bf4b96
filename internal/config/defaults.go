package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/luaframe.yaml
var defaultHostYAML []byte

// DefaultHostConfig returns the built-in configuration.
func DefaultHostConfig() HostConfig {
	return HostConfig{
		LogicFPS:    30,
		ViewportFPS: 30,
		OS:          "TERMINAL",
		Fault:       FaultAbort,
		Host: HostSettings{
			TickRate:  60,
			ShowStats: true,
		},
		Log: LogSettings{
			Level: "info",
		},
		Storage: StorageSettings{
			Path: "~/.luaframe/sessions.db",
		},
		SSH: SSHSettings{
			Address:     ":2323",
			HostKey:     "~/.luaframe/ssh_host_ed25519",
			IdleTimeout: 10 * time.Minute,
		},
	}
}

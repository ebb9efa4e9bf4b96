// Package config provides YAML-based host configuration loading for the
// luaframe runtime.
package config

import "time"

// HostConfig contains all configuration for running scripts.
type HostConfig struct {
	LogicFPS    int    `yaml:"logic_fps"`
	ViewportFPS int    `yaml:"viewport_fps"`
	OS          string `yaml:"os"`      // exposed to scripts as OS
	Version     int    `yaml:"version"` // exposed to scripts as _EJOY_VER_ when non-zero

	// Fault selects what a script error does: "abort" exits the process,
	// "propagate" ends only the failing session.
	Fault FaultMode `yaml:"fault"`

	Host    HostSettings    `yaml:"host"`
	Log     LogSettings     `yaml:"log"`
	Storage StorageSettings `yaml:"storage"`
	SSH     SSHSettings     `yaml:"ssh"`
	Scripts ScriptSettings  `yaml:"scripts"`
}

// HostSettings defines the terminal host loop.
type HostSettings struct {
	TickRate  int  `yaml:"tick_rate"` // host frames per second
	ShowStats bool `yaml:"show_stats"`
}

// LogSettings defines logger output.
type LogSettings struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty means stderr
}

// StorageSettings defines where session history is kept.
type StorageSettings struct {
	Path string `yaml:"path"`
}

// SSHSettings defines the serve command.
type SSHSettings struct {
	Address     string        `yaml:"address"`
	HostKey     string        `yaml:"host_key"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// ScriptSettings defines where user scripts are looked up.
type ScriptSettings struct {
	Dir string `yaml:"dir"`
}

// FaultMode is the script error escalation strategy.
type FaultMode string

const (
	FaultAbort     FaultMode = "abort"
	FaultPropagate FaultMode = "propagate"
)

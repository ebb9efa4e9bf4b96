// luaframe hosts 2D scripts in the terminal: it embeds a Lua runtime,
// installs the drawing modules and drives the script's lifecycle.
//
// Usage:
//
//	luaframe run <script>        - Run a script or demo
//	luaframe menu [dir]          - Pick a script interactively
//	luaframe check <script>      - Run a script headless for N frames
//	luaframe serve <script|dir>  - Serve scripts over SSH
//	luaframe modules             - List the installed modules
//	luaframe sessions [script]   - Show session history
//
// Global flags:
//
//	--config <path>        - Host config YAML
//	--logic-fps <rate>     - Logic update rate
//	--viewport-fps <rate>  - Viewport update rate
//	--db <path>            - Session history database
//	--log-level <level>    - debug, info, warn, error
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/luaframe/internal/config"
	"github.com/vovakirdan/luaframe/internal/game"
	"github.com/vovakirdan/luaframe/internal/storage"
)

var (
	// Global flags
	flagConfig      string
	flagLogicFPS    int
	flagViewportFPS int
	flagDBPath      string
	flagLogLevel    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "luaframe",
	Short: "luaframe - run 2D Lua scripts in your terminal",
	Long: `luaframe embeds a Lua runtime with a set of 2D drawing modules and
drives a script through its lifecycle: init, fixed-step updates, drawing,
input, pause and resume.

Available commands:
  run       - Run a script or an embedded demo
  menu      - Interactive script picker
  check     - Run a script headless and report its statistics
  serve     - Start SSH server hosting scripts
  modules   - List the modules scripts can require
  sessions  - View session history

Examples:
  luaframe run bounce
  luaframe run ./game/main.lua --logic-fps 60
  luaframe menu ./scripts
  luaframe check ./game/main.lua --frames 300
  luaframe serve fireworks`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to host config YAML")
	rootCmd.PersistentFlags().IntVar(&flagLogicFPS, "logic-fps", 0, "Logic update rate (0 = from config)")
	rootCmd.PersistentFlags().IntVar(&flagViewportFPS, "viewport-fps", 0, "Viewport update rate (0 = from config)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to session history database (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(modulesCmd)
	rootCmd.AddCommand(sessionsCmd)
}

// loadConfig loads the host config and applies the global flag overrides.
func loadConfig() (config.HostConfig, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagLogicFPS != 0 {
		cfg.LogicFPS = flagLogicFPS
	}
	if flagViewportFPS != 0 {
		cfg.ViewportFPS = flagViewportFPS
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, cfg.Validate()
}

// newLogger creates the process logger. Interactive commands own the
// terminal, so when no log file is configured they log to
// ~/.luaframe/luaframe.log instead of stderr.
func newLogger(cfg config.HostConfig, interactive bool) (*log.Logger, func(), error) {
	path := cfg.Log.File
	if path == "" && interactive {
		path = "~/.luaframe/luaframe.log"
	}

	opts := log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           cfg.LogLevel(),
		Prefix:          "luaframe",
	}
	if path == "" {
		return log.NewWithOptions(os.Stderr, opts), func() {}, nil
	}

	path, err := config.ExpandPath(path)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}
	opts.TimeFormat = time.DateTime
	return log.NewWithOptions(f, opts), func() { f.Close() }, nil
}

// sessionConfig builds the base session config from the host config.
func sessionConfig(cfg config.HostConfig, logger *log.Logger) game.Config {
	sc := game.Config{
		LogicFPS:    cfg.LogicFPS,
		ViewportFPS: cfg.ViewportFPS,
		OS:          cfg.OS,
		Version:     cfg.Version,
		Seed:        uint64(time.Now().UnixNano()),
		Logger:      logger,
		Fault:       game.AbortFault(logger),
	}
	if cfg.Fault == config.FaultPropagate {
		sc.Fault = game.PropagateFault
	}
	return sc
}

// openStore opens session history; failure only disables history.
func openStore(cfg config.HostConfig, logger *log.Logger) *storage.Store {
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		logger.Warn("session history disabled", "err", err)
		return nil
	}
	return store
}

// terminalSize returns the terminal size, or 80x24 when stdout is not a terminal.
func terminalSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w, h
	}
	return game.DefaultWidth, game.DefaultHeight
}

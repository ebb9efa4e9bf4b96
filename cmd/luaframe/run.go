package main

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/luaframe/internal/config"
	"github.com/vovakirdan/luaframe/internal/game"
	"github.com/vovakirdan/luaframe/internal/platform/tui"
	"github.com/vovakirdan/luaframe/internal/scripts"
	"github.com/vovakirdan/luaframe/internal/storage"
)

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Run a script",
	Long: `Run a script file, or an embedded demo by name.

Controls:
  P          - Pause/resume
  Ctrl+T     - Toggle the status line
  Ctrl+S     - Save a screenshot to ~/.luaframe/screenshots
  F1         - Help
  Q/Ctrl+C   - Quit
  Mouse      - Touches and gestures
  Other keys - Sent to the script as messages

Examples:
  luaframe run bounce
  luaframe run ./game/main.lua
  luaframe run ./game/main.lua --logic-fps 60 --viewport-fps 30`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func runRun(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	script, err := scripts.Resolve(args[0])
	if err != nil {
		return err
	}

	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	return runScript(script, cfg, logger, store)
}

// runScript hosts one script in the terminal. Under the abort strategy the
// session only propagates inside the UI so the terminal is restored before
// the process exits.
func runScript(script scripts.Script, cfg config.HostConfig, logger *log.Logger, store *storage.Store) error {
	width, height := terminalSize()
	sc := sessionConfig(cfg, logger)
	abort := cfg.Fault == config.FaultAbort
	sc.Fault = game.PropagateFault

	err := tui.Run(tui.Options{
		Script:      script,
		Session:     sc,
		TickRate:    cfg.Host.TickRate,
		ShowStats:   cfg.Host.ShowStats,
		Width:       width,
		Height:      height,
		Store:       store,
		ExitOnFault: abort,
	})

	var serr *game.ScriptError
	if abort && errors.As(err, &serr) {
		game.AbortFault(log.Default())(serr)
	}
	return err
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/luaframe/internal/config"
	"github.com/vovakirdan/luaframe/internal/platform/tui"
	"github.com/vovakirdan/luaframe/internal/scripts"
)

var menuCmd = &cobra.Command{
	Use:   "menu [dir]",
	Short: "Pick a script from a menu",
	Long: `Show the embedded demos and the *.lua scripts of a directory, run the
selected one and come back to the menu when it ends.

The directory defaults to scripts.dir from the config.

Controls:
  Up/Down    - Navigate
  Enter      - Run
  Tab        - Session history
  Q          - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMenu,
}

func runMenu(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	dir := cfg.Scripts.Dir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir != "" {
		if dir, err = config.ExpandPath(dir); err != nil {
			return err
		}
	}
	items, err := scripts.List(dir)
	if err != nil {
		return err
	}

	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	width, height := terminalSize()
	for {
		result, err := tui.RunMenu(items, store, width, height)
		if err != nil {
			return err
		}
		if result.Width > 0 {
			width, height = result.Width, result.Height
		}

		switch {
		case result.Quit:
			return nil

		case result.WantsHistory:
			goBack, err := tui.RunHistory(items, store, width, height)
			if err != nil {
				return err
			}
			if !goBack {
				return nil
			}

		case result.Script != nil:
			if err := runScript(*result.Script, cfg, logger, store); err != nil {
				// a propagated fault returns to the menu
				logger.Error("script ended with error", "script", result.Script.Name, "err", err)
			}
		}
	}
}

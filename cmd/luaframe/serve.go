package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/luaframe/internal/config"
	"github.com/vovakirdan/luaframe/internal/platform/tui"
	"github.com/vovakirdan/luaframe/internal/scripts"
)

var (
	flagSSHAddr string
	flagHostKey string
)

var serveCmd = &cobra.Command{
	Use:   "serve [script|dir]",
	Short: "Start the SSH server",
	Long: `Start an SSH server that runs scripts for every connection.

Given a script (or demo name), each connection runs it directly. Given a
directory, or nothing, each connection gets the script menu. A script
fault ends only the connection's session; the server keeps running.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, uses ssh.host_key from the config, generating it if missing

Examples:
  luaframe serve                       # Menu of demos and scripts.dir
  luaframe serve fireworks             # Every connection runs the demo
  luaframe serve ./scripts --ssh :2222

Users can connect with:
  ssh localhost -p 2323`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (default from config)")
}

func runServe(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	if flagSSHAddr != "" {
		cfg.SSH.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.SSH.HostKey = flagHostKey
	}
	hostKey, err := config.ExpandPath(cfg.SSH.HostKey)
	if err != nil {
		return err
	}

	items, err := serveScripts(cfg, args)
	if err != nil {
		return err
	}

	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	server, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:     cfg.SSH.Address,
		HostKeyPath: hostKey,
		IdleTimeout: cfg.SSH.IdleTimeout,
		Scripts:     items,
		Session:     sessionConfig(cfg, logger),
		TickRate:    cfg.Host.TickRate,
		ShowStats:   cfg.Host.ShowStats,
		Store:       store,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("cannot create server: %w", err)
	}

	fmt.Printf("Starting luaframe SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")
	return server.ListenAndServe()
}

// serveScripts resolves the argument to one script, or lists a directory.
func serveScripts(cfg config.HostConfig, args []string) ([]scripts.Script, error) {
	dir := cfg.Scripts.Dir
	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
			dir = args[0]
		} else {
			s, err := scripts.Resolve(args[0])
			if err != nil {
				return nil, err
			}
			return []scripts.Script{s}, nil
		}
	}
	if dir != "" {
		var err error
		if dir, err = config.ExpandPath(dir); err != nil {
			return nil, err
		}
	}
	return scripts.List(dir)
}

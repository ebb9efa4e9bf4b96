package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/luaframe/internal/scripts"
	"github.com/vovakirdan/luaframe/internal/storage"
)

var (
	flagLimit int
	flagClear bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions [script]",
	Short: "Show session history",
	Long: `Display the most recent sessions, across all scripts or for one script.

Examples:
  luaframe sessions
  luaframe sessions bounce
  luaframe sessions ./game/main.lua --limit 50
  luaframe sessions bounce --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSessions,
}

func init() {
	sessionsCmd.Flags().IntVar(&flagLimit, "limit", 20, "Number of sessions to show")
	sessionsCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the listed history instead of showing it")
}

func runSessions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("cannot open session history: %w", err)
	}
	defer store.Close()

	scriptID := ""
	if len(args) == 1 {
		s, err := scripts.Resolve(args[0])
		if err != nil {
			return err
		}
		scriptID = s.ID()
	}

	out := cmd.OutOrStdout()
	if flagClear {
		if err := store.ClearSessions(scriptID); err != nil {
			return err
		}
		fmt.Fprintln(out, "Session history cleared.")
		return nil
	}

	var recs []storage.SessionRecord
	if scriptID == "" {
		recs, err = store.RecentSessions(flagLimit)
	} else {
		recs, err = store.SessionsForScript(scriptID, flagLimit)
	}
	if err != nil {
		return err
	}

	if scriptID != "" {
		st, err := store.Stats(scriptID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Sessions - %s\n", scriptID)
		fmt.Fprintf(out, "%d runs, %d faults, %s total\n\n", st.Runs, st.Faults, st.TotalTime.Round(time.Second))
	} else {
		fmt.Fprintln(out, "Recent sessions")
		fmt.Fprintln(out)
	}

	if len(recs) == 0 {
		fmt.Fprintln(out, "No sessions recorded yet.")
		return nil
	}

	fmt.Fprintf(out, "  %-18s  %-16s  %8s  %7s  %6s  %s\n", "Script", "Started", "Time", "Updates", "FPS", "End")
	fmt.Fprintf(out, "  %-18s  %-16s  %8s  %7s  %6s  %s\n", "------", "-------", "----", "-------", "---", "---")
	for _, r := range recs {
		end := r.EndReason
		if r.EndReason == storage.EndFault {
			msg, _, _ := strings.Cut(r.FaultMessage, "\n")
			end = fmt.Sprintf("%s %s: %s", r.EndReason, r.FaultKind, msg)
		}
		fmt.Fprintf(out, "  %-18s  %-16s  %8s  %7d  %6.1f  %s\n",
			shortName(r.Script),
			r.StartedAt.Format("2006-01-02 15:04"),
			r.Duration.Round(100*time.Millisecond),
			r.UpdateCount,
			r.LastFPS,
			end,
		)
	}
	return nil
}

func shortName(id string) string {
	if name, ok := strings.CutPrefix(id, "demo:"); ok {
		return name
	}
	return filepath.Base(id)
}

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/luaframe/internal/core"
	"github.com/vovakirdan/luaframe/internal/game"
	"github.com/vovakirdan/luaframe/internal/scripts"
	"github.com/vovakirdan/luaframe/internal/storage"
)

var (
	flagFrames     int
	flagDT         float64
	flagDumpScreen bool
)

var checkCmd = &cobra.Command{
	Use:   "check <script>",
	Short: "Run a script headless",
	Long: `Run a script without a terminal UI: start it, then call update and draw
for a fixed number of frames with a fixed time step. Script errors end the
run with a non-zero exit status instead of aborting the process.

Examples:
  luaframe check bounce
  luaframe check ./game/main.lua --frames 600 --dt 0.016
  luaframe check ./game/main.lua --frames 1 --screen`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().IntVar(&flagFrames, "frames", 60, "Number of frames to run")
	checkCmd.Flags().Float64Var(&flagDT, "dt", 1.0/30, "Seconds per frame")
	checkCmd.Flags().BoolVar(&flagDumpScreen, "screen", false, "Print the final screen")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	script, err := scripts.Resolve(args[0])
	if err != nil {
		return err
	}

	sc := sessionConfig(cfg, logger)
	sc.Fault = game.PropagateFault
	sc.Screen = core.NewScreen(game.DefaultWidth, game.DefaultHeight)
	sc.Assets = script.Assets()

	rec, sess, runErr := check(script, sc)
	if store := openStore(cfg, logger); store != nil {
		if _, err := store.SaveSession(rec); err != nil {
			logger.Warn("could not save session", "err", err)
		}
		store.Close()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "script:   %s\n", script.Name)
	fmt.Fprintf(out, "frames:   %d (dt %.4fs)\n", flagFrames, flagDT)
	fmt.Fprintf(out, "updates:  %d\n", rec.UpdateCount)
	fmt.Fprintf(out, "fps:      %.1f\n", rec.LastFPS)
	fmt.Fprintf(out, "draw:     %d calls, %d objects\n", rec.DrawCalls, rec.Objects)
	if sess != nil && flagDumpScreen {
		fmt.Fprintln(out)
		fmt.Fprintln(out, sess.Screen().String())
	}

	if runErr != nil {
		return fmt.Errorf("check failed: %w", runErr)
	}
	return nil
}

// check runs the script for flagFrames frames and summarizes the run.
func check(script scripts.Script, sc game.Config) (storage.SessionRecord, *game.Session, error) {
	rec := storage.SessionRecord{Script: script.ID(), EndReason: storage.EndFrames}

	sess, err := game.New(sc)
	if err != nil {
		return fault(rec, err), nil, err
	}
	defer sess.Close()

	err = func() error {
		src, err := script.Open()
		if err != nil {
			return err
		}
		defer src.Close()
		if err := sess.LoadScript(script.Name, src); err != nil {
			return err
		}
		if err := sess.Start(); err != nil {
			return err
		}
		for i := 0; i < flagFrames; i++ {
			if err := sess.Update(float32(flagDT)); err != nil {
				return err
			}
			if err := sess.Draw(); err != nil {
				return err
			}
		}
		return nil
	}()

	st := sess.Stats()
	rec.UpdateCount = st.UpdateCount
	rec.LastFPS = float64(st.CurFPS)
	rec.DrawCalls = st.DrawCalls
	rec.Objects = st.Objects
	rec.Duration = time.Duration(float64(flagFrames) * flagDT * float64(time.Second))
	if err != nil {
		return fault(rec, err), sess, err
	}
	return rec, sess, nil
}

func fault(rec storage.SessionRecord, err error) storage.SessionRecord {
	rec.EndReason = storage.EndFault
	rec.FaultMessage = err.Error()
	var serr *game.ScriptError
	if errors.As(err, &serr) {
		rec.FaultKind = serr.Kind
		rec.FaultMessage = serr.Message
	}
	return rec
}

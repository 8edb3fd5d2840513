package main

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gridsheet/gridsheet/internal/cmdlog"
	"github.com/gridsheet/gridsheet/internal/loader"
	"github.com/gridsheet/gridsheet/internal/tui"
)

var (
	replayWait   float64
	replayOutput string
)

var replayCmd = &cobra.Command{
	Use:   "replay <cmdlog.tsv> <file>...",
	Short: "Replay a recorded command log against data files",
	Long: `Replay re-executes a saved command log against freshly loaded data
files, without the interactive interface. Rows and columns are resolved
by identity (row key, column name), so the log survives reordered or
edited data.

With --output, the resulting top sheet is saved as JSON when the replay
completes.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().Float64Var(&replayWait, "wait", 0, "Seconds to wait between replayed commands")
	replayCmd.Flags().StringVar(&replayOutput, "output", "", "Save the resulting sheet as JSON to this path")
}

func runReplay(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	if replayWait > 0 {
		opts.SetValue("replay_wait", replayWait)
	}
	// a headless replay should not re-log the commands it replays
	opts.SetValue("cmdlog_histfile", "")

	log, err := cmdlog.ReadFile(args[0])
	if err != nil {
		return err
	}

	sess := tui.NewSession(opts)
	if err := openAll(sess, args[1:], opts); err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stderr.Fd()))

	var sp *spinner.Spinner
	if interactive {
		sp = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		sp.Suffix = fmt.Sprintf(" replaying %d commands", log.Len())
		sp.Start()
		sess.SetStatusSink(func(msg string) {
			sp.Suffix = " " + msg
		})
	} else {
		sess.SetStatusSink(func(msg string) {
			fmt.Fprintln(os.Stderr, msg)
		})
	}

	replayErr := sess.Engine.ReplaySync(log)

	if sp != nil {
		sp.Stop()
	}

	if replayErr != nil {
		color.Red("replay failed: %v", replayErr)
		return replayErr
	}
	color.Green("replayed %d commands from %s", log.Len(), args[0])

	if replayOutput != "" {
		top := sess.Sheets.Top()
		if top == nil {
			return fmt.Errorf("no sheet to save")
		}
		if err := loader.SaveJSON(replayOutput, top); err != nil {
			return err
		}
		color.Green("saved %s (%d rows)", replayOutput, top.NRows())
	}
	return nil
}

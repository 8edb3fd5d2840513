// Package main provides the CLI entry point for gridsheet.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gridsheet/gridsheet/internal/cmdlog"
	"github.com/gridsheet/gridsheet/internal/loader"
	"github.com/gridsheet/gridsheet/internal/options"
	"github.com/gridsheet/gridsheet/internal/tui"
)

var (
	configFile string
	themeFlag  string
	histfile   string
	optionSets []string
	replayFile string
)

var rootCmd = &cobra.Command{
	Use:   "gridsheet <file>...",
	Short: "Terminal tabular data browser",
	Long: `Gridsheet opens tabular data files in a terminal grid browser.

Navigate with the arrow keys, page with PgUp/PgDn, and jump with
g-prefixed movements. Columns can be marked as key columns (!), hidden
(-), and renamed (^). Rows can be selected (s/u/t) and cells edited (e).

Every modifying command is recorded in a command log (Shift+D to view,
Ctrl+S to save) which can be replayed later with 'gridsheet replay'.

CONFIGURATION FILE

Gridsheet reads .gridsheet/config.toml from the working directory. Use
--config to point at a different file. Options can also be set per
invocation with -o name=value.`,
	Args:    cobra.MinimumNArgs(1),
	Version: "0.1.0",
	RunE:    runBrowse,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file (default: .gridsheet/config.toml)")
	rootCmd.PersistentFlags().StringVar(&themeFlag, "theme", "auto", "Colour theme: auto, dark, light")
	rootCmd.PersistentFlags().StringVar(&histfile, "histfile", "", "Append every logged command to this file")
	rootCmd.PersistentFlags().StringArrayVarP(&optionSets, "option", "o", nil, "Set an option (name=value, repeatable)")
	rootCmd.Flags().StringVar(&replayFile, "replay", "", "Replay a command log file after opening")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildOptions assembles the option store from defaults, the config file,
// and -o flags, in that precedence order.
func buildOptions() (*options.Store, error) {
	opts := options.New()

	var fileConfig *options.FileConfig
	var err error
	if configFile != "" {
		fileConfig, err = options.LoadFileConfigFrom(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configFile, err)
		}
		if fileConfig == nil {
			return nil, fmt.Errorf("config file not found: %s", configFile)
		}
	} else {
		fileConfig, err = options.LoadFileConfig(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	if fileConfig != nil {
		if unknown := fileConfig.Apply(opts); len(unknown) > 0 {
			fmt.Fprintf(os.Stderr, "Warning: unknown options in config file: %s\n", strings.Join(unknown, ", "))
		}
		if themeFlag == "auto" && fileConfig.Theme != "" {
			themeFlag = fileConfig.Theme
		}
	}

	if histfile != "" {
		opts.SetValue("cmdlog_histfile", histfile)
	}

	for _, set := range optionSets {
		name, value, ok := strings.Cut(set, "=")
		if !ok {
			return nil, fmt.Errorf("invalid -o %q, expected name=value", set)
		}
		if err := opts.Set(strings.TrimSpace(name), strings.TrimSpace(value)); err != nil {
			return nil, err
		}
	}

	if !tui.ValidTheme(themeFlag) {
		return nil, fmt.Errorf("invalid theme %q, valid options: auto, dark, light", themeFlag)
	}
	tui.ApplyTheme(tui.ResolveTheme(tui.Theme(themeFlag)), opts)

	return opts, nil
}

// openAll loads every file argument into the session, first file on top.
func openAll(sess *tui.Session, paths []string, opts *options.Store) error {
	reg := loader.NewRegistry()
	for i := len(paths) - 1; i >= 0; i-- {
		s, err := reg.Open(paths[i], opts)
		if err != nil {
			return err
		}
		sess.Open(s)
	}
	return nil
}

func runBrowse(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}

	sess := tui.NewSession(opts)
	if err := openAll(sess, args, opts); err != nil {
		return err
	}

	var log *cmdlog.Log
	if replayFile != "" {
		log, err = cmdlog.ReadFile(replayFile)
		if err != nil {
			return err
		}
	}

	return tui.New(sess, log).Run()
}

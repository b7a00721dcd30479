// Package main provides the tweener CLI: key tweening on YAML scene files
// with a persistent undo journal.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ivlev/tweener/internal/config"
)

// Version is the current tweener CLI version
var Version = "0.3.0"

var (
	configPath  string
	journalFlag string
	verboseFlag bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:     "tweener",
	Short:   "Blend animation keys toward their neighbours",
	Long:    `tweener creates inbetweens by blending selected keys toward the adjacent keys on their curves, or toward the attribute default for end keys. Every gesture is undoable as one step.`,
	Version: Version,

	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if journalFlag != "" {
			cfg.JournalPath = journalFlag
		}
		if cmd.Flags().Changed("verbose") {
			cfg.Verbose = verboseFlag
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().StringVar(&journalFlag, "journal", "", "Undo journal database")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Report skipped curves")

	rootCmd.AddCommand(tweenCmd, undoCmd, redoCmd, logCmd, shapesCmd, sampleCmd, plotCmd, sessionCmd)
}

// engineLogger returns the logger handed to the tween engine.
func engineLogger(w io.Writer) *log.Logger {
	if cfg == nil || !cfg.Verbose {
		return nil
	}
	return log.New(w, "", 0)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[-] %v\n", err)
		os.Exit(1)
	}
}

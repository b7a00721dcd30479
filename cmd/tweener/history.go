package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ivlev/tweener/internal/config"
	"github.com/ivlev/tweener/internal/history"
	"github.com/ivlev/tweener/internal/scene"
	"github.com/ivlev/tweener/internal/system"
)

var (
	historyScene string
	logLimit     int
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo the last tween on a scene",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUndo(cmd.OutOrStdout(), cfg, historyScene, false)
	},
}

var redoCmd = &cobra.Command{
	Use:   "redo",
	Short: "Redo the last undone tween on a scene",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUndo(cmd.OutOrStdout(), cfg, historyScene, true)
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "List journaled tweens of a scene",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLog(cmd.OutOrStdout(), cfg, historyScene, logLimit)
	},
}

func init() {
	for _, c := range []*cobra.Command{undoCmd, redoCmd, logCmd} {
		c.Flags().StringVarP(&historyScene, "scene", "s", "", "Scene file")
		c.MarkFlagRequired("scene")
	}
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "Number of entries to show (0 = all)")
}

func runUndo(out io.Writer, c *config.Config, path string, redo bool) error {
	path, err := system.ResolveScene(path)
	if err != nil {
		return err
	}
	sc, err := scene.Load(path)
	if err != nil {
		return err
	}
	key, err := sceneKey(path)
	if err != nil {
		return err
	}
	j, err := history.Open(c.JournalPath)
	if err != nil {
		return err
	}
	defer j.Close()

	var rec *history.Record
	verb := "Undid"
	if redo {
		verb = "Redid"
		rec, err = j.Redo(key, sc, saveScene(sc, path))
	} else {
		rec, err = j.Undo(key, sc, saveScene(sc, path))
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "[+] %s %s: %d keys (%s, factor %g)\n", verb, shortID(rec.ID), len(rec.Entries), rec.Shape, rec.Factor)
	return nil
}

func runLog(out io.Writer, c *config.Config, path string, limit int) error {
	path, err := system.ResolveScene(path)
	if err != nil {
		return err
	}
	key, err := sceneKey(path)
	if err != nil {
		return err
	}
	j, err := history.Open(c.JournalPath)
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.List(key, limit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(out, "[*] No tweens journaled for this scene")
		return nil
	}
	for _, r := range recs {
		state := "live"
		if r.Undone {
			state = "undone"
		}
		fmt.Fprintf(out, "%s  %s  %-6s  %-11s factor %-6g %d keys\n",
			shortID(r.ID), r.CreatedAt.Format("2006-01-02 15:04:05"), state, r.Shape, r.Factor, len(r.Entries))
	}
	return nil
}

package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ivlev/tweener/internal/changes"
	"github.com/ivlev/tweener/internal/config"
	"github.com/ivlev/tweener/internal/history"
	"github.com/ivlev/tweener/internal/scene"
	"github.com/ivlev/tweener/internal/system"
	"github.com/ivlev/tweener/internal/tween"
)

type tweenOptions struct {
	Scene        string
	Factor       float64
	Drags        []float64
	Shape        string
	Curves       []string
	NoChannelBox bool
	DryRun       bool
}

var tweenOpts tweenOptions

var tweenCmd = &cobra.Command{
	Use:   "tween",
	Short: "Tween the selected keys of a scene",
	Long: `Runs one press/drag/release gesture on the scene: every --drag factor is
applied in order, then --factor. The scene is saved and the gesture is
recorded in the undo journal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("shape") {
			tweenOpts.Shape = cfg.Shape
		}
		return runTween(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, tweenOpts)
	},
}

func init() {
	f := tweenCmd.Flags()
	f.StringVarP(&tweenOpts.Scene, "scene", "s", "", "Scene file, or a directory to use its newest scene")
	f.Float64VarP(&tweenOpts.Factor, "factor", "t", 0.5, "Final blend factor (0 = previous key, 1 = next key)")
	f.Float64SliceVar(&tweenOpts.Drags, "drag", nil, "Intermediate drag factors applied before --factor")
	f.StringVar(&tweenOpts.Shape, "shape", "", "Interpolation shape (see 'tweener shapes')")
	f.StringSliceVar(&tweenOpts.Curves, "curves", nil, "Only curves whose name or node/attribute matches these patterns")
	f.BoolVar(&tweenOpts.NoChannelBox, "no-channel-box", false, "Ignore the channel box attribute filter")
	f.BoolVar(&tweenOpts.DryRun, "dry-run", false, "Print the new values without saving")
	tweenCmd.MarkFlagRequired("scene")
}

// openScene loads a scene and applies the selection settings.
func openScene(path string, c *config.Config, patterns []string, noChannelBox bool) (*scene.Scene, error) {
	sc, err := scene.Load(path)
	if err != nil {
		return nil, err
	}
	sc.UseChannelBox = c.ChannelBox && !noChannelBox
	sc.Tolerance = c.TimeTolerance
	if err := sc.SetFilter(patterns); err != nil {
		return nil, err
	}
	return sc, nil
}

func runTween(out, errOut io.Writer, c *config.Config, o tweenOptions) error {
	path, err := system.ResolveScene(o.Scene)
	if err != nil {
		return err
	}
	o.Scene = path
	sc, err := openScene(o.Scene, c, o.Curves, o.NoChannelBox)
	if err != nil {
		return err
	}
	before, err := sc.Digest()
	if err != nil {
		return err
	}

	opts := c.EngineOptions()
	opts.Logger = engineLogger(errOut)
	eng := tween.NewEngine(sc, opts)

	sess, err := eng.PressSelection(sc, sc, o.Shape)
	if errors.Is(err, tween.ErrNoTweenableKeys) {
		fmt.Fprintln(out, "[!] Nothing to tween: no tweenable keys selected")
		return nil
	}
	if err != nil {
		return err
	}

	for _, f := range append(append([]float64(nil), o.Drags...), o.Factor) {
		if err := eng.Drag(sess, f, ""); err != nil {
			fmt.Fprintf(errOut, "[!] %v\n", err)
		}
	}
	cache, err := eng.Release(sess)
	if err != nil {
		return err
	}

	printEntries(out, cache.Entries())
	if o.DryRun {
		return nil
	}

	after, err := sc.Digest()
	if err != nil {
		return err
	}
	key, err := sceneKey(o.Scene)
	if err != nil {
		return err
	}

	j, err := history.Open(c.JournalPath)
	if err != nil {
		return err
	}
	defer j.Close()

	// the scene is saved inside the journal transaction
	id, err := j.Append(history.Record{
		ID:      sess.ID().String(),
		Scene:   key,
		Shape:   sess.Shape(),
		Factor:  sess.Factor(),
		Before:  before,
		After:   after,
		Entries: cache.Entries(),
	}, saveScene(sc, o.Scene))
	if err != nil {
		return fmt.Errorf("journaling: %w", err)
	}
	fmt.Fprintf(out, "[+] Tweened %d keys (%s, factor %g), entry %s\n", cache.Len(), sess.Shape(), sess.Factor(), shortID(id))
	return nil
}

func saveScene(sc *scene.Scene, path string) history.Commit {
	return func() error {
		if err := sc.Save(path); err != nil {
			return fmt.Errorf("saving scene: %w", err)
		}
		return nil
	}
}

func printEntries(out io.Writer, entries []changes.Entry) {
	for _, e := range entries {
		fmt.Fprintf(out, "    %s[%d]: %g -> %g\n", e.Curve, e.Key, e.Original, e.Final)
	}
}

// sceneKey identifies a scene in the journal.
func sceneKey(path string) (string, error) {
	return filepath.Abs(path)
}

// shortID safely truncates an ID string to 8 characters.
func shortID(s string) string {
	if len(s) >= 8 {
		return s[:8]
	}
	return s
}

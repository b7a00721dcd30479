package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ivlev/tweener/internal/config"
	"github.com/ivlev/tweener/internal/curve"
	"github.com/ivlev/tweener/internal/plot"
	"github.com/ivlev/tweener/internal/shape"
	"github.com/ivlev/tweener/internal/system"
	"github.com/ivlev/tweener/internal/tween"
)

var shapesCmd = &cobra.Command{
	Use:   "shapes",
	Short: "List interpolation shapes",
	RunE: func(cmd *cobra.Command, args []string) error {
		runShapes(cmd.OutOrStdout())
		return nil
	},
}

type sampleOptions struct {
	Scene      string
	Curve      string
	Start, End int
	Params     []float64
}

var sampleOpts sampleOptions

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Evaluate the Bezier segment between two keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSample(cmd.OutOrStdout(), sampleOpts)
	},
}

type plotOptions struct {
	Scene  string
	Out    string
	Factor float64
	Shape  string
	Tween  bool
}

var plotOpts plotOptions

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render scene curves to PNG",
	Long: `Renders one PNG per tweenable curve. With --factor the current selection is
tweened in memory and drawn over the original curve; the scene is not saved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		plotOpts.Tween = cmd.Flags().Changed("factor")
		if !cmd.Flags().Changed("shape") {
			plotOpts.Shape = cfg.Shape
		}
		return runPlot(cmd.Context(), cmd.OutOrStdout(), cfg, plotOpts)
	},
}

func init() {
	f := sampleCmd.Flags()
	f.StringVarP(&sampleOpts.Scene, "scene", "s", "", "Scene file")
	f.StringVarP(&sampleOpts.Curve, "curve", "c", "", "Curve name")
	f.IntVar(&sampleOpts.Start, "start", 0, "Start key index")
	f.IntVar(&sampleOpts.End, "end", 1, "End key index")
	f.Float64SliceVar(&sampleOpts.Params, "at", []float64{0, 0.25, 0.5, 0.75, 1}, "Curve parameters to evaluate")
	sampleCmd.MarkFlagRequired("scene")
	sampleCmd.MarkFlagRequired("curve")

	f = plotCmd.Flags()
	f.StringVarP(&plotOpts.Scene, "scene", "s", "", "Scene file")
	f.StringVarP(&plotOpts.Out, "out", "o", "plots", "Output directory")
	f.Float64VarP(&plotOpts.Factor, "factor", "t", 0.5, "Tween the selection by this factor before plotting")
	f.StringVar(&plotOpts.Shape, "shape", "", "Interpolation shape for --factor")
	plotCmd.MarkFlagRequired("scene")
}

func runShapes(out io.Writer) {
	fmt.Fprintf(out, "%-12s %6s %6s %6s %6s %6s\n", "SHAPE", "0", "0.25", "0.5", "0.75", "1")
	for _, name := range shape.Names() {
		f := shape.Get(name)
		fmt.Fprintf(out, "%-12s %6.3f %6.3f %6.3f %6.3f %6.3f\n", name, f(0), f(0.25), f(0.5), f(0.75), f(1))
	}
}

func runSample(out io.Writer, o sampleOptions) error {
	path, err := system.ResolveScene(o.Scene)
	if err != nil {
		return err
	}
	sc, err := openScene(path, config.Default(), nil, false)
	if err != nil {
		return err
	}
	keys, err := sc.Samples(curve.ID(o.Curve))
	if err != nil {
		return err
	}
	seg, err := curve.BuildSegment(keys, o.Start, o.End)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "[*] %s %s\n", o.Curve, seg)
	for _, t := range o.Params {
		p := seg.Eval(t)
		fmt.Fprintf(out, "    t=%-6g time=%-10.4f value=%.4f\n", t, p.X, p.Y)
	}
	return nil
}

func runPlot(ctx context.Context, out io.Writer, c *config.Config, o plotOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	path, err := system.ResolveScene(o.Scene)
	if err != nil {
		return err
	}
	o.Scene = path
	sc, err := openScene(o.Scene, c, nil, false)
	if err != nil {
		return err
	}

	originals := make(map[curve.ID][]curve.Keyframe)
	ids := sc.CurveIDs()
	for _, id := range ids {
		cv, err := sc.Curve(id)
		if err != nil {
			return err
		}
		if cv.Kind.Tweenable() {
			originals[id] = cv.Keys
		}
	}

	tweened := make(map[curve.ID]bool)
	if o.Tween {
		eng := tween.NewEngine(sc, c.EngineOptions())
		sess, err := eng.PressSelection(sc, sc, o.Shape)
		if err != nil {
			return err
		}
		if err := eng.Drag(sess, o.Factor, ""); err != nil {
			return err
		}
		cache, err := eng.Release(sess)
		if err != nil {
			return err
		}
		for _, e := range cache.Entries() {
			tweened[e.Curve] = true
		}
	}

	if err := os.MkdirAll(o.Out, 0755); err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(o.Scene), filepath.Ext(o.Scene))

	var jobs []plot.Job
	for _, id := range ids {
		keys, ok := originals[id]
		if !ok {
			continue
		}
		series := []plot.Series{{Keys: keys, Color: plot.After}}
		if tweened[id] {
			now, err := sc.Samples(id)
			if err != nil {
				return err
			}
			series = []plot.Series{
				{Keys: keys, Color: plot.Before},
				{Keys: now, Color: plot.After},
			}
		}
		jobs = append(jobs, plot.Job{
			Path:   filepath.Join(o.Out, fmt.Sprintf("%s_%s.png", base, id)),
			Series: series,
		})
	}

	opts := plot.Options{Width: c.PlotWidth, Height: c.PlotHeight, Samples: c.PlotSamples}
	if err := plot.RenderAll(ctx, jobs, opts, c.Workers); err != nil {
		return err
	}
	fmt.Fprintf(out, "[+] Plotted %d curves to %s\n", len(jobs), o.Out)
	return nil
}

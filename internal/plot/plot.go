// Package plot rasterises animation curves to PNG so tweens can be checked
// by eye.
package plot

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/vector"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/tweener/internal/curve"
)

var (
	Background = color.RGBA{0x1e, 0x1e, 0x1e, 0xff}
	Grid       = color.RGBA{0x3a, 0x3a, 0x3a, 0xff}
	Before     = color.RGBA{0x80, 0x80, 0x80, 0xff}
	After      = color.RGBA{0xf0, 0x9a, 0x30, 0xff}
)

type Options struct {
	Width   int
	Height  int
	Samples int // points per segment
	Margin  int
	Stroke  float64
}

// Series is one curve drawn in one colour.
type Series struct {
	Keys  []curve.Keyframe
	Color color.Color
}

// Job renders a set of series into one file.
type Job struct {
	Path   string
	Series []Series
}

type viewport struct {
	minX, maxX float64
	minY, maxY float64
	w, h       float64
	margin     float64
}

func (v viewport) project(p curve.Point) (float32, float32) {
	x := v.margin + (p.X-v.minX)/(v.maxX-v.minX)*(v.w-2*v.margin)
	y := v.h - v.margin - (p.Y-v.minY)/(v.maxY-v.minY)*(v.h-2*v.margin)
	return float32(x), float32(y)
}

// Polyline samples keys into points along their Bezier segments.
func Polyline(keys []curve.Keyframe, samples int) []curve.Point {
	if len(keys) == 0 {
		return nil
	}
	if samples < 1 {
		samples = 1
	}
	pts := []curve.Point{keys[0].Position()}
	for i := 0; i < len(keys)-1; i++ {
		seg, err := curve.BuildSegment(keys, i, i+1)
		if err != nil {
			continue
		}
		for s := 1; s <= samples; s++ {
			pts = append(pts, seg.Eval(float64(s)/float64(samples)))
		}
	}
	return pts
}

// Render draws every series on a shared viewport.
func Render(series []Series, opts Options) *image.RGBA {
	opts = withDefaults(opts)
	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	fillBackground(img)
	renderInto(img, series, opts)
	return img
}

// fillBackground paints img with the background colour.
func fillBackground(img *image.RGBA) {
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
}

// renderInto draws onto a cleared img. opts must have defaults applied.
func renderInto(img *image.RGBA, series []Series, opts Options) {

	lines := make([][]curve.Point, len(series))
	for i, s := range series {
		lines[i] = Polyline(s.Keys, opts.Samples)
	}
	vp, ok := fit(lines, opts)
	if !ok {
		return
	}

	baseline := []curve.Point{{X: vp.minX, Y: 0}, {X: vp.maxX, Y: 0}}
	if vp.minY < 0 && vp.maxY > 0 {
		stroke(img, vp, baseline, 1, Grid)
	}
	for i, s := range series {
		stroke(img, vp, lines[i], opts.Stroke, s.Color)
		for _, k := range s.Keys {
			marker(img, vp, k.Position(), opts.Stroke*2.5, s.Color)
		}
	}
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RenderAll renders jobs on up to workers goroutines, reusing canvases
// between jobs. The first failure cancels the jobs not yet started.
func RenderAll(ctx context.Context, jobs []Job, opts Options, workers int) error {
	opts = withDefaults(opts)
	size := image.Pt(opts.Width, opts.Height)
	pool := newCanvasPool()
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for _, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img := pool.get(size)
			defer pool.put(img)
			renderInto(img, job.Series, opts)
			if err := WritePNG(job.Path, img); err != nil {
				return fmt.Errorf("plotting %s: %w", job.Path, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func withDefaults(o Options) Options {
	if o.Width <= 0 {
		o.Width = 960
	}
	if o.Height <= 0 {
		o.Height = 540
	}
	if o.Samples <= 0 {
		o.Samples = 32
	}
	if o.Margin <= 0 {
		o.Margin = 24
	}
	if o.Stroke <= 0 {
		o.Stroke = 1.5
	}
	return o
}

func fit(lines [][]curve.Point, o Options) (viewport, bool) {
	vp := viewport{
		minX: math.Inf(1), maxX: math.Inf(-1),
		minY: math.Inf(1), maxY: math.Inf(-1),
		w: float64(o.Width), h: float64(o.Height),
		margin: float64(o.Margin),
	}
	n := 0
	for _, pts := range lines {
		for _, p := range pts {
			vp.minX, vp.maxX = math.Min(vp.minX, p.X), math.Max(vp.maxX, p.X)
			vp.minY, vp.maxY = math.Min(vp.minY, p.Y), math.Max(vp.maxY, p.Y)
			n++
		}
	}
	if n == 0 {
		return vp, false
	}
	// a flat or single-key curve still needs a non-empty range
	if vp.maxX-vp.minX < 1e-9 {
		vp.minX, vp.maxX = vp.minX-1, vp.maxX+1
	}
	if vp.maxY-vp.minY < 1e-9 {
		vp.minY, vp.maxY = vp.minY-1, vp.maxY+1
	}
	return vp, true
}

// stroke fills one quad per polyline edge.
func stroke(dst draw.Image, vp viewport, pts []curve.Point, width float64, c color.Color) {
	if len(pts) < 2 {
		return
	}
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	half := float32(width / 2)
	for i := 0; i < len(pts)-1; i++ {
		ax, ay := vp.project(pts[i])
		bx, by := vp.project(pts[i+1])
		dx, dy := bx-ax, by-ay
		l := float32(math.Hypot(float64(dx), float64(dy)))
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*half, dx/l*half
		z.MoveTo(ax+nx, ay+ny)
		z.LineTo(bx+nx, by+ny)
		z.LineTo(bx-nx, by-ny)
		z.LineTo(ax-nx, ay-ny)
		z.ClosePath()
	}
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

func marker(dst draw.Image, vp viewport, p curve.Point, r float64, c color.Color) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	x, y := vp.project(p)
	rr := float32(r)
	z.MoveTo(x, y-rr)
	z.LineTo(x+rr, y)
	z.LineTo(x, y+rr)
	z.LineTo(x-rr, y)
	z.ClosePath()
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

package plot

import (
	"image"
	"sync"
)

// canvasPool hands out background-filled canvases and recycles them
// between plot jobs of the same size.
type canvasPool struct {
	mu    sync.Mutex
	sizes map[image.Point]*sync.Pool
}

func newCanvasPool() *canvasPool {
	return &canvasPool{sizes: make(map[image.Point]*sync.Pool)}
}

func (p *canvasPool) pool(size image.Point) *sync.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()
	sp, ok := p.sizes[size]
	if !ok {
		sp = &sync.Pool{New: func() any {
			return image.NewRGBA(image.Rectangle{Max: size})
		}}
		p.sizes[size] = sp
	}
	return sp
}

// get returns a size.X by size.Y canvas cleared to Background.
func (p *canvasPool) get(size image.Point) *image.RGBA {
	img := p.pool(size).Get().(*image.RGBA)
	fillBackground(img)
	return img
}

func (p *canvasPool) put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.pool(img.Rect.Size()).Put(img)
}

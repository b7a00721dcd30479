package plot

import (
	"image"
	"testing"
)

func TestCanvasPoolClearsRecycledCanvas(t *testing.T) {
	p := newCanvasPool()
	size := image.Pt(8, 4)

	img := p.get(size)
	if img.Bounds() != image.Rect(0, 0, 8, 4) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if img.RGBAAt(3, 2) != Background {
		t.Errorf("new canvas pixel = %v, want background", img.RGBAAt(3, 2))
	}
	img.SetRGBA(3, 2, After)
	p.put(img)
	p.put(nil)

	for i := 0; i < 3; i++ {
		got := p.get(size)
		if got.RGBAAt(3, 2) != Background {
			t.Fatalf("recycled canvas pixel = %v, want background", got.RGBAAt(3, 2))
		}
		p.put(got)
	}

	other := p.get(image.Pt(2, 2))
	if other.Bounds().Size() != image.Pt(2, 2) {
		t.Errorf("size = %v", other.Bounds().Size())
	}
}

package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/inamate/whiteboard/internal/document"
)

func newTestRasterizer(t *testing.T, w, h int) *Rasterizer {
	t.Helper()
	r, err := NewRasterizer(w, h, nil)
	if err != nil {
		t.Fatalf("NewRasterizer: %v", err)
	}
	return r
}

func rgbaAt(img image.Image, x, y int) [4]uint32 {
	r, g, b, a := img.At(x, y).RGBA()
	return [4]uint32{r >> 8, g >> 8, b >> 8, a >> 8}
}

func TestRasterizerSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"defaults", 0, -1, DefaultWidth, DefaultHeight},
		{"explicit", 320, 200, 320, 200},
		{"capped", 100000, 10, MaxDimension, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := newTestRasterizer(t, tt.w, tt.h).Size()
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Size() = %d×%d, want %d×%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestDrawEmptyBoard(t *testing.T) {
	img := newTestRasterizer(t, 64, 48).Draw(document.NewState())
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	want := [4]uint32{0xf8, 0xfa, 0xfc, 0xff}
	if got := rgbaAt(img, 10, 10); got != want {
		t.Errorf("background = %v, want %v", got, want)
	}
}

func TestDrawFilledRect(t *testing.T) {
	n := rectNode("a", 10, 10, 40, 40)
	n.Style.Fill = "#ff0000"

	tests := []struct {
		name   string
		vp     document.Viewport
		px, py int
	}{
		{"identity viewport", document.Viewport{Scale: 1}, 30, 30},
		{"zoomed", document.Viewport{Scale: 2}, 60, 60},
		{"panned", document.Viewport{X: 100, Y: 50, Scale: 1}, 130, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := stateWith(n)
			st.Viewport = tt.vp
			img := newTestRasterizer(t, 200, 200).Draw(st)
			if got := rgbaAt(img, tt.px, tt.py); got != [4]uint32{0xff, 0, 0, 0xff} {
				t.Errorf("pixel (%d,%d) = %v, want red", tt.px, tt.py, got)
			}
		})
	}
}

func TestDrawIsTotal(t *testing.T) {
	dangling := document.NewConnectorNode("c",
		document.AttachedEndpoint("missing", "n"),
		document.FreeEndpoint(document.Point{}),
	)
	empty := document.NewTextNode("t", "")
	empty.Size = document.Size{}

	st := document.NewSampleBoard()
	st.Nodes = append(st.Nodes, dangling, empty, rectNode("z", 5, 5, 0, 0))
	st.Selection = document.Selection{NodeIDs: []string{"c", "z"}, Box: &document.Rect{}}

	r := newTestRasterizer(t, 120, 90)
	r.Render(st)
	if r.Last() == nil {
		t.Fatal("Render did not keep an image")
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := newTestRasterizer(t, 80, 60).WritePNG(&buf, document.NewSampleBoard()); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if img.Bounds().Dx() != 80 || img.Bounds().Dy() != 60 {
		t.Errorf("bounds = %v", img.Bounds())
	}
}

func TestPaint(t *testing.T) {
	tests := []struct {
		hex     string
		opacity float64
		want    color.NRGBA
		ok      bool
	}{
		{"#ff0000", 1, color.NRGBA{R: 0xff, A: 0xff}, true},
		{"#fff", 0.5, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x80}, true},
		{"#000000", 3, color.NRGBA{A: 0xff}, true},
		{"", 1, color.NRGBA{}, false},
		{"none", 1, color.NRGBA{}, false},
		{"Transparent", 1, color.NRGBA{}, false},
		{"red", 1, color.NRGBA{}, false},
	}
	for _, tt := range tests {
		c, ok := paint(tt.hex, tt.opacity)
		if ok != tt.ok {
			t.Errorf("paint(%q) ok = %v, want %v", tt.hex, ok, tt.ok)
			continue
		}
		if ok && c != tt.want {
			t.Errorf("paint(%q, %v) = %v, want %v", tt.hex, tt.opacity, c, tt.want)
		}
	}
}

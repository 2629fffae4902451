package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/engine"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	DefaultWidth  = 1280
	DefaultHeight = 800
	MaxDimension  = 4096
)

// Background is the canvas color behind the board.
var Background = color.NRGBA{R: 0xf8, G: 0xfa, B: 0xfc, A: 0xff}

// Rasterizer draws boards into RGBA images. It is safe for concurrent use.
type Rasterizer struct {
	width, height int
	logger        *slog.Logger

	ttf *truetype.Font

	// drawMu serializes drawing; font faces are not safe for concurrent use.
	drawMu sync.Mutex
	faces  map[int]font.Face

	mu   sync.Mutex
	last image.Image
}

// NewRasterizer creates a rasterizer producing images of the given size.
// Non-positive dimensions fall back to the defaults; larger ones are capped
// at MaxDimension.
func NewRasterizer(width, height int, logger *slog.Logger) (*Rasterizer, error) {
	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Rasterizer{
		width:  clampDimension(width, DefaultWidth),
		height: clampDimension(height, DefaultHeight),
		logger: logger,
		ttf:    ttf,
		faces:  make(map[int]font.Face),
	}, nil
}

func clampDimension(v, def int) int {
	if v <= 0 {
		return def
	}
	return min(v, MaxDimension)
}

// Size returns the image size in pixels.
func (r *Rasterizer) Size() (width, height int) { return r.width, r.height }

// Render draws state and keeps the image for Last. It satisfies the board
// renderer contract.
func (r *Rasterizer) Render(state document.State) {
	img := r.Draw(state)
	r.mu.Lock()
	r.last = img
	r.mu.Unlock()
}

// Last returns the most recent image drawn by Render, or nil.
func (r *Rasterizer) Last() image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Draw rasterizes state into a new image.
func (r *Rasterizer) Draw(state document.State) image.Image {
	return r.draw(state).Image()
}

// WritePNG rasterizes state and writes it to w as PNG.
func (r *Rasterizer) WritePNG(w io.Writer, state document.State) error {
	return r.draw(state).EncodePNG(w)
}

func (r *Rasterizer) draw(state document.State) *gg.Context {
	r.drawMu.Lock()
	defer r.drawMu.Unlock()

	dc := gg.NewContext(r.width, r.height)
	dc.SetColor(Background)
	dc.Clear()

	vp := state.Viewport
	if vp.Scale <= 0 {
		vp.Scale = 1
	}
	view := engine.ViewportMatrix(vp)

	commands := CompileDrawCommands(state)
	r.logger.Debug("rasterizing board", "commands", len(commands), "width", r.width, "height", r.height)
	for _, cmd := range commands {
		m := view
		if len(cmd.Transform) == 6 {
			m = view.Multiply(engine.Matrix2D(cmd.Transform))
		}
		switch cmd.Op {
		case OpPath:
			r.drawPath(dc, cmd, m, vp.Scale)
		case OpText:
			r.drawText(dc, cmd, m)
		}
	}
	return dc
}

func (r *Rasterizer) drawPath(dc *gg.Context, cmd DrawCommand, m engine.Matrix2D, scale float64) {
	if !tracePath(dc, cmd.Path, m) {
		return
	}
	if c, ok := paint(cmd.Fill, cmd.Opacity); ok {
		dc.SetColor(c)
		if cmd.Stroke != "" {
			dc.FillPreserve()
		} else {
			dc.Fill()
		}
	}
	if c, ok := paint(cmd.Stroke, cmd.Opacity); ok && cmd.StrokeWidth > 0 {
		dc.SetColor(c)
		dc.SetLineWidth(cmd.StrokeWidth * scale)
		if len(cmd.Dash) > 0 {
			dash := make([]float64, len(cmd.Dash))
			for i, d := range cmd.Dash {
				dash[i] = d * scale
			}
			dc.SetDash(dash...)
		}
		dc.Stroke()
		dc.SetDash()
	}
	dc.ClearPath()
}

// tracePath feeds path commands to dc. It reports false when nothing was
// traced.
func tracePath(dc *gg.Context, path []PathCommand, m engine.Matrix2D) bool {
	traced := false
	for _, seg := range path {
		if len(seg) == 0 {
			continue
		}
		op, _ := seg[0].(string)
		args := make([]float64, 0, len(seg)-1)
		for _, v := range seg[1:] {
			args = append(args, toFloat64(v))
		}
		pt := func(i int) document.Point {
			return m.Apply(document.Point{X: args[i], Y: args[i+1]})
		}

		switch {
		case op == "M" && len(args) >= 2:
			p := pt(0)
			dc.MoveTo(p.X, p.Y)
			traced = true
		case op == "L" && len(args) >= 2:
			p := pt(0)
			dc.LineTo(p.X, p.Y)
			traced = true
		case op == "C" && len(args) >= 6:
			c1, c2, p := pt(0), pt(2), pt(4)
			dc.CubicTo(c1.X, c1.Y, c2.X, c2.Y, p.X, p.Y)
			traced = true
		case op == "Z":
			dc.ClosePath()
		}
	}
	return traced
}

func (r *Rasterizer) drawText(dc *gg.Context, cmd DrawCommand, m engine.Matrix2D) {
	if cmd.Box == nil || strings.TrimSpace(cmd.Text) == "" {
		return
	}
	c, ok := paint(cmd.Fill, cmd.Opacity)
	if !ok {
		return
	}
	scale := math.Hypot(m[0], m[1])
	angle := math.Atan2(m[1], m[0])
	center := m.Apply(cmd.Box.Center())

	dc.Push()
	defer dc.Pop()
	dc.SetFontFace(r.face(cmd.FontSize * scale))
	dc.SetColor(c)
	dc.Translate(center.X, center.Y)
	dc.Rotate(angle)
	dc.DrawStringWrapped(cmd.Text, 0, 0, 0.5, 0.5, cmd.Box.Width*scale, 1.2, gg.AlignCenter)
}

// face returns a cached font face for size, rounded to whole pixels.
func (r *Rasterizer) face(size float64) font.Face {
	px := max(1, int(math.Round(size)))
	if f, ok := r.faces[px]; ok {
		return f
	}
	f := truetype.NewFace(r.ttf, &truetype.Options{Size: float64(px), Hinting: font.HintingFull})
	r.faces[px] = f
	return f
}

// paint parses a hex color and applies opacity. Empty, "none" and
// "transparent" are not painted.
func paint(hex string, opacity float64) (color.Color, bool) {
	switch strings.ToLower(hex) {
	case "", "none", "transparent":
		return nil, false
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, false
	}
	r, g, b := c.RGB255()
	alpha := math.Max(0, math.Min(1, opacity))
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(alpha * 255))}, true
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

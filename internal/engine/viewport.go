package engine

import "github.com/inamate/whiteboard/internal/document"

// ZoomOptions tune wheel zoom. The zero value is not usable; start from
// DefaultZoomOptions.
type ZoomOptions struct {
	Step     float64 // scale change per unit of wheel delta
	MinScale float64
	MaxScale float64
}

func DefaultZoomOptions() ZoomOptions {
	return ZoomOptions{
		Step:     0.0015,
		MinScale: document.MinScale,
		MaxScale: document.MaxScale,
	}
}

// ScreenToWorld maps a screen point into world space.
func ScreenToWorld(vp document.Viewport, p document.Point) document.Point {
	return document.Point{
		X: (p.X - vp.X) / vp.Scale,
		Y: (p.Y - vp.Y) / vp.Scale,
	}
}

// WorldToScreen maps a world point into screen space.
func WorldToScreen(vp document.Viewport, p document.Point) document.Point {
	return document.Point{
		X: p.X*vp.Scale + vp.X,
		Y: p.Y*vp.Scale + vp.Y,
	}
}

// ClampScale limits scale to the allowed zoom range.
func ClampScale(scale, lo, hi float64) float64 {
	return min(hi, max(lo, scale))
}

// ZoomAt returns the viewport after a wheel step, keeping the world point
// under anchor fixed on screen.
func ZoomAt(vp document.Viewport, deltaY float64, anchor document.Point, opts ZoomOptions) document.Viewport {
	next := ClampScale(vp.Scale*(1-deltaY*opts.Step), opts.MinScale, opts.MaxScale)
	world := ScreenToWorld(vp, anchor)
	return document.Viewport{
		X:     anchor.X - world.X*next,
		Y:     anchor.Y - world.Y*next,
		Scale: next,
	}
}

// ViewportMatrix returns the world-to-screen transform for vp.
func ViewportMatrix(vp document.Viewport) Matrix2D {
	return Translate(vp.X, vp.Y).Multiply(Scale(vp.Scale, vp.Scale))
}

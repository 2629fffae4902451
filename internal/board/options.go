package board

import (
	"log/slog"

	"github.com/inamate/whiteboard/internal/engine"
)

// Options tune a Board. Zero fields take their defaults.
type Options struct {
	// MinSize is the smallest width or height a resize produces, in world units.
	MinSize float64
	// EndpointHitRadius is the screen-space radius for grabbing a connector end.
	EndpointHitRadius float64
	// AnchorSnapRadius is the screen-space radius for snapping to an anchor.
	AnchorSnapRadius float64
	// ClickThreshold is the screen-space marquee size below which a box
	// selection counts as a click.
	ClickThreshold float64
	Zoom           engine.ZoomOptions
	Logger         *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		MinSize:           engine.DefaultMinSize,
		EndpointHitRadius: 8,
		AnchorSnapRadius:  8,
		ClickThreshold:    3,
		Zoom:              engine.DefaultZoomOptions(),
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MinSize <= 0 {
		o.MinSize = def.MinSize
	}
	if o.EndpointHitRadius <= 0 {
		o.EndpointHitRadius = def.EndpointHitRadius
	}
	if o.AnchorSnapRadius <= 0 {
		o.AnchorSnapRadius = def.AnchorSnapRadius
	}
	if o.ClickThreshold <= 0 {
		o.ClickThreshold = def.ClickThreshold
	}
	if o.Zoom.Step <= 0 {
		o.Zoom.Step = def.Zoom.Step
	}
	if o.Zoom.MinScale <= 0 {
		o.Zoom.MinScale = def.Zoom.MinScale
	}
	if o.Zoom.MaxScale <= 0 {
		o.Zoom.MaxScale = def.Zoom.MaxScale
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

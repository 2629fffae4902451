package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/inamate/whiteboard/internal/board"
	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/engine"
	"github.com/pelletier/go-toml/v2"
)

// Tuning holds the interaction thresholds read from the tuning file.
//
//	[interaction]
//	min_size = 20
//	endpoint_hit_radius = 8
//	anchor_snap_radius = 8
//	click_threshold = 3
//
//	[zoom]
//	step = 0.0015
//	min_scale = 0.2
//	max_scale = 4
type Tuning struct {
	Interaction InteractionTuning `toml:"interaction"`
	Zoom        ZoomTuning        `toml:"zoom"`
}

type InteractionTuning struct {
	MinSize           float64 `toml:"min_size"`
	EndpointHitRadius float64 `toml:"endpoint_hit_radius"`
	AnchorSnapRadius  float64 `toml:"anchor_snap_radius"`
	ClickThreshold    float64 `toml:"click_threshold"`
}

type ZoomTuning struct {
	Step     float64 `toml:"step"`
	MinScale float64 `toml:"min_scale"`
	MaxScale float64 `toml:"max_scale"`
}

// DefaultTuning returns the built-in thresholds.
func DefaultTuning() Tuning {
	opts := board.DefaultOptions()
	return Tuning{
		Interaction: InteractionTuning{
			MinSize:           opts.MinSize,
			EndpointHitRadius: opts.EndpointHitRadius,
			AnchorSnapRadius:  opts.AnchorSnapRadius,
			ClickThreshold:    opts.ClickThreshold,
		},
		Zoom: ZoomTuning{
			Step:     opts.Zoom.Step,
			MinScale: opts.Zoom.MinScale,
			MaxScale: opts.Zoom.MaxScale,
		},
	}
}

// LoadTuning reads a tuning file. A missing file yields the defaults.
// Keys absent from the file keep their default values.
func LoadTuning(path string) (Tuning, error) {
	if path == "" {
		return DefaultTuning(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultTuning(), nil // File doesn't exist, not an error
		}
		return Tuning{}, fmt.Errorf("reading tuning file %s: %w", path, err)
	}
	return ParseTuning(path, bytes.NewReader(data))
}

// ParseTuning decodes TOML from r over the defaults. source names the input
// in errors.
func ParseTuning(source string, r io.Reader) (Tuning, error) {
	t := DefaultTuning()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&t); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			pe.Line, pe.Column = derr.Position()
		}
		return Tuning{}, pe
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, fmt.Errorf("%s: %w", source, err)
	}
	return t, nil
}

// Validate checks that thresholds are positive and the zoom range is usable.
func (t Tuning) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"interaction.min_size", t.Interaction.MinSize},
		{"interaction.endpoint_hit_radius", t.Interaction.EndpointHitRadius},
		{"interaction.anchor_snap_radius", t.Interaction.AnchorSnapRadius},
		{"interaction.click_threshold", t.Interaction.ClickThreshold},
		{"zoom.step", t.Zoom.Step},
		{"zoom.min_scale", t.Zoom.MinScale},
		{"zoom.max_scale", t.Zoom.MaxScale},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return fmt.Errorf("%s must be positive, got %v", c.name, c.value)
		}
	}
	if t.Zoom.MinScale > t.Zoom.MaxScale {
		return fmt.Errorf("zoom.min_scale %v exceeds zoom.max_scale %v", t.Zoom.MinScale, t.Zoom.MaxScale)
	}
	if t.Zoom.MinScale < document.MinScale || t.Zoom.MaxScale > document.MaxScale {
		return fmt.Errorf("zoom range [%v, %v] outside [%v, %v]",
			t.Zoom.MinScale, t.Zoom.MaxScale, document.MinScale, document.MaxScale)
	}
	return nil
}

// BoardOptions converts the tuning into options for a board.
func (t Tuning) BoardOptions(logger *slog.Logger) board.Options {
	return board.Options{
		MinSize:           t.Interaction.MinSize,
		EndpointHitRadius: t.Interaction.EndpointHitRadius,
		AnchorSnapRadius:  t.Interaction.AnchorSnapRadius,
		ClickThreshold:    t.Interaction.ClickThreshold,
		Zoom: engine.ZoomOptions{
			Step:     t.Zoom.Step,
			MinScale: t.Zoom.MinScale,
			MaxScale: t.Zoom.MaxScale,
		},
		Logger: logger,
	}
}

// ParseError represents an error while parsing a tuning file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

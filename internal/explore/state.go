package explore

import (
	"fmt"

	"github.com/san-kum/mirasim/internal/config"
	"github.com/san-kum/mirasim/internal/dynamo"
	"github.com/san-kum/mirasim/internal/viz"
)

// Source records how the current parameters were chosen.
type Source int

const (
	SourceDefault Source = iota
	SourcePreset
	SourceRandom
	SourceManual
)

func (s Source) String() string {
	switch s {
	case SourcePreset:
		return "preset"
	case SourceRandom:
		return "random"
	case SourceManual:
		return "manual"
	default:
		return "default"
	}
}

// State is everything needed to draw one frame.
type State struct {
	Variant  dynamo.Variant
	Params   dynamo.Params
	Source   Source
	Preset   string
	Gen      dynamo.Config
	Viewport viz.Viewport
	Style    viz.Style
}

func DefaultState() State {
	return State{
		Variant:  dynamo.Standard,
		Params:   config.ClassicParams,
		Source:   SourcePreset,
		Preset:   "classic",
		Gen:      dynamo.DefaultConfig(),
		Viewport: viz.DefaultViewport(),
		Style:    viz.DefaultStyle(),
	}
}

// StateFromConfig builds a state from a loaded render config.
func StateFromConfig(cfg *config.Config) (State, error) {
	style, err := cfg.RenderStyle()
	if err != nil {
		return State{}, err
	}
	return State{
		Variant:  cfg.Variant,
		Params:   cfg.Params,
		Source:   SourceDefault,
		Gen:      cfg.Generation(),
		Viewport: cfg.Viewport,
		Style:    style,
	}, nil
}

func (s State) Validate() error {
	if err := s.Params.Validate(); err != nil {
		return err
	}
	if err := s.Gen.Validate(); err != nil {
		return err
	}
	return s.Viewport.Validate()
}

func (s State) String() string {
	label := s.Source.String()
	if s.Source == SourcePreset {
		label = s.Preset
	}
	return fmt.Sprintf("[%s] %s %s n=%d skip=%d", label, s.Variant, s.Params, s.Gen.Iterations, s.Gen.Skip)
}

package web

import (
	"fmt"
	"math/rand"
	"net/url"
	"strconv"
	"time"

	"github.com/san-kum/mirasim/internal/config"
	"github.com/san-kum/mirasim/internal/dynamo"
)

// configFromQuery applies query parameters on top of base. Names match the
// render command's flags; precedence is preset, then random, then explicit
// values.
func configFromQuery(base *config.Config, q url.Values) (*config.Config, error) {
	cfg := *base

	if name := q.Get("preset"); name != "" {
		if err := cfg.ApplyPreset(name); err != nil {
			return nil, err
		}
	}
	if q.Has("random") {
		seed := time.Now().UnixNano()
		if q.Has("seed") {
			s, err := strconv.ParseInt(q.Get("seed"), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("seed: %w", err)
			}
			seed = s
		}
		cfg.Params = config.RandomParams(rand.New(rand.NewSource(seed)))
	}

	if q.Has("alpha") || q.Has("sigma") || q.Has("mu") {
		a, s, m := q.Get("alpha"), q.Get("sigma"), q.Get("mu")
		if !q.Has("alpha") {
			a = strconv.FormatFloat(cfg.Params.Alpha, 'g', -1, 64)
		}
		if !q.Has("sigma") {
			s = strconv.FormatFloat(cfg.Params.Sigma, 'g', -1, 64)
		}
		if !q.Has("mu") {
			m = strconv.FormatFloat(cfg.Params.Mu, 'g', -1, 64)
		}
		p, err := config.ParseParams(a, s, m)
		if err != nil {
			return nil, err
		}
		cfg.Params = p
	}

	if v := q.Get("variant"); v != "" {
		variant, err := dynamo.ParseVariant(v)
		if err != nil {
			return nil, err
		}
		cfg.Variant = variant
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"iterations", &cfg.Iterations},
		{"skip", &cfg.Skip},
	}
	for _, f := range ints {
		if !q.Has(f.name) {
			continue
		}
		n, err := strconv.Atoi(q.Get(f.name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = n
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"x0", &cfg.Initial.X},
		{"y0", &cfg.Initial.Y},
		{"width", &cfg.Viewport.Width},
		{"height", &cfg.Viewport.Height},
		{"padding", &cfg.Viewport.Padding},
		{"radius", &cfg.Style.Radius},
		{"opacity", &cfg.Style.Opacity},
	}
	for _, f := range floats {
		if !q.Has(f.name) {
			continue
		}
		v, err := strconv.ParseFloat(q.Get(f.name), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}

	if q.Has("color") {
		cfg.Style.Color = q.Get("color")
	}
	if q.Has("background") {
		cfg.Style.Background = q.Get("background")
	}

	if cfg.Viewport.Width > maxSide || cfg.Viewport.Height > maxSide {
		return nil, fmt.Errorf("%w: larger than %dpx", dynamo.ErrInvalidViewport, maxSide)
	}
	if cfg.Iterations > maxIterations {
		return nil, fmt.Errorf("%w: more than %d", dynamo.ErrInvalidIterations, maxIterations)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

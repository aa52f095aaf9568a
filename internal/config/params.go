package config

import (
	"fmt"
	"image/color"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/mirasim/internal/dynamo"
)

// RandomParams samples alpha and sigma from U(0,1) and mu from U(-1,1).
func RandomParams(r *rand.Rand) dynamo.Params {
	return dynamo.Params{
		Alpha: r.Float64(),
		Sigma: r.Float64(),
		Mu:    r.Float64()*2 - 1,
	}
}

// ParseParams parses manually entered values. Empty, non-numeric and
// non-finite input is rejected.
func ParseParams(alpha, sigma, mu string) (dynamo.Params, error) {
	var p dynamo.Params
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"alpha", alpha, &p.Alpha},
		{"sigma", sigma, &p.Sigma},
		{"mu", mu, &p.Mu},
	}
	for _, f := range fields {
		v, err := parseFloat(f.name, f.raw)
		if err != nil {
			return dynamo.Params{}, err
		}
		*f.dst = v
	}
	return p, nil
}

func parseFloat(name, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: %s is empty", dynamo.ErrInvalidParams, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", dynamo.ErrInvalidParams, name, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s=%v", dynamo.ErrInvalidParams, name, v)
	}
	return v, nil
}

// ParseColor reads a #rgb or #rrggbb colour and applies the opacity in [0,1].
func ParseColor(hex string, opacity float64) (color.NRGBA, error) {
	if opacity < 0 || opacity > 1 || math.IsNaN(opacity) {
		return color.NRGBA{}, fmt.Errorf("opacity %g outside [0,1]", opacity)
	}
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(opacity * 255))}, nil
}

package config

import (
	"errors"
	"image/color"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/mirasim/internal/dynamo"
	"github.com/san-kum/mirasim/internal/viz"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Variant != dynamo.Standard {
		t.Errorf("expected standard variant, got %s", cfg.Variant)
	}
	if cfg.Params != ClassicParams {
		t.Errorf("expected classic params, got %v", cfg.Params)
	}
	if cfg.Iterations != 20000 || cfg.Skip != 0 {
		t.Errorf("unexpected counts %d/%d", cfg.Iterations, cfg.Skip)
	}
	if cfg.Initial != (dynamo.Point{X: 1, Y: 1}) {
		t.Errorf("unexpected initial point %v", cfg.Initial)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	style, err := cfg.RenderStyle()
	if err != nil {
		t.Fatal(err)
	}
	if style.Color != (color.NRGBA{0, 0, 0, 204}) {
		t.Errorf("unexpected ink %v", style.Color)
	}
	if style.Background != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("unexpected background %v", style.Background)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.yaml")

	cfg := DefaultConfig()
	cfg.Variant = dynamo.Simple
	cfg.Params = dynamo.Params{Alpha: 0.1, Sigma: 0.2, Mu: -0.3}
	cfg.Skip = 100
	cfg.Viewport.Padding = 20
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := "variant: simple\nparams:\n  mu: 0.25\nskip: 10\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Variant != dynamo.Simple || cfg.Params.Mu != 0.25 || cfg.Skip != 10 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Iterations != dynamo.DefaultIterations || cfg.Style.Radius != DefaultRadius {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestMergeOverPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "window.yaml")
	if err := os.WriteFile(path, []byte("iterations: 500\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if err := cfg.ApplyPreset("known-03"); err != nil {
		t.Fatal(err)
	}
	if err := Merge(path, cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Params != KnownParams[2] || cfg.Iterations != 500 {
		t.Errorf("merge lost preset or window: %+v", cfg)
	}
}

func TestLoadRejectsUnknownVariant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("variant: hyperbolic\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown variant")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("known-12")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Params.Mu != -0.4986787562 {
		t.Errorf("expected mu -0.4986787562, got %v", cfg.Params.Mu)
	}
	if GetPreset("missing") != nil {
		t.Error("expected nil for unknown preset")
	}

	classic, ok := LookupPreset("classic")
	if !ok || classic.Params != ClassicParams {
		t.Errorf("classic preset = %+v, %v", classic, ok)
	}
}

func TestListPresets(t *testing.T) {
	names := PresetNames()
	if len(names) != len(KnownParams)+1 {
		t.Fatalf("expected %d presets, got %d", len(KnownParams)+1, len(names))
	}
	if len(KnownParams) != 28 {
		t.Errorf("expected 28 known parameter sets, got %d", len(KnownParams))
	}
	if names[0] != "classic" || names[1] != "known-01" || names[len(names)-1] != "known-28" {
		t.Errorf("unexpected order: %v", names)
	}
}

func TestRandomParams(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		p := RandomParams(r)
		if p.Alpha < 0 || p.Alpha >= 1 || p.Sigma < 0 || p.Sigma >= 1 {
			t.Fatalf("alpha/sigma out of [0,1): %v", p)
		}
		if p.Mu < -1 || p.Mu >= 1 {
			t.Fatalf("mu out of [-1,1): %v", p)
		}
	}

	a := RandomParams(rand.New(rand.NewSource(42)))
	b := RandomParams(rand.New(rand.NewSource(42)))
	if a != b {
		t.Error("same seed should give the same params")
	}
}

func TestParseParams(t *testing.T) {
	p, err := ParseParams("0.009", " 0.05 ", "-0.801")
	if err != nil {
		t.Fatal(err)
	}
	if p != ClassicParams {
		t.Errorf("got %v", p)
	}

	bad := [][3]string{
		{"", "0.1", "0.1"},
		{"abc", "0.1", "0.1"},
		{"0.1", "NaN", "0.1"},
		{"0.1", "0.1", "Inf"},
		{"0.1", "0.1", "-inf"},
		{"0.1", "1e400", "0.1"},
	}
	for _, in := range bad {
		if _, err := ParseParams(in[0], in[1], in[2]); !errors.Is(err, dynamo.ErrInvalidParams) {
			t.Errorf("ParseParams(%q) = %v, want ErrInvalidParams", in, err)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		hex     string
		opacity float64
		want    color.NRGBA
		wantErr bool
	}{
		{"#000000", 0.8, color.NRGBA{0, 0, 0, 204}, false},
		{"ff8000", 1, color.NRGBA{255, 128, 0, 255}, false},
		{"#fff", 0, color.NRGBA{255, 255, 255, 0}, false},
		{"not-a-colour", 1, color.NRGBA{}, true},
		{"#000000", 1.5, color.NRGBA{}, true},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.hex, tt.opacity)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q, %v) error = %v", tt.hex, tt.opacity, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseColor(%q, %v) = %v, want %v", tt.hex, tt.opacity, got, tt.want)
		}
	}
}

func TestValidateRejectsRadius(t *testing.T) {
	for _, r := range []float64{1e17, math.NaN(), math.Inf(1), 0, -1} {
		cfg := DefaultConfig()
		cfg.Style.Radius = r
		if err := cfg.Validate(); !errors.Is(err, dynamo.ErrInvalidStyle) {
			t.Errorf("radius %g: expected ErrInvalidStyle from Validate, got %v", r, err)
		}
		if _, err := cfg.RenderStyle(); !errors.Is(err, dynamo.ErrInvalidStyle) {
			t.Errorf("radius %g: expected ErrInvalidStyle from RenderStyle, got %v", r, err)
		}
	}

	cfg := DefaultConfig()
	cfg.Style.Radius = viz.MaxRadius
	if err := cfg.Validate(); err != nil {
		t.Errorf("radius %d should be accepted: %v", viz.MaxRadius, err)
	}
}

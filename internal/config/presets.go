package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/mirasim/internal/dynamo"
)

type Preset struct {
	Name    string
	Variant dynamo.Variant
	Params  dynamo.Params
}

// ClassicParams is the demo attractor the project started from.
var ClassicParams = dynamo.Params{Alpha: 0.009, Sigma: 0.05, Mu: -0.801}

// KnownParams are hand-picked parameter sets that render well with the
// standard variant from (1, 1).
var KnownParams = []dynamo.Params{
	{Alpha: 0.8244391555, Sigma: 0.1774071817, Mu: -0.5116492043},
	{Alpha: 0.2773133875, Sigma: 0.606448743, Mu: -0.867253365},
	{Alpha: 0.4828030715, Sigma: 0.0229754889, Mu: 0.547388765},
	{Alpha: 0.0458912996, Sigma: 0.4976365791, Mu: -0.3432564696},
	{Alpha: 0.494631299, Sigma: 0.1436555705, Mu: -0.4371344738},
	{Alpha: 0.6278730919, Sigma: 0.1061967449, Mu: 0.4625240818},
	{Alpha: 0.2285134534, Sigma: 0.8234970213, Mu: -0.1421593999},
	{Alpha: 0.8059471909, Sigma: 0.6146615464, Mu: 0.6989158747},
	{Alpha: 0.014188807, Sigma: 0.5116789189, Mu: -0.709636987},
	{Alpha: 0.510675207, Sigma: 0.6179087377, Mu: -0.5320875884},
	{Alpha: 0.480478471, Sigma: 0.6285355241, Mu: 0.1456679021},
	{Alpha: 0.0667867267, Sigma: 0.0156868822, Mu: -0.4986787562},
	{Alpha: 0.0609237318, Sigma: 0.4147179456, Mu: 0.3022867769},
	{Alpha: 0.0377529142, Sigma: 0.7564536638, Mu: -0.3309395722},
	{Alpha: 0.0127874863, Sigma: 0.2534660034, Mu: 0.0620849106},
	{Alpha: 0.4901955992, Sigma: 0.6464701979, Mu: 0.7065678246},
	{Alpha: 0.9082379408, Sigma: 0.8003195728, Mu: 0.6174691406},
	{Alpha: 0.5578971949, Sigma: 0.2023314395, Mu: -0.0058459365},
	{Alpha: 0.1613274063, Sigma: 0.9675522216, Mu: 0.0177000695},
	{Alpha: 0.0312776923, Sigma: 0.1274765691, Mu: 0.1076720964},
	{Alpha: 0.9065307782, Sigma: 0.2113498598, Mu: 0.3449995466},
	{Alpha: 0.3745206832, Sigma: 0.628306031, Mu: 0.0837386053},
	{Alpha: 0.8213463426, Sigma: 0.0293553252, Mu: 0.4230726506},
	{Alpha: 0.4126543676, Sigma: 0.5885845043, Mu: -0.2138337336},
	{Alpha: 0.0350114025, Sigma: 0.1551110644, Mu: 0.8588986349},
	{Alpha: 0.0021805721, Sigma: 0.0876592845, Mu: -0.8838931438},
	{Alpha: 0.9300093068, Sigma: 0.2984211352, Mu: 0.5246134282},
	{Alpha: 0.0404903983, Sigma: 0.5136701621, Mu: -0.2481335823},
}

var presets = buildPresets()

func buildPresets() map[string]Preset {
	m := map[string]Preset{
		"classic": {Name: "classic", Variant: dynamo.Standard, Params: ClassicParams},
	}
	for i, p := range KnownParams {
		name := fmt.Sprintf("known-%02d", i+1)
		m[name] = Preset{Name: name, Variant: dynamo.Standard, Params: p}
	}
	return m
}

// GetPreset returns the default config with the named preset applied, or nil.
func GetPreset(name string) *Config {
	cfg := DefaultConfig()
	if err := cfg.ApplyPreset(name); err != nil {
		return nil
	}
	return cfg
}

func LookupPreset(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// ListPresets returns every preset ordered by name.
func ListPresets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func PresetNames() []string {
	list := ListPresets()
	names := make([]string, len(list))
	for i, p := range list {
		names[i] = p.Name
	}
	return names
}

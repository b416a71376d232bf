package config

var Presets = map[string]map[string]*Config{
	"population": {
		"baseline": {
			Model: "population", Integrator: "euler", Dt: 1, Steps: 50,
		},
		"small": {
			Model: "population", Integrator: "euler", Dt: 1, Steps: 100,
			Overrides: map[string]float64{"Population": 100},
		},
		"fine": {
			Model: "population", Integrator: "rk4", Dt: 0.25, Steps: 200,
		},
	},
	"energy": {
		"baseline": {
			Model: "energy", Integrator: "rk4", Dt: 1, Steps: 36,
		},
		"no-funding": {
			Model: "energy", Integrator: "rk4", Dt: 1, Steps: 36,
			Overrides: map[string]float64{"PolicyFunding": 0},
		},
		"settle": {
			Model: "energy", Integrator: "rk4", Dt: 1, Steps: 500,
			Equilibrium: EquilibriumConfig{Stop: true, Tolerance: 1e-5, Window: 12},
		},
	},
	"grants": {
		"baseline": {
			Model: "grants", Integrator: "rk4", Dt: 1, Steps: 60,
		},
		"weak-policy": {
			Model: "grants", Integrator: "rk4", Dt: 1, Steps: 60,
			Overrides: map[string]float64{"Policies": 0.2, "GreenFinance": 0.3},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}

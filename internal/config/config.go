// Package config loads and saves run configurations for the sysdyn CLI.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/sysdyn/internal/sysdyn"
)

type Config struct {
	Model      string  `yaml:"model"`
	Integrator string  `yaml:"integrator"`
	Dt         float64 `yaml:"dt"`
	Steps      int     `yaml:"steps"`

	// Overrides replace initial values by variable name before the run.
	Overrides map[string]float64 `yaml:"overrides"`

	Equilibrium EquilibriumConfig `yaml:"equilibrium"`
	Sweep       SweepConfig       `yaml:"sweep"`
}

type EquilibriumConfig struct {
	Stop      bool    `yaml:"stop"`
	Tolerance float64 `yaml:"tolerance"`
	Window    int     `yaml:"window"`
}

type SweepConfig struct {
	Variable string  `yaml:"variable"`
	From     float64 `yaml:"from"`
	To       float64 `yaml:"to"`
	Samples  int     `yaml:"samples"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "population",
		Integrator: sysdyn.DefaultMethod,
		Dt:         sysdyn.DefaultDt,
		Steps:      sysdyn.DefaultTimeSteps,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RunConfig translates the file/flag configuration into engine run
// parameters.
func (c *Config) RunConfig() sysdyn.Config {
	return sysdyn.Config{
		Dt:                c.Dt,
		TimeSteps:         c.Steps,
		Method:            c.Integrator,
		StopAtEquilibrium: c.Equilibrium.Stop,
		EquilibriumTol:    c.Equilibrium.Tolerance,
		EquilibriumWindow: c.Equilibrium.Window,
	}
}

// ApplyOverrides writes the configured initial values into spec.
func (c *Config) ApplyOverrides(spec *sysdyn.ModelSpec) error {
	for name, value := range c.Overrides {
		if err := spec.SetInitial(name, value); err != nil {
			return err
		}
	}
	return nil
}

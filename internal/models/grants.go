package models

import "github.com/san-kum/sysdyn/internal/sysdyn"

// Grants is a condensed rendition of a state research-grant program for
// industrial energy efficiency: credit and training push an efficiency
// stock upward, barriers drag it down, and efficiency gains feed
// production. Values are scaled to unit magnitudes. The
// barriers/information loop closes across a one-step delayed edge.
func Grants() *sysdyn.ModelSpec {
	spec := sysdyn.NewModelSpec()

	spec.Constant("Tariff", 0.65)
	spec.Constant("Policies", 0.55)
	spec.Constant("GreenFinance", 0.65)

	spec.Stock("Efficiency", 0.25).AddInflow("EfficiencyGain").Bounds(0, 1)
	spec.Stock("Investment", 0.3).AddInflow("InvestmentInflow").NonNegative()
	spec.Stock("Production", 0.45).AddInflow("ProductionGrowth").NonNegative()

	spec.Auxiliary("Credit", 0).
		AddInfluence(sysdyn.InfluenceSpec{Source: "GreenFinance", Weight: 0.55}).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Policies", Weight: 0.25})

	spec.Auxiliary("Training", 0).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Policies", Weight: 0.4}).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Credit", Weight: 0.15})

	spec.Auxiliary("Barriers", 1).NonNegative().
		AddInfluence(sysdyn.InfluenceSpec{Source: "Policies", Weight: -0.45}).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Credit", Weight: -0.35}).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Information", Weight: -0.35, Delay: 1})

	spec.Auxiliary("Information", 0.4).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Training", Weight: 0.4}).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Policies", Weight: 0.25}).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Barriers", Weight: -0.15})

	spec.Auxiliary("EnergyUse", 0.36).NonNegative().
		AddInfluence(sysdyn.InfluenceSpec{Source: "Production", Weight: 0.8}).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Efficiency", Weight: -0.3}).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Tariff", Weight: -0.05})

	spec.Flow("EfficiencyGain", 0).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Investment", Weight: 0.08, Mode: sysdyn.ModeSaturation}).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Training", Weight: 0.03}).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Barriers", Weight: -0.02})

	spec.Flow("InvestmentInflow", 0).
		AddInfluence(sysdyn.InfluenceSpec{
			Source: "Credit", Weight: 0.5,
			Mode: sysdyn.ModeLogistic, Steepness: 4, Midpoint: 0.5,
		}).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Policies", Weight: 0.15}).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Information", Weight: 0.25})

	spec.Flow("ProductionGrowth", 0).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Efficiency", Weight: 0.2, Mode: sysdyn.ModeSaturation}).
		AddInfluence(sysdyn.InfluenceSpec{Source: "EnergyUse", Weight: -0.05}).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Investment", Weight: 0.05, Mode: sysdyn.ModeExponential})

	return spec
}

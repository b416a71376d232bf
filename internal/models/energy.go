package models

import "github.com/san-kum/sysdyn/internal/sysdyn"

// Energy models the adoption of energy-efficiency measures in a
// regional economy: public funding drives efficiency policies, policies
// drive adoption after an information lag, adoption cuts energy use and
// operating costs, and the resulting economic activity feeds tax
// revenue back into funding. The feedback loops all close across
// delayed edges.
func Energy() *sysdyn.ModelSpec {
	spec := sysdyn.NewModelSpec()

	spec.Stock("PolicyFunding", 0.1).AddInflow("FundingChange")
	spec.Stock("Adoption", 0.1).AddInflow("AdoptionRate").NonNegative()
	spec.Stock("EnergyUse", 1.0).AddInflow("EnergyUseChange").NonNegative()
	spec.Stock("OperatingCosts", 0.5).AddInflow("CostChange").NonNegative()
	spec.Stock("BusinessInvestment", 0.2).AddInflow("InvestmentRate").NonNegative()
	spec.Stock("Employment", 0.3).AddInflow("EmploymentChange").NonNegative()
	spec.Stock("EconomicActivity", 0.3).AddInflow("ActivityChange").NonNegative()
	spec.Stock("OperatingResult", 0.1).AddInflow("ResultChange")
	spec.Stock("Revenue", 0.3).AddInflow("RevenueChange").NonNegative()
	spec.Stock("TaxRevenue", 0.2).AddInflow("TaxChange").NonNegative()

	spec.Auxiliary("EfficiencyPolicies", 0.1).
		AddInfluence(sysdyn.InfluenceSpec{Source: "PolicyFunding", Weight: 0.1, Mode: sysdyn.ModeSaturation}).
		AddInfluence(sysdyn.InfluenceSpec{Source: "EconomicActivity", Weight: 0.05, Delay: 2})

	spec.Flow("AdoptionRate", 0.05).NonNegative().
		AddInfluence(sysdyn.InfluenceSpec{Source: "EfficiencyPolicies", Weight: 0.1, Delay: 2})

	spec.Flow("EnergyUseChange", 0).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Adoption", Weight: -0.1, Mode: sysdyn.ModeSaturation})

	spec.Flow("CostChange", 0).
		AddInfluence(sysdyn.InfluenceSpec{Source: "EnergyUse", Weight: 0.08})

	spec.Flow("InvestmentRate", 0.1).NonNegative().
		AddInfluence(sysdyn.InfluenceSpec{Source: "OperatingCosts", Weight: -0.05}).
		AddInfluence(sysdyn.InfluenceSpec{Source: "OperatingResult", Weight: 0.15})

	// Hiring only reacts once investment clears a floor.
	spec.Flow("EmploymentChange", 0).
		AddInfluence(sysdyn.InfluenceSpec{
			Source: "BusinessInvestment", Weight: 0.1,
			Mode: sysdyn.ModeThreshold, Threshold: sysdyn.Ptr(0.1),
		})

	spec.Flow("ActivityChange", 0).
		AddInfluence(sysdyn.InfluenceSpec{Source: "BusinessInvestment", Weight: 0.12}).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Employment", Weight: 0.08})

	spec.Flow("ResultChange", 0).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Revenue", Weight: 0.1}).
		AddInfluence(sysdyn.InfluenceSpec{Source: "OperatingCosts", Weight: -0.15})

	spec.Flow("RevenueChange", 0).
		AddInfluence(sysdyn.InfluenceSpec{Source: "EconomicActivity", Weight: 0.12}).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Adoption", Weight: 0.08, Delay: 1})

	spec.Flow("TaxChange", 0).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Employment", Weight: 0.1}).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Revenue", Weight: 0.12})

	spec.Flow("FundingChange", 0).
		AddInfluence(sysdyn.InfluenceSpec{Source: "TaxRevenue", Weight: 0.1, Delay: 3})

	return spec
}

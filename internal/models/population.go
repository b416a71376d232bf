// Package models ships ready-to-run model specifications and a name
// registry for the CLI.
package models

import "github.com/san-kum/sysdyn/internal/sysdyn"

// Population is the classic births/deaths stock-and-flow loop: both
// rates are proportional to the population, so the stock grows
// exponentially at the net rate.
func Population() *sysdyn.ModelSpec {
	spec := sysdyn.NewModelSpec()
	spec.Stock("Population", 1000).
		AddInflow("Births").
		AddOutflow("Deaths").
		NonNegative()
	spec.Flow("Births", 30).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Population", Weight: 0.03})
	spec.Flow("Deaths", 10).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Population", Weight: 0.01})
	return spec
}

// Package sysdyn provides the core system-dynamics simulation engine.
//
// A model is a network of typed variables connected by weighted,
// optionally delayed, nonlinearly-transformed influence edges:
//
//   - [Kind]: STOCK, FLOW, AUXILIARY or CONSTANT
//   - [ModelSpec]: immutable build recipe for a model
//   - [Model]: compiled variable arena with a fixed evaluation order
//   - [Simulation]: advances a model through discrete time steps
//   - [Sensitivity]: state-isolated parameter sweeps
//
// # Example
//
//	spec := sysdyn.NewModelSpec()
//	spec.Stock("Population", 1000).AddInflow("Births").AddOutflow("Deaths")
//	spec.Flow("Births", 30).AddInfluence(sysdyn.InfluenceSpec{Source: "Population", Weight: 0.03})
//	spec.Flow("Deaths", 10).AddInfluence(sysdyn.InfluenceSpec{Source: "Population", Weight: 0.01})
//	sim, _ := sysdyn.New(spec, sysdyn.Config{Dt: 1, TimeSteps: 50})
//	sim.Run()
//	series := sim.Results()["Population"]
//
// # Thread Safety
//
// Simulation instances are NOT thread-safe. Sweep samples are run on
// independent compiled models, one goroutine per sample; nothing is
// shared between them.
package sysdyn

package sysdyn_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sysdyn/internal/sysdyn"
)

func populationSpec() *sysdyn.ModelSpec {
	spec := sysdyn.NewModelSpec()
	spec.Stock("Population", 1000).
		AddInflow("Births").
		AddOutflow("Deaths")
	spec.Flow("Births", 30).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Population", Weight: 0.03})
	spec.Flow("Deaths", 10).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Population", Weight: 0.01})
	return spec
}

func decaySpec(k float64) *sysdyn.ModelSpec {
	spec := sysdyn.NewModelSpec()
	spec.Stock("Value", 1).AddOutflow("Decay")
	spec.Flow("Decay", k).
		AddInfluence(sysdyn.InfluenceSpec{Source: "Value", Weight: k})
	return spec
}

var _ = Describe("Simulation", func() {
	Describe("the population scenario", func() {
		var sim *sysdyn.Simulation

		BeforeEach(func() {
			var err error
			sim, err = sysdyn.New(populationSpec(), sysdyn.Config{Dt: 1, TimeSteps: 10, Method: "euler"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("computes flows from the start-of-step stock value", func() {
			sim.Step()
			results := sim.Results()
			Expect(results["Births"][1]).To(BeNumerically("~", 30, 1e-9))
			Expect(results["Deaths"][1]).To(BeNumerically("~", 10, 1e-9))
			Expect(results["Population"][1]).To(BeNumerically("~", 1020, 1e-9))
		})

		It("grows monotonically at a positive net rate", func() {
			sim.Run()
			pop := sim.Results()["Population"]
			Expect(pop).To(HaveLen(11))
			for i := 1; i < len(pop); i++ {
				Expect(pop[i]).To(BeNumerically(">", pop[i-1]))
			}
		})

		It("reports the rate of change of a stock", func() {
			sim.Step()
			rate, err := sim.RateOfChange("Population")
			Expect(err).NotTo(HaveOccurred())
			Expect(rate).To(BeNumerically("~", 20, 1e-9))
		})
	})

	It("freezes every variable in a model with no influences and no flows", func() {
		spec := sysdyn.NewModelSpec()
		spec.Stock("S", 3)
		spec.Flow("F", 1.5)
		spec.Auxiliary("A", -2)
		spec.Constant("C", 7)

		sim, err := sysdyn.New(spec, sysdyn.Config{Dt: 1, TimeSteps: 5})
		Expect(err).NotTo(HaveOccurred())
		sim.Run()

		for name, series := range sim.Results() {
			Expect(series).To(HaveLen(6), "series %s", name)
			for _, v := range series {
				Expect(v).To(Equal(series[0]), "series %s", name)
			}
		}
	})

	It("is deterministic across identical runs", func() {
		cfg := sysdyn.Config{Dt: 0.5, TimeSteps: 40, Method: "rk4"}
		a, err := sysdyn.New(populationSpec(), cfg)
		Expect(err).NotTo(HaveOccurred())
		b, err := sysdyn.New(populationSpec(), cfg)
		Expect(err).NotTo(HaveOccurred())

		a.Run()
		b.Run()
		Expect(a.Results()).To(Equal(b.Results()))
		Expect(a.TimeSeries()).To(Equal(b.TimeSeries()))
	})

	Describe("delayed influences", func() {
		It("keeps using the seeded value until the delay elapses", func() {
			spec := sysdyn.NewModelSpec()
			spec.Constant("Level", 5)
			spec.Auxiliary("Signal", 1).
				AddInfluence(sysdyn.InfluenceSpec{Source: "Level", Weight: 1})
			spec.Auxiliary("Echo", 1).
				AddInfluence(sysdyn.InfluenceSpec{Source: "Signal", Weight: 1, Delay: 3})

			sim, err := sysdyn.New(spec, sysdyn.Config{Dt: 1, TimeSteps: 6})
			Expect(err).NotTo(HaveOccurred())
			sim.Run()

			echo := sim.Results()["Echo"]
			// Signal jumps to 5 on the first step; the echo must not see
			// it for delay=3 further steps.
			Expect(echo[1]).To(Equal(1.0))
			Expect(echo[2]).To(Equal(1.0))
			Expect(echo[3]).To(Equal(1.0))
			Expect(echo[4]).To(Equal(5.0))
			Expect(echo[5]).To(Equal(5.0))
		})
	})

	Describe("clamping", func() {
		It("pins a non-negative stock at exactly zero", func() {
			spec := sysdyn.NewModelSpec()
			spec.Stock("Tank", 5).AddOutflow("Drain").NonNegative()
			spec.Flow("Drain", 10)

			sim, err := sysdyn.New(spec, sysdyn.Config{Dt: 1, TimeSteps: 4})
			Expect(err).NotTo(HaveOccurred())
			sim.Run()

			tank := sim.Results()["Tank"]
			Expect(tank[1]).To(Equal(0.0))
			for _, v := range tank {
				Expect(v).To(BeNumerically(">=", 0))
			}
		})

		It("lets a default stock go negative", func() {
			spec := sysdyn.NewModelSpec()
			spec.Stock("Balance", 5).AddOutflow("Spend")
			spec.Flow("Spend", 10)

			sim, err := sysdyn.New(spec, sysdyn.Config{Dt: 1, TimeSteps: 1})
			Expect(err).NotTo(HaveOccurred())
			sim.Run()
			Expect(sim.Results()["Balance"][1]).To(Equal(-5.0))
		})

		It("honors explicit bounds", func() {
			spec := sysdyn.NewModelSpec()
			spec.Stock("Share", 0.9).AddInflow("Gain").Bounds(0, 1)
			spec.Flow("Gain", 0.5)

			sim, err := sysdyn.New(spec, sysdyn.Config{Dt: 1, TimeSteps: 3})
			Expect(err).NotTo(HaveOccurred())
			sim.Run()
			Expect(sim.Results()["Share"][3]).To(Equal(1.0))
		})
	})

	Describe("integration accuracy", func() {
		It("beats Euler with RK4 on exponential decay", func() {
			const (
				k     = 0.5
				dt    = 0.1
				steps = 20
			)
			analytic := math.Exp(-k * dt * steps)

			run := func(method string) float64 {
				sim, err := sysdyn.New(decaySpec(k), sysdyn.Config{Dt: dt, TimeSteps: steps, Method: method})
				Expect(err).NotTo(HaveOccurred())
				sim.Run()
				series := sim.Results()["Value"]
				return series[len(series)-1]
			}

			eulerErr := math.Abs(run("euler") - analytic)
			rk4Err := math.Abs(run("rk4") - analytic)

			Expect(rk4Err).To(BeNumerically("<", eulerErr))
			Expect(rk4Err).To(BeNumerically("<", 1e-6))
		})
	})

	Describe("bookkeeping", func() {
		It("records series of length steps+1 and a monotone time axis", func() {
			cfg := sysdyn.Config{Dt: 0.25, TimeSteps: 8}
			sim, err := sysdyn.New(populationSpec(), cfg)
			Expect(err).NotTo(HaveOccurred())
			sim.Run()

			times := sim.TimeSeries()
			Expect(times).To(HaveLen(9))
			for i, t := range times {
				Expect(t).To(BeNumerically("~", float64(i)*0.25, 1e-12))
			}
			for _, series := range sim.Results() {
				Expect(series).To(HaveLen(9))
			}
		})

		It("keeps accumulating history when stepped past the configured horizon", func() {
			sim, err := sysdyn.New(populationSpec(), sysdyn.Config{Dt: 1, TimeSteps: 3})
			Expect(err).NotTo(HaveOccurred())
			sim.Run()
			sim.Step()
			sim.Step()
			Expect(sim.CurrentStep()).To(Equal(5))
			Expect(sim.Results()["Population"]).To(HaveLen(6))
		})

		It("excludes constants from results but serves them via Series", func() {
			spec := sysdyn.NewModelSpec()
			spec.Constant("C", 2)
			spec.Auxiliary("A", 0).
				AddInfluence(sysdyn.InfluenceSpec{Source: "C", Weight: 3})

			sim, err := sysdyn.New(spec, sysdyn.Config{Dt: 1, TimeSteps: 2})
			Expect(err).NotTo(HaveOccurred())
			sim.Run()

			Expect(sim.Results()).NotTo(HaveKey("C"))
			c, err := sim.Series("C")
			Expect(err).NotTo(HaveOccurred())
			Expect(c).To(Equal([]float64{2, 2, 2}))
			Expect(sim.Results()["A"][1]).To(Equal(6.0))
		})

		It("returns paired trajectories from PhaseSpace", func() {
			sim, err := sysdyn.New(populationSpec(), sysdyn.Config{Dt: 1, TimeSteps: 4})
			Expect(err).NotTo(HaveOccurred())
			sim.Run()

			pop, births, err := sim.PhaseSpace("Population", "Births")
			Expect(err).NotTo(HaveOccurred())
			Expect(pop).To(HaveLen(5))
			Expect(births).To(HaveLen(5))

			_, _, err = sim.PhaseSpace("Population", "Nope")
			Expect(err).To(MatchError(sysdyn.ErrUnknownVariable))
		})

		It("produces no NaN values", func() {
			sim, err := sysdyn.New(populationSpec(), sysdyn.Config{Dt: 1, TimeSteps: 50, Method: "rk4"})
			Expect(err).NotTo(HaveOccurred())
			sim.Run()
			for name, series := range sim.Results() {
				for _, v := range series {
					Expect(math.IsNaN(v)).To(BeFalse(), "NaN in %s", name)
				}
			}
		})
	})

	Describe("equilibrium stop", func() {
		It("ends a settled run early when opted in", func() {
			spec := sysdyn.NewModelSpec()
			spec.Stock("S", 1)

			sim, err := sysdyn.New(spec, sysdyn.Config{
				Dt: 1, TimeSteps: 100,
				StopAtEquilibrium: true,
			})
			Expect(err).NotTo(HaveOccurred())
			sim.Run()
			Expect(sim.CurrentStep()).To(BeNumerically("<", 100))
		})

		It("never fires by default", func() {
			spec := sysdyn.NewModelSpec()
			spec.Stock("S", 1)

			sim, err := sysdyn.New(spec, sysdyn.Config{Dt: 1, TimeSteps: 100})
			Expect(err).NotTo(HaveOccurred())
			sim.Run()
			Expect(sim.CurrentStep()).To(Equal(100))
		})
	})
})

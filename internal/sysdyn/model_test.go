package sysdyn_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sysdyn/internal/sysdyn"
)

var _ = Describe("Compile", func() {
	cfg := sysdyn.Config{Dt: 1, TimeSteps: 5}

	Describe("cycle detection", func() {
		It("rejects a zero-delay cycle at construction", func() {
			spec := sysdyn.NewModelSpec()
			spec.Auxiliary("A", 1).
				AddInfluence(sysdyn.InfluenceSpec{Source: "B", Weight: 1})
			spec.Auxiliary("B", 1).
				AddInfluence(sysdyn.InfluenceSpec{Source: "A", Weight: 1})

			_, err := sysdyn.New(spec, cfg)
			Expect(err).To(HaveOccurred())

			var cycleErr *sysdyn.CycleError
			Expect(errors.As(err, &cycleErr)).To(BeTrue())
			Expect(cycleErr.Cycle).To(ContainElement("A"))
			Expect(cycleErr.Cycle).To(ContainElement("B"))
		})

		It("accepts the same cycle once one edge is delayed", func() {
			spec := sysdyn.NewModelSpec()
			spec.Auxiliary("A", 1).
				AddInfluence(sysdyn.InfluenceSpec{Source: "B", Weight: 1, Delay: 1})
			spec.Auxiliary("B", 1).
				AddInfluence(sysdyn.InfluenceSpec{Source: "A", Weight: 1})

			_, err := sysdyn.New(spec, cfg)
			Expect(err).NotTo(HaveOccurred())
		})

		It("treats stocks as always ready", func() {
			// Flow feeds the stock and reads it back with no delay; the
			// loop crosses the integrator, not the evaluation order.
			spec := sysdyn.NewModelSpec()
			spec.Stock("S", 1).AddInflow("F")
			spec.Flow("F", 0).
				AddInfluence(sysdyn.InfluenceSpec{Source: "S", Weight: 0.1})

			_, err := sysdyn.New(spec, cfg)
			Expect(err).NotTo(HaveOccurred())
		})

		It("evaluates dependents after their zero-delay sources regardless of declaration order", func() {
			spec := sysdyn.NewModelSpec()
			spec.Auxiliary("Twice", 0).
				AddInfluence(sysdyn.InfluenceSpec{Source: "Once", Weight: 2})
			spec.Auxiliary("Once", 0).
				AddInfluence(sysdyn.InfluenceSpec{Source: "Base", Weight: 1})
			spec.Constant("Base", 3)

			sim, err := sysdyn.New(spec, cfg)
			Expect(err).NotTo(HaveOccurred())
			sim.Step()
			Expect(sim.Results()["Once"][1]).To(Equal(3.0))
			Expect(sim.Results()["Twice"][1]).To(Equal(6.0))
		})
	})

	Describe("structural validation", func() {
		It("requires a threshold for threshold edges", func() {
			spec := sysdyn.NewModelSpec()
			spec.Constant("X", 1)
			spec.Auxiliary("A", 0).
				AddInfluence(sysdyn.InfluenceSpec{Source: "X", Weight: 1, Mode: sysdyn.ModeThreshold})

			_, err := sysdyn.New(spec, cfg)
			Expect(err).To(MatchError(sysdyn.ErrThresholdRequired))
		})

		It("rejects unknown influence sources", func() {
			spec := sysdyn.NewModelSpec()
			spec.Auxiliary("A", 0).
				AddInfluence(sysdyn.InfluenceSpec{Source: "Ghost", Weight: 1})

			_, err := sysdyn.New(spec, cfg)
			Expect(err).To(MatchError(sysdyn.ErrUnknownVariable))
		})

		It("rejects unknown flow references", func() {
			spec := sysdyn.NewModelSpec()
			spec.Stock("S", 0).AddInflow("Ghost")

			_, err := sysdyn.New(spec, cfg)
			Expect(err).To(MatchError(sysdyn.ErrUnknownVariable))
		})

		It("rejects duplicate names", func() {
			spec := sysdyn.NewModelSpec()
			spec.Stock("S", 0)
			spec.Flow("S", 0)

			_, err := sysdyn.New(spec, cfg)
			Expect(err).To(MatchError(sysdyn.ErrDuplicateVariable))
		})

		It("rejects influences on stocks and constants", func() {
			spec := sysdyn.NewModelSpec()
			spec.Constant("C", 1)
			spec.Stock("S", 0).
				AddInfluence(sysdyn.InfluenceSpec{Source: "C", Weight: 1})

			_, err := sysdyn.New(spec, cfg)
			Expect(err).To(MatchError(sysdyn.ErrInvalidWiring))

			spec = sysdyn.NewModelSpec()
			spec.Flow("F", 0)
			spec.Constant("C", 1).AddInflow("F")

			_, err = sysdyn.New(spec, cfg)
			Expect(err).To(MatchError(sysdyn.ErrInvalidWiring))
		})

		It("rejects flows attached to non-stocks", func() {
			spec := sysdyn.NewModelSpec()
			spec.Flow("F", 0)
			spec.Auxiliary("A", 0).AddInflow("F")

			_, err := sysdyn.New(spec, cfg)
			Expect(err).To(MatchError(sysdyn.ErrInvalidWiring))
		})

		It("rejects negative delays", func() {
			spec := sysdyn.NewModelSpec()
			spec.Constant("X", 1)
			spec.Auxiliary("A", 0).
				AddInfluence(sysdyn.InfluenceSpec{Source: "X", Weight: 1, Delay: -1})

			_, err := sysdyn.New(spec, cfg)
			Expect(err).To(MatchError(sysdyn.ErrInvalidWiring))
		})
	})

	Describe("run configuration", func() {
		spec := func() *sysdyn.ModelSpec {
			s := sysdyn.NewModelSpec()
			s.Stock("S", 1)
			return s
		}

		It("rejects a non-positive dt", func() {
			_, err := sysdyn.New(spec(), sysdyn.Config{Dt: 0, TimeSteps: 5})
			Expect(err).To(MatchError(sysdyn.ErrInvalidTimeStep))

			_, err = sysdyn.New(spec(), sysdyn.Config{Dt: -1, TimeSteps: 5})
			Expect(err).To(MatchError(sysdyn.ErrInvalidTimeStep))
		})

		It("rejects a non-positive step count", func() {
			_, err := sysdyn.New(spec(), sysdyn.Config{Dt: 1, TimeSteps: 0})
			Expect(err).To(MatchError(sysdyn.ErrInvalidStepCount))
		})

		It("rejects unknown integration methods", func() {
			_, err := sysdyn.New(spec(), sysdyn.Config{Dt: 1, TimeSteps: 5, Method: "rk45"})
			Expect(err).To(MatchError(sysdyn.ErrUnknownIntegrator))
		})

		It("defaults the method to euler", func() {
			sim, err := sysdyn.New(spec(), sysdyn.Config{Dt: 1, TimeSteps: 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(sim.Config().Method).To(Equal("euler"))
		})
	})

	Describe("influence modes", func() {
		// One auxiliary per mode, all fed by the same constant.
		buildAndStep := func(inf sysdyn.InfluenceSpec, source float64) float64 {
			spec := sysdyn.NewModelSpec()
			spec.Constant("X", source)
			inf.Source = "X"
			spec.Auxiliary("A", 0).AddInfluence(inf)

			sim, err := sysdyn.New(spec, cfg)
			Expect(err).NotTo(HaveOccurred())
			sim.Step()
			return sim.Results()["A"][1]
		}

		It("applies linear weighting", func() {
			Expect(buildAndStep(sysdyn.InfluenceSpec{Weight: 3}, 2)).To(Equal(6.0))
		})

		It("applies the logistic sigmoid", func() {
			got := buildAndStep(sysdyn.InfluenceSpec{Weight: 2, Mode: sysdyn.ModeLogistic}, 0)
			Expect(got).To(BeNumerically("~", 1.0, 1e-12)) // sigmoid(0) = 0.5

			got = buildAndStep(sysdyn.InfluenceSpec{
				Weight: 1, Mode: sysdyn.ModeLogistic, Steepness: 2, Midpoint: 1,
			}, 2)
			Expect(got).To(BeNumerically("~", 1/(1+math.Exp(-2)), 1e-12))
		})

		It("applies sign-preserving saturation", func() {
			Expect(buildAndStep(sysdyn.InfluenceSpec{Weight: 3, Mode: sysdyn.ModeSaturation}, 2)).
				To(BeNumerically("~", 2.0, 1e-12))
			Expect(buildAndStep(sysdyn.InfluenceSpec{Weight: 3, Mode: sysdyn.ModeSaturation}, -2)).
				To(BeNumerically("~", -2.0, 1e-12))
		})

		It("gates hard on the threshold", func() {
			Expect(buildAndStep(sysdyn.InfluenceSpec{
				Weight: 1, Mode: sysdyn.ModeThreshold, Threshold: sysdyn.Ptr(3),
			}, 2)).To(Equal(0.0))
			Expect(buildAndStep(sysdyn.InfluenceSpec{
				Weight: 1, Mode: sysdyn.ModeThreshold, Threshold: sysdyn.Ptr(2),
			}, 2)).To(Equal(2.0))
		})

		It("applies the exponential response", func() {
			Expect(buildAndStep(sysdyn.InfluenceSpec{Weight: 1, Mode: sysdyn.ModeExponential}, -3)).
				To(Equal(-9.0))
		})
	})
})

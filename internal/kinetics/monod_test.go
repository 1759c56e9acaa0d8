package kinetics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/monodsim/internal/dynamo"
	"github.com/san-kum/monodsim/internal/kinetics"
)

var _ = Describe("Monod", func() {
	var m *kinetics.Monod

	BeforeEach(func() {
		m = kinetics.NewMonod(kinetics.DefaultParams())
	})

	It("is two dimensional", func() {
		Expect(m.Dim()).To(Equal(2))
	})

	Describe("GrowthRate", func() {
		It("is half of mu_max at S = Ks", func() {
			Expect(m.GrowthRate(kinetics.DefaultKs)).To(BeNumerically("~", kinetics.DefaultMuMax/2, 1e-12))
		})

		It("is zero without substrate", func() {
			Expect(m.GrowthRate(0)).To(BeZero())
		})

		It("saturates towards mu_max", func() {
			Expect(m.GrowthRate(1e6)).To(BeNumerically("~", kinetics.DefaultMuMax, 1e-6))
		})
	})

	Describe("Derive", func() {
		It("couples consumption to growth through the yield", func() {
			x := dynamo.State{2.0, 3.0}
			dx := m.Derive(x, 0)

			mu := 0.4 * 3.0 / (0.1 + 3.0)
			Expect(dx[kinetics.Biomass]).To(BeNumerically("~", mu*2.0, 1e-12))
			Expect(dx[kinetics.Substrate]).To(BeNumerically("~", -mu*2.0/0.5, 1e-12))
		})

		It("stands still without substrate", func() {
			dx := m.Derive(dynamo.State{0.1, 0}, 0)
			Expect(dx[kinetics.Biomass]).To(BeZero())
			Expect(dx[kinetics.Substrate]).To(BeZero())
		})

		It("leaves the invariant unchanged", func() {
			x := dynamo.State{1.3, 4.2}
			dx := m.Derive(x, 0)
			Expect(dx[0] + kinetics.DefaultYxs*dx[1]).To(BeNumerically("~", 0, 1e-12))
		})

		It("does not mutate its input", func() {
			x := dynamo.State{1, 1}
			m.Derive(x, 0)
			Expect(x).To(Equal(dynamo.State{1, 1}))
		})
	})

	It("predicts the reference plateau", func() {
		Expect(m.Plateau(kinetics.DefaultInitial())).To(BeNumerically("~", 5.1, 1e-12))
	})

	It("keeps X + Yxs*S along the flow", func() {
		x := dynamo.State{0.1, 10}
		Expect(m.Invariant(x)).To(BeNumerically("~", 5.1, 1e-12))
		Expect(m.Invariant(x)).To(BeNumerically("~", m.Plateau(kinetics.DefaultInitial()), 1e-12))
	})

	Describe("SetParam", func() {
		It("updates known parameters", func() {
			Expect(m.SetParam("mu_max", 0.8)).To(Succeed())
			Expect(m.GetParams()).To(HaveKeyWithValue("mu_max", 0.8))
		})

		It("rejects unknown names", func() {
			Expect(m.SetParam("vmax", 1)).NotTo(Succeed())
		})

		It("rejects non-positive values and keeps the old ones", func() {
			err := m.SetParam("ks", 0)
			Expect(err).To(MatchError(dynamo.ErrParameterBounds))
			Expect(m.Params().Ks).To(Equal(kinetics.DefaultKs))
		})
	})
})

var _ = Describe("Params", func() {
	DescribeTable("Validate",
		func(p kinetics.Params, ok bool) {
			if ok {
				Expect(p.Validate()).To(Succeed())
			} else {
				Expect(p.Validate()).To(MatchError(dynamo.ErrParameterBounds))
			}
		},
		Entry("defaults", kinetics.DefaultParams(), true),
		Entry("zero ks", kinetics.Params{MuMax: 0.4, Ks: 0, Yxs: 0.5}, false),
		Entry("negative ks", kinetics.Params{MuMax: 0.4, Ks: -0.1, Yxs: 0.5}, false),
		Entry("zero yield", kinetics.Params{MuMax: 0.4, Ks: 0.1, Yxs: 0}, false),
		Entry("zero mu_max", kinetics.Params{MuMax: 0, Ks: 0.1, Yxs: 0.5}, false),
		Entry("NaN mu_max", kinetics.Params{MuMax: math.NaN(), Ks: 0.1, Yxs: 0.5}, false),
	)

	DescribeTable("Initial.Validate",
		func(in kinetics.Initial, ok bool) {
			if ok {
				Expect(in.Validate()).To(Succeed())
			} else {
				Expect(in.Validate()).To(MatchError(dynamo.ErrParameterBounds))
			}
		},
		Entry("defaults", kinetics.DefaultInitial(), true),
		Entry("no substrate", kinetics.Initial{X0: 0.1, S0: 0}, true),
		Entry("negative biomass", kinetics.Initial{X0: -1, S0: 10}, false),
		Entry("infinite substrate", kinetics.Initial{X0: 0.1, S0: math.Inf(1)}, false),
	)

	It("lays out the initial state as [X, S]", func() {
		Expect(kinetics.DefaultInitial().State()).To(Equal(dynamo.State{0.1, 10.0}))
	})
})

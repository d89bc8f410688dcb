package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nbody/internal/physics"
)

var _ = Describe("System", func() {
	var s *physics.System

	BeforeEach(func() {
		s = physics.NewJovian()
	})

	Context("after the momentum offset", func() {
		It("holds zero net momentum on every axis", func() {
			for _, p := range s.Momentum() {
				Expect(math.Abs(p)).To(BeNumerically("<", 1e-9))
			}
		})

		It("reports the reference initial energy", func() {
			Expect(s.Energy()).To(BeNumerically("~", -0.169075164, 1e-6))
		})
	})

	Context("when advanced", func() {
		It("reaches the reference energy after 1000 steps", func() {
			for i := 0; i < 1000; i++ {
				s.Advance(0.01)
			}
			Expect(s.Energy()).To(BeNumerically("~", -0.169087605, 1e-6))
		})

		It("keeps energy within a small band of its start", func() {
			e0 := s.Energy()
			for i := 0; i < 5000; i++ {
				s.Advance(0.01)
			}
			Expect(math.Abs((s.Energy() - e0) / e0)).To(BeNumerically("<", 1e-3))
		})

		It("is bit-for-bit reproducible", func() {
			other := physics.NewJovian()
			for i := 0; i < 200; i++ {
				s.Advance(0.01)
				other.Advance(0.01)
			}
			Expect(s.Bodies()).To(Equal(other.Bodies()))
		})

		It("never changes masses", func() {
			before := s.Bodies()
			s.Advance(0.01)
			after := s.Bodies()
			for i := range before {
				Expect(after[i].Mass).To(Equal(before[i].Mass))
			}
		})
	})

	Context("as a flat dynamo system", func() {
		It("agrees with the kernel on energy", func() {
			p := physics.NewPlanetary()
			Expect(p.Energy(s.State())).To(Equal(s.Energy()))
		})
	})
})

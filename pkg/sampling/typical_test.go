package sampling_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sieve/pkg/sampling"
)

// logTable builds a table whose scores are the logs of the given probabilities.
func logTable(probs ...float64) []float64 {
	out := make([]float64, len(probs))
	for i, p := range probs {
		out[i] = math.Log(p)
	}
	return out
}

var _ = Describe("Typical", func() {
	Describe("SelectSubset", func() {
		It("adds candidates by closeness to the entropy", func() {
			// H ≈ 1.28; surprise deviations: a 0.36, b 0.08, c 0.33, d 1.02
			t := tableOf(logTable(0.4, 0.3, 0.2, 0.1)...)

			kept, err := sampling.Typical{Mass: 0.25}.SelectSubset(t)
			Expect(err).NotTo(HaveOccurred())
			Expect(kept.Mutants()).To(Equal([]string{"b"}))

			kept, err = sampling.Typical{Mass: 0.45}.SelectSubset(t)
			Expect(err).NotTo(HaveOccurred())
			Expect(kept.Mutants()).To(Equal([]string{"b", "c"}))

			kept, err = sampling.Typical{Mass: 0.6}.SelectSubset(t)
			Expect(err).NotTo(HaveOccurred())
			Expect(kept.Mutants()).To(Equal([]string{"a", "b", "c"}))

			kept, err = sampling.Typical{Mass: 1}.SelectSubset(t)
			Expect(err).NotTo(HaveOccurred())
			Expect(kept.Len()).To(Equal(4))
		})

		It("keeps at least the most typical candidate", func() {
			t := tableOf(logTable(0.7, 0.2, 0.1)...)

			kept, err := sampling.Typical{Mass: 1e-9}.SelectSubset(t)
			Expect(err).NotTo(HaveOccurred())
			Expect(kept.Mutants()).To(Equal([]string{"a"}))
		})

		It("keeps every candidate of a uniform distribution", func() {
			t := tableOf(1, 1, 1, 1)

			kept, err := sampling.Typical{Mass: 0.1}.SelectSubset(t)
			Expect(err).NotTo(HaveOccurred())
			Expect(kept.Len()).To(Equal(4))
		})

		It("grows monotonically with the mass", func() {
			t := tableOf(2.1, -0.3, 0.7, 1.5, -2.2, 0.0, 3.3, 1.1)

			prev := 0
			for mass := 0.05; mass <= 1.0; mass += 0.05 {
				kept, err := sampling.Typical{Mass: mass}.SelectSubset(t)
				Expect(err).NotTo(HaveOccurred())
				Expect(kept.Len()).To(BeNumerically(">=", prev))
				Expect(kept.Len()).To(BeNumerically(">=", 1))
				prev = kept.Len()
			}
		})

		It("excludes unscored rows", func() {
			t := tableOf(math.NaN(), math.Log(0.5), math.Log(0.5))

			kept, err := sampling.Typical{Mass: 1}.SelectSubset(t)
			Expect(err).NotTo(HaveOccurred())
			Expect(kept.Mutants()).To(Equal([]string{"b", "c"}))
		})

		It("returns an empty table when nothing is scored", func() {
			kept, err := sampling.Typical{Mass: 0.9}.SelectSubset(tableOf(math.NaN(), math.NaN()))
			Expect(err).NotTo(HaveOccurred())
			Expect(kept.Len()).To(BeZero())
		})

		It("rejects mass outside (0, 1]", func() {
			t := tableOf(1, 2)
			for _, mass := range []float64{0, 1.01, -1} {
				_, err := sampling.Typical{Mass: mass}.SelectSubset(t)
				Expect(err).To(MatchError(sampling.ErrInvalidTruncationSize))
			}
		})
	})

	Describe("SelectOne", func() {
		It("only draws from the typical set", func() {
			sampler, err := sampling.NewTemperatureSampler(1.0, sampling.WithSeed(9))
			Expect(err).NotTo(HaveOccurred())
			t := tableOf(logTable(0.4, 0.3, 0.2, 0.1)...)

			for range 300 {
				mutant, err := sampling.Typical{Mass: 0.45}.SelectOne(t, sampler)
				Expect(err).NotTo(HaveOccurred())
				Expect(mutant).To(BeElementOf("b", "c"))
			}
		})

		It("fails when nothing is scored", func() {
			sampler, _ := sampling.NewTemperatureSampler(1.0)

			_, err := sampling.Typical{Mass: 0.9}.SelectOne(tableOf(math.NaN()), sampler)
			Expect(err).To(MatchError(sampling.ErrInvalidDistribution))
		})
	})
})

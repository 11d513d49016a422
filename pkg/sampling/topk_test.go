package sampling_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sieve/pkg/sampling"
)

var _ = Describe("TopK", func() {
	var sampler *sampling.TemperatureSampler

	BeforeEach(func() {
		var err error
		sampler, err = sampling.NewTemperatureSampler(1.0, sampling.WithSeed(11))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("SelectSubset", func() {
		It("returns the k best rows in descending order", func() {
			t := tableOf(5.0, 3.0, math.NaN(), 1.0)

			kept, err := sampling.TopK{K: 2}.SelectSubset(t)
			Expect(err).NotTo(HaveOccurred())
			Expect(kept.Mutants()).To(Equal([]string{"a", "b"}))
			Expect(scoresOf(kept)).To(Equal([]float64{5.0, 3.0}))
		})

		It("sorts unordered input", func() {
			t := tableOf(0.1, 0.9, 0.5, 0.7)

			kept, err := sampling.TopK{K: 3}.SelectSubset(t)
			Expect(err).NotTo(HaveOccurred())
			Expect(kept.Mutants()).To(Equal([]string{"b", "d", "c"}))
		})

		It("keeps table order among ties", func() {
			t := tableOf(1, 2, 2, 0, 2)

			kept, err := sampling.TopK{K: 2}.SelectSubset(t)
			Expect(err).NotTo(HaveOccurred())
			Expect(kept.Mutants()).To(Equal([]string{"b", "c"}))
		})

		It("ranks unscored rows last", func() {
			t := tableOf(math.NaN(), -4, -2)

			kept, err := sampling.TopK{K: 3}.SelectSubset(t)
			Expect(err).NotTo(HaveOccurred())
			Expect(kept.Mutants()).To(Equal([]string{"c", "b", "a"}))
		})

		It("rejects k outside [1, N]", func() {
			t := tableOf(1, 2, 3)

			_, err := sampling.TopK{K: 4}.SelectSubset(t)
			Expect(err).To(MatchError(sampling.ErrInvalidTruncationSize))

			_, err = sampling.TopK{K: 0}.SelectSubset(t)
			Expect(err).To(MatchError(sampling.ErrInvalidTruncationSize))
		})
	})

	Describe("SelectOne", func() {
		It("only draws among the k best rows", func() {
			t := tableOf(0.2, 0.9, 0.1, 0.8, 0.3)

			for range 300 {
				mutant, err := sampling.TopK{K: 2}.SelectOne(t, sampler)
				Expect(err).NotTo(HaveOccurred())
				Expect(mutant).To(BeElementOf("b", "d"))
			}
		})

		It("breaks ties by table position", func() {
			t := tableOf(1, 3, 3, 3)

			mutant, err := sampling.TopK{K: 1}.SelectOne(t, sampling.ArgmaxSampler{})
			Expect(err).NotTo(HaveOccurred())
			Expect(mutant).To(Equal("b"))

			for range 100 {
				mutant, err = sampling.TopK{K: 2}.SelectOne(t, sampler)
				Expect(err).NotTo(HaveOccurred())
				Expect(mutant).To(BeElementOf("b", "c"))
			}
		})

		It("never draws an unscored row", func() {
			t := tableOf(math.NaN(), 1, math.NaN())

			for range 50 {
				mutant, err := sampling.TopK{K: 1}.SelectOne(t, sampler)
				Expect(err).NotTo(HaveOccurred())
				Expect(mutant).To(Equal("b"))
			}
		})

		It("fails when the kept rows are all unscored", func() {
			t := tableOf(math.NaN(), math.NaN())

			_, err := sampling.TopK{K: 2}.SelectOne(t, sampler)
			Expect(err).To(MatchError(sampling.ErrInvalidDistribution))
		})

		It("rejects k larger than the table", func() {
			_, err := sampling.TopK{K: 5}.SelectOne(tableOf(1, 2), sampler)
			Expect(err).To(MatchError(sampling.ErrInvalidTruncationSize))
		})
	})
})

package sampling_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sieve/pkg/candidate"
	"github.com/papercomputeco/sieve/pkg/sampling"
)

// zipf returns n values proportional to rank^-s, best first.
func zipf(n int, s float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Pow(float64(i+1), -s)
	}
	return out
}

func geometric(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Pow(0.5, float64(i+1))
	}
	return out
}

var _ = Describe("EstimateS", func() {
	It("recovers the exponent of a Zipf distribution", func() {
		for _, s0 := range []float64{0.8, 1.2, 2.0} {
			Expect(sampling.EstimateS(zipf(50, s0))).To(BeNumerically("~", s0, 1e-9))
		}
	})

	It("only examines the first 100 values", func() {
		Expect(sampling.EstimateS(zipf(250, 1.5))).To(BeNumerically("~", 1.5, 1e-9))
		Expect(sampling.EstimateS(geometric(150))).To(Equal(sampling.EstimateS(geometric(100))))
	})

	It("returns a finite value for geometric decay", func() {
		s := sampling.EstimateS([]float64{0.5, 0.25, 0.125, 0.0625})
		Expect(math.IsNaN(s) || math.IsInf(s, 0)).To(BeFalse())
		Expect(s).To(BeNumerically(">", 0))
	})

	It("treats a zero denominator as a zero ratio", func() {
		Expect(sampling.EstimateS([]float64{1, 0})).To(BeZero())
	})

	It("is undefined for fewer than two values", func() {
		Expect(math.IsNaN(sampling.EstimateS([]float64{0.3}))).To(BeTrue())
	})
})

var _ = Describe("ComputeK", func() {
	It("computes the truncation size", func() {
		k, err := sampling.ComputeK(20, 2, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(k).To(Equal(2))

		k, err = sampling.ComputeK(20, 2, 6)
		Expect(err).NotTo(HaveOccurred())
		Expect(k).To(Equal(8))

		k, err = sampling.ComputeK(20, 0.5, 6)
		Expect(err).NotTo(HaveOccurred())
		Expect(k).To(Equal(85))
	})

	It("fails for an exponent of exactly one", func() {
		_, err := sampling.ComputeK(20, 1, 6)
		Expect(err).To(MatchError(sampling.ErrInvalidCutoff))
	})

	It("fails for a non-finite exponent", func() {
		_, err := sampling.ComputeK(20, math.NaN(), 6)
		Expect(err).To(MatchError(sampling.ErrInvalidCutoff))
	})
})

var _ = Describe("Mirostat", func() {
	var t *candidate.Table

	BeforeEach(func() {
		// Zipf(s=2) scores, stored worst first so order matters
		values := zipf(40, 2)
		t = candidate.NewTable()
		for i := len(values) - 1; i >= 0; i-- {
			t.Append(candidate.Candidate{Mutant: string(rune('A' + i)), AvgScore: values[i]})
		}
	})

	Describe("SelectSubset", func() {
		It("keeps k+1 rows in descending score order", func() {
			// s=2, tau=1: k=2
			kept, err := sampling.Mirostat{Tau: 1, VocabSize: 20}.SelectSubset(t)
			Expect(err).NotTo(HaveOccurred())
			Expect(kept.Mutants()).To(Equal([]string{"A", "B", "C"}))
		})

		It("widens the cut for a higher target surprise", func() {
			// s=2, tau=3: k=8
			kept, err := sampling.Mirostat{Tau: sampling.DefaultTau}.SelectSubset(t)
			Expect(err).NotTo(HaveOccurred())
			Expect(kept.Len()).To(Equal(9))
			Expect(kept.Row(0).Mutant).To(Equal("A"))
		})

		It("fails when the cutoff exceeds the table", func() {
			small := candidate.NewTable()
			for i, v := range zipf(5, 2) {
				small.Append(candidate.Candidate{Mutant: string(rune('A' + i)), AvgScore: v})
			}

			_, err := sampling.Mirostat{Tau: sampling.DefaultTau}.SelectSubset(small)
			Expect(err).To(MatchError(sampling.ErrInvalidCutoff))
		})

		It("fails on a degenerate table", func() {
			_, err := sampling.Mirostat{Tau: 3}.SelectSubset(tableOf(0.4))
			Expect(err).To(MatchError(sampling.ErrInvalidCutoff))
		})
	})

	Describe("SelectOne", func() {
		It("draws from the kept rows", func() {
			sampler, err := sampling.NewTemperatureSampler(1.0, sampling.WithSeed(21))
			Expect(err).NotTo(HaveOccurred())

			for range 200 {
				mutant, err := sampling.Mirostat{Tau: 1}.SelectOne(t, sampler)
				Expect(err).NotTo(HaveOccurred())
				Expect(mutant).To(BeElementOf("A", "B", "C"))
			}
		})

		It("returns the identifier at the drawn position of the kept rows", func() {
			mutant, err := sampling.Mirostat{Tau: 1}.SelectOne(t, sampling.ArgmaxSampler{})
			Expect(err).NotTo(HaveOccurred())
			Expect(mutant).To(Equal("A"))
		})
	})
})

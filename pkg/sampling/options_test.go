package sampling_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/papercomputeco/sieve/pkg/sampling"
)

func ptr[T any](v T) *T { return &v }

var _ = Describe("Options", func() {
	Describe("CanonicalPolicy", func() {
		DescribeTable("normalises policy names",
			func(in, want string) {
				got, err := sampling.CanonicalPolicy(in)
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(Equal(want))
			},
			Entry("snake case", "top_k", sampling.PolicyTopK),
			Entry("camel case", "TopP", sampling.PolicyTopP),
			Entry("nucleus alias", "nucleus", sampling.PolicyTopP),
			Entry("typical", "typical", sampling.PolicyTypical),
			Entry("mirostat", "Mirostat", sampling.PolicyMirostat),
			Entry("empty", "", sampling.PolicyRandom),
		)

		It("rejects unknown names", func() {
			_, err := sampling.CanonicalPolicy("beam")
			Expect(err).To(MatchError(sampling.ErrUnknownPolicy))
		})
	})

	Describe("NewPolicy", func() {
		It("builds typical sampling by default", func() {
			p, err := sampling.DefaultOptions().NewPolicy()
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(sampling.Typical{Mass: sampling.DefaultMass, Backend: sampling.CPU}))
		})

		It("builds top-k with the given k", func() {
			p, err := sampling.Options{Policy: "top-k", K: ptr(3)}.NewPolicy()
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(sampling.TopK{K: 3}))
		})

		It("requires k for top-k and p for top-p", func() {
			_, err := sampling.Options{Policy: "top-k"}.NewPolicy()
			Expect(err).To(MatchError(sampling.ErrInvalidTruncationSize))

			_, err = sampling.Options{Policy: "top-p"}.NewPolicy()
			Expect(err).To(MatchError(sampling.ErrInvalidTruncationSize))
		})

		It("derives the mirostat vocabulary from the alphabet", func() {
			p, err := sampling.Options{Policy: "mirostat", Alphabet: "ACGT"}.NewPolicy()
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(sampling.Mirostat{Tau: sampling.DefaultTau, VocabSize: 4}))

			p, err = sampling.Options{Policy: "mirostat", Tau: ptr(1.5)}.NewPolicy()
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(sampling.Mirostat{Tau: 1.5, VocabSize: sampling.DefaultVocabSize}))
		})

		It("rejects an unavailable backend", func() {
			_, err := sampling.Options{Policy: "typical", Backend: "cuda:0"}.NewPolicy()
			Expect(err).To(MatchError(sampling.ErrUnsupportedBackend))
		})
	})

	Describe("NewStrategy", func() {
		It("defaults the temperature to 1", func() {
			s, err := sampling.Options{}.NewStrategy()
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Temperature()).To(Equal(sampling.DefaultTemperature))
		})

		It("rejects a zero temperature", func() {
			_, err := sampling.Options{Temperature: ptr(0.0)}.NewStrategy()
			Expect(err).To(MatchError(sampling.ErrInvalidTemperature))
		})
	})

	Describe("Merge", func() {
		It("overrides only the fields that are set", func() {
			base := sampling.Options{Policy: "top-k", K: ptr(5), Temperature: ptr(0.7)}
			merged := base.Merge(sampling.Options{K: ptr(2), Seed: ptr(int64(4))})

			Expect(merged.Policy).To(Equal("top-k"))
			Expect(*merged.K).To(Equal(2))
			Expect(*merged.Temperature).To(Equal(0.7))
			Expect(*merged.Seed).To(Equal(int64(4)))
		})

		It("lets an override switch normalize back off", func() {
			base := sampling.Options{Policy: "top-p", P: ptr(0.5), Normalize: ptr(true)}

			Expect(*base.Merge(sampling.Options{}).Normalize).To(BeTrue())

			merged := base.Merge(sampling.Options{Normalize: ptr(false)})
			Expect(*merged.Normalize).To(BeFalse())

			policy, err := merged.NewPolicy()
			Expect(err).NotTo(HaveOccurred())
			Expect(policy).To(BeAssignableToTypeOf(sampling.TopP{}))
			Expect(policy.(sampling.TopP).Normalize).To(BeFalse())
		})
	})
})

var _ = Describe("Selector", func() {
	It("logs each selection at debug level", func() {
		core, logs := observer.New(zap.DebugLevel)
		sel, err := sampling.NewSelectorFromOptions(
			sampling.Options{Policy: "top-k", K: ptr(2), Seed: ptr(int64(1))},
			zap.New(core),
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(sel.Policy().Name()).To(Equal(sampling.PolicyTopK))

		t := tableOf(0.1, 0.9, 0.5)
		mutant, err := sel.One(t)
		Expect(err).NotTo(HaveOccurred())
		Expect(mutant).To(BeElementOf("b", "c"))

		kept, err := sel.Subset(t)
		Expect(err).NotTo(HaveOccurred())
		Expect(kept.Mutants()).To(Equal([]string{"b", "c"}))

		Expect(logs.FilterMessage("selected candidate").Len()).To(Equal(1))
		subset := logs.FilterMessage("selected subset").All()
		Expect(subset).To(HaveLen(1))
		Expect(subset[0].ContextMap()).To(HaveKeyWithValue("kept", int64(2)))
	})

	It("returns policy errors unchanged", func() {
		sel := sampling.NewSelector(sampling.TopK{K: 4}, sampling.ArgmaxSampler{}, nil)

		_, err := sel.One(tableOf(1, 2))
		Expect(err).To(MatchError(sampling.ErrInvalidTruncationSize))
	})
})

package candidate_test

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sieve/pkg/candidate"
)

var _ = Describe("Table", func() {
	var t *candidate.Table

	BeforeEach(func() {
		t = candidate.NewTable(
			candidate.Candidate{Mutant: "A1G", AvgScore: 0.4},
			candidate.Candidate{Mutant: "C2T", AvgScore: math.NaN()},
			candidate.Candidate{Mutant: "G3A", AvgScore: 0.9},
			candidate.Candidate{Mutant: "T4C", AvgScore: 0.4},
		)
	})

	Describe("Scores", func() {
		It("maps unscored rows to negative infinity", func() {
			scores := t.Scores()
			Expect(scores).To(HaveLen(4))
			Expect(scores[0]).To(Equal(0.4))
			Expect(math.IsInf(scores[1], -1)).To(BeTrue())
		})
	})

	Describe("SortedByScore", func() {
		It("orders by descending score, stable on ties, unscored last", func() {
			Expect(t.SortedByScore()).To(Equal([]int{2, 0, 3, 1}))
		})
	})

	Describe("Take", func() {
		It("returns rows in the given order", func() {
			Expect(t.Take([]int{3, 0}).Mutants()).To(Equal([]string{"T4C", "A1G"}))
		})
	})

	Describe("NewTable", func() {
		It("copies the rows", func() {
			rows := []candidate.Candidate{{Mutant: "x", AvgScore: 1}}
			tt := candidate.NewTable(rows...)
			rows[0].Mutant = "y"

			Expect(tt.Row(0).Mutant).To(Equal("x"))
		})
	})

	Describe("Hash", func() {
		It("produces a SHA-256 hex string", func() {
			Expect(t.Hash()).To(MatchRegexp("^[a-f0-9]{64}$"))
		})

		It("is stable for identical tables, NaN included", func() {
			other := candidate.NewTable(t.Rows()...)
			Expect(other.Hash()).To(Equal(t.Hash()))
		})

		It("depends on row order", func() {
			Expect(t.Take([]int{1, 0, 2, 3}).Hash()).NotTo(Equal(t.Hash()))
		})
	})

	Describe("JSON", func() {
		It("encodes unscored rows as null and decodes them back to NaN", func() {
			data, err := json.Marshal(t)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`{"mutant":"C2T","avg_score":null}`))

			decoded, err := candidate.ReadJSON(bytes.NewReader(data))
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded.Len()).To(Equal(4))
			Expect(math.IsNaN(decoded.Row(1).AvgScore)).To(BeTrue())
			Expect(decoded.Row(2).AvgScore).To(Equal(0.9))
		})

		It("encodes an empty table as an empty array", func() {
			data, err := json.Marshal(candidate.NewTable())
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("[]"))
		})

		It("treats a missing score as unscored", func() {
			decoded, err := candidate.ReadJSON(strings.NewReader(`[{"mutant":"A1G"}]`))
			Expect(err).NotTo(HaveOccurred())
			Expect(math.IsNaN(decoded.Row(0).AvgScore)).To(BeTrue())
		})
	})
})

var _ = Describe("Merge", func() {
	It("keeps the first occurrence of each mutant", func() {
		a := candidate.NewTable(
			candidate.Candidate{Mutant: "A1G", AvgScore: 0.1},
			candidate.Candidate{Mutant: "C2T", AvgScore: 0.2},
		)
		b := candidate.NewTable(
			candidate.Candidate{Mutant: "C2T", AvgScore: 0.9},
			candidate.Candidate{Mutant: "G3A", AvgScore: 0.3},
		)

		merged, dup := candidate.Merge(a, b)
		Expect(dup).To(Equal(1))
		Expect(merged.Mutants()).To(Equal([]string{"A1G", "C2T", "G3A"}))
		Expect(merged.Row(1).AvgScore).To(Equal(0.2))
	})
})

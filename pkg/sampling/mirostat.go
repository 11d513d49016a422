package sampling

import (
	"fmt"
	"math"

	"github.com/papercomputeco/sieve/pkg/candidate"
)

const (
	// DefaultTau is the default target surprise.
	DefaultTau = 3.0

	// AminoAcids is the default symbol alphabet.
	AminoAcids = "ACDEFGHIKLMNPQRSTVWY"

	// DefaultVocabSize is the size of AminoAcids.
	DefaultVocabSize = len(AminoAcids)

	// estimatePairs bounds how many leading pairs EstimateS examines.
	estimatePairs = 100
)

// EstimateS estimates the Zipf exponent of a descending value list by least
// squares over the log ratios of its first 100 adjacent pairs. Ratios with a
// zero denominator count as 0 and non-positive log arguments contribute 0.
// Fewer than two values give NaN.
func EstimateS(sorted []float64) float64 {
	n := min(len(sorted), estimatePairs)

	var num, den float64
	for i := 0; i < n-1; i++ {
		var b float64
		if sorted[i+1] != 0 {
			b = sorted[i] / sorted[i+1]
		}
		t := float64(i+2) / float64(i+1)

		lt := math.Log(positiveOrOne(t))
		num += math.Log(positiveOrOne(b)) * lt
		den += lt * lt
	}

	return num / den
}

func positiveOrOne(x float64) float64 {
	if x > 0 {
		return x
	}
	return 1
}

// ComputeK returns the truncation size that targets maxSurprise for a Zipf
// exponent s over a vocabulary of n symbols, rounded half to even. Results
// that are not finite or are negative fail with ErrInvalidCutoff.
func ComputeK(n int, s, maxSurprise float64) (int, error) {
	eps := s - 1
	k := math.Pow(eps*math.Pow(2, maxSurprise)/(1-math.Pow(float64(n), -eps)), 1/s)
	k = math.RoundToEven(k)

	if math.IsNaN(k) || math.IsInf(k, 0) || k < 0 || k > math.MaxInt32 {
		return 0, fmt.Errorf("%w: k=%v for s=%v", ErrInvalidCutoff, k, s)
	}
	return int(k), nil
}

// Mirostat sizes a top-k cut from the estimated Zipf exponent of the scores
// so that the kept set targets a surprise of 2*Tau.
type Mirostat struct {
	Tau float64

	// VocabSize is the alphabet cardinality; zero means DefaultVocabSize.
	VocabSize int
}

// Name implements Policy.
func (p Mirostat) Name() string { return PolicyMirostat }

// positions returns the positions of the kept candidates, best first.
func (p Mirostat) positions(t *candidate.Table) ([]int, error) {
	vocab := p.VocabSize
	if vocab <= 0 {
		vocab = DefaultVocabSize
	}

	order := t.SortedByScore()
	s := EstimateS(gather(t.Scores(), order))

	k, err := ComputeK(vocab, s, 2*p.Tau)
	if err != nil {
		return nil, err
	}

	kFinal := k + 1
	if kFinal > len(order) {
		return nil, fmt.Errorf("%w: k=%d exceeds %d candidates (s=%v)", ErrInvalidCutoff, kFinal, len(order), s)
	}
	return order[:kFinal], nil
}

// SelectSubset returns the kept rows in descending score order.
func (p Mirostat) SelectSubset(t *candidate.Table) (*candidate.Table, error) {
	top, err := p.positions(t)
	if err != nil {
		return nil, err
	}
	return t.Take(top), nil
}

// SelectOne draws one row from the kept rows.
func (p Mirostat) SelectOne(t *candidate.Table, s Strategy) (string, error) {
	top, err := p.positions(t)
	if err != nil {
		return "", err
	}
	kept := t.Take(top)
	return draw(kept, kept.Scores(), s)
}

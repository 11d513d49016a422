package sampling

import (
	"fmt"
	"math"
	"strings"
)

// Backend computes the probability transforms the policies need.
type Backend interface {
	// Name returns the backend identifier.
	Name() string

	// Softmax returns exp(x_i) / sum(exp(x)). Negative infinity maps to 0.
	// A vector with no finite entry yields NaN everywhere.
	Softmax(x []float64) []float64

	// LogSoftmax returns x_i - log(sum(exp(x))).
	LogSoftmax(x []float64) []float64
}

const (
	// BackendAuto selects the best locally available backend.
	BackendAuto = "auto"

	// BackendCPU is the pure Go backend. It is always available.
	BackendCPU = "cpu"
)

// CPU is the pure Go backend.
var CPU Backend = cpuBackend{}

// NewBackend resolves a backend by name. An empty name means auto.
func NewBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendAuto, BackendCPU:
		return CPU, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, name)
	}
}

func orCPU(b Backend) Backend {
	if b == nil {
		return CPU
	}
	return b
}

type cpuBackend struct{}

func (cpuBackend) Name() string { return BackendCPU }

func (b cpuBackend) Softmax(x []float64) []float64 {
	out := b.LogSoftmax(x)
	for i, v := range out {
		out[i] = math.Exp(v)
	}
	return out
}

func (cpuBackend) LogSoftmax(x []float64) []float64 {
	out := make([]float64, len(x))

	// Find max for numerical stability
	maxVal := math.Inf(-1)
	for _, v := range x {
		if v > maxVal {
			maxVal = v
		}
	}
	if math.IsInf(maxVal, 0) {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	var sum float64
	for _, v := range x {
		sum += math.Exp(v - maxVal)
	}
	logSum := math.Log(sum)

	for i, v := range x {
		out[i] = v - maxVal - logSum
	}
	return out
}

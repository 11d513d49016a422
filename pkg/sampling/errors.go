package sampling

import "errors"

var (
	// ErrInvalidTemperature is returned for a temperature that is not a
	// finite value greater than zero.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidDistribution is returned when a score vector has no
	// selectable entry (empty, or every entry masked).
	ErrInvalidDistribution = errors.New("invalid distribution")

	// ErrInvalidTruncationSize is returned when k lies outside [1, N] or a
	// mass / p threshold lies outside (0, 1].
	ErrInvalidTruncationSize = errors.New("invalid truncation size")

	// ErrInvalidCutoff is returned when the mirostat cutoff is non-finite,
	// negative or larger than the candidate table.
	ErrInvalidCutoff = errors.New("invalid cutoff")

	// ErrUnknownPolicy is returned for an unrecognised policy name.
	ErrUnknownPolicy = errors.New("unknown sampling policy")

	// ErrUnsupportedBackend is returned for a compute backend that is not
	// available in this build.
	ErrUnsupportedBackend = errors.New("unsupported compute backend")
)

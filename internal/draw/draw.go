package draw

import "errors"

var ErrEmptyCandidates = errors.New("empty candidate set")

// PickIndex draws a uniform index in [0, n).
// n <= 0 => ErrEmptyCandidates. nil rng => DefaultRNG().
func PickIndex(n int, rng RandomSource) (int, error) {
	if err := validateCount(n); err != nil {
		return 0, err
	}
	if n == 1 {
		return 0, nil
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return rng.IntN(n), nil
}

// Pick returns a uniformly chosen element of xs.
func Pick[T any](xs []T, rng RandomSource) (T, error) {
	i, err := PickIndex(len(xs), rng)
	if err != nil {
		var zero T
		return zero, err
	}
	return xs[i], nil
}

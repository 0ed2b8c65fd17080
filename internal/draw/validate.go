package draw

func validateCount(n int) error {
	if n <= 0 {
		return ErrEmptyCandidates
	}
	return nil
}

package heap

// Break is a Provider over a Go byte slice allocated up front. The slice never
// moves, so payload slices derived from Bytes() remain valid as the break
// grows. Untouched pages of a large slice are not resident until written.
type Break struct {
	region
}

// NewBreak returns a Break able to grow up to limit bytes.
func NewBreak(limit int) (*Break, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	return &Break{region{mem: make([]byte, limit)}}, nil
}

package consensus

// HeaderChain is an owned, ordered sequence of headers h[0..n) with
// h[i].BlockNum == i and h[i].PrevBlockID == h[i-1].ID(). It has no
// back-pointers; validity-in-context predicates walk the slice directly.
type HeaderChain struct {
	Headers []Header
}

func NewHeaderChain(headers []Header) *HeaderChain {
	return &HeaderChain{Headers: headers}
}

// Tip returns the last header and true, or the zero Header and false if the
// chain is empty.
func (c *HeaderChain) Tip() (Header, bool) {
	if c == nil || len(c.Headers) == 0 {
		return Header{}, false
	}
	return c.Headers[len(c.Headers)-1], true
}

func (c *HeaderChain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Headers)
}

// IsValidTarget reports whether h.Target equals the retarget computed from
// this chain's window at h.Timestamp.
func (c *HeaderChain) IsValidTarget(h Header) bool {
	window := RetargetWindow(c.Headers)
	want, err := Retarget(window, h.Timestamp)
	if err != nil {
		return false
	}
	return want == h.Target
}

// IsValidInChain reports whether h may be legally appended to (or, for
// height 0, stand as the genesis of) this chain.
func (c *HeaderChain) IsValidInChain(h Header) bool {
	if !h.IsValidInIsolation() {
		return false
	}
	if h.BlockNum == 0 {
		return h.IsGenesis()
	}
	tip, ok := c.Tip()
	if !ok {
		return false
	}
	if h.BlockNum != uint64(c.Len()) {
		return false
	}
	if h.PrevBlockID != tip.ID() {
		return false
	}
	if h.Timestamp <= tip.Timestamp {
		return false
	}
	if !c.IsValidTarget(h) {
		return false
	}
	if !h.IsValidPow() {
		return false
	}
	return true
}

// IsValidAt reports IsValidInChain(h) additionally constrained to not be
// timestamped after now.
func (c *HeaderChain) IsValidAt(h Header, now uint64) bool {
	return c.IsValidInChain(h) && h.IsValidAtTimestamp(now)
}

// NextHeader builds the header that would extend this chain at the given
// timestamp: genesis if the chain is empty, otherwise a header chained off
// the tip with a freshly retargeted target, the supplied merkle root, a
// zero nonce, and work-serial/parallel algorithm ids copied from the tip
// (their hash fields start zeroed, to be filled in by mining).
func (c *HeaderChain) NextHeader(merkleRoot [32]byte, now uint64) (Header, error) {
	tip, ok := c.Tip()
	if !ok {
		return HeaderFromGenesis(now), nil
	}
	window := RetargetWindow(c.Headers)
	target, err := Retarget(window, now)
	if err != nil {
		return Header{}, err
	}
	return Header{
		Version:     1,
		PrevBlockID: tip.ID(),
		MerkleRoot:  merkleRoot,
		Timestamp:   now,
		BlockNum:    uint64(c.Len()),
		Target:      target,
		WorkSerAlgo: tip.WorkSerAlgo,
		WorkParAlgo: tip.WorkParAlgo,
	}, nil
}

package consensus

import "testing"

func TestHeaderChainTipEmpty(t *testing.T) {
	c := NewHeaderChain(nil)
	if _, ok := c.Tip(); ok {
		t.Fatalf("expected no tip on empty chain")
	}
	if c.Len() != 0 {
		t.Fatalf("expected len 0")
	}
}

func TestHeaderChainGenesisValidity(t *testing.T) {
	c := NewHeaderChain(nil)
	genesis := HeaderFromGenesis(1000)
	if !c.IsValidInChain(genesis) {
		t.Fatalf("genesis should be valid against an empty chain")
	}
}

func TestHeaderChainNextHeaderFromEmpty(t *testing.T) {
	c := NewHeaderChain(nil)
	h, err := c.NextHeader([32]byte{1}, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.IsGenesis() {
		t.Fatalf("expected genesis header from empty chain")
	}
}

// TestSingleTickMiningScenario exercises the S6 scenario at the consensus
// layer: starting from a one-header chain, the next built header must have
// block_num==1, chain off the tip, and the freshly retargeted target.
func TestSingleTickMiningScenario(t *testing.T) {
	genesis := HeaderFromGenesis(1000)
	c := NewHeaderChain([]Header{genesis})

	now := uint64(2000)
	next, err := c.NextHeader([32]byte{0xaa}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.BlockNum != 1 {
		t.Fatalf("block_num = %d, want 1", next.BlockNum)
	}
	if next.PrevBlockID != genesis.ID() {
		t.Fatalf("prev_block_id mismatch")
	}
	wantTarget, err := Retarget(RetargetWindow(c.Headers), now)
	if err != nil {
		t.Fatalf("unexpected retarget error: %v", err)
	}
	if next.Target != wantTarget {
		t.Fatalf("target mismatch: got %x want %x", next.Target, wantTarget)
	}
}

func TestHeaderChainRejectsWrongBlockNum(t *testing.T) {
	genesis := HeaderFromGenesis(1000)
	c := NewHeaderChain([]Header{genesis})
	bad := Header{Version: 1, BlockNum: 5, PrevBlockID: genesis.ID(), Timestamp: 2000, Target: InitialTarget}
	if c.IsValidInChain(bad) {
		t.Fatalf("expected rejection of header with wrong block_num")
	}
}

func TestHeaderChainRejectsNonIncreasingTimestamp(t *testing.T) {
	genesis := HeaderFromGenesis(1000)
	c := NewHeaderChain([]Header{genesis})
	bad := Header{Version: 1, BlockNum: 1, PrevBlockID: genesis.ID(), Timestamp: 1000, Target: InitialTarget}
	if c.IsValidInChain(bad) {
		t.Fatalf("expected rejection of non-increasing timestamp")
	}
}

func TestHeaderChainIsValidAtRejectsFutureTimestamp(t *testing.T) {
	genesis := HeaderFromGenesis(1000)
	c := NewHeaderChain(nil)
	if c.IsValidAt(genesis, 999) {
		t.Fatalf("expected rejection when now < header timestamp")
	}
	if !c.IsValidAt(genesis, 1000) {
		t.Fatalf("expected acceptance when now == header timestamp")
	}
}

package merkle

import "testing"

func idOf(b byte) [32]byte {
	var id [32]byte
	id[31] = b
	return id
}

func TestSingleLeafRootIsLeafHash(t *testing.T) {
	id := idOf(1)
	tree, err := New([][32]byte{id})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Root != leafHash(id) {
		t.Fatalf("single-leaf root should equal the leaf hash")
	}
	proofs := tree.Iterate()
	if len(proofs) != 1 {
		t.Fatalf("expected 1 proof, got %d", len(proofs))
	}
	if !VerifyProof(id, proofs[0].Proof, tree.Root) {
		t.Fatalf("proof failed to verify")
	}
}

func TestEvenLeavesAllProofsVerify(t *testing.T) {
	ids := [][32]byte{idOf(1), idOf(2), idOf(3), idOf(4)}
	tree, err := New(ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range tree.Iterate() {
		if !VerifyProof(p.ID, p.Proof, tree.Root) {
			t.Fatalf("proof for id %x failed to verify", p.ID)
		}
	}
}

func TestOddLeavesAllProofsVerify(t *testing.T) {
	ids := [][32]byte{idOf(1), idOf(2), idOf(3)}
	tree, err := New(ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range tree.Iterate() {
		if !VerifyProof(p.ID, p.Proof, tree.Root) {
			t.Fatalf("proof for id %x failed to verify", p.ID)
		}
	}
}

func TestEmptyIdsRejected(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error building a tree over zero ids")
	}
}

func TestWrongProofFailsVerification(t *testing.T) {
	ids := [][32]byte{idOf(1), idOf(2), idOf(3), idOf(4)}
	tree, err := New(ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	proofs := tree.Iterate()
	if VerifyProof(idOf(9), proofs[0].Proof, tree.Root) {
		t.Fatalf("expected verification failure for a leaf not in the tree")
	}
}

// Package merkle builds a tagged blake3 Merkle tree over an ordered
// sequence of transaction ids and produces a sibling-path proof per leaf.
// Leaf and interior hashes carry distinct tag bytes so a proof for one
// cannot be replayed as the other.
package merkle

import "github.com/zeebo/blake3"

const (
	leafTag byte = 0x00
	nodeTag byte = 0x01
)

// Step is one sibling hash on a leaf's path to the root, together with
// which side of the pair it sat on.
type Step struct {
	Sibling [32]byte
	// SiblingOnRight is true when Sibling was the right-hand input of the
	// pairwise hash (i.e. the proved node was on the left).
	SiblingOnRight bool
}

// Proof is the sibling path from one leaf to the root.
type Proof struct {
	Index int
	Path  []Step
}

// MerkleTxs is the Merkle tree over an ordered sequence of transaction ids.
type MerkleTxs struct {
	Root  [32]byte
	ids   [][32]byte
	proof []Proof
}

// New builds the tree over ids, in order (ids[0] is conventionally the
// coinbase transaction id).
func New(ids [][32]byte) (*MerkleTxs, error) {
	if len(ids) == 0 {
		return nil, errEmpty
	}
	level := make([][32]byte, len(ids))
	for i, id := range ids {
		level[i] = leafHash(id)
	}

	paths := make([]Proof, len(ids))
	for i := range paths {
		paths[i] = Proof{Index: i}
	}

	indices := make([]int, len(ids))
	for i := range indices {
		indices[i] = i
	}
	for len(level) > 1 {
		next := make([][32]byte, 0, (len(level)+1)/2)
		nextIndices := make([]int, len(indices))
		for i := 0; i < len(level); {
			if i == len(level)-1 {
				// Odd promotion: carry the unpaired node forward unchanged.
				next = append(next, level[i])
				for txIdx, idx := range indices {
					if idx == i {
						nextIndices[txIdx] = len(next) - 1
					}
				}
				i++
				continue
			}
			left, right := level[i], level[i+1]
			parent := nodeHash(left, right)
			parentIdx := len(next)
			next = append(next, parent)
			for txIdx, idx := range indices {
				switch idx {
				case i:
					paths[txIdx].Path = append(paths[txIdx].Path, Step{Sibling: right, SiblingOnRight: true})
					nextIndices[txIdx] = parentIdx
				case i + 1:
					paths[txIdx].Path = append(paths[txIdx].Path, Step{Sibling: left, SiblingOnRight: false})
					nextIndices[txIdx] = parentIdx
				}
			}
			i += 2
		}
		level = next
		indices = nextIndices
	}

	return &MerkleTxs{Root: level[0], ids: append([][32]byte(nil), ids...), proof: paths}, nil
}

// Iterate returns each (tx id, proof) pair, in the order the tree was
// built: the shape the mining loop needs to upsert one proof row per tx.
func (m *MerkleTxs) Iterate() []IDProof {
	out := make([]IDProof, len(m.ids))
	for i, id := range m.ids {
		out[i] = IDProof{ID: id, Proof: m.proof[i]}
	}
	return out
}

// IDProof pairs a transaction id with its Merkle proof.
type IDProof struct {
	ID    [32]byte
	Proof Proof
}

// VerifyProof reports whether leaf combines along proof to root.
func VerifyProof(leaf [32]byte, proof Proof, root [32]byte) bool {
	cur := leafHash(leaf)
	for _, step := range proof.Path {
		if step.SiblingOnRight {
			cur = nodeHash(cur, step.Sibling)
		} else {
			cur = nodeHash(step.Sibling, cur)
		}
	}
	return cur == root
}

func leafHash(id [32]byte) [32]byte {
	var preimage [1 + 32]byte
	preimage[0] = leafTag
	copy(preimage[1:], id[:])
	return blake3.Sum256(preimage[:])
}

func nodeHash(left, right [32]byte) [32]byte {
	var preimage [1 + 32 + 32]byte
	preimage[0] = nodeTag
	copy(preimage[1:33], left[:])
	copy(preimage[33:], right[:])
	return blake3.Sum256(preimage[:])
}

type merkleError string

func (e merkleError) Error() string { return string(e) }

const errEmpty = merkleError("merkle: empty id list")

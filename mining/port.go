// Package mining implements the phased mining control loop (C7) and the
// persistence port (C6) it drives, reconciling an in-memory header chain
// with durable storage and producing candidate headers from an externally
// supplied Merkle root.
package mining

import (
	"earthbucks.dev/ebx-miner/consensus"
	"earthbucks.dev/ebx-miner/merkle"
	"earthbucks.dev/ebx-miner/tx"
)

// Store is the persistence port the mining loop drives. Implementations own
// all storage-technology concerns; the loop only ever sees these operations.
type Store interface {
	GetLongestChain() (*consensus.HeaderChain, error)
	GetChainTipID() ([32]byte, bool, error)
	SaveAccepted(h consensus.Header) error

	GetCandidateHeaders() ([]consensus.Header, error)
	GetValidatedHeaders() ([]consensus.Header, error)
	GetVotingHeaders() ([]consensus.Header, error)

	UpdateIsHeaderValid(id [32]byte, valid bool) error
	UpdateIsBlockValid(id [32]byte, valid bool) error
	UpdateIsVoteValid(id [32]byte, valid bool) error

	SaveCandidate(h consensus.Header) error
	GetCandidate(id [32]byte) (consensus.Header, bool, error)

	DeleteUnusedHeaders(buildingBlockNum uint64) error

	UpsertMerkleProof(proof merkle.Proof, txID [32]byte) error

	InsertRawTx(t tx.Tx, domain string) error
	GetParsedTx(id [32]byte) (tx.Tx, bool, error)
}

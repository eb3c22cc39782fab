// Package store is the bbolt-backed implementation of the mining
// persistence port: one bucket per concern, fixed-width keys, and manual
// encode/decode of fixed-layout rows.
package store

import (
	"encoding/binary"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"earthbucks.dev/ebx-miner/consensus"
	"earthbucks.dev/ebx-miner/merkle"
	"earthbucks.dev/ebx-miner/tx"
)

var (
	bucketAccepted     = []byte("accepted_by_block_num")
	bucketMeta         = []byte("meta")
	bucketHeaders      = []byte("headers_by_id")
	bucketMerkleProofs = []byte("merkle_proofs_by_tx_id")
	bucketRawTx        = []byte("raw_tx_by_id")
)

var keyTipID = []byte("tip_id")

// headerStatus tags which pipeline stage a non-accepted header row occupies.
type headerStatus byte

const (
	statusCandidate headerStatus = 0
	statusValidated headerStatus = 1
	statusVoting    headerStatus = 2
	statusRejected  headerStatus = 3
)

// DB is the bbolt-backed Store implementation.
type DB struct {
	db *bolt.DB
}

// Open opens (creating if absent) the bbolt database at path and ensures
// all buckets exist.
func Open(path string) (*DB, error) {
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open bbolt: %w", err)
	}
	d := &DB{db: bdb}
	if err := d.db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketAccepted, bucketMeta, bucketHeaders, bucketMerkleProofs, bucketRawTx} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func blockNumKey(n uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, n)
	return k
}

func encodeHeaderRow(h consensus.Header, status headerStatus) []byte {
	buf := h.Serialize()
	out := make([]byte, consensus.HeaderSize+1)
	copy(out, buf[:])
	out[consensus.HeaderSize] = byte(status)
	return out
}

func decodeHeaderRow(b []byte) (consensus.Header, headerStatus, error) {
	if len(b) != consensus.HeaderSize+1 {
		return consensus.Header{}, 0, fmt.Errorf("store: malformed header row, len=%d", len(b))
	}
	var buf [consensus.HeaderSize]byte
	copy(buf[:], b[:consensus.HeaderSize])
	h, err := consensus.DeserializeHeader(buf)
	if err != nil {
		return consensus.Header{}, 0, err
	}
	return h, headerStatus(b[consensus.HeaderSize]), nil
}

// GetLongestChain loads the full accepted header chain, in block-num order.
func (d *DB) GetLongestChain() (*consensus.HeaderChain, error) {
	var headers []consensus.Header
	err := d.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketAccepted).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var buf [consensus.HeaderSize]byte
			copy(buf[:], v)
			h, err := consensus.DeserializeHeader(buf)
			if err != nil {
				return err
			}
			headers = append(headers, h)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return consensus.NewHeaderChain(headers), nil
}

// GetChainTipID returns the accepted chain's tip id, or false if the chain
// is empty.
func (d *DB) GetChainTipID() ([32]byte, bool, error) {
	var out [32]byte
	var found bool
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketMeta).Get(keyTipID)
		if v == nil {
			return nil
		}
		copy(out[:], v)
		found = true
		return nil
	})
	return out, found, err
}

// SaveAccepted appends h to the longest chain, updates the cached tip id,
// and removes h's pipeline row from bucketHeaders, all in one transaction.
// A row left tagged voting after acceptance would be picked up again on
// every later tick.
func (d *DB) SaveAccepted(h consensus.Header) error {
	id := h.ID()
	buf := h.Serialize()
	return d.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketAccepted).Put(blockNumKey(h.BlockNum), buf[:]); err != nil {
			return err
		}
		if err := tx.Bucket(bucketMeta).Put(keyTipID, id[:]); err != nil {
			return err
		}
		return tx.Bucket(bucketHeaders).Delete(id[:])
	})
}

func (d *DB) headersByStatus(status headerStatus) ([]consensus.Header, error) {
	var out []consensus.Header
	err := d.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketHeaders).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			h, st, err := decodeHeaderRow(v)
			if err != nil {
				return err
			}
			if st == status {
				out = append(out, h)
			}
		}
		return nil
	})
	return out, err
}

func (d *DB) GetCandidateHeaders() ([]consensus.Header, error) { return d.headersByStatus(statusCandidate) }
func (d *DB) GetValidatedHeaders() ([]consensus.Header, error) { return d.headersByStatus(statusValidated) }
func (d *DB) GetVotingHeaders() ([]consensus.Header, error)    { return d.headersByStatus(statusVoting) }

func (d *DB) updateStatus(id [32]byte, status headerStatus) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketHeaders)
		v := b.Get(id[:])
		if v == nil {
			return fmt.Errorf("store: unknown header id")
		}
		h, _, err := decodeHeaderRow(v)
		if err != nil {
			return err
		}
		return b.Put(id[:], encodeHeaderRow(h, status))
	})
}

// UpdateIsHeaderValid records the PoW-validity decision: true promotes the
// row to the validated pool, false marks it rejected (it will no longer be
// returned by GetCandidateHeaders).
func (d *DB) UpdateIsHeaderValid(id [32]byte, valid bool) error {
	if valid {
		return d.updateStatus(id, statusValidated)
	}
	return d.updateStatus(id, statusRejected)
}

// UpdateIsBlockValid records the block-validity decision: true promotes the
// row to the voting pool.
func (d *DB) UpdateIsBlockValid(id [32]byte, valid bool) error {
	if valid {
		return d.updateStatus(id, statusVoting)
	}
	return d.updateStatus(id, statusRejected)
}

// UpdateIsVoteValid is a bookkeeping no-op at the header-row level on the
// valid path: a vote-valid header's row is removed from bucketHeaders by
// SaveAccepted in the same loop phase, not tagged in place, since
// "accepted" isn't a candidate/validated/voting pipeline stage.
func (d *DB) UpdateIsVoteValid(id [32]byte, valid bool) error {
	if valid {
		return nil
	}
	return d.updateStatus(id, statusRejected)
}

// SaveCandidate inserts a freshly built candidate header.
func (d *DB) SaveCandidate(h consensus.Header) error {
	id := h.ID()
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketHeaders).Put(id[:], encodeHeaderRow(h, statusCandidate))
	})
}

// GetCandidate is an idempotency check: does a header row with this id
// already exist, in any pipeline stage?
func (d *DB) GetCandidate(id [32]byte) (consensus.Header, bool, error) {
	var out consensus.Header
	var found bool
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketHeaders).Get(id[:])
		if v == nil {
			return nil
		}
		h, _, err := decodeHeaderRow(v)
		if err != nil {
			return err
		}
		out = h
		found = true
		return nil
	})
	return out, found, err
}

// DeleteUnusedHeaders removes candidate/validated/voting rows whose
// block_num is below buildingBlockNum; they can no longer extend the
// chain the loop is currently building on.
func (d *DB) DeleteUnusedHeaders(buildingBlockNum uint64) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketHeaders)
		c := b.Cursor()
		var stale [][]byte
		for k, v := c.First(); k != nil; k, v = c.Next() {
			h, _, err := decodeHeaderRow(v)
			if err != nil {
				return err
			}
			if h.BlockNum < buildingBlockNum {
				stale = append(stale, append([]byte(nil), k...))
			}
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpsertMerkleProof stores a single transaction's Merkle proof.
func (d *DB) UpsertMerkleProof(proof merkle.Proof, txID [32]byte) error {
	val := encodeProof(proof)
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMerkleProofs).Put(txID[:], val)
	})
}

// InsertRawTx stages a raw transaction (the coinbase, in practice) keyed by
// its id, idempotently.
func (d *DB) InsertRawTx(t tx.Tx, domain string) error {
	return d.db.Update(func(btx *bolt.Tx) error {
		id := t.Id()
		return btx.Bucket(bucketRawTx).Put(id[:], t.Raw())
	})
}

// GetParsedTx fetches and re-parses a staged raw transaction by id.
func (d *DB) GetParsedTx(id [32]byte) (tx.Tx, bool, error) {
	var raw []byte
	err := d.db.View(func(btx *bolt.Tx) error {
		v := btx.Bucket(bucketRawTx).Get(id[:])
		if v == nil {
			return nil
		}
		raw = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return tx.Tx{}, false, err
	}
	if raw == nil {
		return tx.Tx{}, false, nil
	}
	return tx.FromRawBytes(raw), true, nil
}

// encodeProof serializes a merkle.Proof as: index u32be, step count u32be,
// then per step a side byte followed by the 32-byte sibling.
func encodeProof(p merkle.Proof) []byte {
	out := make([]byte, 0, 8+len(p.Path)*33)
	var idxBuf, lenBuf [4]byte
	binary.BigEndian.PutUint32(idxBuf[:], uint32(p.Index))
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(p.Path)))
	out = append(out, idxBuf[:]...)
	out = append(out, lenBuf[:]...)
	for _, step := range p.Path {
		side := byte(0)
		if step.SiblingOnRight {
			side = 1
		}
		out = append(out, side)
		out = append(out, step.Sibling[:]...)
	}
	return out
}

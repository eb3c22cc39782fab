package consensus

import "encoding/hex"

const (
	// BlocksPerTargetAdjPeriod is the retarget window length: exactly two
	// weeks when the block interval is 10 minutes.
	BlocksPerTargetAdjPeriod = 2016
	// BlockInterval is the intended seconds between blocks.
	BlockInterval = 600
	// HeaderSize is the fixed, bit-exact serialized length of a Header.
	HeaderSize = 220
)

// InitialTarget is the maximum target: 32 bytes of 0xff.
var InitialTarget = [32]byte{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

// Header is the 220-byte summary of a block: sufficient for chain linkage
// and proof-of-work verification without the underlying transaction set.
type Header struct {
	Version     uint32
	PrevBlockID [32]byte
	MerkleRoot  [32]byte
	Timestamp   uint64
	BlockNum    uint64
	Target      [32]byte
	Nonce       [32]byte
	WorkSerAlgo uint32
	WorkSerHash [32]byte
	WorkParAlgo uint32
	WorkParHash [32]byte
}

// Serialize emits the header's exact 220-byte wire encoding in field order:
// version, prev_block_id, merkle_root, timestamp, block_num, target, nonce,
// work_ser_algo, work_ser_hash, work_par_algo, work_par_hash.
func (h Header) Serialize() [HeaderSize]byte {
	w := NewBufWriter()
	w.WriteU32BE(h.Version)
	w.Write(h.PrevBlockID[:])
	w.Write(h.MerkleRoot[:])
	w.WriteU64BE(h.Timestamp)
	w.WriteU64BE(h.BlockNum)
	w.Write(h.Target[:])
	w.Write(h.Nonce[:])
	w.WriteU32BE(h.WorkSerAlgo)
	w.Write(h.WorkSerHash[:])
	w.WriteU32BE(h.WorkParAlgo)
	w.Write(h.WorkParHash[:])
	var out [HeaderSize]byte
	copy(out[:], w.ToBuf())
	return out
}

// DeserializeHeader reconstructs a Header from its exact 220-byte encoding.
func DeserializeHeader(buf [HeaderSize]byte) (Header, error) {
	return HeaderFromReader(NewBufReader(buf[:]))
}

// HeaderFromReader parses a Header from r, failing if fewer than HeaderSize
// bytes remain.
func HeaderFromReader(r *BufReader) (Header, error) {
	var h Header
	if r.RemainderLen() < HeaderSize {
		return h, txerr(ERR_INVALID_SIZE, "header: not enough data")
	}
	var err error
	if h.Version, err = r.ReadU32BE(); err != nil {
		return Header{}, err
	}
	prevID, err := r.Read(32)
	if err != nil {
		return Header{}, err
	}
	copy(h.PrevBlockID[:], prevID)
	merkleRoot, err := r.Read(32)
	if err != nil {
		return Header{}, err
	}
	copy(h.MerkleRoot[:], merkleRoot)
	if h.Timestamp, err = r.ReadU64BE(); err != nil {
		return Header{}, err
	}
	if h.BlockNum, err = r.ReadU64BE(); err != nil {
		return Header{}, err
	}
	target, err := r.Read(32)
	if err != nil {
		return Header{}, err
	}
	copy(h.Target[:], target)
	nonce, err := r.Read(32)
	if err != nil {
		return Header{}, err
	}
	copy(h.Nonce[:], nonce)
	if h.WorkSerAlgo, err = r.ReadU32BE(); err != nil {
		return Header{}, err
	}
	workSerHash, err := r.Read(32)
	if err != nil {
		return Header{}, err
	}
	copy(h.WorkSerHash[:], workSerHash)
	if h.WorkParAlgo, err = r.ReadU32BE(); err != nil {
		return Header{}, err
	}
	workParHash, err := r.Read(32)
	if err != nil {
		return Header{}, err
	}
	copy(h.WorkParHash[:], workParHash)
	return h, nil
}

func (h Header) Hex() string {
	buf := h.Serialize()
	return hex.EncodeToString(buf[:])
}

func HeaderFromHex(s string) (Header, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Header{}, txerrWrap(ERR_INVALID_HEX, "header: invalid hex", err)
	}
	if len(raw) != HeaderSize {
		return Header{}, txerr(ERR_INVALID_SIZE, "header: expected 220 bytes")
	}
	var buf [HeaderSize]byte
	copy(buf[:], raw)
	return DeserializeHeader(buf)
}

// Hash is blake3(serialize(h)).
func (h Header) Hash() [32]byte {
	buf := h.Serialize()
	return Blake3Hash(buf[:])
}

// ID is double_blake3(serialize(h)): the value compared against Target for
// proof-of-work, and the value chained into PrevBlockID by a child header.
func (h Header) ID() [32]byte {
	buf := h.Serialize()
	return DoubleBlake3Hash(buf[:])
}

func IsValidVersion(v uint32) bool {
	return v == 1
}

func (h Header) IsValidInIsolation() bool {
	buf := h.Serialize()
	return len(buf) == HeaderSize && IsValidVersion(h.Version)
}

func (h Header) IsValidAtTimestamp(now uint64) bool {
	return h.Timestamp <= now
}

func (h Header) IsGenesis() bool {
	return h.BlockNum == 0 && h.PrevBlockID == [32]byte{}
}

// IsValidPow reports whether the header's id is strictly less than its
// target, interpreting both as big-endian 256-bit unsigned integers.
// Equality does not satisfy proof-of-work.
func (h Header) IsValidPow() bool {
	id := h.ID()
	return lessBE256(id, h.Target)
}

// HeaderFromGenesis builds the genesis header at the given timestamp: height
// 0, zero parent id, and the initial maximum target.
func HeaderFromGenesis(now uint64) Header {
	return Header{
		Version:   1,
		Timestamp: now,
		Target:    InitialTarget,
	}
}

// lessBE256 reports whether a < b, both interpreted as big-endian unsigned
// 256-bit integers.
func lessBE256(a, b [32]byte) bool {
	for i := 0; i < 32; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

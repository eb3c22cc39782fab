// Package tx provides the thin transaction value type the mining loop needs
// to stage a coinbase and feed it into a Merkle tree. It does not validate
// scripts, signatures, or spend authorization; that is a distinct external
// collaborator's concern.
package tx

import (
	"encoding/binary"

	"earthbucks.dev/ebx-miner/consensus"
)

// Tx is an opaque, already-serialized transaction: only its raw bytes and
// derived id matter to the mining loop.
type Tx struct {
	raw []byte
	id  [32]byte
}

// FromRawBytes wraps an already-serialized transaction and computes its id.
func FromRawBytes(raw []byte) Tx {
	id := consensus.DoubleBlake3Hash(raw)
	return Tx{raw: append([]byte(nil), raw...), id: id}
}

func (t Tx) Raw() []byte  { return append([]byte(nil), t.raw...) }
func (t Tx) Id() [32]byte { return t.id }

// NewCoinbase builds the coinbase transaction for blockNum: a raw payload of
// pkh || u16be(len(domain)) || domain || block_num || reward, with no inputs: coinbase
// transactions mint the block subsidy rather than spending a prior output.
func NewCoinbase(pkh [32]byte, domain string, blockNum uint64) Tx {
	reward := consensus.CoinbaseAmount(blockNum)

	w := consensus.NewBufWriter()
	w.Write(pkh[:])
	domainBytes := []byte(domain)
	lenBuf := make([]byte, 2)
	binary.BigEndian.PutUint16(lenBuf, uint16(len(domainBytes)))
	w.Write(lenBuf)
	w.Write(domainBytes)
	w.WriteU64BE(blockNum)
	w.WriteU64BE(reward)

	return FromRawBytes(w.ToBuf())
}

package consensus

import "encoding/binary"

// BufWriter is an append-only byte builder with no length limit beyond
// available memory.
type BufWriter struct {
	buf []byte
}

func NewBufWriter() *BufWriter {
	return &BufWriter{}
}

func (w *BufWriter) Write(b []byte) *BufWriter {
	w.buf = append(w.buf, b...)
	return w
}

func (w *BufWriter) WriteU8(v uint8) *BufWriter {
	w.buf = append(w.buf, v)
	return w
}

func (w *BufWriter) WriteU16BE(v uint16) *BufWriter {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return w.Write(b[:])
}

func (w *BufWriter) WriteU32BE(v uint32) *BufWriter {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return w.Write(b[:])
}

func (w *BufWriter) WriteU64BE(v uint64) *BufWriter {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return w.Write(b[:])
}

// WriteU128BE writes a 128-bit big-endian unsigned integer as (hi, lo) u64 words.
func (w *BufWriter) WriteU128BE(hi, lo uint64) *BufWriter {
	w.WriteU64BE(hi)
	w.WriteU64BE(lo)
	return w
}

// WriteU256BE writes a 256-bit big-endian unsigned integer from its
// big-endian byte encoding, hi-to-lo.
func (w *BufWriter) WriteU256BE(v [32]byte) *BufWriter {
	return w.Write(v[:])
}

func (w *BufWriter) ToBuf() []byte {
	out := make([]byte, len(w.buf))
	copy(out, w.buf)
	return out
}

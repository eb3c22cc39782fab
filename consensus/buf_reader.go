package consensus

import "encoding/binary"

// BufReader is a cursor over an owned byte buffer. Every typed read is
// atomic: on failure the position is left exactly where it was before the
// call started (the var-int width prefix is the one documented exception;
// see ReadVarIntBuf).
type BufReader struct {
	buf []byte
	pos int
}

// NewBufReader wraps buf for sequential reading starting at position 0.
func NewBufReader(buf []byte) *BufReader {
	return &BufReader{buf: buf}
}

// EOF reports whether every byte of the buffer has been consumed.
func (r *BufReader) EOF() bool {
	return r.pos >= len(r.buf)
}

// RemainderLen returns the number of unread bytes.
func (r *BufReader) RemainderLen() int {
	if r.pos >= len(r.buf) {
		return 0
	}
	return len(r.buf) - r.pos
}

// Read returns the next n bytes and advances the cursor. On underflow the
// cursor is not advanced.
func (r *BufReader) Read(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, txerr(ERR_NOT_ENOUGH_DATA, "read: not enough data")
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

// ReadRemainder returns and advances past every remaining byte. It cannot fail.
func (r *BufReader) ReadRemainder() []byte {
	out := r.buf[r.pos:]
	r.pos = len(r.buf)
	return out
}

func (r *BufReader) ReadU8() (uint8, error) {
	b, err := r.Read(1)
	if err != nil {
		return 0, txerrWrap(ERR_NOT_ENOUGH_DATA, "read_u8: not enough data", err)
	}
	return b[0], nil
}

func (r *BufReader) ReadU16BE() (uint16, error) {
	b, err := r.Read(2)
	if err != nil {
		return 0, txerrWrap(ERR_NOT_ENOUGH_DATA, "read_u16_be: not enough data", err)
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *BufReader) ReadU32BE() (uint32, error) {
	b, err := r.Read(4)
	if err != nil {
		return 0, txerrWrap(ERR_NOT_ENOUGH_DATA, "read_u32_be: not enough data", err)
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *BufReader) ReadU64BE() (uint64, error) {
	b, err := r.Read(8)
	if err != nil {
		return 0, txerrWrap(ERR_NOT_ENOUGH_DATA, "read_u64_be: not enough data", err)
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReadU128BE reads a 128-bit big-endian unsigned integer as (hi, lo) u64 words.
func (r *BufReader) ReadU128BE() (hi uint64, lo uint64, err error) {
	b, err := r.Read(16)
	if err != nil {
		return 0, 0, txerrWrap(ERR_NOT_ENOUGH_DATA, "read_u128_be: not enough data", err)
	}
	return binary.BigEndian.Uint64(b[:8]), binary.BigEndian.Uint64(b[8:]), nil
}

// ReadU256BE reads a 256-bit big-endian unsigned integer as four u64 words,
// most significant first, and returns the big-endian byte encoding.
func (r *BufReader) ReadU256BE() ([32]byte, error) {
	var out [32]byte
	b, err := r.Read(32)
	if err != nil {
		return out, txerrWrap(ERR_NOT_ENOUGH_DATA, "read_u256_be: not enough data", err)
	}
	copy(out[:], b)
	return out, nil
}

// ReadVarIntBuf reads the raw bytes of a minimally-encoded variable-length
// integer. The width prefix byte is always consumed, even when the
// minimality check subsequently fails.
func (r *BufReader) ReadVarIntBuf() ([]byte, error) {
	first, err := r.ReadU8()
	if err != nil {
		return nil, txerrWrap(ERR_NOT_ENOUGH_DATA, "read_var_int_buf: not enough data", err)
	}
	switch first {
	case 0xfd:
		rest, err := r.Read(2)
		if err != nil {
			return nil, txerrWrap(ERR_NOT_ENOUGH_DATA, "read_var_int_buf: not enough data", err)
		}
		if binary.BigEndian.Uint16(rest) < 0xfd {
			r.pos -= len(rest)
			return nil, txerr(ERR_NON_MINIMAL_ENCODING, "read_var_int_buf: non-minimal encoding")
		}
		return append([]byte{first}, rest...), nil
	case 0xfe:
		rest, err := r.Read(4)
		if err != nil {
			return nil, txerrWrap(ERR_NOT_ENOUGH_DATA, "read_var_int_buf: not enough data", err)
		}
		if binary.BigEndian.Uint32(rest) < 0x10000 {
			r.pos -= len(rest)
			return nil, txerr(ERR_NON_MINIMAL_ENCODING, "read_var_int_buf: non-minimal encoding")
		}
		return append([]byte{first}, rest...), nil
	case 0xff:
		rest, err := r.Read(8)
		if err != nil {
			return nil, txerrWrap(ERR_NOT_ENOUGH_DATA, "read_var_int_buf: not enough data", err)
		}
		if binary.BigEndian.Uint64(rest) < 0x100000000 {
			r.pos -= len(rest)
			return nil, txerr(ERR_NON_MINIMAL_ENCODING, "read_var_int_buf: non-minimal encoding")
		}
		return append([]byte{first}, rest...), nil
	default:
		return []byte{first}, nil
	}
}

// ReadVarInt decodes a minimally-encoded variable-length integer to a u64.
func (r *BufReader) ReadVarInt() (uint64, error) {
	buf, err := r.ReadVarIntBuf()
	if err != nil {
		return 0, err
	}
	switch buf[0] {
	case 0xfd:
		return uint64(binary.BigEndian.Uint16(buf[1:])), nil
	case 0xfe:
		return uint64(binary.BigEndian.Uint32(buf[1:])), nil
	case 0xff:
		return binary.BigEndian.Uint64(buf[1:]), nil
	default:
		return uint64(buf[0]), nil
	}
}

package consensus

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
)

type vectorCase struct {
	Hex   string `json:"hex"`
	Len   *int   `json:"len"`
	Error string `json:"error"`
}

type vectorGroup struct {
	Errors []vectorCase `json:"errors"`
}

type vectorFile struct {
	Read          vectorGroup `json:"read"`
	ReadU8        vectorGroup `json:"read_u8"`
	ReadU16BE     vectorGroup `json:"read_u16_be"`
	ReadU32BE     vectorGroup `json:"read_u32_be"`
	ReadU64BE     vectorGroup `json:"read_u64_be"`
	ReadVarIntBuf vectorGroup `json:"read_var_int_buf"`
	ReadVarInt    vectorGroup `json:"read_var_int"`
}

func loadVectorFile(t *testing.T) vectorFile {
	t.Helper()
	raw, err := os.ReadFile("../test_vectors/buf_reader.json")
	if err != nil {
		t.Fatalf("reading test_vectors/buf_reader.json: %v", err)
	}
	var v vectorFile
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("parsing test_vectors/buf_reader.json: %v", err)
	}
	return v
}

func decodeVectorHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad vector hex %q: %v", s, err)
	}
	return b
}

func assertErrorPrefix(t *testing.T, err error, wantPrefix string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with prefix %q, got nil", wantPrefix)
	}
	var txErr *TxError
	if !errors.As(err, &txErr) {
		t.Fatalf("expected *TxError, got %T: %v", err, err)
	}
	if !strings.HasPrefix(string(txErr.Code), wantPrefix) {
		t.Fatalf("error code %q does not have prefix %q", txErr.Code, wantPrefix)
	}
}

func TestConformanceVectors(t *testing.T) {
	v := loadVectorFile(t)

	for _, c := range v.Read.Errors {
		n := 1
		if c.Len != nil {
			n = *c.Len
		}
		r := NewBufReader(decodeVectorHex(t, c.Hex))
		_, err := r.Read(n)
		assertErrorPrefix(t, err, c.Error)
	}

	for _, c := range v.ReadU8.Errors {
		r := NewBufReader(decodeVectorHex(t, c.Hex))
		_, err := r.ReadU8()
		assertErrorPrefix(t, err, c.Error)
	}

	for _, c := range v.ReadU16BE.Errors {
		r := NewBufReader(decodeVectorHex(t, c.Hex))
		_, err := r.ReadU16BE()
		assertErrorPrefix(t, err, c.Error)
	}

	for _, c := range v.ReadU32BE.Errors {
		r := NewBufReader(decodeVectorHex(t, c.Hex))
		_, err := r.ReadU32BE()
		assertErrorPrefix(t, err, c.Error)
	}

	for _, c := range v.ReadU64BE.Errors {
		r := NewBufReader(decodeVectorHex(t, c.Hex))
		_, err := r.ReadU64BE()
		assertErrorPrefix(t, err, c.Error)
	}

	for _, c := range v.ReadVarIntBuf.Errors {
		r := NewBufReader(decodeVectorHex(t, c.Hex))
		_, err := r.ReadVarIntBuf()
		assertErrorPrefix(t, err, c.Error)
	}

	for _, c := range v.ReadVarInt.Errors {
		r := NewBufReader(decodeVectorHex(t, c.Hex))
		_, err := r.ReadVarInt()
		assertErrorPrefix(t, err, c.Error)
	}
}

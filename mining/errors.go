package mining

import "fmt"

// FatalError marks a condition the mining loop cannot recover from: any
// storage-write failure on the acceptance path, a storage-write failure
// while producing a candidate (coinbase insert, Merkle proof upsert,
// candidate save), a tip-divergence anomaly, or a failed cleanup delete. The CLI binary
// checks for this type with errors.As to choose a nonzero exit code.
type FatalError struct {
	Phase string
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal in %s: %v", e.Phase, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func fatalf(phase string, err error) error {
	return &FatalError{Phase: phase, Err: err}
}

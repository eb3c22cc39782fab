package consensus

import "math/big"

// Retarget computes the next target from a chain suffix window (length at
// most BlocksPerTargetAdjPeriod, oldest first) and the timestamp of the
// candidate header being built on top of it.
//
// new_target = floor((sum(target_i) * (t* - window[0].timestamp)) / (len(window) * len(window) * BlockInterval))
//
// evaluated as a single division (multiplications first) to minimize
// truncation error, per the formula's derivation: the ratio of real time to
// intended time scales the arithmetic-mean target so that, going forward,
// blocks are expected to take BlockInterval seconds each.
func Retarget(window []Header, newTimestamp uint64) ([32]byte, error) {
	if len(window) == 0 {
		return InitialTarget, nil
	}

	targetSum := new(big.Int)
	for _, h := range window {
		targetSum.Add(targetSum, new(big.Int).SetBytes(h.Target[:]))
	}

	first := window[0].Timestamp
	if newTimestamp <= first {
		var zero [32]byte
		return zero, txerr(ERR_TIMESTAMPS_NOT_INCREASING, "retarget: timestamps must be increasing")
	}
	delta := new(big.Int).SetUint64(newTimestamp - first)

	lenW := big.NewInt(int64(len(window)))
	intended := new(big.Int).Mul(lenW, big.NewInt(BlockInterval))
	denom := new(big.Int).Mul(lenW, intended)

	num := new(big.Int).Mul(targetSum, delta)
	newTarget := new(big.Int).Div(num, denom)

	return bigToTarget(newTarget), nil
}

// RetargetWindow returns the suffix of chain used for the next retarget: the
// last min(len(chain), BlocksPerTargetAdjPeriod) headers.
func RetargetWindow(chain []Header) []Header {
	if len(chain) <= BlocksPerTargetAdjPeriod {
		return chain
	}
	return chain[len(chain)-BlocksPerTargetAdjPeriod:]
}

// bigToTarget serializes x as big-endian, left-zero-padded to 32 bytes. A
// result wider than 32 bytes (overflow beyond 2^256-1) clamps to
// InitialTarget rather than erroring. That is the defined overflow policy.
func bigToTarget(x *big.Int) [32]byte {
	b := x.Bytes()
	if len(b) > 32 {
		return InitialTarget
	}
	var out [32]byte
	copy(out[32-len(b):], b)
	return out
}

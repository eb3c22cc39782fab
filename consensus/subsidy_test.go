package consensus

import "testing"

func TestCoinbaseAmountSchedule(t *testing.T) {
	cases := []struct {
		blockNum uint64
		want     uint64
	}{
		{0, 10_000_000_000},
		{210_000, 5_000_000_000},
		{420_000, 2_500_000_000},
	}
	for _, c := range cases {
		if got := CoinbaseAmount(c.blockNum); got != c.want {
			t.Fatalf("CoinbaseAmount(%d) = %d, want %d", c.blockNum, got, c.want)
		}
	}
}

func TestCoinbaseAmountZeroPastShift64(t *testing.T) {
	if got := CoinbaseAmount(64 * HalvingInterval); got != 0 {
		t.Fatalf("CoinbaseAmount at shift 64 = %d, want 0", got)
	}
}

func TestCoinbaseAmountSumToTwoMillion(t *testing.T) {
	var sum uint64
	for i := uint64(0); i < 2_000_000; i++ {
		sum += CoinbaseAmount(i)
	}
	const want = 4_193_945_312_500_000
	if sum != want {
		t.Fatalf("sum = %d, want %d", sum, want)
	}
}

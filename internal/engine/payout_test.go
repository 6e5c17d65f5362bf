package engine

import (
	"testing"
)

func TestTakerFee(t *testing.T) {
	tests := []struct {
		name   string
		stake  int64
		feeBps int64
		want   int64
	}{
		{"two percent of half a SOL", 500_000_000, 200, 10_000_000},
		{"zero fee", 500_000_000, 0, 0},
		{"truncates toward zero", 99, 200, 1},
		{"rounds tiny stakes to zero", 1, 200, 0},
		{"full fee", 1_000, 10_000, 1_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TakerFee(tt.stake, tt.feeBps)
			if got != tt.want {
				t.Errorf("TakerFee(%d, %d) = %d, want %d", tt.stake, tt.feeBps, got, tt.want)
			}
		})
	}
}

func TestWinnings(t *testing.T) {
	tests := []struct {
		name        string
		stake       int64
		winningPool int64
		losingPool  int64
		want        int64
	}{
		// 500M of a 1B winning pool against a 500M losing pool: stake back
		// plus half the losing pool.
		{"half share", 500_000_000, 1_000_000_000, 500_000_000, 750_000_000},
		{"sole winner takes all", 500_000_000, 500_000_000, 500_000_000, 1_000_000_000},
		{"empty losing pool returns stake", 500_000_000, 1_000_000_000, 0, 500_000_000},
		{"truncating division", 100, 187, 1_000, 100 + 534},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Winnings(tt.stake, tt.winningPool, tt.losingPool)
			if got != tt.want {
				t.Errorf("Winnings(%d, %d, %d) = %d, want %d",
					tt.stake, tt.winningPool, tt.losingPool, got, tt.want)
			}
		})
	}
}

// The stake * losingPool product overflows int64 for large lamport pools;
// the intermediate math must not wrap.
func TestWinningsLargePools(t *testing.T) {
	stake := int64(4_000_000_000_000_000_000)
	winningPool := int64(8_000_000_000_000_000_000)
	losingPool := int64(4_000_000_000_000_000_000)

	got := Winnings(stake, winningPool, losingPool)
	want := int64(6_000_000_000_000_000_000)
	if got != want {
		t.Errorf("Winnings overflowed: got %d, want %d", got, want)
	}
}

func BenchmarkWinnings(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Winnings(500_000_000, 1_000_000_000, 500_000_000)
	}
}

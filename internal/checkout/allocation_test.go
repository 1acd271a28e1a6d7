package checkout

import "testing"

func TestAllocateProportionalConservesAmount(t *testing.T) {
	cases := []struct {
		name    string
		amount  int
		weights []int
	}{
		{"even split", 400, []int{5000, 5000}},
		{"uneven split", 800, []int{3000, 2000, 5000}},
		{"indivisible remainder", 100, []int{1, 1, 1}},
		{"single weight", 733, []int{999}},
		{"zero weight slot", 500, []int{0, 2500, 2500}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			shares := AllocateProportional(tc.amount, tc.weights)
			if len(shares) != len(tc.weights) {
				t.Fatalf("expected %d shares, got %d", len(tc.weights), len(shares))
			}
			sum := 0
			for i, share := range shares {
				if share < 0 {
					t.Fatalf("share %d is negative: %d", i, share)
				}
				if tc.weights[i] == 0 && share != 0 {
					t.Fatalf("zero-weight slot %d received %d", i, share)
				}
				sum += share
			}
			if sum != tc.amount {
				t.Fatalf("shares sum to %d, want %d", sum, tc.amount)
			}
		})
	}
}

func TestAllocateProportionalShares(t *testing.T) {
	// 800 across subtotals 3000/2000/5000 splits 240/160/400 exactly.
	shares := AllocateProportional(800, []int{3000, 2000, 5000})
	want := []int{240, 160, 400}
	for i := range want {
		if shares[i] != want[i] {
			t.Fatalf("share %d = %d, want %d", i, shares[i], want[i])
		}
	}
}

func TestAllocateProportionalRemainderGoesToLastPositiveWeight(t *testing.T) {
	// 100/3 floors to 33 each; the final slot absorbs the remainder.
	shares := AllocateProportional(100, []int{1, 1, 1})
	if shares[0] != 33 || shares[1] != 33 || shares[2] != 34 {
		t.Fatalf("unexpected shares %v", shares)
	}

	// With a trailing zero weight the remainder lands on the last positive one.
	shares = AllocateProportional(100, []int{1, 1, 0})
	if shares[0] != 50 || shares[1] != 50 || shares[2] != 0 {
		t.Fatalf("unexpected shares %v", shares)
	}
}

func TestAllocateProportionalDegenerateInputs(t *testing.T) {
	if shares := AllocateProportional(0, []int{10, 20}); shares[0] != 0 || shares[1] != 0 {
		t.Fatalf("zero amount should allocate nothing, got %v", shares)
	}
	if shares := AllocateProportional(100, nil); len(shares) != 0 {
		t.Fatalf("nil weights should allocate nothing, got %v", shares)
	}
	if shares := AllocateProportional(100, []int{0, 0}); shares[0] != 0 || shares[1] != 0 {
		t.Fatalf("all-zero weights should allocate nothing, got %v", shares)
	}
}

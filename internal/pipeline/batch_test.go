package pipeline

import "testing"

func TestNextLowerBatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want int
	}{
		{50, 25},
		{41, 25},
		{40, 20},
		{30, 20},
		{25, 10},
		{21, 10},
		{20, 5},
		{11, 5},
		{10, 3},
		{6, 3},
		{5, 2},
		{3, 2},
		{2, 2},
	}

	for _, tt := range tests {
		if got := NextLowerBatch(tt.in); got != tt.want {
			t.Errorf("NextLowerBatch(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNextLowerBatch_MonotonicDecrease(t *testing.T) {
	t.Parallel()

	for n := 3; n <= 100; n++ {
		got := NextLowerBatch(n)
		if got >= n {
			t.Errorf("NextLowerBatch(%d) = %d, expected strict decrease", n, got)
		}
		if got < minBatchSize {
			t.Errorf("NextLowerBatch(%d) = %d, below floor", n, got)
		}
	}
}

func TestBatchController_ConsecutiveEmpties(t *testing.T) {
	t.Parallel()

	ctrl := newBatchController(40)

	ctrl.RecordEmpty()
	if ctrl.Size() != 40 {
		t.Fatalf("one empty should not shrink, size = %d", ctrl.Size())
	}

	ctrl.RecordEmpty()
	if ctrl.Size() != 20 {
		t.Fatalf("two consecutive empties should shrink 40 to 20, got %d", ctrl.Size())
	}

	// A success in between resets the streak.
	ctrl.RecordEmpty()
	ctrl.RecordSuccess()
	ctrl.RecordEmpty()
	if ctrl.Size() != 20 {
		t.Errorf("interrupted empty streak should not shrink, size = %d", ctrl.Size())
	}
}

func TestBatchController_ZeroYieldAndFloor(t *testing.T) {
	t.Parallel()

	ctrl := newBatchController(10)

	ctrl.RecordZeroYield()
	if ctrl.Size() != 3 {
		t.Fatalf("zero yield should shrink 10 to 3, got %d", ctrl.Size())
	}

	// The ladder bottoms out at the floor and stays there.
	ctrl.RecordZeroYield()
	ctrl.RecordZeroYield()
	ctrl.RecordZeroYield()
	if ctrl.Size() != minBatchSize {
		t.Errorf("size should floor at %d, got %d", minBatchSize, ctrl.Size())
	}
}

func TestBatchController_SeededBelowFloor(t *testing.T) {
	t.Parallel()

	if got := newBatchController(1).Size(); got != minBatchSize {
		t.Errorf("controller seeded below floor should clamp to %d, got %d", minBatchSize, got)
	}
}

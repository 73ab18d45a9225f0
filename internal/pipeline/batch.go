// Package pipeline drives the per-category generation loop: batch
// sizing, prompting, validation, dedup, persistence and checkpointing,
// scheduled across a bounded worker pool.
package pipeline

// minBatchSize is the floor below which a batch is never shrunk.
const minBatchSize = 2

// NextLowerBatch steps a batch size down a fixed ladder. The thresholds
// are tuned values carried over from production runs; they are kept as a
// literal table rather than a formula.
func NextLowerBatch(n int) int {
	switch {
	case n > 40:
		return 25
	case n > 25:
		return 20
	case n > 20:
		return 10
	case n > 10:
		return 5
	case n > 5:
		return 3
	default:
		return minBatchSize
	}
}

// batchController holds the dynamic batch size for one (category, kind)
// task. It only ever shrinks the size within a run: persistent low-yield
// batches (the model struggling to produce novel valid items as a
// category saturates) step it down the ladder.
type batchController struct {
	size             int
	consecutiveEmpty int
}

// newBatchController seeds a controller from the configured default.
func newBatchController(initial int) *batchController {
	if initial < minBatchSize {
		initial = minBatchSize
	}
	return &batchController{size: initial}
}

// Size returns the current dynamic batch size.
func (b *batchController) Size() int {
	return b.size
}

// RecordEmpty notes an unparsable or empty response. Two consecutive
// empties shrink the batch.
func (b *batchController) RecordEmpty() {
	b.consecutiveEmpty++
	if b.consecutiveEmpty >= 2 {
		b.consecutiveEmpty = 0
		b.shrink()
	}
}

// RecordZeroYield notes a parsed batch that produced no accepted items
// after validation and dedup; this shrinks immediately.
func (b *batchController) RecordZeroYield() {
	b.consecutiveEmpty = 0
	b.shrink()
}

// RecordSuccess resets the empty-response streak.
func (b *batchController) RecordSuccess() {
	b.consecutiveEmpty = 0
}

func (b *batchController) shrink() {
	if b.size > minBatchSize {
		b.size = NextLowerBatch(b.size)
	}
}

// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package pow

import (
	"github.com/blinklabs-io/powd/arith"
)

// windowBlock is one block of the averaging window
type windowBlock struct {
	target arith.Uint256
	// Unclamped solve time against the previous effective timestamp
	solveTime int64
}

// averagingWindow walks the n most recent blocks oldest to newest. A block
// whose timestamp does not exceed the running previous timestamp is treated
// as if it were mined one second after it.
//
// The running timestamp starts at the oldest block of the window itself, so
// the oldest block always gets a solve time of 1.
func averagingWindow(last HeaderChain, n int64) []windowBlock {
	height := last.Height()
	first := height - n + 1
	previousTimestamp := ancestorOrPanic(last, first).Timestamp()
	ret := make([]windowBlock, 0, n)
	for i := first; i <= height; i++ {
		block := ancestorOrPanic(last, i)
		thisTimestamp := block.Timestamp()
		if thisTimestamp <= previousTimestamp {
			thisTimestamp = previousTimestamp + 1
		}
		ret = append(
			ret,
			windowBlock{
				target:    targetFromCompact(block.Bits()),
				solveTime: thisTimestamp - previousTimestamp,
			},
		)
		previousTimestamp = thisTimestamp
	}
	return ret
}

// WeightedNextRequiredBits implements the linearly weighted moving average
// retarget. Recent solve times weigh more than older ones, and each block
// may ease the target by at most 6/5 or tighten it to 2/3 of its parent's.
func WeightedNextRequiredBits(last HeaderChain, p *Params) uint32 {
	n := p.AveragingWindow
	t := p.TargetSpacing

	prevTarget := targetFromCompact(last.Bits())
	easingTarget := prevTarget.MulDiv64(6, 5)
	tighteningTarget := prevTarget.MulDiv64(2, 3)

	// Sum of the weights 1..n, each scaled by the target spacing
	k := n * (n + 1) * t / 2
	minSolveTime := t / 6
	maxSolveTime := 6 * t

	var sum arith.Accumulator
	for i, block := range averagingWindow(last, n) {
		weight := int64(i + 1)
		solveTime := min(max(block.solveTime, minSolveTime), maxSolveTime)
		sum.AddProduct(block.target, uint64(solveTime*weight)) // nolint:gosec
	}
	nextTarget := sum.Quo64(uint64(k)) // nolint:gosec

	switch {
	case nextTarget.Gt(p.PowLimit):
		nextTarget = p.PowLimit
	case nextTarget.Gt(easingTarget):
		nextTarget = easingTarget
	case nextTarget.Lt(tighteningTarget):
		nextTarget = tighteningTarget
	}
	return TargetToCompact(nextTarget)
}

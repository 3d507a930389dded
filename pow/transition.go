// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package pow

// IsPermittedTransition reports whether a block at height may carry newBits
// when its parent carries oldBits. On adjustment boundaries the new target
// must lie within what the legacy retarget could have produced; elsewhere
// the bits must not change.
func IsPermittedTransition(p *Params, height int64, oldBits uint32, newBits uint32) bool {
	if p.AllowMinDifficultyBlocks {
		return true
	}

	if height%p.DifficultyAdjustmentInterval() != 0 {
		return oldBits == newBits
	}

	smallestTimespan := uint64(p.TargetTimespan / 4) // nolint:gosec
	largestTimespan := uint64(p.TargetTimespan * 4)  // nolint:gosec
	targetTimespan := uint64(p.TargetTimespan)       // nolint:gosec

	oldTarget := targetFromCompact(oldBits)
	observedTarget := targetFromCompact(newBits)

	// Easiest target the retarget could have produced, rounded the way the
	// retarget rounds it
	largestTarget := oldTarget.MulDiv64(largestTimespan, targetTimespan)
	if largestTarget.Gt(p.PowLimit) {
		largestTarget = p.PowLimit
	}
	if roundTrip(largestTarget).Lt(observedTarget) {
		return false
	}

	// Hardest target the retarget could have produced
	smallestTarget := oldTarget.MulDiv64(smallestTimespan, targetTimespan)
	if smallestTarget.Gt(p.PowLimit) {
		smallestTarget = p.PowLimit
	}
	return !roundTrip(smallestTarget).Gt(observedTarget)
}

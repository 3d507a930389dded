// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package pow

import (
	"fmt"
)

// LegacyNextRequiredBits implements the periodic retarget. The target only
// changes on the first block of each adjustment interval.
func LegacyNextRequiredBits(last HeaderChain, candidateTime int64, p *Params) uint32 {
	interval := p.DifficultyAdjustmentInterval()
	if (last.Height()+1)%interval != 0 {
		if p.AllowMinDifficultyBlocks {
			powLimitBits := p.PowLimitBits()
			// A block more than two spacings after its parent may be
			// mined at minimum difficulty
			if candidateTime > last.Timestamp()+p.TargetSpacing*2 {
				return powLimitBits
			}
			return lastNonMinDifficultyBits(last, interval, powLimitBits)
		}
		return last.Bits()
	}
	firstHeight := last.Height() - (interval - 1)
	if firstHeight < 0 {
		panic(
			fmt.Sprintf(
				"pow: adjustment period starting at height %d",
				firstHeight,
			),
		)
	}
	first := ancestorOrPanic(last, firstHeight)
	return CalculateLegacyBits(last, first.Timestamp(), p)
}

// lastNonMinDifficultyBits walks back from last to the most recent block that
// was not mined under the min-difficulty exception. The walk stops at the
// start of the adjustment period, so it takes fewer than interval steps.
func lastNonMinDifficultyBits(last HeaderChain, interval int64, powLimitBits uint32) uint32 {
	cur := last
	for steps := int64(0); steps < interval; steps++ {
		height := cur.Height()
		if height == 0 || height%interval == 0 || cur.Bits() != powLimitBits {
			break
		}
		cur = ancestorOrPanic(cur, height-1)
	}
	return cur.Bits()
}

// CalculateLegacyBits scales the target by the time the last adjustment
// period took, limited to a factor of 4 in either direction.
func CalculateLegacyBits(last HeaderChain, firstBlockTime int64, p *Params) uint32 {
	if p.NoRetargeting {
		return last.Bits()
	}

	actualTimespan := last.Timestamp() - firstBlockTime
	if actualTimespan < p.TargetTimespan/4 {
		actualTimespan = p.TargetTimespan / 4
	}
	if actualTimespan > p.TargetTimespan*4 {
		actualTimespan = p.TargetTimespan * 4
	}

	baseBits := last.Bits()
	if p.EnforceFirstBlockOfPeriod {
		// The first block of the period cannot use the min-difficulty
		// exception, so it always carries the real difficulty
		firstHeight := last.Height() - (p.DifficultyAdjustmentInterval() - 1)
		baseBits = ancestorOrPanic(last, firstHeight).Bits()
	}

	next := targetFromCompact(baseBits).MulDiv64(
		uint64(actualTimespan), // nolint:gosec
		uint64(p.TargetTimespan),
	)
	if next.Gt(p.PowLimit) {
		next = p.PowLimit
	}
	return TargetToCompact(next)
}

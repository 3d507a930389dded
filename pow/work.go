// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package pow

import (
	"github.com/blinklabs-io/powd/arith"
)

// CalcWork returns the expected number of hashes needed to find a block with
// the given bits, 2^256 / (target + 1). Bits that do not decode to a usable
// target carry no work.
func CalcWork(bits uint32) arith.Uint256 {
	target, negative, overflow := CompactToTarget(bits)
	if negative || overflow || target.IsZero() {
		return arith.Zero()
	}
	// 2^256 does not fit in 256 bits, but 2^256 / (target+1) equals
	// (~target / (target+1)) + 1
	denominator := target.Add(arith.FromUint64(1))
	return target.Not().Div(denominator).Add(arith.FromUint64(1))
}

// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package pow

import (
	"github.com/blinklabs-io/powd/arith"
)

// DeriveTarget decodes bits into a target. It returns false if the encoding
// is negative, zero, overflowed or easier than powLimit.
func DeriveTarget(bits uint32, powLimit arith.Uint256) (arith.Uint256, bool) {
	target, negative, overflow := CompactToTarget(bits)
	if negative || overflow || target.IsZero() || target.Gt(powLimit) {
		return arith.Uint256{}, false
	}
	return target, true
}

// CheckProofOfWork reports whether hash satisfies the target encoded in
// bits. The hash must be less than or equal to the target.
//
// Binaries built with the powfuzz tag replace the check with a cheap
// predicate on the hash so fuzzers can produce accepted headers.
func CheckProofOfWork(hash Hash, bits uint32, p *Params) bool {
	if fuzzing {
		return fuzzProofOfWork(hash)
	}
	return checkProofOfWork(hash, bits, p)
}

func checkProofOfWork(hash Hash, bits uint32, p *Params) bool {
	target, ok := DeriveTarget(bits, p.PowLimit)
	if !ok {
		return false
	}
	return !hash.Number().Gt(target)
}

// fuzzProofOfWork accepts hashes whose most significant bit is clear
func fuzzProofOfWork(hash Hash) bool {
	return hash[31]&0x80 == 0
}

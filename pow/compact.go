// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package pow

import (
	"github.com/blinklabs-io/powd/arith"
)

const (
	compactSignBit      = 0x00800000
	compactMantissaMask = 0x007fffff
)

// CompactToTarget converts a compact (nBits) value to a 256-bit target.
// The first byte is the exponent, the next 3 bytes are the mantissa.
// Target = mantissa * 2^(8*(exp-3)).
//
// The negative flag is set when the sign bit of a non-zero mantissa is set.
// The overflow flag is set when a non-zero mantissa would be shifted past
// 256 bits. In both cases the returned target is still the unsigned
// magnitude that fits, which callers are expected to reject.
func CompactToTarget(bits uint32) (target arith.Uint256, negative bool, overflow bool) {
	exp := bits >> 24
	mantissa := bits & compactMantissaMask
	if exp <= 3 {
		mantissa >>= 8 * (3 - exp)
		target = arith.FromUint64(uint64(mantissa))
	} else {
		target = arith.FromUint64(uint64(mantissa)).Lsh(uint(8 * (exp - 3)))
	}
	negative = mantissa != 0 && bits&compactSignBit != 0
	overflow = mantissa != 0 &&
		(exp > 34 ||
			(mantissa > 0xff && exp > 33) ||
			(mantissa > 0xffff && exp > 32))
	return target, negative, overflow
}

// TargetToCompact converts a 256-bit target to its compact form. Low-order
// bits that do not fit in the 3 byte mantissa are dropped, never rounded up.
func TargetToCompact(target arith.Uint256) uint32 {
	size := uint32((target.BitLen() + 7) / 8)
	var compact uint32
	if size <= 3 {
		compact = uint32(target.Low64() << (8 * (3 - size))) // nolint:gosec
	} else {
		compact = uint32(target.Rsh(uint(8 * (size - 3))).Low64()) // nolint:gosec
	}
	// The 0x00800000 bit denotes the sign, so if it is already set divide
	// the mantissa by 256 and increase the exponent
	if compact&compactSignBit != 0 {
		compact >>= 8
		size++
	}
	return compact | size<<24
}

// targetFromCompact decodes bits, ignoring the negative/overflow flags. The
// retarget algorithms only ever see bits that passed validation.
func targetFromCompact(bits uint32) arith.Uint256 {
	target, _, _ := CompactToTarget(bits)
	return target
}

// roundTrip passes a target through the compact form, applying the same
// precision loss a stored header would carry
func roundTrip(target arith.Uint256) arith.Uint256 {
	return targetFromCompact(TargetToCompact(target))
}

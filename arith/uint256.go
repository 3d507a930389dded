// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package arith provides the fixed-width 256-bit unsigned integer used for
// proof-of-work targets and chain work.
//
// Values are immutable: every operation returns a new Uint256. Operations
// that cannot be represented in 256 bits either panic (Add, Mul64) or
// saturate (MulDiv64, Accumulator.Quo64) as documented on each method.
package arith

import (
	"encoding/hex"
	"fmt"
	"math/bits"
	"strings"

	"github.com/holiman/uint256"
)

// Uint256 is an immutable 256-bit unsigned integer
type Uint256 struct {
	n uint256.Int
}

var maxUint256 = Uint256{n: uint256.Int{
	^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0),
}}

// Zero returns the zero value
func Zero() Uint256 {
	return Uint256{}
}

// Max returns 2^256 - 1
func Max() Uint256 {
	return maxUint256
}

func FromUint64(x uint64) Uint256 {
	var ret Uint256
	ret.n.SetUint64(x)
	return ret
}

// FromBytes interprets b as a big-endian unsigned integer. Inputs longer
// than 32 bytes keep only the low-order 32 bytes.
func FromBytes(b []byte) Uint256 {
	var ret Uint256
	ret.n.SetBytes(b)
	return ret
}

// FromLittleEndian interprets b as a little-endian unsigned integer, which is
// the byte order of a block hash as produced by the hash function.
func FromLittleEndian(b [32]byte) Uint256 {
	for i := 0; i < 16; i++ {
		b[i], b[31-i] = b[31-i], b[i]
	}
	return FromBytes(b[:])
}

// FromHex parses a big-endian hex string with an optional 0x prefix. Leading
// zeros are allowed.
func FromHex(s string) (Uint256, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return Uint256{}, fmt.Errorf("empty hex string")
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	buf, err := hex.DecodeString(s)
	if err != nil {
		return Uint256{}, fmt.Errorf("invalid hex string: %w", err)
	}
	// Allow zero padding beyond 32 bytes, but nothing else
	for len(buf) > 32 {
		if buf[0] != 0 {
			return Uint256{}, fmt.Errorf("hex value exceeds 256 bits")
		}
		buf = buf[1:]
	}
	return FromBytes(buf), nil
}

// MustFromHex is like FromHex but panics on error. It is meant for constants.
func MustFromHex(s string) Uint256 {
	ret, err := FromHex(s)
	if err != nil {
		panic("arith: " + err.Error())
	}
	return ret
}

// Bytes32 returns the big-endian representation
func (x Uint256) Bytes32() [32]byte {
	return x.n.Bytes32()
}

// LittleEndian returns the little-endian representation
func (x Uint256) LittleEndian() [32]byte {
	ret := x.n.Bytes32()
	for i := 0; i < 16; i++ {
		ret[i], ret[31-i] = ret[31-i], ret[i]
	}
	return ret
}

// Hex returns the zero-padded 64 character big-endian hex representation
func (x Uint256) Hex() string {
	b := x.n.Bytes32()
	return hex.EncodeToString(b[:])
}

func (x Uint256) String() string {
	return x.Hex()
}

func (x Uint256) IsZero() bool {
	return x.n.IsZero()
}

// BitLen returns the number of bits required to represent x
func (x Uint256) BitLen() int {
	return x.n.BitLen()
}

// Low64 returns the lowest 64 bits of x
func (x Uint256) Low64() uint64 {
	return x.n.Uint64()
}

// Cmp returns -1, 0 or +1 depending on whether x is less than, equal to or
// greater than y.
func (x Uint256) Cmp(y Uint256) int {
	return x.n.Cmp(&y.n)
}

func (x Uint256) Eq(y Uint256) bool {
	return x.n.Eq(&y.n)
}

func (x Uint256) Lt(y Uint256) bool {
	return x.n.Lt(&y.n)
}

func (x Uint256) Gt(y Uint256) bool {
	return x.n.Gt(&y.n)
}

// Lsh returns x << n. Bits shifted past the top are dropped.
func (x Uint256) Lsh(n uint) Uint256 {
	var ret Uint256
	if n >= 256 {
		return ret
	}
	ret.n.Lsh(&x.n, n)
	return ret
}

// Rsh returns x >> n
func (x Uint256) Rsh(n uint) Uint256 {
	var ret Uint256
	if n >= 256 {
		return ret
	}
	ret.n.Rsh(&x.n, n)
	return ret
}

// Not returns the bitwise complement of x
func (x Uint256) Not() Uint256 {
	var ret Uint256
	ret.n.Not(&x.n)
	return ret
}

// Add returns x + y. It panics if the sum does not fit in 256 bits.
func (x Uint256) Add(y Uint256) Uint256 {
	var ret Uint256
	if _, overflow := ret.n.AddOverflow(&x.n, &y.n); overflow {
		panic(fmt.Sprintf("arith: overflow in Add(%s, %s)", x, y))
	}
	return ret
}

// Sub returns x - y. It panics if y > x.
func (x Uint256) Sub(y Uint256) Uint256 {
	var ret Uint256
	if _, underflow := ret.n.SubOverflow(&x.n, &y.n); underflow {
		panic(fmt.Sprintf("arith: underflow in Sub(%s, %s)", x, y))
	}
	return ret
}

// Mul64 returns x * m. It panics if the product does not fit in 256 bits.
func (x Uint256) Mul64(m uint64) Uint256 {
	var ret Uint256
	if _, overflow := ret.n.MulOverflow(&x.n, uint256.NewInt(m)); overflow {
		panic(fmt.Sprintf("arith: overflow in Mul64(%s, %d)", x, m))
	}
	return ret
}

// Div returns x / y truncated toward zero. It panics if y is zero.
func (x Uint256) Div(y Uint256) Uint256 {
	if y.IsZero() {
		panic("arith: division by zero")
	}
	var ret Uint256
	ret.n.Div(&x.n, &y.n)
	return ret
}

// Div64 returns x / d truncated toward zero. It panics if d is zero.
func (x Uint256) Div64(d uint64) Uint256 {
	return x.Div(FromUint64(d))
}

// MulDiv64 returns floor(x * m / d). The product is kept in 320 bits, so it
// never wraps. A quotient that does not fit in 256 bits saturates to Max.
// It panics if d is zero.
func (x Uint256) MulDiv64(m, d uint64) Uint256 {
	var acc Accumulator
	acc.AddProduct(x, m)
	return acc.Quo64(d)
}

// Accumulator sums products of a Uint256 and a uint64 in 320-bit precision.
// The zero value is an empty sum.
type Accumulator struct {
	limbs [5]uint64
}

// AddProduct adds x * m to the sum. It panics if the running sum no longer
// fits in 320 bits.
func (a *Accumulator) AddProduct(x Uint256, m uint64) {
	prod := mulWide(x, m)
	var carry uint64
	for i := range a.limbs {
		a.limbs[i], carry = bits.Add64(a.limbs[i], prod[i], carry)
	}
	if carry != 0 {
		panic("arith: accumulator overflow")
	}
}

// Quo64 returns floor(sum / d), saturating to Max when the quotient does not
// fit in 256 bits. It panics if d is zero.
func (a *Accumulator) Quo64(d uint64) Uint256 {
	if d == 0 {
		panic("arith: division by zero")
	}
	var quo [5]uint64
	var rem uint64
	for i := len(a.limbs) - 1; i >= 0; i-- {
		quo[i], rem = bits.Div64(rem, a.limbs[i], d)
	}
	if quo[4] != 0 {
		return maxUint256
	}
	return Uint256{n: uint256.Int{quo[0], quo[1], quo[2], quo[3]}}
}

// mulWide multiplies x by m into five little-endian 64-bit limbs
func mulWide(x Uint256, m uint64) [5]uint64 {
	var ret [5]uint64
	var carry uint64
	for i := 0; i < 4; i++ {
		hi, lo := bits.Mul64(x.n[i], m)
		var c uint64
		ret[i], c = bits.Add64(lo, carry, 0)
		carry = hi + c
	}
	ret[4] = carry
	return ret
}

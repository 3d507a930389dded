// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package pow

import (
	"encoding/hex"
	"fmt"

	"github.com/blinklabs-io/powd/arith"
)

// HeaderChain is a read-only view of a block header and its ancestry.
// Implementations must be safe for concurrent reads.
type HeaderChain interface {
	Height() int64
	Timestamp() int64
	Bits() uint32
	// Ancestor returns the view of the ancestor at the given height, which
	// must not be above Height(). A missing ancestor means the underlying
	// chain index is corrupt, and implementations may panic.
	Ancestor(height int64) HeaderChain
}

// Hash is a block hash in the byte order produced by the hash function,
// which is the little-endian encoding of the hash as a number
type Hash [32]byte

// HashFromNumber returns the hash whose numeric value is n
func HashFromNumber(n arith.Uint256) Hash {
	return Hash(n.LittleEndian())
}

// NewHashFromString parses a hash in display (reversed) hex
func NewHashFromString(s string) (Hash, error) {
	var ret Hash
	buf, err := hex.DecodeString(s)
	if err != nil {
		return ret, err
	}
	if len(buf) != len(ret) {
		return ret, fmt.Errorf("invalid hash length %d", len(buf))
	}
	for i := range buf {
		ret[i] = buf[len(buf)-1-i]
	}
	return ret, nil
}

// Number returns the hash as an unsigned 256-bit integer
func (h Hash) Number() arith.Uint256 {
	return arith.FromLittleEndian(h)
}

// String returns the hash in display (reversed) hex
func (h Hash) String() string {
	var tmp [32]byte
	for i := range h {
		tmp[i] = h[len(h)-1-i]
	}
	return hex.EncodeToString(tmp[:])
}

func ancestorOrPanic(chain HeaderChain, height int64) HeaderChain {
	if height < 0 || height > chain.Height() {
		panic(
			fmt.Sprintf(
				"pow: ancestor height %d out of range for chain at height %d",
				height,
				chain.Height(),
			),
		)
	}
	ret := chain.Ancestor(height)
	if ret == nil {
		panic(fmt.Sprintf("pow: missing ancestor at height %d", height))
	}
	return ret
}

// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package state

import (
	"fmt"

	"github.com/blinklabs-io/powd/internal/header"
	"github.com/blinklabs-io/powd/pow"
)

// chainView exposes a stored header and its ancestors to the retarget code
type chainView struct {
	state  *State
	height int64
	header *header.BlockHeader
}

func (c *chainView) Height() int64 {
	return c.height
}

func (c *chainView) Timestamp() int64 {
	return c.header.Timestamp()
}

func (c *chainView) Bits() uint32 {
	return c.header.Bits
}

// Ancestor panics if the header is missing, since the index only ever holds
// contiguous heights
func (c *chainView) Ancestor(height int64) pow.HeaderChain {
	if height == c.height {
		return c
	}
	if height < 0 || height > c.height {
		panic(
			fmt.Sprintf(
				"state: ancestor height %d out of range for chain at height %d",
				height,
				c.height,
			),
		)
	}
	ret, err := c.state.Chain(height)
	if err != nil {
		panic(fmt.Sprintf("state: missing ancestor: %s", err))
	}
	return ret
}

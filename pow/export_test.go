// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package pow

import (
	"github.com/blinklabs-io/powd/arith"
)

// TestBlock is one block of a TestChain
type TestBlock struct {
	Time int64
	Bits uint32
}

// TestChain is a slice-backed HeaderChain. Block i is at height i.
type TestChain struct {
	blocks []TestBlock
	height int64
}

// NewTestChain returns a view of the last block in blocks
func NewTestChain(blocks []TestBlock) *TestChain {
	return &TestChain{
		blocks: blocks,
		height: int64(len(blocks) - 1),
	}
}

func (c *TestChain) Height() int64 {
	return c.height
}

func (c *TestChain) Timestamp() int64 {
	return c.blocks[c.height].Time
}

func (c *TestChain) Bits() uint32 {
	return c.blocks[c.height].Bits
}

func (c *TestChain) Ancestor(height int64) HeaderChain {
	return &TestChain{
		blocks: c.blocks,
		height: height,
	}
}

// WindowSolveTimes returns the unclamped solve times of the averaging window
func WindowSolveTimes(last HeaderChain, n int64) []int64 {
	window := averagingWindow(last, n)
	ret := make([]int64, 0, len(window))
	for _, block := range window {
		ret = append(ret, block.solveTime)
	}
	return ret
}

// TargetFromBits decodes bits, ignoring the negative and overflow flags
func TargetFromBits(bits uint32) arith.Uint256 {
	return targetFromCompact(bits)
}

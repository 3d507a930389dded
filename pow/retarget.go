// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package pow

// Algorithm identifies which rule derives the bits of the next block
type Algorithm int

const (
	// AlgorithmBootstrap returns the power limit until the averaging window
	// has enough history
	AlgorithmBootstrap Algorithm = iota
	AlgorithmLegacy
	AlgorithmWeighted
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmBootstrap:
		return "bootstrap"
	case AlgorithmLegacy:
		return "legacy"
	case AlgorithmWeighted:
		return "weighted"
	default:
		return "unknown"
	}
}

// AlgorithmAt returns the algorithm used for the block following a block at
// lastHeight
func AlgorithmAt(lastHeight int64, p *Params) Algorithm {
	if lastHeight+1 < p.AveragingWindow {
		return AlgorithmBootstrap
	}
	if lastHeight < p.SwitchHeight {
		return AlgorithmLegacy
	}
	return AlgorithmWeighted
}

// NextRequiredBits returns the compact target the block following last must
// carry. candidateTime is the timestamp of that block, which only matters
// for the min-difficulty rule of the legacy algorithm.
func NextRequiredBits(last HeaderChain, candidateTime int64, p *Params) uint32 {
	if last == nil {
		panic("pow: NextRequiredBits called without a previous block")
	}
	switch AlgorithmAt(last.Height(), p) {
	case AlgorithmBootstrap:
		return p.PowLimitBits()
	case AlgorithmLegacy:
		return LegacyNextRequiredBits(last, candidateTime, p)
	default:
		return WeightedNextRequiredBits(last, p)
	}
}

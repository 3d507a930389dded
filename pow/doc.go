// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

/*
Package pow computes and validates proof-of-work difficulty targets.

Every function in this package is a pure computation over its arguments:
a read-only HeaderChain view of the block history and a Params value
holding the consensus parameters of a network. Results are deterministic
and safe to compute concurrently as long as the HeaderChain implementation
is safe for concurrent reads.

# Compact targets

Targets are 256-bit unsigned integers stored in block headers as 32-bit
compact values: one exponent byte and a 3 byte mantissa with a sign bit.
CompactToTarget and TargetToCompact convert between the two forms, with
the same precision loss and the same negative/overflow detection the rest
of the network applies.

# Retargeting

NextRequiredBits returns the bits the next block must carry. Depending on
the height of its parent (see AlgorithmAt) it uses:

  - the power limit while there is not yet a full averaging window of
    history
  - the legacy periodic retarget, which rescales the target once per
    adjustment interval by the time the interval took
  - the linearly weighted moving average over the last AveragingWindow
    blocks, after SwitchHeight

# Validation

IsPermittedTransition checks that a difficulty change between two adjacent
blocks is within what the legacy retarget could have produced.
CheckProofOfWork checks a block hash against the target its bits encode.
*/
package pow

// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

//go:build powfuzz

package pow

// Fuzzing builds accept any header whose hash passes fuzzProofOfWork.
// Never ship a binary built with this tag.
const fuzzing = true

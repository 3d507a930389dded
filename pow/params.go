// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package pow

import (
	"errors"
	"math"
	"slices"

	"github.com/blinklabs-io/powd/arith"
)

// NoSwitchHeight disables the weighted moving-average algorithm
const NoSwitchHeight int64 = math.MaxInt64

// Params holds the consensus parameters consumed by the retarget and
// validation functions. A Params value is never modified after it has been
// handed to this package.
type Params struct {
	Name string
	// Easiest allowed target
	PowLimit arith.Uint256
	// Target seconds between blocks
	TargetSpacing int64
	// Seconds covered by one legacy adjustment interval
	TargetTimespan int64
	// Number of blocks in the weighted moving-average window
	AveragingWindow int64
	// Blocks whose parent is at or above this height use the weighted
	// moving-average algorithm
	SwitchHeight int64
	// Testnet rule allowing min-difficulty blocks after a long gap
	AllowMinDifficultyBlocks bool
	// Keep the previous bits forever (regtest)
	NoRetargeting bool
	// Scale the target of the first block of the period instead of the last
	EnforceFirstBlockOfPeriod bool
	GenesisTime               int64
	GenesisBits               uint32
	// Genesis block hash in display (reversed) hex, empty if unknown
	GenesisHash string
}

// DifficultyAdjustmentInterval returns the number of blocks between legacy
// retargets
func (p *Params) DifficultyAdjustmentInterval() int64 {
	return p.TargetTimespan / p.TargetSpacing
}

// PowLimitBits returns the compact form of the power limit
func (p *Params) PowLimitBits() uint32 {
	return TargetToCompact(p.PowLimit)
}

// Validate checks the parameters for values the retarget functions cannot
// work with
func (p *Params) Validate() error {
	if p.PowLimit.IsZero() {
		return errors.New("power limit must be non-zero")
	}
	if p.TargetSpacing <= 0 {
		return errors.New("target spacing must be positive")
	}
	if p.TargetTimespan <= 0 {
		return errors.New("target timespan must be positive")
	}
	if p.TargetTimespan%p.TargetSpacing != 0 {
		return errors.New("target timespan must be a multiple of target spacing")
	}
	if p.AveragingWindow < 0 {
		return errors.New("averaging window must not be negative")
	}
	if p.SwitchHeight < 0 {
		return errors.New("switch height must not be negative")
	}
	if p.SwitchHeight != NoSwitchHeight && p.AveragingWindow == 0 {
		return errors.New("averaging window must be set when a switch height is configured")
	}
	return nil
}

var MainNetParams = Params{
	Name: "main",
	PowLimit: arith.MustFromHex(
		"0fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
	),
	TargetSpacing:   90,
	TargetTimespan:  3 * 24 * 60 * 60,
	AveragingWindow: 9,
	SwitchHeight:    8730,
	GenesisTime:     1459070865,
	GenesisBits:     0x1e0fffff,
	GenesisHash:     "bf2679fe4757d6135d178766e10373ae8ce85ab19bc5b58ac877d1a72f0e3c9d",
}

var TestNetParams = Params{
	Name: "testnet",
	PowLimit: arith.MustFromHex(
		"0fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
	),
	TargetSpacing:            3 * 60,
	TargetTimespan:           9 * 60,
	SwitchHeight:             NoSwitchHeight,
	AllowMinDifficultyBlocks: true,
	GenesisTime:              1459070865,
	GenesisBits:              0x1d00ffff,
	GenesisHash:              "7a72a87751f0e48ff52916557955b9e169ff07f4bb4aa6d36346b07412371e4c",
}

var TestNet4Params = Params{
	Name: "testnet4",
	PowLimit: arith.MustFromHex(
		"00000000ffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
	),
	TargetSpacing:             10 * 60,
	TargetTimespan:            14 * 24 * 60 * 60,
	SwitchHeight:              NoSwitchHeight,
	AllowMinDifficultyBlocks:  true,
	EnforceFirstBlockOfPeriod: true,
	GenesisTime:               1714777860,
	GenesisBits:               0x1d00ffff,
	GenesisHash:               "0140658840a6a06c23971bc15ee8859adab7b1c20d8766934bfa49cab9aed306",
}

var SigNetParams = Params{
	Name: "signet",
	PowLimit: arith.MustFromHex(
		"00000377ae000000000000000000000000000000000000000000000000000000",
	),
	TargetSpacing:  10 * 60,
	TargetTimespan: 14 * 24 * 60 * 60,
	SwitchHeight:   NoSwitchHeight,
	GenesisTime:    1459070865,
	GenesisBits:    0x1e0377ae,
	GenesisHash:    "73225839b345b632179161f46bfadbc848a7021a556b9b749587952d49258e15",
}

var RegTestParams = Params{
	Name: "regtest",
	PowLimit: arith.MustFromHex(
		"7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
	),
	TargetSpacing:            10 * 60,
	TargetTimespan:           24 * 60 * 60,
	SwitchHeight:             NoSwitchHeight,
	AllowMinDifficultyBlocks: true,
	NoRetargeting:            true,
	GenesisTime:              1459070865,
	GenesisBits:              0x207fffff,
	GenesisHash:              "b705d3be4c08699af2a391ac131fe228b996f6f46ee46dde2843094caf4651c4",
}

var networks = map[string]*Params{
	MainNetParams.Name:  &MainNetParams,
	TestNetParams.Name:  &TestNetParams,
	TestNet4Params.Name: &TestNet4Params,
	SigNetParams.Name:   &SigNetParams,
	RegTestParams.Name:  &RegTestParams,
}

// NetworkByName returns a copy of the named network's parameters
func NetworkByName(name string) (Params, bool) {
	p, ok := networks[name]
	if !ok {
		return Params{}, false
	}
	return *p, true
}

// NetworkNames returns the names of the known networks in sorted order
func NetworkNames() []string {
	ret := make([]string, 0, len(networks))
	for k := range networks {
		ret = append(ret, k)
	}
	slices.Sort(ret)
	return ret
}

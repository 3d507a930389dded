// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package config

import (
	"fmt"
	"strings"

	"github.com/blinklabs-io/powd/arith"
	"github.com/blinklabs-io/powd/pow"
)

func GetAvailableNetworks() []string {
	return pow.NetworkNames()
}

// ConsensusParams resolves the configured network preset and applies any
// overrides. The result is validated.
func (c *Config) ConsensusParams() (pow.Params, error) {
	n := c.Network
	params, ok := pow.NetworkByName(n.Name)
	if !ok {
		return pow.Params{}, fmt.Errorf(
			"unknown network: %s: available networks: %s",
			n.Name,
			strings.Join(GetAvailableNetworks(), ","),
		)
	}
	if n.PowLimit != "" {
		powLimit, err := arith.FromHex(n.PowLimit)
		if err != nil {
			return pow.Params{}, fmt.Errorf("invalid network power limit: %w", err)
		}
		params.PowLimit = powLimit
	}
	if n.TargetSpacing != 0 {
		params.TargetSpacing = n.TargetSpacing
	}
	if n.TargetTimespan != 0 {
		params.TargetTimespan = n.TargetTimespan
	}
	if n.AveragingWindow != nil {
		params.AveragingWindow = *n.AveragingWindow
	}
	if n.SwitchHeight != nil {
		params.SwitchHeight = *n.SwitchHeight
	}
	if n.AllowMinDifficultyBlocks != nil {
		params.AllowMinDifficultyBlocks = *n.AllowMinDifficultyBlocks
	}
	if n.NoRetargeting != nil {
		params.NoRetargeting = *n.NoRetargeting
	}
	if n.EnforceFirstBlockOfPeriod != nil {
		params.EnforceFirstBlockOfPeriod = *n.EnforceFirstBlockOfPeriod
	}
	if n.GenesisHash != "" {
		params.GenesisHash = n.GenesisHash
	}
	if err := params.Validate(); err != nil {
		return pow.Params{}, fmt.Errorf(
			"invalid consensus parameters for network %s: %w",
			n.Name,
			err,
		)
	}
	return params, nil
}

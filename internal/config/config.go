// Copyright 2023 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Debug   DebugConfig   `yaml:"debug"`
	State   StateConfig   `yaml:"state"`
	Network NetworkConfig `yaml:"network"`
}

type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LOGGING_LEVEL"`
	Debug bool   `yaml:"debug" envconfig:"LOGGING_DEBUG"`
}

type DebugConfig struct {
	ListenAddress string `yaml:"address" envconfig:"DEBUG_ADDRESS"`
	ListenPort    uint   `yaml:"port"    envconfig:"DEBUG_PORT"`
}

type MetricsConfig struct {
	ListenAddress string `yaml:"address" envconfig:"METRICS_LISTEN_ADDRESS"`
	ListenPort    uint   `yaml:"port"    envconfig:"METRICS_LISTEN_PORT"`
}

type StateConfig struct {
	Directory string `yaml:"dir" envconfig:"STATE_DIR"`
}

// NetworkConfig selects a consensus preset. The remaining fields override
// individual preset values when set.
type NetworkConfig struct {
	Name                      string `yaml:"name"                      envconfig:"NETWORK"`
	PowLimit                  string `yaml:"powLimit"                  envconfig:"NETWORK_POW_LIMIT"`
	TargetSpacing             int64  `yaml:"targetSpacing"             envconfig:"NETWORK_TARGET_SPACING"`
	TargetTimespan            int64  `yaml:"targetTimespan"            envconfig:"NETWORK_TARGET_TIMESPAN"`
	AveragingWindow           *int64 `yaml:"averagingWindow"           envconfig:"NETWORK_AVERAGING_WINDOW"`
	SwitchHeight              *int64 `yaml:"switchHeight"              envconfig:"NETWORK_SWITCH_HEIGHT"`
	AllowMinDifficultyBlocks  *bool  `yaml:"allowMinDifficultyBlocks"  envconfig:"NETWORK_ALLOW_MIN_DIFFICULTY_BLOCKS"`
	NoRetargeting             *bool  `yaml:"noRetargeting"             envconfig:"NETWORK_NO_RETARGETING"`
	EnforceFirstBlockOfPeriod *bool  `yaml:"enforceFirstBlockOfPeriod" envconfig:"NETWORK_ENFORCE_FIRST_BLOCK_OF_PERIOD"`
	GenesisHash               string `yaml:"genesisHash"               envconfig:"NETWORK_GENESIS_HASH"`
}

// Singleton config instance with default values
var globalConfig = &Config{
	Logging: LoggingConfig{
		Level: "info",
	},
	Debug: DebugConfig{
		ListenAddress: "localhost",
		ListenPort:    0,
	},
	Metrics: MetricsConfig{
		ListenAddress: "",
		ListenPort:    8081,
	},
	State: StateConfig{
		Directory: "./.state",
	},
	Network: NetworkConfig{
		Name: "main",
	},
}

func Load(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		err = yaml.Unmarshal(buf, globalConfig)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Load config values from environment variables
	// We use "dummy" as the app name here to (mostly) prevent picking up env
	// vars that we hadn't explicitly specified in annotations above
	err := envconfig.Process("dummy", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	// Check network and overrides
	if _, err := globalConfig.ConsensusParams(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

// GetConfig returns the global config instance
func GetConfig() *Config {
	return globalConfig
}

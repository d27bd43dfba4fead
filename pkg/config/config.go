// Copyright 2017 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pingcap/colexpr/pkg/util/logutil"
	"github.com/pingcap/colexpr/pkg/util/regexputil"
	"github.com/pingcap/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Config contains configuration options.
type Config struct {
	Log        Log        `toml:"log" json:"log"`
	Expression Expression `toml:"expression" json:"expression"`
}

// Log is the log section of config.
type Log struct {
	// Log level.
	Level string `toml:"level" json:"level"`
	// Log format. one of json, text, or console.
	Format string `toml:"format" json:"format"`
	// Disable automatic timestamps in output.
	DisableTimestamp bool `toml:"disable-timestamp" json:"disable-timestamp"`
	// File log config.
	File logutil.FileLogConfig `toml:"file" json:"file"`
}

// Expression is the expression section of the config.
type Expression struct {
	// RegexpEngine names the engine regexp builtins compile patterns with.
	RegexpEngine string `toml:"regexp-engine" json:"regexp-engine"`
}

var defaultConf = Config{
	Log: Log{
		Level:  logutil.DefaultLogLevel,
		Format: logutil.DefaultLogFormat,
		File:   logutil.NewFileLogConfig(logutil.DefaultLogMaxSize),
	},
	Expression: Expression{
		RegexpEngine: regexputil.DefaultEngine,
	},
}

var globalConf = atomic.NewPointer(NewConfig())

// NewConfig creates a new config instance with default value.
func NewConfig() *Config {
	conf := defaultConf
	return &conf
}

// GetGlobalConfig returns the global configuration for this process.
// It should store configuration from command line and configuration file.
// Other parts of the system can read the global configuration use this function.
func GetGlobalConfig() *Config {
	return globalConf.Load()
}

// StoreGlobalConfig stores a new config to the globalConf. It mostly uses in
// the test to avoid some data races.
func StoreGlobalConfig(config *Config) {
	globalConf.Store(config)
}

// UpdateGlobal updates the global config, and provide a latest config to the
// function f.
func UpdateGlobal(f func(conf *Config)) {
	g := GetGlobalConfig()
	newConf := *g
	f(&newConf)
	StoreGlobalConfig(&newConf)
}

// ErrConfigValidationFailed is returned when a config file carries keys this
// version does not understand.
type ErrConfigValidationFailed struct {
	confFile       string
	UndecodedItems []string
}

func (e *ErrConfigValidationFailed) Error() string {
	return fmt.Sprintf("config file %s contained invalid configuration options: %s",
		e.confFile, strings.Join(e.UndecodedItems, ", "))
}

// Load loads config options from a toml file.
func (c *Config) Load(confFile string) error {
	metaData, err := toml.DecodeFile(confFile, c)
	if err != nil {
		return errors.Trace(err)
	}
	undecoded := metaData.Undecoded()
	if len(undecoded) > 0 {
		items := make([]string, 0, len(undecoded))
		for _, item := range undecoded {
			items = append(items, item.String())
		}
		return &ErrConfigValidationFailed{confFile: confFile, UndecodedItems: items}
	}
	return nil
}

// Valid checks if this config is valid.
func (c *Config) Valid() error {
	if _, err := regexputil.NewEngine(c.Expression.RegexpEngine); err != nil {
		return err
	}
	var level zap.AtomicLevel
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return errors.Annotatef(err, "invalid log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "", "text", "json", "console":
	default:
		return errors.Errorf("invalid log format %q, must be one of text, json or console", c.Log.Format)
	}
	return nil
}

// ToLogConfig converts *Log to *logutil.LogConfig.
func (l *Log) ToLogConfig() *logutil.LogConfig {
	return logutil.NewLogConfig(l.Level, l.Format, l.File, l.DisableTimestamp)
}

// InitializeConfig loads confPath, if given, into a new config, lets
// overrideConfig apply command line flags, validates the result and stores it
// as the global config.
func InitializeConfig(confPath string, overrideConfig func(*Config)) error {
	cfg := NewConfig()
	if confPath != "" {
		if err := cfg.Load(confPath); err != nil {
			return err
		}
	}
	if overrideConfig != nil {
		overrideConfig(cfg)
	}
	if err := cfg.Valid(); err != nil {
		return err
	}
	StoreGlobalConfig(cfg)
	return nil
}

// Copyright 2026 PingCAP, Inc.
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

package main

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/pingcap/colexpr/pkg/config"
	"github.com/pingcap/colexpr/pkg/expression"
	"github.com/pingcap/colexpr/pkg/metrics"
	"github.com/pingcap/colexpr/pkg/util/logutil"
	"github.com/pingcap/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	// FlagConfig is the name of config flag.
	FlagConfig = "config"
	// FlagPattern is the name of pattern flag.
	FlagPattern = "pattern"
	// FlagGroup is the name of group flag.
	FlagGroup = "group"
	// FlagLargeOffsets is the name of large-offsets flag.
	FlagLargeOffsets = "large-offsets"
	// FlagInput is the name of input flag.
	FlagInput = "input"
	// FlagEngine is the name of engine flag.
	FlagEngine = "engine"
	// FlagLogLevel is the name of log-level flag.
	FlagLogLevel = "log-level"
	// FlagLogFile is the name of log-file flag.
	FlagLogFile = "log-file"
	// FlagBatchSize is the name of batch-size flag.
	FlagBatchSize = "batch-size"
	// FlagConcurrency is the name of concurrency flag.
	FlagConcurrency = "concurrency"
	// FlagStatusAddr is the name of status-addr flag.
	FlagStatusAddr = "status-addr"

	defaultBatchSize = 1024
)

func timestampLogFileName() string {
	return filepath.Join(os.TempDir(), time.Now().Format("regexp-extract.log.2006-01-02T15.04.05Z0700"))
}

// extractConfig is the configuration of one regexp-extract run.
type extractConfig struct {
	ConfigFile   string
	Pattern      string
	Group        int64
	LargeOffsets bool
	Input        string
	Engine       string
	LogLevel     string
	LogFile      string
	BatchSize    int
	Concurrency  int
	StatusAddr   string
}

// defineFlags defines the flags of regexp-extract.
func defineFlags(flags *pflag.FlagSet) {
	flags.StringP(FlagConfig, "C", "", "Set the config file path")
	flags.StringP(FlagPattern, "p", "", "Set the regular expression, inline flags such as (?i) are part of it")
	flags.Int64P(FlagGroup, "g", 0, "Set the capture group to extract, 0 extracts the whole match")
	flags.Bool(FlagLargeOffsets, false, "Evaluate over strings with 64-bit offsets")
	flags.StringP(FlagInput, "i", "", "Set the input file path. If not set, lines are read from stdin")
	flags.String(FlagEngine, "", "Set the regexp engine, one of coregex, re2 or regexp2. Overrides the config file")
	flags.StringP(FlagLogLevel, "L", "info", "Set the log level")
	flags.String(FlagLogFile, timestampLogFileName(),
		"Set the log file path. If set to empty, logs will output to stdout")
	flags.Int(FlagBatchSize, defaultBatchSize, "Set the number of lines evaluated in one batch")
	flags.Int(FlagConcurrency, runtime.GOMAXPROCS(0), "Set the number of batches evaluated concurrently")
	flags.String(FlagStatusAddr, "",
		"Set the HTTP listening address for the metrics service. Set to empty string to disable")
}

// parseFromFlags reads the flags defined by defineFlags.
func (cfg *extractConfig) parseFromFlags(flags *pflag.FlagSet) error {
	var err error
	if cfg.ConfigFile, err = flags.GetString(FlagConfig); err != nil {
		return errors.Trace(err)
	}
	if cfg.Pattern, err = flags.GetString(FlagPattern); err != nil {
		return errors.Trace(err)
	}
	if cfg.Group, err = flags.GetInt64(FlagGroup); err != nil {
		return errors.Trace(err)
	}
	if cfg.LargeOffsets, err = flags.GetBool(FlagLargeOffsets); err != nil {
		return errors.Trace(err)
	}
	if cfg.Input, err = flags.GetString(FlagInput); err != nil {
		return errors.Trace(err)
	}
	if cfg.Engine, err = flags.GetString(FlagEngine); err != nil {
		return errors.Trace(err)
	}
	if cfg.LogLevel, err = flags.GetString(FlagLogLevel); err != nil {
		return errors.Trace(err)
	}
	if cfg.LogFile, err = flags.GetString(FlagLogFile); err != nil {
		return errors.Trace(err)
	}
	if cfg.BatchSize, err = flags.GetInt(FlagBatchSize); err != nil {
		return errors.Trace(err)
	}
	if cfg.Concurrency, err = flags.GetInt(FlagConcurrency); err != nil {
		return errors.Trace(err)
	}
	if cfg.StatusAddr, err = flags.GetString(FlagStatusAddr); err != nil {
		return errors.Trace(err)
	}
	if cfg.BatchSize <= 0 {
		return errors.Errorf("--%s must be positive, got %d", FlagBatchSize, cfg.BatchSize)
	}
	if cfg.Concurrency <= 0 {
		return errors.Errorf("--%s must be positive, got %d", FlagConcurrency, cfg.Concurrency)
	}
	return nil
}

// overrideConfig applies the flags the user set on top of the config file.
func (cfg *extractConfig) overrideConfig(flags *pflag.FlagSet) func(*config.Config) {
	return func(conf *config.Config) {
		if flags.Changed(FlagEngine) {
			conf.Expression.RegexpEngine = cfg.Engine
		}
		if flags.Changed(FlagLogFile) || conf.Log.File.Filename == "" {
			conf.Log.File.Filename = cfg.LogFile
		}
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "regexp-extract",
		Short:        "regexp-extract prints a capture group of the first regular expression match of every input line.",
		Long:         "regexp-extract evaluates regexp_extract(line, pattern, group) over the input in batches.\nA null input line and a null result are written as \\N.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runExtract,
	}
	defineFlags(cmd.Flags())
	_ = cmd.MarkFlagRequired(FlagPattern)
	return cmd
}

func runExtract(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	cfg := &extractConfig{}
	if err := cfg.parseFromFlags(flags); err != nil {
		return err
	}
	if err := config.InitializeConfig(cfg.ConfigFile, cfg.overrideConfig(flags)); err != nil {
		return err
	}
	conf := config.GetGlobalConfig()
	if err := logutil.InitLogger(conf.Log.ToLogConfig()); err != nil {
		return err
	}
	if flags.Changed(FlagLogLevel) {
		if err := logutil.SetLevel(cfg.LogLevel); err != nil {
			return errors.Annotatef(err, "invalid --%s %q", FlagLogLevel, cfg.LogLevel)
		}
		config.UpdateGlobal(func(c *config.Config) {
			c.Log.Level = cfg.LogLevel
		})
	}

	metrics.RegisterMetrics()
	if cfg.StatusAddr != "" {
		status, err := startStatusServer(cfg.StatusAddr)
		if err != nil {
			return err
		}
		defer status.Close()
	}

	registry, err := expression.GlobalRegistry()
	if err != nil {
		return err
	}
	desc, err := registry.Lookup(expression.RegexpExtract)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if cfg.Input != "" && cfg.Input != "-" {
		f, err := os.Open(cfg.Input)
		if err != nil {
			return errors.Annotatef(err, "open input %s", cfg.Input)
		}
		defer f.Close()
		in = f
	}

	ctx := logutil.WithCategory(cmd.Context(), "regexp-extract")
	logger := logutil.Logger(ctx)
	logger.Info("regexp-extract started",
		zap.String("pattern", cfg.Pattern),
		zap.Int64("group", cfg.Group),
		zap.Bool("large-offsets", cfg.LargeOffsets),
		zap.String("regexp-engine", config.GetGlobalConfig().Expression.RegexpEngine),
		zap.Int("batch-size", cfg.BatchSize),
		zap.Int("concurrency", cfg.Concurrency))
	start := time.Now()
	e := newExtractor(desc, cfg.Pattern, cfg.Group, cfg.LargeOffsets)
	rows, err := e.run(ctx, in, cmd.OutOrStdout(), cfg.BatchSize, cfg.Concurrency)
	if err != nil {
		return err
	}
	logger.Info("regexp-extract finished", zap.Int("rows", rows), zap.Duration("take", time.Since(start)))
	return nil
}

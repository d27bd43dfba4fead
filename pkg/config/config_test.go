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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pingcap/colexpr/pkg/util/regexputil"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	conf := NewConfig()
	require.Equal(t, regexputil.DefaultEngine, conf.Expression.RegexpEngine)
	require.NoError(t, conf.Valid())

	path := writeConfig(t, `
[log]
level = "warn"
format = "json"
[log.file]
max-size = 64

[expression]
regexp-engine = "coregex"
`)
	require.NoError(t, conf.Load(path))
	require.Equal(t, "warn", conf.Log.Level)
	require.Equal(t, "json", conf.Log.Format)
	require.Equal(t, 64, conf.Log.File.MaxSize)
	require.Equal(t, regexputil.EngineCoregex, conf.Expression.RegexpEngine)
	require.NoError(t, conf.Valid())

	logConf := conf.Log.ToLogConfig()
	require.Equal(t, "warn", logConf.Level)
	require.Equal(t, 64, logConf.File.MaxSize)

	// The defaults are untouched.
	require.Equal(t, regexputil.DefaultEngine, NewConfig().Expression.RegexpEngine)
}

func TestLoadInvalid(t *testing.T) {
	conf := NewConfig()
	path := writeConfig(t, `
[expression]
regexp-engine = "re2"
unknown-option = 1
`)
	err := conf.Load(path)
	require.Error(t, err)
	var validationErr *ErrConfigValidationFailed
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, []string{"expression.unknown-option"}, validationErr.UndecodedItems)

	require.Error(t, conf.Load(writeConfig(t, "[expression")))
	require.Error(t, conf.Load(filepath.Join(t.TempDir(), "missing.toml")))
}

func TestValid(t *testing.T) {
	conf := NewConfig()
	conf.Expression.RegexpEngine = "pcre"
	require.True(t, regexputil.ErrUnknownEngine.Equal(conf.Valid()))

	conf = NewConfig()
	conf.Log.Level = "loud"
	require.ErrorContains(t, conf.Valid(), "invalid log level")

	conf = NewConfig()
	conf.Log.Format = "xml"
	require.ErrorContains(t, conf.Valid(), "invalid log format")
}

func TestGlobalConfig(t *testing.T) {
	orig := GetGlobalConfig()
	defer StoreGlobalConfig(orig)

	UpdateGlobal(func(conf *Config) {
		conf.Expression.RegexpEngine = regexputil.EngineRegexp2
	})
	require.Equal(t, regexputil.EngineRegexp2, GetGlobalConfig().Expression.RegexpEngine)
	require.Equal(t, regexputil.DefaultEngine, orig.Expression.RegexpEngine)

	path := writeConfig(t, "[expression]\nregexp-engine = \"coregex\"\n")
	require.NoError(t, InitializeConfig(path, func(conf *Config) {
		conf.Log.Level = "debug"
	}))
	require.Equal(t, regexputil.EngineCoregex, GetGlobalConfig().Expression.RegexpEngine)
	require.Equal(t, "debug", GetGlobalConfig().Log.Level)

	err := InitializeConfig("", func(conf *Config) {
		conf.Expression.RegexpEngine = "pcre"
	})
	require.Error(t, err)
	require.Equal(t, regexputil.EngineCoregex, GetGlobalConfig().Expression.RegexpEngine)
}

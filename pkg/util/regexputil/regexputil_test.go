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

package regexputil

import (
	"strings"
	"testing"
	"time"

	"github.com/pingcap/colexpr/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	e, err := NewEngine("")
	require.NoError(t, err)
	require.Equal(t, DefaultEngine, e.Name())

	for _, name := range EngineNames() {
		e, err := NewEngine(name)
		require.NoError(t, err)
		require.Equal(t, name, e.Name())
	}

	e, err = NewEngine("CoreGex")
	require.NoError(t, err)
	require.Equal(t, EngineCoregex, e.Name())

	_, err = NewEngine("pcre")
	require.Error(t, err)
	require.True(t, ErrUnknownEngine.Equal(err))
	require.ErrorContains(t, err, "pcre")

	require.Equal(t, []string{EngineCoregex, EngineRE2, EngineRegexp2}, EngineNames())
}

func TestFindStringSubmatchIndex(t *testing.T) {
	tests := []struct {
		pattern   string
		input     string
		numSubexp int
		loc       []int
	}{
		{"nomatch", "axb_cyd_ezf", 0, nil},
		{"(a.*?b).*(c.*?d).*(e.*f)", "axb_cyd_ezf", 3, []int{0, 11, 0, 3, 4, 7, 8, 11}},
		{"(b|d)(x)?", "abc", 2, []int{1, 2, 1, 2, -1, -1}},
		{"[a-zA-Z]ö([a-zA-Z]{2})", "Köln", 1, []int{0, 5, 3, 5}},
		// Leftmost-first: the first alternative wins when the rest can match.
		{"(a|ab)(c|bcd)(d*)", "abcd", 3, []int{0, 4, 0, 1, 1, 4, 4, 4}},
		{"(é+)(.)", "ééé€x", 2, []int{0, 9, 0, 6, 6, 9}},
		// Groups are numbered by their opening parenthesis, named or not.
		{"(?P<x>a)(b)", "ab", 2, []int{0, 2, 0, 1, 1, 2}},
		{"(a)(?P<y>b)(c)", "abc", 3, []int{0, 3, 0, 1, 1, 2, 2, 3}},
		{`[(]x(y)`, "(xy", 1, []int{0, 3, 2, 3}},
		{`\((a)\)`, "(a)", 1, []int{0, 3, 1, 2}},
		{"(?:a)(b)", "ab", 1, []int{0, 2, 1, 2}},
	}
	for _, name := range EngineNames() {
		e, err := NewEngine(name)
		require.NoError(t, err)
		for _, tt := range tests {
			re, err := e.Compile(tt.pattern)
			require.NoError(t, err, "engine %s pattern %s", name, tt.pattern)
			require.Equal(t, tt.pattern, re.String())
			require.Equal(t, tt.numSubexp, re.NumSubexp(), "engine %s pattern %s", name, tt.pattern)
			require.Equal(t, tt.loc, re.FindStringSubmatchIndex(tt.input), "engine %s pattern %s", name, tt.pattern)
		}
	}
}

func TestCompileError(t *testing.T) {
	for _, name := range EngineNames() {
		e, err := NewEngine(name)
		require.NoError(t, err)
		re, err := e.Compile("(a")
		require.Error(t, err, "engine %s", name)
		require.Nil(t, re)
	}
}

func TestBacktrackingFeatures(t *testing.T) {
	e, err := NewEngine(EngineRegexp2)
	require.NoError(t, err)

	re, err := e.Compile(`(\w)\1`)
	require.NoError(t, err)
	require.Equal(t, []int{3, 5, 3, 4}, re.FindStringSubmatchIndex("abcdde"))

	// Rune positions are converted to byte offsets.
	re, err = e.Compile(`(?<=ö)(l)n`)
	require.NoError(t, err)
	require.Equal(t, []int{3, 5, 3, 4}, re.FindStringSubmatchIndex("Köln"))

	std, err := NewEngine(EngineRE2)
	require.NoError(t, err)
	_, err = std.Compile(`(\w)\1`)
	require.Error(t, err)
}

func TestCaptureNames(t *testing.T) {
	tests := []struct {
		pattern string
		names   []string
	}{
		{"abc", nil},
		{"(a)(b)", []string{"", ""}},
		{"(?P<x>a)(b)(?<y>c)(?'z'd)", []string{"x", "", "y", "z"}},
		{"(?:a)(?i)(?i:b)(?=c)(?!d)(?<=e)(?<!f)(?>g)(h)", []string{""}},
		{`\(a\)[(](b)`, []string{""}},
		{`[]()](x)[^]()]`, []string{""}},
		{`[\]()](x)`, []string{""}},
		{"(?#(ignored)(a)", []string{""}},
	}
	for _, tt := range tests {
		require.Equal(t, tt.names, captureNames(tt.pattern), tt.pattern)
	}
}

func TestBacktrackGroupOrder(t *testing.T) {
	e, err := NewEngine(EngineRegexp2)
	require.NoError(t, err)
	re, err := e.Compile("(?P<x>a)(b)(?P<y>c)(d)")
	require.NoError(t, err)
	require.Equal(t, []int{0, 3, 1, 4, 2}, re.(*backtrackRegexp).groups)
	require.Equal(t, 4, re.NumSubexp())
	require.Equal(t, []int{0, 4, 0, 1, 1, 2, 2, 3, 3, 4}, re.FindStringSubmatchIndex("abcd"))
}

func TestBacktrackMatchError(t *testing.T) {
	e, err := NewEngine(EngineRegexp2)
	require.NoError(t, err)
	re, err := e.Compile("^(a+)+$")
	require.NoError(t, err)
	re.(*backtrackRegexp).re.MatchTimeout = time.Millisecond

	before := testutil.ToFloat64(metrics.RegexpMatchErrorCounter.WithLabelValues(EngineRegexp2))
	require.Nil(t, re.FindStringSubmatchIndex(strings.Repeat("a", 40)+"!"))
	require.Equal(t, before+1, testutil.ToFloat64(metrics.RegexpMatchErrorCounter.WithLabelValues(EngineRegexp2)))
}

func TestRuneRangeToByte(t *testing.T) {
	s := "aöb€c"
	start, end := runeRangeToByte(s, 1, 3)
	require.Equal(t, "öb€", s[start:end])
	start, end = runeRangeToByte(s, 5, 0)
	require.Equal(t, len(s), start)
	require.Equal(t, len(s), end)
	start, end = runeRangeToByte(s, 0, 0)
	require.Equal(t, 0, start)
	require.Equal(t, 0, end)
}

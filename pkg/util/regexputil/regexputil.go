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

// Package regexputil provides the regular expression engines that builtin
// functions compile their patterns with.
//
// Three engines are available:
//
//	re2      github.com/grafana/regexp, the stdlib RE2 engine with faster matching
//	coregex  github.com/coregx/coregex, an accelerated RE2-compatible engine
//	         that finds matches, leaving capture offsets to re2
//	regexp2  github.com/dlclark/regexp2, a backtracking engine supporting
//	         lookaround and backreferences
//
// All engines report positions as byte offsets into the subject string.
package regexputil

import (
	"sort"
	"strings"

	"github.com/coregx/coregex"
	"github.com/dlclark/regexp2"
	"github.com/grafana/regexp"
	"github.com/pingcap/colexpr/pkg/metrics"
	"github.com/pingcap/colexpr/pkg/util/logutil"
	"github.com/pingcap/errors"
	"go.uber.org/zap"
)

// Engine names.
const (
	EngineRE2     = "re2"
	EngineCoregex = "coregex"
	EngineRegexp2 = "regexp2"

	// DefaultEngine is used when no engine is configured.
	DefaultEngine = EngineRE2
)

// ErrUnknownEngine is returned when an engine name is not registered.
var ErrUnknownEngine = errors.Normalize("unknown regexp engine '%s'", errors.RFCCodeText("Expression:UnknownRegexpEngine"))

// Regexp is a compiled regular expression.
type Regexp interface {
	// String returns the source text of the pattern.
	String() string
	// NumSubexp returns the number of capture groups, not counting group 0.
	NumSubexp() int
	// FindStringSubmatchIndex returns the byte index pairs of the leftmost
	// match and its capture groups, or nil when there is no match. A pair is
	// -1, -1 when the group did not participate in the match.
	FindStringSubmatchIndex(s string) []int
}

// Engine compiles pattern text into a Regexp.
type Engine interface {
	Name() string
	Compile(pattern string) (Regexp, error)
}

type re2Engine struct{}

func (re2Engine) Name() string { return EngineRE2 }

func (re2Engine) Compile(pattern string) (Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return re, nil
}

type coregexEngine struct{}

func (coregexEngine) Name() string { return EngineCoregex }

func (coregexEngine) Compile(pattern string) (Regexp, error) {
	re, err := coregex.Compile(pattern)
	if err != nil {
		return nil, err
	}
	groups, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &acceleratedRegexp{re: re, groups: groups}, nil
}

// acceleratedRegexp rejects non-matching subjects with coregex and takes the
// capture offsets of a match from re2. coregex submatch offsets do not follow
// leftmost-first semantics.
type acceleratedRegexp struct {
	re     *coregex.Regex
	groups *regexp.Regexp
}

func (r *acceleratedRegexp) String() string { return r.groups.String() }

func (r *acceleratedRegexp) NumSubexp() int { return r.groups.NumSubexp() }

func (r *acceleratedRegexp) FindStringSubmatchIndex(s string) []int {
	if !r.re.MatchString(s) {
		return nil
	}
	return r.groups.FindStringSubmatchIndex(s)
}

type regexp2Engine struct{}

func (regexp2Engine) Name() string { return EngineRegexp2 }

// Compile uses the RE2 option so that patterns written for the other
// engines, such as (?P<name>...), keep their meaning.
func (regexp2Engine) Compile(pattern string) (Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.RE2)
	if err != nil {
		return nil, err
	}
	groups, err := positionalGroups(re)
	if err != nil {
		return nil, err
	}
	return &backtrackRegexp{re: re, groups: groups}, nil
}

var engines = map[string]Engine{
	EngineRE2:     re2Engine{},
	EngineCoregex: coregexEngine{},
	EngineRegexp2: regexp2Engine{},
}

// NewEngine returns the engine registered under name. An empty name selects
// DefaultEngine.
func NewEngine(name string) (Engine, error) {
	if name == "" {
		name = DefaultEngine
	}
	e, ok := engines[strings.ToLower(name)]
	if !ok {
		return nil, ErrUnknownEngine.GenWithStackByArgs(name)
	}
	return e, nil
}

// EngineNames returns the sorted names of all engines.
func EngineNames() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// backtrackRegexp adapts regexp2, which reports rune positions, to byte
// offsets. regexp2 numbers unnamed groups before named ones, so groups maps
// each positional group to its regexp2 group number.
type backtrackRegexp struct {
	re     *regexp2.Regexp
	groups []int
}

func (r *backtrackRegexp) String() string { return r.re.String() }

func (r *backtrackRegexp) NumSubexp() int { return len(r.groups) - 1 }

// FindStringSubmatchIndex treats a match error (a timeout) as no match.
func (r *backtrackRegexp) FindStringSubmatchIndex(s string) []int {
	m, err := r.re.FindStringMatch(s)
	if err != nil {
		metrics.RegexpMatchErrorCounter.WithLabelValues(EngineRegexp2).Inc()
		logutil.BgLogger().Debug("regexp match failed",
			zap.String("engine", EngineRegexp2),
			zap.String("pattern", r.re.String()),
			zap.Error(err))
		return nil
	}
	if m == nil {
		return nil
	}
	loc := make([]int, 2*len(r.groups))
	for i := range loc {
		loc[i] = -1
	}
	for i, num := range r.groups {
		g := m.GroupByNumber(num)
		if g == nil || len(g.Captures) == 0 {
			continue
		}
		loc[2*i], loc[2*i+1] = runeRangeToByte(s, g.Index, g.Length)
	}
	return loc
}

// positionalGroups returns the regexp2 group number of every capture group,
// ordered by the position of its opening parenthesis. Entry 0 is the whole
// match.
func positionalGroups(re *regexp2.Regexp) ([]int, error) {
	names := captureNames(re.String())
	if len(names) != len(re.GetGroupNumbers())-1 {
		return nil, errors.Errorf("cannot number the %d capture groups of %q by position", len(re.GetGroupNumbers())-1, re.String())
	}
	groups := make([]int, len(names)+1)
	unnamed := 0
	for i, name := range names {
		if name == "" {
			unnamed++
			groups[i+1] = unnamed
			continue
		}
		num := re.GroupNumberFromName(name)
		if num < 0 {
			return nil, errors.Errorf("unknown capture group name %q", name)
		}
		groups[i+1] = num
	}
	return groups, nil
}

// captureNames scans pattern and returns one entry per capture group in
// order of appearance: the group name, or "" for an unnamed group.
func captureNames(pattern string) []string {
	var names []string
	inClass := false
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; {
		case c == '\\':
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
			// A ']' right after '[' or '[^' is a literal.
			if i+1 < len(pattern) && pattern[i+1] == '^' {
				i++
			}
			if i+1 < len(pattern) && pattern[i+1] == ']' {
				i++
			}
		case strings.HasPrefix(pattern[i:], "(?#"):
			end := strings.IndexByte(pattern[i:], ')')
			if end < 0 {
				return names
			}
			i += end
		case c == '(':
			if name, ok := groupName(pattern[i+1:]); ok {
				names = append(names, name)
			}
		}
	}
	return names
}

// groupName inspects the text following '(' and reports whether it opens a
// capture group, and its name if any.
func groupName(rest string) (string, bool) {
	if !strings.HasPrefix(rest, "?") {
		return "", true
	}
	rest = rest[1:]
	var closing byte
	switch {
	case strings.HasPrefix(rest, "P<"):
		rest, closing = rest[2:], '>'
	case strings.HasPrefix(rest, "<") && !strings.HasPrefix(rest, "<=") && !strings.HasPrefix(rest, "<!"):
		rest, closing = rest[1:], '>'
	case strings.HasPrefix(rest, "'"):
		rest, closing = rest[1:], '\''
	default:
		return "", false
	}
	end := strings.IndexByte(rest, closing)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

func runeRangeToByte(s string, startRune, length int) (int, int) {
	start := runeToByteOffset(s, 0, 0, startRune)
	end := runeToByteOffset(s, start, startRune, startRune+length)
	return start, end
}

// runeToByteOffset walks s from byte offset from, which is rune index
// fromRune, to rune index target.
func runeToByteOffset(s string, from, fromRune, target int) int {
	count := fromRune
	for i := range s[from:] {
		if count == target {
			return from + i
		}
		count++
	}
	return len(s)
}

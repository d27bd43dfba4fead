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

package expression

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/arrow/scalar"
	"github.com/pingcap/colexpr/pkg/metrics"
	"github.com/pingcap/colexpr/pkg/util/columnar"
	"github.com/pingcap/colexpr/pkg/util/logutil"
	"github.com/pingcap/colexpr/pkg/util/regexputil"
	"go.uber.org/zap"
)

var regexpExtractDoc = Documentation{
	Section:       "Regular Expression Functions",
	Description:   "Returns the text of a capture group of the first regular expression match in a string.",
	SyntaxExample: "regexp_extract(str, regexp, group_index)",
	SQLExample: `> select regexp_extract('Köln', '[a-zA-Z]ö[a-zA-Z]{2}', 0);
+----------------------------------------------------------------+
| regexp_extract(Utf8("Köln"),Utf8("[a-zA-Z]ö[a-zA-Z]{2}"),Int64(0)) |
+----------------------------------------------------------------+
| Köln                                                           |
+----------------------------------------------------------------+
> select regexp_extract('aBc', '(?i)(b|d)', 1);
+-----------------------------------------------------+
| regexp_extract(Utf8("aBc"),Utf8("(?i)(b|d)"),Int64(1)) |
+-----------------------------------------------------+
| B                                                   |
+-----------------------------------------------------+`,
	Arguments: []ArgumentDoc{
		{Name: "str", Description: "String expression to operate on. Can be a constant, column, or function, and any combination of operators."},
		{Name: "regexp", Description: "Regular expression to match against. Can be a constant or column. Flags are written inline, for example (?i)."},
		{Name: "group_index", Description: "A one-based index to the matching group to extract. If 0 is provided, will retrieve the full match. Can be a constant or column."},
	},
}

func newRegexpExtractDesc(opts BuiltinOptions) *FuncDesc {
	sigs := []Signature{
		{ArgTypes: []arrow.DataType{arrow.BinaryTypes.String, arrow.BinaryTypes.String, arrow.PrimitiveTypes.Int64}},
		{ArgTypes: []arrow.DataType{arrow.BinaryTypes.LargeString, arrow.BinaryTypes.LargeString, arrow.PrimitiveTypes.Int64}},
	}
	sig := &builtinRegexpExtractSig{engine: opts.RegexpEngine, mem: opts.Allocator}
	return newFuncDesc(RegexpExtract, sigs, Immutable, regexpExtractDoc, sig)
}

// offsetWidth is the offset width of the string columns of a call.
type offsetWidth uint8

const (
	standardOffsets offsetWidth = iota
	wideOffsets
)

func offsetWidthOf(tp arrow.DataType) (offsetWidth, error) {
	switch tp.ID() {
	case arrow.STRING:
		return standardOffsets, nil
	case arrow.LARGE_STRING:
		return wideOffsets, nil
	}
	return 0, ErrUnsupportedInputType.GenWithStackByArgs(tp)
}

type builtinRegexpExtractSig struct {
	engine regexputil.Engine
	mem    memory.Allocator
}

// vecEval evaluates regexp_extract(str, pattern, group_index). The result
// mirrors the offset width of str. A row whose str, pattern or group_index
// is null yields null.
func (b *builtinRegexpExtractSig) vecEval(args []columnar.Value) (columnar.Value, error) {
	width, err := offsetWidthOf(args[0].DataType())
	if err != nil {
		return columnar.Value{}, err
	}
	n, isScalarCall := columnar.InferRowCount(args...)
	arrs, err := broadcastArgs(b.mem, args)
	if err != nil {
		return columnar.Value{}, err
	}
	defer releaseArrays(arrs)

	var result arrow.Array
	switch width {
	case standardOffsets:
		result, err = regexpExtract[*array.String](b, arrs, n, array.NewStringBuilder(b.mem))
	case wideOffsets:
		result, err = regexpExtract[*array.LargeString](b, arrs, n, array.NewLargeStringBuilder(b.mem))
	}
	if err != nil {
		return columnar.Value{}, err
	}
	return materializeResult(result, isScalarCall), nil
}

func regexpExtract[A textArray, B textBuilder](b *builtinRegexpExtractSig, arrs []arrow.Array, n int, builder B) (arrow.Array, error) {
	defer builder.Release()

	input, err := buildStringParam[A](arrs[0], n, "str")
	if err != nil {
		return nil, err
	}
	patterns, err := buildStringParam[A](arrs[1], n, "pattern")
	if err != nil {
		return nil, err
	}
	groups, err := buildIntParam(arrs[2], n, "group_index")
	if err != nil {
		return nil, err
	}
	resolver, err := newPatternResolver(b.engine, patterns)
	if err != nil {
		return nil, err
	}

	// A match is a substring of its input, so the input size bounds the
	// output size unless str is const.
	builder.Reserve(n)
	builder.ReserveData(input.dataSize())
	for i := 0; i < n; i++ {
		// Compile before checking the other arguments so that an invalid
		// pattern fails the call whatever the rest of its row holds.
		var re regexputil.Regexp
		if !patterns.isNull(i) {
			if re, err = resolver.patternAt(i); err != nil {
				return nil, err
			}
		}
		if re == nil || input.isNull(i) || groups.isNull(i) {
			builder.AppendNull()
			continue
		}
		builder.Append(extractGroup(re, input.getStringVal(i), groups.getIntVal(i)))
	}
	return builder.NewArray(), nil
}

// extractGroup returns the text of capture group `group` of the leftmost
// match of re in s. Group 0 is the whole match. It returns "" when there is no
// match, when group is out of range, or when the group did not take part in
// the match.
func extractGroup(re regexputil.Regexp, s string, group int64) string {
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return ""
	}
	if group < 0 || group >= int64(len(loc)/2) {
		return ""
	}
	start, end := loc[2*group], loc[2*group+1]
	if start < 0 || end < start || end > len(s) {
		return ""
	}
	return s[start:end]
}

type patternKind uint8

const (
	// sharedPattern compiles the pattern once for the whole call.
	sharedPattern patternKind = iota
	// perRowPattern compiles each row's pattern right before matching it.
	perRowPattern
)

// patternResolver hands out the compiled pattern of each row. The kind is
// chosen once per call from the number of pattern values.
type patternResolver[A textArray] struct {
	kind     patternKind
	shared   regexputil.Regexp
	patterns stringParam[A]
	engine   regexputil.Engine
}

func newPatternResolver[A textArray](engine regexputil.Engine, patterns stringParam[A]) (*patternResolver[A], error) {
	r := &patternResolver[A]{patterns: patterns, engine: engine}
	if !patterns.isConst() {
		r.kind = perRowPattern
		return r, nil
	}
	r.kind = sharedPattern
	// A const null pattern makes every row null, nothing to compile.
	if patterns.isNull(0) {
		return r, nil
	}
	re, err := compilePattern(engine, patterns.getStringVal(0), metrics.RegexpCompileShared)
	if err != nil {
		return nil, err
	}
	r.shared = re
	return r, nil
}

func (r *patternResolver[A]) patternAt(row int) (regexputil.Regexp, error) {
	if r.kind == sharedPattern {
		return r.shared, nil
	}
	return compilePattern(r.engine, r.patterns.getStringVal(row), metrics.RegexpCompilePerRow)
}

func compilePattern(engine regexputil.Engine, pattern, tp string) (regexputil.Regexp, error) {
	metrics.RegexpCompileCounter.WithLabelValues(tp).Inc()
	re, err := engine.Compile(pattern)
	if err != nil {
		metrics.RegexpCompileErrorCounter.Inc()
		logutil.BgLogger().Debug("compile regexp pattern failed",
			zap.String(logutil.LogFieldFunction, RegexpExtract),
			zap.String("engine", engine.Name()),
			zap.String("pattern", pattern),
			zap.Error(err))
		return nil, ErrPatternCompile.GenWithStackByArgs(pattern)
	}
	return re, nil
}

// materializeResult turns the single row of a call whose arguments were all
// scalars back into a scalar, so the optimizer can fold it as a constant.
func materializeResult(result arrow.Array, isScalarCall bool) columnar.Value {
	if !isScalarCall {
		return columnar.NewArray(result)
	}
	defer result.Release()
	var sc scalar.Scalar
	switch arr := result.(type) {
	case *array.LargeString:
		if arr.IsNull(0) {
			sc = scalar.MakeNullScalar(arrow.BinaryTypes.LargeString)
		} else {
			sc = scalar.NewLargeStringScalar(arr.Value(0))
		}
	case *array.String:
		if arr.IsNull(0) {
			sc = scalar.MakeNullScalar(arrow.BinaryTypes.String)
		} else {
			sc = scalar.NewStringScalar(arr.Value(0))
		}
	}
	return columnar.NewScalar(sc)
}

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
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/pingcap/colexpr/pkg/metrics"
	"github.com/pingcap/colexpr/pkg/util/columnar"
	"github.com/pingcap/colexpr/pkg/util/regexputil"
)

// Builtin function names.
const (
	RegexpExtract = "regexp_extract"
)

// Volatility tells the optimizer how freely calls to a function may be
// cached, reordered or folded.
type Volatility int

const (
	// Immutable functions always return the same result for the same
	// arguments and have no side effects.
	Immutable Volatility = iota
	// Stable functions return the same result for the same arguments within
	// one query.
	Stable
	// Volatile functions may return a different result on every call.
	Volatile
)

// String implements fmt.Stringer.
func (v Volatility) String() string {
	switch v {
	case Immutable:
		return "immutable"
	case Stable:
		return "stable"
	case Volatile:
		return "volatile"
	}
	return "unknown"
}

// Signature is one accepted list of argument types.
type Signature struct {
	ArgTypes []arrow.DataType
}

func (s Signature) accepts(argTypes []arrow.DataType) bool {
	if len(s.ArgTypes) != len(argTypes) {
		return false
	}
	for i, tp := range s.ArgTypes {
		if !arrow.TypeEqual(tp, argTypes[i]) {
			return false
		}
	}
	return true
}

// ArgumentDoc documents one argument.
type ArgumentDoc struct {
	Name        string
	Description string
}

// Documentation is the user facing description of a function.
type Documentation struct {
	Section       string
	Description   string
	SyntaxExample string
	SQLExample    string
	Arguments     []ArgumentDoc
}

// builtinFunc is the vectorized implementation behind a FuncDesc.
type builtinFunc interface {
	// vecEval evaluates the function over one batch. Every argument is
	// either a scalar or an array with one entry per row.
	vecEval(args []columnar.Value) (columnar.Value, error)
}

// BuiltinOptions are shared by every builtin function of a registry.
type BuiltinOptions struct {
	// RegexpEngine compiles patterns of the regexp builtins.
	RegexpEngine regexputil.Engine
	// Allocator allocates result buffers.
	Allocator memory.Allocator
}

func (o BuiltinOptions) withDefaults() (BuiltinOptions, error) {
	if o.RegexpEngine == nil {
		engine, err := regexputil.NewEngine(regexputil.DefaultEngine)
		if err != nil {
			return o, err
		}
		o.RegexpEngine = engine
	}
	if o.Allocator == nil {
		o.Allocator = memory.DefaultAllocator
	}
	return o, nil
}

// FuncDesc describes a builtin function to the function registry.
type FuncDesc struct {
	Name       string
	Signatures []Signature
	Volatility Volatility
	Doc        Documentation

	minArgs int
	maxArgs int
	fn      builtinFunc
}

func newFuncDesc(name string, sigs []Signature, volatility Volatility, doc Documentation, fn builtinFunc) *FuncDesc {
	d := &FuncDesc{
		Name:       name,
		Signatures: sigs,
		Volatility: volatility,
		Doc:        doc,
		minArgs:    -1,
		fn:         fn,
	}
	for _, sig := range sigs {
		l := len(sig.ArgTypes)
		if d.minArgs == -1 || l < d.minArgs {
			d.minArgs = l
		}
		if l > d.maxArgs {
			d.maxArgs = l
		}
	}
	return d
}

func (d *FuncDesc) verifyArgCount(l int) error {
	if l < d.minArgs || l > d.maxArgs {
		return ErrIncorrectParameterCount.GenWithStackByArgs(d.Name)
	}
	return nil
}

// ReturnType returns the result type of a call with the given argument
// types. Every builtin returns the type of its first argument.
func (d *FuncDesc) ReturnType(argTypes []arrow.DataType) (arrow.DataType, error) {
	if err := d.verifyArgCount(len(argTypes)); err != nil {
		return nil, err
	}
	for _, sig := range d.Signatures {
		if sig.accepts(argTypes) {
			return argTypes[0], nil
		}
	}
	names := make([]string, 0, len(argTypes))
	for _, tp := range argTypes {
		names = append(names, tp.String())
	}
	return nil, ErrIncorrectArgumentTypes.GenWithStackByArgs(strings.Join(names, ", "), d.Name)
}

// Invoke evaluates the function over one batch. The argument types are
// expected to match one of the signatures already. An array result is owned
// by the caller, who must release it.
func (d *FuncDesc) Invoke(args ...columnar.Value) (columnar.Value, error) {
	if err := d.verifyArgCount(len(args)); err != nil {
		return columnar.Value{}, err
	}
	start := time.Now()
	res, err := d.fn.vecEval(args)
	if err != nil {
		metrics.FunctionEvalCounter.WithLabelValues(d.Name, metrics.LblError).Inc()
		return columnar.Value{}, err
	}
	metrics.FunctionEvalCounter.WithLabelValues(d.Name, metrics.LblOK).Inc()
	metrics.FunctionEvalDurationHistogram.WithLabelValues(d.Name).Observe(time.Since(start).Seconds())
	rows := 1
	if arr := res.Array(); arr != nil {
		rows = arr.Len()
	}
	metrics.FunctionEvalRowsCounter.WithLabelValues(d.Name).Add(float64(rows))
	return res, nil
}

// funcs holds the constructors of all builtin functions.
var funcs = map[string]func(opts BuiltinOptions) *FuncDesc{
	// regexp functions
	RegexpExtract: newRegexpExtractDesc,
}

// Copyright 2022 PingCAP, Inc.
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
	"github.com/pingcap/colexpr/pkg/util/columnar"
	"github.com/pingcap/errors"
)

// textArray is a string column with either 32-bit (*array.String) or
// 64-bit (*array.LargeString) offsets.
type textArray interface {
	arrow.Array
	Value(i int) string
	ValueBytes() []byte
}

// textBuilder builds a textArray.
type textBuilder interface {
	array.Builder
	Append(v string)
	ReserveData(n int)
}

// Parameters may be const or vary per row, so different situations should be
// considered. We can handle parameters more easily with funcParam.
//
// A const parameter is held as an array of length 1 and read at index 0 for
// every row, so it is never repeated for the whole batch.
//
// for example:
//
//	select regexp_extract(t.a, '(a.*?b)', 1) from t, here the second and third parameter hold 1 entry
//	select regexp_extract(t.a, t.b, t.c) from t, here every parameter holds one entry per row
type funcParam[A arrow.Array] struct {
	col A
}

// newFuncParam checks that arr is an A holding either 1 or n entries.
func newFuncParam[A arrow.Array](arr arrow.Array, n int, argName, want string) (funcParam[A], error) {
	col, ok := arr.(A)
	if !ok {
		return funcParam[A]{}, ErrRepresentationMismatch.GenWithStackByArgs(argName, arr.DataType(), want)
	}
	if l := col.Len(); l != 1 && l != n {
		return funcParam[A]{}, errArgumentLength.GenWithStackByArgs(argName, l, n)
	}
	return funcParam[A]{col: col}, nil
}

func (pa funcParam[A]) isConst() bool {
	return pa.col.Len() == 1
}

func (pa funcParam[A]) idx(row int) int {
	return columnar.BroadcastIndex(pa.col.Len(), row)
}

func (pa funcParam[A]) isNull(row int) bool {
	return pa.col.IsNull(pa.idx(row))
}

// stringParam is a string parameter of a given offset width.
type stringParam[A textArray] struct {
	funcParam[A]
}

func buildStringParam[A textArray](arr arrow.Array, n int, argName string) (stringParam[A], error) {
	var zero A
	pa, err := newFuncParam[A](arr, n, argName, textTypeName(zero))
	return stringParam[A]{pa}, err
}

func (pa stringParam[A]) getStringVal(row int) string {
	return pa.col.Value(pa.idx(row))
}

// dataSize returns the size of the string data, used as a capacity hint.
func (pa stringParam[A]) dataSize() int {
	return len(pa.col.ValueBytes())
}

type intParam struct {
	funcParam[*array.Int64]
}

func buildIntParam(arr arrow.Array, n int, argName string) (intParam, error) {
	pa, err := newFuncParam[*array.Int64](arr, n, argName, arrow.PrimitiveTypes.Int64.String())
	return intParam{pa}, err
}

func (pa intParam) getIntVal(row int) int64 {
	return pa.col.Value(pa.idx(row))
}

func textTypeName(arr arrow.Array) string {
	switch arr.(type) {
	case *array.LargeString:
		return arrow.BinaryTypes.LargeString.String()
	default:
		return arrow.BinaryTypes.String.String()
	}
}

// broadcastArgs turns every argument into an array without repeating
// scalars. The caller must release the returned arrays.
func broadcastArgs(mem memory.Allocator, args []columnar.Value) ([]arrow.Array, error) {
	arrs := make([]arrow.Array, 0, len(args))
	for _, arg := range args {
		arr, err := arg.Broadcast(mem)
		if err != nil {
			releaseArrays(arrs)
			return nil, errors.Trace(err)
		}
		arrs = append(arrs, arr)
	}
	return arrs, nil
}

func releaseArrays(arrs []arrow.Array) {
	for _, arr := range arrs {
		arr.Release()
	}
}

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

// Package columnar holds the argument and result values exchanged between
// the execution engine and vectorized builtin functions.
package columnar

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/arrow/scalar"
	"github.com/pingcap/errors"
)

// Value is either a single scalar, logically repeated for every row of a
// batch, or an array holding one entry per row.
type Value struct {
	sc  scalar.Scalar
	arr arrow.Array
}

// NewScalar wraps a scalar value.
func NewScalar(sc scalar.Scalar) Value {
	return Value{sc: sc}
}

// NewArray wraps an array value. The Value does not take an extra
// reference; the caller keeps ownership of arr.
func NewArray(arr arrow.Array) Value {
	return Value{arr: arr}
}

// IsScalar reports whether v is a scalar.
func (v Value) IsScalar() bool {
	return v.arr == nil
}

// Scalar returns the scalar, or nil if v is an array.
func (v Value) Scalar() scalar.Scalar {
	return v.sc
}

// Array returns the array, or nil if v is a scalar.
func (v Value) Array() arrow.Array {
	return v.arr
}

// DataType returns the declared type of v.
func (v Value) DataType() arrow.DataType {
	if v.arr != nil {
		return v.arr.DataType()
	}
	if v.sc != nil {
		return v.sc.DataType()
	}
	return arrow.Null
}

// ToArray returns v as an array holding n entries. A scalar is repeated n
// times; an array must already hold n entries. The returned array carries a
// reference owned by the caller.
func (v Value) ToArray(mem memory.Allocator, n int) (arrow.Array, error) {
	if v.arr != nil {
		if v.arr.Len() != n {
			return nil, errors.Errorf("cannot expand array of length %d to length %d", v.arr.Len(), n)
		}
		v.arr.Retain()
		return v.arr, nil
	}
	if v.sc == nil {
		return nil, errors.New("cannot expand an empty columnar value")
	}
	switch v.sc.DataType().ID() {
	case arrow.STRING:
		return repeatString(array.NewStringBuilder(mem), v.sc, n), nil
	case arrow.LARGE_STRING:
		return repeatString(array.NewLargeStringBuilder(mem), v.sc, n), nil
	}
	arr, err := scalar.MakeArrayFromScalar(v.sc, n, mem)
	return arr, errors.Trace(err)
}

type stringBuilder interface {
	Reserve(n int)
	ReserveData(n int)
	Append(v string)
	AppendNull()
	NewArray() arrow.Array
	Release()
}

// repeatString builds the string array of n copies of sc. MakeArrayFromScalar
// cannot build a large_utf8 array from a scalar.
func repeatString(b stringBuilder, sc scalar.Scalar, n int) arrow.Array {
	defer b.Release()
	b.Reserve(n)
	if !sc.IsValid() {
		for i := 0; i < n; i++ {
			b.AppendNull()
		}
		return b.NewArray()
	}
	s := string(sc.(scalar.BinaryScalar).Data())
	b.ReserveData(n * len(s))
	for i := 0; i < n; i++ {
		b.Append(s)
	}
	return b.NewArray()
}

// Broadcast returns v as an array without repeating scalars: a scalar becomes
// an array of length 1. Use BroadcastIndex to read it for any row.
func (v Value) Broadcast(mem memory.Allocator) (arrow.Array, error) {
	if v.arr != nil {
		return v.ToArray(mem, v.arr.Len())
	}
	return v.ToArray(mem, 1)
}

// Release releases the array held by v, if any.
func (v Value) Release() {
	if v.arr != nil {
		v.arr.Release()
	}
}

// BroadcastIndex maps a row of the batch to an index into an array of
// length arrLen, reading index 0 for every row when arrLen is 1.
func BroadcastIndex(arrLen, row int) int {
	if arrLen == 1 {
		return 0
	}
	return row
}

// InferRowCount returns the row count of a call taking args: the length of
// the first array argument, or 1 when every argument is a scalar. allScalar
// reports the latter case.
func InferRowCount(args ...Value) (n int, allScalar bool) {
	for _, arg := range args {
		if !arg.IsScalar() {
			return arg.arr.Len(), false
		}
	}
	return 1, true
}

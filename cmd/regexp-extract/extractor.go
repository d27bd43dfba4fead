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
	"bufio"
	"context"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/arrow/scalar"
	"github.com/pingcap/colexpr/pkg/expression"
	"github.com/pingcap/colexpr/pkg/util/columnar"
	"github.com/pingcap/colexpr/pkg/util/logutil"
	"github.com/pingcap/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// nullText stands for a null value in the input and the output.
const nullText = `\N`

const maxLineSize = 64 * 1024 * 1024

type textArray interface {
	arrow.Array
	Value(i int) string
}

// extractor evaluates regexp_extract with a fixed pattern and group over
// batches of lines.
type extractor struct {
	desc         *expression.FuncDesc
	pattern      columnar.Value
	group        columnar.Value
	largeOffsets bool
	mem          memory.Allocator
}

func newExtractor(desc *expression.FuncDesc, pattern string, group int64, largeOffsets bool) *extractor {
	e := &extractor{
		desc:         desc,
		group:        columnar.NewScalar(scalar.NewInt64Scalar(group)),
		largeOffsets: largeOffsets,
		mem:          memory.DefaultAllocator,
	}
	if largeOffsets {
		e.pattern = columnar.NewScalar(scalar.NewLargeStringScalar(pattern))
	} else {
		e.pattern = columnar.NewScalar(scalar.NewStringScalar(pattern))
	}
	return e
}

func (e *extractor) newInput(lines []string) arrow.Array {
	var b interface {
		array.Builder
		Append(string)
	}
	if e.largeOffsets {
		b = array.NewLargeStringBuilder(e.mem)
	} else {
		b = array.NewStringBuilder(e.mem)
	}
	defer b.Release()
	b.Reserve(len(lines))
	for _, line := range lines {
		if line == nullText {
			b.AppendNull()
			continue
		}
		b.Append(line)
	}
	return b.NewArray()
}

// evalBatch returns the output line of every input line.
func (e *extractor) evalBatch(lines []string) ([]string, error) {
	input := e.newInput(lines)
	defer input.Release()
	res, err := e.desc.Invoke(columnar.NewArray(input), e.pattern, e.group)
	if err != nil {
		return nil, err
	}
	defer res.Release()
	col, ok := res.Array().(textArray)
	if !ok {
		return nil, errors.Errorf("unexpected result type %s", res.DataType())
	}
	out := make([]string, col.Len())
	for i := range out {
		if col.IsNull(i) {
			out[i] = nullText
		} else {
			out[i] = col.Value(i)
		}
	}
	return out, nil
}

// readBatches reads up to maxBatches batches of batchSize lines.
func readBatches(scanner *bufio.Scanner, batchSize, maxBatches int) ([][]string, error) {
	var batches [][]string
	for len(batches) < maxBatches {
		batch := make([]string, 0, batchSize)
		for len(batch) < batchSize && scanner.Scan() {
			batch = append(batch, scanner.Text())
		}
		if len(batch) > 0 {
			batches = append(batches, batch)
		}
		if len(batch) < batchSize {
			break
		}
	}
	return batches, errors.Trace(scanner.Err())
}

// run evaluates every line of r and writes the results to w in input order.
// It returns the number of rows written.
func (e *extractor) run(ctx context.Context, r io.Reader, w io.Writer, batchSize, concurrency int) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	bw := bufio.NewWriter(w)
	rows, seq := 0, 0
	for {
		batches, err := readBatches(scanner, batchSize, concurrency)
		if err != nil {
			return rows, err
		}
		if len(batches) == 0 {
			break
		}
		results := make([][]string, len(batches))
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(concurrency)
		for i, batch := range batches {
			batchID := seq + i
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return errors.Trace(err)
				}
				out, err := e.evalBatch(batch)
				if err != nil {
					return err
				}
				results[i] = out
				logutil.Logger(egCtx).Debug("batch evaluated", zap.Int("batch", batchID), zap.Int("rows", len(out)))
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return rows, err
		}
		seq += len(batches)
		for _, out := range results {
			for _, line := range out {
				if _, err := bw.WriteString(line); err != nil {
					return rows, errors.Trace(err)
				}
				if err := bw.WriteByte('\n'); err != nil {
					return rows, errors.Trace(err)
				}
			}
			rows += len(out)
		}
	}
	return rows, errors.Trace(bw.Flush())
}

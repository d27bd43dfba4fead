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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Regexp compile types.
const (
	RegexpCompileShared = "shared"
	RegexpCompilePerRow = "per_row"
)

// Expression evaluation metrics.
var (
	RegexpCompileCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colexpr",
			Subsystem: "expression",
			Name:      "regexp_compile_total",
			Help:      "Counter of compiled regexp patterns, by whether the compiled pattern is shared by the whole batch.",
		}, []string{LblType})

	RegexpCompileErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "colexpr",
			Subsystem: "expression",
			Name:      "regexp_compile_error_total",
			Help:      "Counter of regexp patterns that failed to compile.",
		})

	RegexpMatchErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colexpr",
			Subsystem: "expression",
			Name:      "regexp_match_error_total",
			Help:      "Counter of regexp matches that were abandoned with an error, such as a match timeout.",
		}, []string{LblType})

	FunctionEvalCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colexpr",
			Subsystem: "expression",
			Name:      "function_eval_total",
			Help:      "Counter of vectorized builtin function calls.",
		}, []string{LblFunction, LblResult})

	FunctionEvalRowsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colexpr",
			Subsystem: "expression",
			Name:      "function_eval_rows_total",
			Help:      "Counter of rows produced by vectorized builtin function calls.",
		}, []string{LblFunction})

	FunctionEvalDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "colexpr",
			Subsystem: "expression",
			Name:      "function_eval_duration_seconds",
			Help:      "Bucketed histogram of processing time (s) of vectorized builtin function calls.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 24), // 10us ~ 84s
		}, []string{LblFunction})
)

// Copyright 2018 PingCAP, Inc.
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
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Label constants.
const (
	LblType     = "type"
	LblResult   = "result"
	LblFunction = "function"

	LblOK    = "ok"
	LblError = "error"
)

var registerOnce sync.Once

// RegisterMetrics registers the metrics which are ONLY used in this process
// to the default registerer. It is safe to call more than once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		MustRegister(prometheus.DefaultRegisterer)
	})
}

// MustRegister registers all metrics to r.
func MustRegister(r prometheus.Registerer) {
	r.MustRegister(RegexpCompileCounter)
	r.MustRegister(RegexpCompileErrorCounter)
	r.MustRegister(RegexpMatchErrorCounter)
	r.MustRegister(FunctionEvalCounter)
	r.MustRegister(FunctionEvalRowsCounter)
	r.MustRegister(FunctionEvalDurationHistogram)
}

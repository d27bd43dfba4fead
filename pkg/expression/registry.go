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
	"sort"
	"strings"
	"sync"

	"github.com/pingcap/colexpr/pkg/config"
	"github.com/pingcap/colexpr/pkg/util/logutil"
	"github.com/pingcap/colexpr/pkg/util/regexputil"
	"github.com/pingcap/errors"
	"go.uber.org/zap"
)

// Registry maps function names to their descriptors. It is populated during
// startup and sealed afterwards; a sealed registry is read-only and safe for
// concurrent use.
type Registry struct {
	funcs  map[string]*FuncDesc
	sealed bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]*FuncDesc)}
}

// Register adds desc. Function names are case-insensitive.
func (r *Registry) Register(desc *FuncDesc) error {
	name := strings.ToLower(desc.Name)
	if r.sealed {
		return ErrRegistrySealed.GenWithStackByArgs(name)
	}
	if _, ok := r.funcs[name]; ok {
		return ErrFunctionAlreadyExists.GenWithStackByArgs(name)
	}
	r.funcs[name] = desc
	return nil
}

// Seal makes the registry read-only.
func (r *Registry) Seal() {
	r.sealed = true
}

// Sealed reports whether the registry is read-only.
func (r *Registry) Sealed() bool {
	return r.sealed
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (*FuncDesc, error) {
	desc, ok := r.funcs[strings.ToLower(name)]
	if !ok {
		return nil, ErrFunctionNotExists.GenWithStackByArgs(name)
	}
	return desc, nil
}

// Names returns the sorted names of all registered functions.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewBuiltinRegistry returns a sealed registry holding every builtin
// function.
func NewBuiltinRegistry(opts BuiltinOptions) (*Registry, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	r := NewRegistry()
	for _, newDesc := range funcs {
		if err := r.Register(newDesc(opts)); err != nil {
			return nil, errors.Trace(err)
		}
	}
	r.Seal()
	return r, nil
}

var (
	globalRegistry     *Registry
	globalRegistryErr  error
	globalRegistryOnce sync.Once
)

// GlobalRegistry returns the process-wide registry. It is built on first use
// from the global config; later config changes do not affect it.
func GlobalRegistry() (*Registry, error) {
	globalRegistryOnce.Do(func() {
		engineName := config.GetGlobalConfig().Expression.RegexpEngine
		engine, err := regexputil.NewEngine(engineName)
		if err != nil {
			globalRegistryErr = err
			return
		}
		globalRegistry, globalRegistryErr = NewBuiltinRegistry(BuiltinOptions{RegexpEngine: engine})
		if globalRegistryErr == nil {
			logutil.BgLogger().Info("builtin function registry initialized",
				zap.String("regexp-engine", engine.Name()),
				zap.Strings("functions", globalRegistry.Names()))
		}
	})
	return globalRegistry, globalRegistryErr
}

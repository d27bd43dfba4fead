// Copyright 2017 PingCAP, Inc.
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
	"github.com/pingcap/errors"
)

// Error instances.
var (
	// All the exported errors are defined here:
	ErrUnsupportedInputType    = errors.Normalize("Unsupported input type: %s", errors.RFCCodeText("Expression:UnsupportedInputType"))
	ErrPatternCompile          = errors.Normalize("Unable to compile pattern '%s' into regex", errors.RFCCodeText("Expression:PatternCompileError"))
	ErrRepresentationMismatch  = errors.Normalize("Failed to downcast %s argument of type %s to %s", errors.RFCCodeText("Expression:RepresentationMismatch"))
	ErrIncorrectParameterCount = errors.Normalize("Incorrect parameter count in the call to native function '%s'", errors.RFCCodeText("Expression:IncorrectParameterCount"))
	ErrIncorrectArgumentTypes  = errors.Normalize("Incorrect argument types (%s) in the call to native function '%s'", errors.RFCCodeText("Expression:IncorrectArgumentTypes"))
	ErrFunctionNotExists       = errors.Normalize("FUNCTION %s does not exist", errors.RFCCodeText("Expression:FunctionNotExists"))
	ErrFunctionAlreadyExists   = errors.Normalize("FUNCTION %s already exists", errors.RFCCodeText("Expression:FunctionAlreadyExists"))
	ErrRegistrySealed          = errors.Normalize("Cannot register FUNCTION %s, the function registry is sealed", errors.RFCCodeText("Expression:RegistrySealed"))

	// All the un-exported errors are defined here:

	// errArgumentLength carries the code of ErrRepresentationMismatch.
	errArgumentLength = errors.Normalize("%s argument holds %d rows, expected 1 or %d", errors.RFCCodeText("Expression:RepresentationMismatch"))
)

// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package sift

import "errors"

var (
	// ErrConstruction wraps errors raised at the point of builder misuse:
	// a multi-field reference on a single-field predicate, a second child
	// on a singleton composite, an End with nothing open, or any call on a
	// builder that has already produced its filter. These are programmer
	// errors and surface as panics at the offending call, except for an
	// unbalanced expression which Build reports as a returned error.
	ErrConstruction = errors.New("construction error")

	// ErrValidation wraps arity violations detected when a composite is
	// closed or the finished tree is verified: fewer than two children on
	// And/Or, or a missing child on Not. Validation errors are sticky and
	// abort the build; the builder must be discarded.
	ErrValidation = errors.New("validation error")

	// ErrType wraps comparator failures caused by a field value that cannot
	// be converted to the comparator's expected type.
	ErrType = errors.New("invalid type")
)

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

// Filter is the immutable result of Builder.Build: the root of the finished
// predicate tree plus the storage-level descriptor mirroring it. A Filter
// holds no mutable state and may be applied concurrently from any number of
// goroutines. Apply never fails for well-formed rows and has no side
// effects.
type Filter struct {
	root Predicate
	desc Descriptor
}

// Keep reports whether the row satisfies the filter expression and should be
// retained in the stream.
func (f *Filter) Keep(r Row) bool { return f.root.Apply(r) }

// Remove is the engine-facing polarity of Keep: streaming engines whose
// per-row hook asks "should this row be removed" call Remove, which is
// exactly the negation of Keep.
func (f *Filter) Remove(r Row) bool { return !f.root.Apply(r) }

// Descriptor returns the push-down descriptor built alongside the predicate
// tree, for hand-off to the storage layer consuming it.
func (f *Filter) Descriptor() Descriptor { return f.desc }

// Expression returns the root of the predicate tree.
func (f *Filter) Expression() Predicate { return f.root }

func (f *Filter) String() string { return "Filter(" + f.root.String() + ")" }

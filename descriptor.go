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

// Descriptor is the opaque push-down value produced by a DescriptorBuilder.
// The filter core never inspects it; it rides on the Filter so that whatever
// storage layer consumes it can skip blocks before rows are ever read.
type Descriptor any

// DescriptorBuilder is the external stateful sink that receives the same
// logical operations as the predicate tree, in the same order, with the same
// field names and literals. Implementations mirror the builder's stack
// discipline: StartX opens a construct, End closes the innermost open one,
// and Build produces the finished descriptor.
//
// Field names handed to a DescriptorBuilder have already been resolved
// against the schema, so a single name is always passed.
type DescriptorBuilder interface {
	StartAnd()
	StartOr()
	StartNot()
	End()

	Equals(field string, value any)
	NullSafeEquals(field string, value any)
	LessThan(field string, value any)
	LessThanEquals(field string, value any)
	GreaterThan(field string, value any)
	GreaterThanEquals(field string, value any)
	Between(field string, lower, upper any)
	In(field string, values ...any)
	IsNull(field string)

	Build() (Descriptor, error)
}

// NopDescriptorBuilder discards every operation and builds a nil Descriptor.
// It is used when a caller evaluates rows without any storage push-down.
type NopDescriptorBuilder struct{}

func (NopDescriptorBuilder) StartAnd() {}
func (NopDescriptorBuilder) StartOr()  {}
func (NopDescriptorBuilder) StartNot() {}
func (NopDescriptorBuilder) End()      {}

func (NopDescriptorBuilder) Equals(string, any)            {}
func (NopDescriptorBuilder) NullSafeEquals(string, any)    {}
func (NopDescriptorBuilder) LessThan(string, any)          {}
func (NopDescriptorBuilder) LessThanEquals(string, any)    {}
func (NopDescriptorBuilder) GreaterThan(string, any)       {}
func (NopDescriptorBuilder) GreaterThanEquals(string, any) {}
func (NopDescriptorBuilder) Between(string, any, any)      {}
func (NopDescriptorBuilder) In(string, ...any)             {}
func (NopDescriptorBuilder) IsNull(string)                 {}

func (NopDescriptorBuilder) Build() (Descriptor, error) { return nil, nil }

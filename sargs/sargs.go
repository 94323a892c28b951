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

// Package sargs implements a search-argument descriptor: a storage-facing
// representation of a filter expression that a block-oriented reader can use
// to skip whole blocks or row groups using per-field statistics, before any
// row is materialized.
//
// A Builder satisfies sift.DescriptorBuilder, so it can be handed to
// sift.NewBuilder and will receive the mirrored operation sequence as the
// filter expression is assembled.
package sargs

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sift-data/sift"
)

type node struct {
	op           sift.Operation
	field        string
	cmp          sift.Comparator
	lit          any
	lower, upper any
	lits         []any
	children     []*node
}

func (n *node) String() string {
	switch n.op {
	case sift.OpAnd, sift.OpOr, sift.OpNot:
		elems := make([]string, len(n.children))
		for i, c := range n.children {
			elems[i] = c.String()
		}

		return fmt.Sprintf("%s(%s)", n.op, strings.Join(elems, ", "))
	case sift.OpBetween:
		return fmt.Sprintf("Between(field='%s', lower=%v, upper=%v)", n.field, n.lower, n.upper)
	case sift.OpIn:
		elems := make([]string, len(n.lits))
		for i, l := range n.lits {
			elems[i] = fmt.Sprintf("%v", l)
		}

		return fmt.Sprintf("In(field='%s', {%s})", n.field, strings.Join(elems, ", "))
	case sift.OpIsNull:
		return fmt.Sprintf("IsNull(field='%s')", n.field)
	}

	return fmt.Sprintf("%s(field='%s', literal=%v)", n.op, n.field, n.lit)
}

// Builder accumulates descriptor nodes while the filter expression is being
// assembled. It mirrors the stack discipline of the filter builder: StartX
// opens a construct, leaf calls append to the innermost open one, End closes
// it. Build requires the sequence to have described exactly one expression.
type Builder struct {
	schema *sift.Schema
	stack  []*node
	err    error
}

var _ sift.DescriptorBuilder = (*Builder)(nil)

// NewBuilder constructs a descriptor builder over the given schema. The
// schema supplies the comparator used to test literals against block
// statistics for each referenced field.
func NewBuilder(schema *sift.Schema) *Builder {
	// the synthetic root collects the single expression described by the
	// operation sequence
	return &Builder{schema: schema, stack: []*node{{op: sift.OpIdentity}}}
}

func (b *Builder) top() *node { return b.stack[len(b.stack)-1] }

func (b *Builder) push(op sift.Operation) {
	n := &node{op: op}
	b.top().children = append(b.top().children, n)
	b.stack = append(b.stack, n)
}

func (b *Builder) leaf(n *node) {
	if cmp := b.comparator(n.field); cmp != nil {
		n.cmp = cmp
	}
	b.top().children = append(b.top().children, n)
}

func (b *Builder) comparator(field string) sift.Comparator {
	f, ok := b.schema.Field(field)
	if !ok {
		if b.err == nil {
			b.err = fmt.Errorf("%w: unknown field '%s'", sift.ErrConstruction, field)
		}

		return nil
	}

	return f.Compare
}

func (b *Builder) StartAnd() { b.push(sift.OpAnd) }
func (b *Builder) StartOr()  { b.push(sift.OpOr) }
func (b *Builder) StartNot() { b.push(sift.OpNot) }

func (b *Builder) End() {
	if len(b.stack) == 1 {
		if b.err == nil {
			b.err = fmt.Errorf("%w: End called with no open construct", sift.ErrConstruction)
		}

		return
	}
	b.stack = b.stack[:len(b.stack)-1]
}

func (b *Builder) Equals(field string, value any) {
	b.leaf(&node{op: sift.OpEquals, field: field, lit: value})
}

func (b *Builder) NullSafeEquals(field string, value any) {
	b.leaf(&node{op: sift.OpNullSafeEquals, field: field, lit: value})
}

func (b *Builder) LessThan(field string, value any) {
	b.leaf(&node{op: sift.OpLessThan, field: field, lit: value})
}

func (b *Builder) LessThanEquals(field string, value any) {
	b.leaf(&node{op: sift.OpLessThanEquals, field: field, lit: value})
}

func (b *Builder) GreaterThan(field string, value any) {
	b.leaf(&node{op: sift.OpGreaterThan, field: field, lit: value})
}

func (b *Builder) GreaterThanEquals(field string, value any) {
	b.leaf(&node{op: sift.OpGreaterThanEquals, field: field, lit: value})
}

func (b *Builder) Between(field string, lower, upper any) {
	b.leaf(&node{op: sift.OpBetween, field: field, lower: lower, upper: upper})
}

func (b *Builder) In(field string, values ...any) {
	b.leaf(&node{op: sift.OpIn, field: field, lits: slices.Clone(values)})
}

func (b *Builder) IsNull(field string) {
	b.leaf(&node{op: sift.OpIsNull, field: field})
}

// Build finalizes the descriptor. The recorded sequence must be balanced and
// describe exactly one expression.
func (b *Builder) Build() (sift.Descriptor, error) {
	if b.err != nil {
		return nil, b.err
	}
	if n := len(b.stack) - 1; n != 0 {
		return nil, fmt.Errorf("%w: unbalanced descriptor: %d construct(s) left open",
			sift.ErrConstruction, n)
	}
	root := b.stack[0]
	if len(root.children) != 1 {
		return nil, fmt.Errorf("%w: descriptor must describe exactly one expression, got %d",
			sift.ErrConstruction, len(root.children))
	}

	return &Descriptor{root: root.children[0]}, nil
}

// Descriptor is a finished, immutable search argument. It is safe for
// concurrent use.
type Descriptor struct {
	root *node
}

func (d *Descriptor) String() string { return "Descriptor(" + d.root.String() + ")" }

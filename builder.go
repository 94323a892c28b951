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

import (
	"fmt"
	"slices"
)

// opEnd closes the innermost open composite in a recorded instruction
// sequence. It is not a predicate operation and never appears in a tree.
const opEnd Operation = -1

// instruction is one recorded builder call. The same sequence that produced
// the predicate tree is replayed against the DescriptorBuilder during Build,
// so the two representations cannot drift apart: there is exactly one
// emission point for each.
type instruction struct {
	op           Operation
	field        string
	lit          any
	lower, upper any
	lits         []any
}

// Builder assembles a filter predicate and, in lockstep, the storage-level
// pruning descriptor describing the same expression.
//
// Nesting is expressed as paired StartAnd/StartOr/StartNot and End calls;
// every other call adds a leaf predicate to the innermost open composite.
// The stack starts with a transparent identity wrapper already pushed, which
// becomes the root of the finished tree. New composites are appended to
// their parent before being pushed, so every node is reachable from the root
// the instant it exists.
//
// A Builder is used by a single goroutine to assemble a single expression
// and must be discarded after Build, whether it succeeded or not.
type Builder struct {
	schema *Schema
	desc   DescriptorBuilder
	insts  []instruction
	stack  []composite
	err    error
	built  bool
}

// NewBuilder constructs a Builder over the given row schema. The descriptor
// builder receives the mirrored operation sequence at Build time; pass nil
// to evaluate rows without any storage push-down.
//
// Will panic if schema is nil.
func NewBuilder(schema *Schema, desc DescriptorBuilder) *Builder {
	if schema == nil {
		panic(fmt.Errorf("%w: cannot create a builder with a nil schema",
			ErrConstruction))
	}
	if desc == nil {
		desc = NopDescriptorBuilder{}
	}

	return &Builder{
		schema: schema,
		desc:   desc,
		stack:  []composite{newSingletonComposite(OpIdentity)},
	}
}

func (b *Builder) top() composite { return b.stack[len(b.stack)-1] }

func (b *Builder) checkUsable() {
	if b.built {
		panic(fmt.Errorf("%w: builder has already been built", ErrConstruction))
	}
}

// resolve maps a field reference to its schema declaration.
//
// Will panic if the reference does not name exactly one known field.
func (b *Builder) resolve(fields Fields) Field {
	if len(fields) != 1 {
		panic(fmt.Errorf("%w: predicates must reference exactly one field, got %d",
			ErrConstruction, len(fields)))
	}
	f, ok := b.schema.Field(fields[0])
	if !ok {
		panic(fmt.Errorf("%w: unknown field '%s'", ErrConstruction, fields[0]))
	}

	return f
}

func (b *Builder) start(op Operation) *Builder {
	b.checkUsable()

	var c composite
	if op == OpNot {
		c = newSingletonComposite(op)
	} else {
		c = newListComposite(op)
	}

	b.top().addChild(c)
	b.stack = append(b.stack, c)
	b.insts = append(b.insts, instruction{op: op})

	return b
}

// StartAnd opens a conjunction; subsequent calls add its children until the
// matching End.
func (b *Builder) StartAnd() *Builder { return b.start(OpAnd) }

// StartOr opens a disjunction; subsequent calls add its children until the
// matching End.
func (b *Builder) StartOr() *Builder { return b.start(OpOr) }

// StartNot opens a negation wrapping exactly one child predicate.
func (b *Builder) StartNot() *Builder { return b.start(OpNot) }

func (b *Builder) leaf(p Predicate, inst instruction) *Builder {
	b.top().addChild(p)
	b.insts = append(b.insts, inst)

	return b
}

func (b *Builder) literal(op Operation, fields Fields, value any) *Builder {
	b.checkUsable()
	f := b.resolve(fields)

	return b.leaf(newLiteralPredicate(op, f, value),
		instruction{op: op, field: f.Name, lit: value})
}

// Equals adds a value-equality predicate. A null field value never matches;
// use NullSafeEquals for null-tolerant equality.
func (b *Builder) Equals(fields Fields, value any) *Builder {
	return b.literal(OpEquals, fields, value)
}

// NullSafeEquals adds a null-tolerant equality predicate: two nulls compare
// equal, a single null never matches.
func (b *Builder) NullSafeEquals(fields Fields, value any) *Builder {
	return b.literal(OpNullSafeEquals, fields, value)
}

// LessThan adds an ordering predicate using the field's comparator.
func (b *Builder) LessThan(fields Fields, value any) *Builder {
	return b.literal(OpLessThan, fields, value)
}

// LessThanEquals adds an ordering predicate using the field's comparator.
func (b *Builder) LessThanEquals(fields Fields, value any) *Builder {
	return b.literal(OpLessThanEquals, fields, value)
}

// GreaterThan adds an ordering predicate using the field's comparator.
func (b *Builder) GreaterThan(fields Fields, value any) *Builder {
	return b.literal(OpGreaterThan, fields, value)
}

// GreaterThanEquals adds an ordering predicate using the field's comparator.
func (b *Builder) GreaterThanEquals(fields Fields, value any) *Builder {
	return b.literal(OpGreaterThanEquals, fields, value)
}

// Between adds an inclusive range predicate: lower <= value <= upper.
func (b *Builder) Between(fields Fields, lower, upper any) *Builder {
	b.checkUsable()
	f := b.resolve(fields)

	return b.leaf(newRangePredicate(f, lower, upper),
		instruction{op: OpBetween, field: f.Name, lower: lower, upper: upper})
}

// In adds a set-membership predicate. A nil member makes null field values
// match; otherwise nulls never match.
func (b *Builder) In(fields Fields, values ...any) *Builder {
	b.checkUsable()
	f := b.resolve(fields)

	return b.leaf(newSetPredicate(f, values),
		instruction{op: OpIn, field: f.Name, lits: slices.Clone(values)})
}

// IsNull adds a predicate matching rows whose field value is null.
func (b *Builder) IsNull(fields Fields) *Builder {
	b.checkUsable()
	f := b.resolve(fields)

	return b.leaf(newUnaryPredicate(OpIsNull, f),
		instruction{op: OpIsNull, field: f.Name})
}

// End closes the innermost open composite and verifies its arity. A failed
// verification is sticky: the first one is reported by Build and the build
// cannot be salvaged.
//
// Will panic if no composite is open.
func (b *Builder) End() *Builder {
	b.checkUsable()
	if len(b.stack) == 1 {
		panic(fmt.Errorf("%w: End called with no open composite", ErrConstruction))
	}

	popped := b.top()
	b.stack = b.stack[:len(b.stack)-1]
	if err := popped.Verify(); err != nil && b.err == nil {
		b.err = err
	}
	b.insts = append(b.insts, instruction{op: opEnd})

	return b
}

// Build finalizes the expression. It requires every StartX to have a
// matching End, verifies the whole tree, replays the recorded instruction
// sequence against the descriptor builder, and returns the completed Filter
// carrying the root predicate and the finished descriptor.
//
// Any error aborts the build with no partial result; the builder must be
// discarded either way.
func (b *Builder) Build() (*Filter, error) {
	b.checkUsable()
	b.built = true

	if b.err != nil {
		return nil, b.err
	}
	if n := len(b.stack) - 1; n != 0 {
		return nil, fmt.Errorf("%w: unbalanced expression: %d composite(s) left open",
			ErrConstruction, n)
	}

	root := b.stack[0]
	if err := root.Verify(); err != nil {
		return nil, err
	}

	b.replay()
	desc, err := b.desc.Build()
	if err != nil {
		return nil, err
	}

	return &Filter{root: root, desc: desc}, nil
}

// replay forwards the recorded instructions to the descriptor builder. This
// is the only place descriptor operations are emitted; the identity root is
// never part of the sequence.
func (b *Builder) replay() {
	for _, in := range b.insts {
		switch in.op {
		case OpAnd:
			b.desc.StartAnd()
		case OpOr:
			b.desc.StartOr()
		case OpNot:
			b.desc.StartNot()
		case opEnd:
			b.desc.End()
		case OpEquals:
			b.desc.Equals(in.field, in.lit)
		case OpNullSafeEquals:
			b.desc.NullSafeEquals(in.field, in.lit)
		case OpLessThan:
			b.desc.LessThan(in.field, in.lit)
		case OpLessThanEquals:
			b.desc.LessThanEquals(in.field, in.lit)
		case OpGreaterThan:
			b.desc.GreaterThan(in.field, in.lit)
		case OpGreaterThanEquals:
			b.desc.GreaterThanEquals(in.field, in.lit)
		case OpBetween:
			b.desc.Between(in.field, in.lower, in.upper)
		case OpIn:
			b.desc.In(in.field, in.lits...)
		case OpIsNull:
			b.desc.IsNull(in.field)
		}
	}
}

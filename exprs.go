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
	"strings"
)

// Operation is an enum identifying the operation a predicate performs.
type Operation int

const (
	// do not change the order of these enum constants.
	// literal predicates rely on OpEquals..OpGreaterThanEquals being a
	// contiguous group.

	OpEquals Operation = iota
	OpNullSafeEquals
	OpLessThan
	OpLessThanEquals
	OpGreaterThan
	OpGreaterThanEquals
	OpBetween
	OpIn
	OpIsNull
	OpNot
	OpAnd
	OpOr
	OpIdentity
)

func (op Operation) String() string {
	switch op {
	case OpEquals:
		return "Equals"
	case OpNullSafeEquals:
		return "NullSafeEquals"
	case OpLessThan:
		return "LessThan"
	case OpLessThanEquals:
		return "LessThanEquals"
	case OpGreaterThan:
		return "GreaterThan"
	case OpGreaterThanEquals:
		return "GreaterThanEquals"
	case OpBetween:
		return "Between"
	case OpIn:
		return "In"
	case OpIsNull:
		return "IsNull"
	case OpNot:
		return "Not"
	case OpAnd:
		return "And"
	case OpOr:
		return "Or"
	case OpIdentity:
		return "Identity"
	}

	return fmt.Sprintf("Operation(%d)", int(op))
}

// Predicate is a boolean test over a single row. Apply evaluates the row,
// Verify reports whether the predicate's structural invariants hold. Verify
// is pure and idempotent; it may be invoked any number of times.
//
// Predicates are immutable once their enclosing expression has been built
// and may be applied concurrently from any number of goroutines.
type Predicate interface {
	fmt.Stringer
	Op() Operation
	Apply(Row) bool
	Verify() error
}

// composite is a predicate that accumulates children while it is still open
// on the builder stack. Once popped and verified it is closed; nothing may
// add children to it afterwards.
type composite interface {
	Predicate
	addChild(Predicate)
}

type unaryPredicate struct {
	op    Operation
	field Field
}

func newUnaryPredicate(op Operation, field Field) Predicate {
	if op != OpIsNull {
		panic(fmt.Errorf("%w: invalid operation for unary predicate: %s",
			ErrConstruction, op))
	}

	return &unaryPredicate{op: op, field: field}
}

func (u *unaryPredicate) String() string {
	return fmt.Sprintf("%s(field='%s')", u.op, u.field.Name)
}

func (u *unaryPredicate) Op() Operation { return u.op }
func (u *unaryPredicate) Verify() error { return nil }

func (u *unaryPredicate) Apply(r Row) bool {
	return r.Get(u.field.Name) == nil
}

type literalPredicate struct {
	op    Operation
	field Field
	lit   any
}

func newLiteralPredicate(op Operation, field Field, lit any) Predicate {
	if op < OpEquals || op > OpGreaterThanEquals {
		panic(fmt.Errorf("%w: invalid operation for literal predicate: %s",
			ErrConstruction, op))
	}
	if lit == nil && op != OpNullSafeEquals {
		panic(fmt.Errorf("%w: cannot use a nil literal with %s",
			ErrConstruction, op))
	}

	return &literalPredicate{op: op, field: field, lit: lit}
}

func (l *literalPredicate) String() string {
	return fmt.Sprintf("%s(field='%s', literal=%v)", l.op, l.field.Name, l.lit)
}

func (l *literalPredicate) Op() Operation { return l.op }
func (l *literalPredicate) Verify() error { return nil }

// Apply compares the row's field value against the stored literal. A null
// field value never matches, except under NullSafeEquals which treats two
// nulls as equal.
func (l *literalPredicate) Apply(r Row) bool {
	v := r.Get(l.field.Name)

	if l.op == OpNullSafeEquals {
		switch {
		case v == nil:
			return l.lit == nil
		case l.lit == nil:
			return false
		}

		return l.field.Compare(v, l.lit) == 0
	}

	if v == nil {
		return false
	}

	c := l.field.Compare(v, l.lit)
	switch l.op {
	case OpEquals:
		return c == 0
	case OpLessThan:
		return c < 0
	case OpLessThanEquals:
		return c <= 0
	case OpGreaterThan:
		return c > 0
	case OpGreaterThanEquals:
		return c >= 0
	}

	return false
}

type rangePredicate struct {
	field        Field
	lower, upper any
}

func newRangePredicate(field Field, lower, upper any) Predicate {
	if lower == nil || upper == nil {
		panic(fmt.Errorf("%w: cannot use a nil bound with Between",
			ErrConstruction))
	}

	return &rangePredicate{field: field, lower: lower, upper: upper}
}

func (p *rangePredicate) String() string {
	return fmt.Sprintf("Between(field='%s', lower=%v, upper=%v)",
		p.field.Name, p.lower, p.upper)
}

func (p *rangePredicate) Op() Operation { return OpBetween }
func (p *rangePredicate) Verify() error { return nil }

// Apply implements the inclusive range test lower <= v <= upper. A null
// field value never matches.
func (p *rangePredicate) Apply(r Row) bool {
	v := r.Get(p.field.Name)
	if v == nil {
		return false
	}

	return p.field.Compare(v, p.lower) >= 0 && p.field.Compare(v, p.upper) <= 0
}

type setPredicate struct {
	field Field
	lits  []any
}

func newSetPredicate(field Field, lits []any) Predicate {
	return &setPredicate{field: field, lits: slices.Clone(lits)}
}

func (p *setPredicate) String() string {
	elems := make([]string, len(p.lits))
	for i, l := range p.lits {
		elems[i] = fmt.Sprintf("%v", l)
	}

	return fmt.Sprintf("In(field='%s', {%s})", p.field.Name, strings.Join(elems, ", "))
}

func (p *setPredicate) Op() Operation { return OpIn }
func (p *setPredicate) Verify() error { return nil }

// Apply returns true if the field value equals any member of the set. A null
// field value matches only if nil is itself a member.
func (p *setPredicate) Apply(r Row) bool {
	v := r.Get(p.field.Name)
	for _, lit := range p.lits {
		if lit == nil {
			if v == nil {
				return true
			}

			continue
		}
		if v != nil && p.field.Compare(v, lit) == 0 {
			return true
		}
	}

	return false
}

type listComposite struct {
	op       Operation
	children []Predicate
}

func newListComposite(op Operation) *listComposite {
	if op != OpAnd && op != OpOr {
		panic(fmt.Errorf("%w: invalid operation for list composite: %s",
			ErrConstruction, op))
	}

	return &listComposite{op: op}
}

func (c *listComposite) addChild(p Predicate) {
	c.children = append(c.children, p)
}

func (c *listComposite) String() string {
	elems := make([]string, len(c.children))
	for i, child := range c.children {
		elems[i] = child.String()
	}

	return fmt.Sprintf("%s(%s)", c.op, strings.Join(elems, ", "))
}

func (c *listComposite) Op() Operation { return c.op }

func (c *listComposite) Verify() error {
	if len(c.children) < 2 {
		return fmt.Errorf("%w: %s must contain at least two child predicates, got %d",
			ErrValidation, c.op, len(c.children))
	}
	for _, child := range c.children {
		if err := child.Verify(); err != nil {
			return err
		}
	}

	return nil
}

// Apply evaluates children in insertion order and short-circuits: And stops
// at the first false child, Or at the first true one.
func (c *listComposite) Apply(r Row) bool {
	if c.op == OpAnd {
		for _, child := range c.children {
			if !child.Apply(r) {
				return false
			}
		}

		return true
	}

	for _, child := range c.children {
		if child.Apply(r) {
			return true
		}
	}

	return false
}

type singletonComposite struct {
	op    Operation
	child Predicate
}

func newSingletonComposite(op Operation) *singletonComposite {
	if op != OpNot && op != OpIdentity {
		panic(fmt.Errorf("%w: invalid operation for singleton composite: %s",
			ErrConstruction, op))
	}

	return &singletonComposite{op: op}
}

func (c *singletonComposite) addChild(p Predicate) {
	if c.child != nil {
		panic(fmt.Errorf("%w: %s already has a child predicate",
			ErrConstruction, c.op))
	}
	c.child = p
}

func (c *singletonComposite) String() string {
	if c.child == nil {
		return fmt.Sprintf("%s()", c.op)
	}

	return fmt.Sprintf("%s(%s)", c.op, c.child)
}

func (c *singletonComposite) Op() Operation { return c.op }

func (c *singletonComposite) Verify() error {
	if c.child == nil {
		return fmt.Errorf("%w: %s must contain exactly one child predicate",
			ErrValidation, c.op)
	}

	return c.child.Verify()
}

func (c *singletonComposite) Apply(r Row) bool {
	if c.op == OpNot {
		return !c.child.Apply(r)
	}

	// the identity root wrapper is transparent
	return c.child.Apply(r)
}

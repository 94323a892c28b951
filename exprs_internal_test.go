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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// probePredicate records whether it was evaluated, to observe composite
// short-circuiting.
type probePredicate struct {
	result  bool
	invoked bool
}

func (p *probePredicate) String() string { return "Probe()" }
func (p *probePredicate) Op() Operation  { return OpEquals }
func (p *probePredicate) Verify() error  { return nil }
func (p *probePredicate) Apply(Row) bool {
	p.invoked = true

	return p.result
}

func TestAndShortCircuits(t *testing.T) {
	first := &probePredicate{result: false}
	second := &probePredicate{}

	and := newListComposite(OpAnd)
	and.addChild(first)
	and.addChild(second)
	require.NoError(t, and.Verify())

	assert.False(t, and.Apply(MapRow{}))
	assert.True(t, first.invoked)
	assert.False(t, second.invoked, "And must stop at the first false child")
}

func TestOrShortCircuits(t *testing.T) {
	first := &probePredicate{result: true}
	second := &probePredicate{}

	or := newListComposite(OpOr)
	or.addChild(first)
	or.addChild(second)
	require.NoError(t, or.Verify())

	assert.True(t, or.Apply(MapRow{}))
	assert.True(t, first.invoked)
	assert.False(t, second.invoked, "Or must stop at the first true child")
}

func TestListCompositeArity(t *testing.T) {
	for _, op := range []Operation{OpAnd, OpOr} {
		t.Run(op.String(), func(t *testing.T) {
			c := newListComposite(op)
			assert.ErrorIs(t, c.Verify(), ErrValidation)

			c.addChild(&probePredicate{})
			assert.ErrorIs(t, c.Verify(), ErrValidation)

			c.addChild(&probePredicate{})
			assert.NoError(t, c.Verify())

			c.addChild(&probePredicate{})
			assert.NoError(t, c.Verify())
		})
	}
}

func TestSingletonCompositeArity(t *testing.T) {
	for _, op := range []Operation{OpNot, OpIdentity} {
		t.Run(op.String(), func(t *testing.T) {
			c := newSingletonComposite(op)
			assert.ErrorIs(t, c.Verify(), ErrValidation)

			c.addChild(&probePredicate{})
			assert.NoError(t, c.Verify())

			assert.PanicsWithError(t,
				"construction error: "+op.String()+" already has a child predicate",
				func() { c.addChild(&probePredicate{}) })
		})
	}
}

func TestVerifyIsIdempotent(t *testing.T) {
	c := newListComposite(OpAnd)
	c.addChild(&probePredicate{})

	for range 3 {
		assert.ErrorIs(t, c.Verify(), ErrValidation)
	}

	c.addChild(&probePredicate{})
	for range 3 {
		assert.NoError(t, c.Verify())
	}
}

func TestIdentityIsTransparent(t *testing.T) {
	child := &probePredicate{result: true}
	root := newSingletonComposite(OpIdentity)
	root.addChild(child)

	assert.True(t, root.Apply(MapRow{}))
	assert.True(t, child.invoked)

	not := newSingletonComposite(OpNot)
	not.addChild(&probePredicate{result: true})
	assert.False(t, not.Apply(MapRow{}))
}

func TestVerifyRecursesIntoChildren(t *testing.T) {
	inner := newListComposite(OpOr)
	inner.addChild(&probePredicate{})

	outer := newListComposite(OpAnd)
	outer.addChild(&probePredicate{})
	outer.addChild(inner)

	assert.ErrorIs(t, outer.Verify(), ErrValidation)
}

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
	"bytes"
	"cmp"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Row is a single record in a stream, accessible by field name. Get returns
// nil when the field value is null or the row does not carry the field.
type Row interface {
	Get(name string) any
}

// MapRow is a Row backed by a plain map, convenient for tests and for rows
// decoded from JSON.
type MapRow map[string]any

func (m MapRow) Get(name string) any { return m[name] }

// Comparator is an ordering function over two field values:
//
//	returns 0 if a == b
//	returns <0 if a < b
//	returns >0 if a > b
//
// Comparators belong to a field's declaration in the Schema; predicates never
// supply their own. A comparator is never invoked with a nil value, null
// handling happens in the predicate before the comparator is consulted.
type Comparator func(a, b any) int

// Field declares a named column of a row stream together with the comparator
// used by any predicate that references it.
type Field struct {
	Name    string
	Compare Comparator
}

func (f Field) String() string { return "Field(name='" + f.Name + "')" }

// Fields is an ordered field-name reference, the unit a streaming engine
// addresses row values by. Predicates operate on exactly one field and reject
// references carrying more than one name.
type Fields []string

func (f Fields) String() string {
	out := "Fields("
	for i, name := range f {
		if i > 0 {
			out += ", "
		}
		out += name
	}

	return out + ")"
}

// Schema is the ordered set of fields a row stream carries.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema constructs a schema from the given field declarations.
//
// Will panic if a field name is duplicated or a field has no comparator.
func NewSchema(fields ...Field) *Schema {
	s := &Schema{fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		if f.Compare == nil {
			panic(fmt.Errorf("%w: field '%s' has no comparator", ErrConstruction, f.Name))
		}
		if _, ok := s.index[f.Name]; ok {
			panic(fmt.Errorf("%w: duplicate field '%s'", ErrConstruction, f.Name))
		}
		s.index[f.Name] = i
	}

	return s
}

// Field returns the declaration for the named field, if present.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}

	return s.fields[i], true
}

// Names returns the field names in declaration order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}

	return out
}

// NumFields returns the number of declared fields.
func (s *Schema) NumFields() int { return len(s.fields) }

func asTyped[T any](v any) T {
	if t, ok := v.(T); ok {
		return t
	}

	var z T
	typ, val := reflect.TypeOf(z), reflect.ValueOf(v)
	if !val.IsValid() || !val.CanConvert(typ) {
		panic(fmt.Errorf("%w: cannot convert value '%+v' to expected type %s",
			ErrType, v, typ.String()))
	}

	return val.Convert(typ).Interface().(T)
}

// OrderedComparator returns a Comparator for any ordered primitive type.
// Values that do not already carry the expected type are converted
// reflectively, so rows decoded from JSON (where every number is a float64)
// compare cleanly against int literals and vice versa.
func OrderedComparator[T cmp.Ordered]() Comparator {
	return func(a, b any) int {
		return cmp.Compare(asTyped[T](a), asTyped[T](b))
	}
}

var (
	Int64Comparator   = OrderedComparator[int64]()
	Float64Comparator = OrderedComparator[float64]()
	StringComparator  = OrderedComparator[string]()
)

// BytesComparator compares []byte values lexicographically.
func BytesComparator(a, b any) int {
	return bytes.Compare(asTyped[[]byte](a), asTyped[[]byte](b))
}

// BoolComparator orders false before true.
func BoolComparator(a, b any) int {
	av, bv := asTyped[bool](a), asTyped[bool](b)
	switch {
	case av == bv:
		return 0
	case bv:
		return -1
	default:
		return 1
	}
}

// TimeComparator compares time.Time values by instant.
func TimeComparator(a, b any) int {
	return asTyped[time.Time](a).Compare(asTyped[time.Time](b))
}

// UUIDComparator compares uuid.UUID values lexicographically by their bytes.
func UUIDComparator(a, b any) int {
	au, bu := asTyped[uuid.UUID](a), asTyped[uuid.UUID](b)

	return bytes.Compare(au[:], bu[:])
}

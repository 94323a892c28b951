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

package sift_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sift-data/sift"
)

func TestMapRow(t *testing.T) {
	row := sift.MapRow{"a": int64(1), "n": nil}

	assert.Equal(t, int64(1), row.Get("a"))
	assert.Nil(t, row.Get("n"))
	assert.Nil(t, row.Get("missing"))
}

func TestComparators(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	u1 := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	u2 := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	tests := []struct {
		name     string
		cmp      sift.Comparator
		a, b     any
		expected int
	}{
		{"int64 less", sift.Int64Comparator, int64(1), int64(2), -1},
		{"int64 equal", sift.Int64Comparator, int64(2), int64(2), 0},
		{"int64 greater", sift.Int64Comparator, int64(3), int64(2), 1},
		{"float64", sift.Float64Comparator, 1.5, 2.5, -1},
		{"string", sift.StringComparator, "apple", "banana", -1},
		{"bytes", sift.BytesComparator, []byte{0x01}, []byte{0x02}, -1},
		{"bytes prefix orders first", sift.BytesComparator, []byte{0x01}, []byte{0x01, 0x00}, -1},
		{"bool false before true", sift.BoolComparator, false, true, -1},
		{"bool equal", sift.BoolComparator, true, true, 0},
		{"time", sift.TimeComparator, ts, ts.Add(time.Hour), -1},
		{"time equal", sift.TimeComparator, ts, ts, 0},
		{"uuid", sift.UUIDComparator, u1, u2, -1},
		{"uuid equal", sift.UUIDComparator, u1, u1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cmp(tt.a, tt.b))
			assert.Equal(t, -tt.expected, tt.cmp(tt.b, tt.a))
		})
	}
}

// Rows decoded from JSON carry every number as a float64; comparators convert
// values to the field's declared type before comparing.
func TestComparatorConversion(t *testing.T) {
	assert.Equal(t, 0, sift.Int64Comparator(float64(5), int64(5)))
	assert.Equal(t, 0, sift.Int64Comparator(5, int64(5)))
	assert.Equal(t, -1, sift.Float64Comparator(int64(3), 3.5))
	assert.Equal(t, 1, sift.Int64Comparator(int32(9), int64(8)))
}

func TestComparatorTypeMismatch(t *testing.T) {
	assert.PanicsWithError(t,
		"invalid type: cannot convert value 'abc' to expected type int64",
		func() { sift.Int64Comparator("abc", int64(1)) })

	assert.PanicsWithError(t,
		"invalid type: cannot convert value 'true' to expected type float64",
		func() { sift.Float64Comparator(true, 1.0) })
}

func TestNewSchema(t *testing.T) {
	s := sift.NewSchema(
		sift.Field{Name: "id", Compare: sift.Int64Comparator},
		sift.Field{Name: "name", Compare: sift.StringComparator},
	)

	assert.Equal(t, 2, s.NumFields())
	assert.Equal(t, []string{"id", "name"}, s.Names())

	f, ok := s.Field("name")
	require.True(t, ok)
	assert.Equal(t, "name", f.Name)

	_, ok = s.Field("missing")
	assert.False(t, ok)
}

func TestNewSchemaRejectsBadFields(t *testing.T) {
	assert.PanicsWithError(t, "construction error: duplicate field 'id'",
		func() {
			sift.NewSchema(
				sift.Field{Name: "id", Compare: sift.Int64Comparator},
				sift.Field{Name: "id", Compare: sift.Int64Comparator},
			)
		})

	assert.PanicsWithError(t, "construction error: field 'id' has no comparator",
		func() {
			sift.NewSchema(sift.Field{Name: "id"})
		})
}

func TestFieldsString(t *testing.T) {
	assert.Equal(t, "Fields(a, b)", sift.Fields{"a", "b"}.String())
	assert.Equal(t, "Fields()", sift.Fields{}.String())
}

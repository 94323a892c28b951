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

package stream_test

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sift-data/sift"
	"github.com/sift-data/sift/stream"
)

func evenFilter(t *testing.T) *sift.Filter {
	t.Helper()

	schema := sift.NewSchema(
		sift.Field{Name: "n", Compare: sift.Int64Comparator},
		sift.Field{Name: "parity", Compare: sift.StringComparator},
	)
	f, err := sift.NewBuilder(schema, nil).
		Equals(sift.Fields{"parity"}, "even").
		Build()
	require.NoError(t, err)

	return f
}

func numberedRows(n int) []sift.Row {
	rows := make([]sift.Row, n)
	for i := range n {
		parity := "odd"
		if i%2 == 0 {
			parity = "even"
		}
		rows[i] = sift.MapRow{"n": int64(i), "parity": parity}
	}

	return rows
}

func keptNumbers(rows []sift.Row) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.Get("n").(int64)
	}

	return out
}

func TestApplyKeepsInputOrder(t *testing.T) {
	kept := stream.Collect(stream.Apply(stream.FromSlice(numberedRows(10)), evenFilter(t)))

	assert.Equal(t, []int64{0, 2, 4, 6, 8}, keptNumbers(kept))
}

func TestApplyIsLazy(t *testing.T) {
	it := stream.Apply(stream.FromSlice(numberedRows(4)), evenFilter(t))

	r, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, int64(0), r.Get("n"))

	r, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, int64(2), r.Get("n"))

	_, ok = it.Next()
	assert.False(t, ok)

	// an exhausted iterator stays exhausted
	_, ok = it.Next()
	assert.False(t, ok)
}

func TestCollectEmpty(t *testing.T) {
	assert.Empty(t, stream.Collect(stream.FromSlice(nil)))
}

func TestParallelKeepsSameRows(t *testing.T) {
	rows := numberedRows(100)

	in := make(chan sift.Row)
	go func() {
		defer close(in)
		for _, r := range rows {
			in <- r
		}
	}()

	var kept []sift.Row
	for r := range stream.Parallel(context.Background(), in, evenFilter(t), 4) {
		kept = append(kept, r)
	}

	// order is not preserved across workers, the kept set is
	nums := keptNumbers(kept)
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })

	expected := make([]int64, 0, 50)
	for i := int64(0); i < 100; i += 2 {
		expected = append(expected, i)
	}
	assert.Equal(t, expected, nums)
}

func TestParallelSingleWorker(t *testing.T) {
	in := make(chan sift.Row)
	go func() {
		defer close(in)
		for _, r := range numberedRows(6) {
			in <- r
		}
	}()

	var kept []sift.Row
	for r := range stream.Parallel(context.Background(), in, evenFilter(t), 0) {
		kept = append(kept, r)
	}

	assert.Equal(t, []int64{0, 2, 4}, keptNumbers(kept))
}

func TestParallelStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	// the feeder never closes the channel; only cancellation can end the run
	in := make(chan sift.Row)
	go func() {
		for _, r := range numberedRows(2) {
			in <- r
		}
	}()

	out := stream.Parallel(ctx, in, evenFilter(t), 2)
	cancel()

	for range out {
	}
}

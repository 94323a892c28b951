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

// Package stream hooks a finished filter into a row stream. The per-row hook
// follows engine polarity: the stream asks the filter whether each row should
// be removed.
package stream

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sift-data/sift"
)

// Iterator is a pull-based row stream. Next returns the next row and true,
// or a zero value and false once the stream is exhausted.
type Iterator interface {
	Next() (sift.Row, bool)
}

type sliceIterator struct {
	rows []sift.Row
	pos  int
}

func (it *sliceIterator) Next() (sift.Row, bool) {
	if it.pos >= len(it.rows) {
		return nil, false
	}
	r := it.rows[it.pos]
	it.pos++

	return r, true
}

// FromSlice adapts a row slice into an Iterator.
func FromSlice(rows []sift.Row) Iterator {
	return &sliceIterator{rows: rows}
}

type filteredIterator struct {
	in     Iterator
	filter *sift.Filter
}

func (it *filteredIterator) Next() (sift.Row, bool) {
	for {
		r, ok := it.in.Next()
		if !ok {
			return nil, false
		}
		if !it.filter.Remove(r) {
			return r, true
		}
	}
}

// Apply registers the filter over the stream, returning a lazy iterator that
// yields only the kept rows, in input order.
func Apply(in Iterator, filter *sift.Filter) Iterator {
	return &filteredIterator{in: in, filter: filter}
}

// Collect drains an iterator into a slice.
func Collect(it Iterator) []sift.Row {
	var out []sift.Row
	for r, ok := it.Next(); ok; r, ok = it.Next() {
		out = append(out, r)
	}

	return out
}

// Parallel applies the filter to rows from in using the given number of
// worker goroutines and returns the channel of kept rows. A finished filter
// is immutable, so the workers share it without locking. Output order is not
// preserved across workers. The output channel is closed once the input is
// drained or the context is cancelled.
func Parallel(ctx context.Context, in <-chan sift.Row, filter *sift.Filter, workers int) <-chan sift.Row {
	if workers < 1 {
		workers = 1
	}

	out := make(chan sift.Row)
	g, ctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case r, ok := <-in:
					if !ok {
						return nil
					}
					if filter.Remove(r) {
						continue
					}
					select {
					case out <- r:
					case <-ctx.Done():
						return ctx.Err()
					}
				}
			}
		})
	}

	go func() {
		defer close(out)
		_ = g.Wait()
	}()

	return out
}

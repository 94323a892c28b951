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

package sargs

import "github.com/sift-data/sift"

const (
	rowsMightMatch  = true
	rowsCannotMatch = false
)

// FieldStats are the statistics a block reader keeps for one field of one
// block: the minimum and maximum non-null values and whether any value is
// null. A nil Min/Max means that bound is unknown.
type FieldStats struct {
	Min, Max any
	HasNull  bool
}

// BlockStats maps field names to their per-block statistics. Fields absent
// from the map carry no statistics at all.
type BlockStats map[string]FieldStats

// MightMatch reports whether a block with the given statistics could contain
// a row matching the descriptor's expression. It is conservative: a true
// result only means the block cannot be skipped, while a false result
// guarantees no row in the block matches. Missing statistics always yield
// rowsMightMatch.
func (d *Descriptor) MightMatch(stats BlockStats) bool {
	return mightMatch(d.root, stats)
}

func mightMatch(n *node, stats BlockStats) bool {
	switch n.op {
	case sift.OpAnd:
		for _, c := range n.children {
			if !mightMatch(c, stats) {
				return rowsCannotMatch
			}
		}

		return rowsMightMatch
	case sift.OpOr:
		for _, c := range n.children {
			if mightMatch(c, stats) {
				return rowsMightMatch
			}
		}

		return rowsCannotMatch
	case sift.OpNot:
		// min/max bounds cannot prove the negation of a bounds test:
		// not(x < 5) may still hold for some row of a block whose min is 0
		return rowsMightMatch
	}

	field, ok := stats[n.field]
	if !ok {
		return rowsMightMatch
	}

	switch n.op {
	case sift.OpEquals:
		return boundsContain(n, field, n.lit)
	case sift.OpNullSafeEquals:
		if n.lit == nil {
			if !field.HasNull {
				return rowsCannotMatch
			}

			return rowsMightMatch
		}

		return boundsContain(n, field, n.lit)
	case sift.OpLessThan:
		if field.Min != nil && n.cmp(field.Min, n.lit) >= 0 {
			return rowsCannotMatch
		}
	case sift.OpLessThanEquals:
		if field.Min != nil && n.cmp(field.Min, n.lit) > 0 {
			return rowsCannotMatch
		}
	case sift.OpGreaterThan:
		if field.Max != nil && n.cmp(field.Max, n.lit) <= 0 {
			return rowsCannotMatch
		}
	case sift.OpGreaterThanEquals:
		if field.Max != nil && n.cmp(field.Max, n.lit) < 0 {
			return rowsCannotMatch
		}
	case sift.OpBetween:
		if field.Min != nil && n.cmp(field.Min, n.upper) > 0 {
			return rowsCannotMatch
		}
		if field.Max != nil && n.cmp(field.Max, n.lower) < 0 {
			return rowsCannotMatch
		}
	case sift.OpIn:
		for _, lit := range n.lits {
			if lit == nil {
				if field.HasNull {
					return rowsMightMatch
				}

				continue
			}
			if boundsContain(n, field, lit) {
				return rowsMightMatch
			}
		}

		return rowsCannotMatch
	case sift.OpIsNull:
		if !field.HasNull {
			return rowsCannotMatch
		}
	}

	return rowsMightMatch
}

// boundsContain reports whether lit could occur within the block's min/max
// bounds. Unknown bounds never exclude anything.
func boundsContain(n *node, field FieldStats, lit any) bool {
	if field.Min != nil && n.cmp(lit, field.Min) < 0 {
		return rowsCannotMatch
	}
	if field.Max != nil && n.cmp(lit, field.Max) > 0 {
		return rowsCannotMatch
	}

	return rowsMightMatch
}

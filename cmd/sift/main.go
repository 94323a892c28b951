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

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/docopt/docopt-go"
	"github.com/pterm/pterm"

	"github.com/sift-data/sift"
	"github.com/sift-data/sift/config"
	"github.com/sift-data/sift/sargs"
	"github.com/sift-data/sift/stream"
)

const usage = `sift.

Usage:
  sift filter [options] [FILE]
  sift -h | --help | --version

Commands:
  filter      Filter newline-delimited JSON rows.

Arguments:
  FILE           file of newline-delimited JSON rows (stdin when omitted)

Options:
  -h --help        show this help message and exit
  --eq COND ...    keep rows where FIELD equals VALUE (COND is FIELD=VALUE)
  --lt COND ...    keep rows where FIELD is less than VALUE
  --le COND ...    keep rows where FIELD is at most VALUE
  --gt COND ...    keep rows where FIELD is greater than VALUE
  --ge COND ...    keep rows where FIELD is at least VALUE
  --null FIELD ... keep rows where FIELD is null
  --stats FILE     JSON block statistics; also print the push-down verdict
  --workers N      number of filter workers (defaults from config)
  --config TEXT    specify the path to the configuration file`

type Config struct {
	Filter bool `docopt:"filter"`

	File string `docopt:"FILE"`

	Eq      []string `docopt:"--eq"`
	Lt      []string `docopt:"--lt"`
	Le      []string `docopt:"--le"`
	Gt      []string `docopt:"--gt"`
	Ge      []string `docopt:"--ge"`
	Null    []string `docopt:"--null"`
	Stats   string   `docopt:"--stats"`
	Workers int      `docopt:"--workers"`
	Config  string   `docopt:"--config"`
}

// condition is one FIELD=VALUE flag, tagged with the predicate operation it
// requests.
type condition struct {
	op    sift.Operation
	field string
	value any
}

func parseValue(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}

	return s
}

func parseConditions(cfg Config) ([]condition, error) {
	var conds []condition

	add := func(op sift.Operation, raw []string) error {
		for _, c := range raw {
			field, value, ok := strings.Cut(c, "=")
			if !ok {
				return fmt.Errorf("malformed condition %q, want FIELD=VALUE", c)
			}
			conds = append(conds, condition{op: op, field: field, value: parseValue(value)})
		}

		return nil
	}

	if err := add(sift.OpEquals, cfg.Eq); err != nil {
		return nil, err
	}
	if err := add(sift.OpLessThan, cfg.Lt); err != nil {
		return nil, err
	}
	if err := add(sift.OpLessThanEquals, cfg.Le); err != nil {
		return nil, err
	}
	if err := add(sift.OpGreaterThan, cfg.Gt); err != nil {
		return nil, err
	}
	if err := add(sift.OpGreaterThanEquals, cfg.Ge); err != nil {
		return nil, err
	}
	for _, f := range cfg.Null {
		conds = append(conds, condition{op: sift.OpIsNull, field: f})
	}

	return conds, nil
}

func comparatorFor(v any) sift.Comparator {
	switch v.(type) {
	case float64:
		return sift.Float64Comparator
	case bool:
		return sift.BoolComparator
	default:
		return sift.StringComparator
	}
}

func buildSchema(conds []condition) *sift.Schema {
	var (
		fields []sift.Field
		seen   = map[string]bool{}
	)
	for _, c := range conds {
		if seen[c.field] {
			continue
		}
		seen[c.field] = true
		cmp := sift.StringComparator
		if c.value != nil {
			cmp = comparatorFor(c.value)
		}
		fields = append(fields, sift.Field{Name: c.field, Compare: cmp})
	}

	return sift.NewSchema(fields...)
}

func buildFilter(conds []condition, schema *sift.Schema) (*sift.Filter, error) {
	b := sift.NewBuilder(schema, sargs.NewBuilder(schema))
	if len(conds) > 1 {
		b.StartAnd()
	}
	for _, c := range conds {
		ref := sift.Fields{c.field}
		switch c.op {
		case sift.OpEquals:
			b.Equals(ref, c.value)
		case sift.OpLessThan:
			b.LessThan(ref, c.value)
		case sift.OpLessThanEquals:
			b.LessThanEquals(ref, c.value)
		case sift.OpGreaterThan:
			b.GreaterThan(ref, c.value)
		case sift.OpGreaterThanEquals:
			b.GreaterThanEquals(ref, c.value)
		case sift.OpIsNull:
			b.IsNull(ref)
		}
	}
	if len(conds) > 1 {
		b.End()
	}

	return b.Build()
}

func readRows(r io.Reader) ([]sift.Row, error) {
	var (
		rows    []sift.Row
		scanner = bufio.NewScanner(r)
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		row := sift.MapRow{}
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			return nil, fmt.Errorf("malformed row %q: %w", line, err)
		}
		rows = append(rows, row)
	}

	return rows, scanner.Err()
}

func readStats(path string) (sargs.BlockStats, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var parsed map[string]struct {
		Min     any  `json:"min"`
		Max     any  `json:"max"`
		HasNull bool `json:"hasNull"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}

	stats := sargs.BlockStats{}
	for field, s := range parsed {
		stats[field] = sargs.FieldStats{Min: s.Min, Max: s.Max, HasNull: s.HasNull}
	}

	return stats, nil
}

func main() {
	args, err := docopt.ParseArgs(usage, os.Args[1:], sift.Version())
	if err != nil {
		log.Fatal(err)
	}

	cfg := Config{}
	if err := args.Bind(&cfg); err != nil {
		log.Fatal(err)
	}

	fileCfg := config.EnvConfig
	if cfg.Config != "" {
		if parsed := config.ParseConfig(config.LoadConfig(cfg.Config), fileCfg.DefaultProfile); parsed != nil && parsed.Workers > 0 {
			fileCfg.MaxWorkers = parsed.Workers
		}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = fileCfg.MaxWorkers
	}

	conds, err := parseConditions(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if len(conds) == 0 {
		log.Fatal("no filter conditions given")
	}

	schema := buildSchema(conds)
	filter, err := buildFilter(conds, schema)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Stats != "" {
		stats, err := readStats(cfg.Stats)
		if err != nil {
			log.Fatal(err)
		}
		desc := filter.Descriptor().(*sargs.Descriptor)
		if desc.MightMatch(stats) {
			pterm.Info.Println("push-down: block might match, rows must be read")
		} else {
			pterm.Success.Println("push-down: block cannot match, skip it entirely")
		}
	}

	in := os.Stdin
	if cfg.File != "" {
		f, err := os.Open(cfg.File)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		in = f
	}

	rows, err := readRows(in)
	if err != nil {
		log.Fatal(err)
	}

	var kept []sift.Row
	if workers > 1 {
		// parallel filtering does not preserve input order
		ch := make(chan sift.Row)
		go func() {
			defer close(ch)
			for _, row := range rows {
				ch <- row
			}
		}()
		for row := range stream.Parallel(context.Background(), ch, filter, workers) {
			kept = append(kept, row)
		}
	} else {
		kept = stream.Collect(stream.Apply(stream.FromSlice(rows), filter))
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	for _, row := range kept {
		enc, err := json.Marshal(row)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Fprintln(out, string(enc))
	}

	pterm.Info.Printfln("kept %d of %d rows", len(kept), len(rows))
}

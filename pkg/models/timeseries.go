// Package models holds the canonical, source-independent data model: time
// series, statements, securities, holdings, filings, option chains, fund
// reports, and news articles. Every adapter emits these shapes; none of them
// retain any reference to the adapter that produced them.
//
// Two normalization rules apply everywhere: calendar dates are ISO-8601
// strings (YYYY-MM-DD), instants are UTC seconds since the Unix epoch. A
// series constructed with Timestamps(true) renders integer keys instead of
// ISO strings.
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// ISODate is the date layout used across the library.
const ISODate = "2006-01-02"

// Float returns a pointer to v. Missing values are nil pointers, never
// sentinels.
func Float(v float64) *float64 { return &v }

// Fraction rounds a percentage-as-fraction to 4 decimal places. Values are
// expected in [0, 1] already.
func Fraction(v float64) float64 { return math.Round(v*1e4) / 1e4 }

// FractionPtr is Fraction lifted over nullable values.
func FractionPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Fraction(*v)
	return &r
}

// TimeSeries is an ordered sequence of observations, strictly ascending by
// time, with a column schema fixed at construction. No two observations share
// a key; missing numbers are explicit nils.
type TimeSeries struct {
	columns    []string
	colIdx     map[string]int
	times      []time.Time
	values     [][]*float64 // values[i] aligned to columns
	timestamps bool
}

// Builder accumulates unordered observations and produces a valid TimeSeries.
type Builder struct {
	columns []string
	colIdx  map[string]int
	rows    map[int64][]*float64
}

// NewBuilder creates a builder with a fixed column schema.
func NewBuilder(columns ...string) *Builder {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	return &Builder{
		columns: columns,
		colIdx:  idx,
		rows:    make(map[int64][]*float64),
	}
}

// Set records a single value. Unknown columns are an error at Build time, so
// Set panics early instead: schema is fixed at construction by contract.
func (b *Builder) Set(when time.Time, column string, v *float64) {
	i, ok := b.colIdx[column]
	if !ok {
		panic(fmt.Sprintf("models: column %q not in schema %v", column, b.columns))
	}
	key := when.UTC().Unix()
	row, ok := b.rows[key]
	if !ok {
		row = make([]*float64, len(b.columns))
		b.rows[key] = row
	}
	row[i] = v
}

// SetRow records several columns for one key.
func (b *Builder) SetRow(when time.Time, values map[string]*float64) {
	for c, v := range values {
		b.Set(when, c, v)
	}
}

// Has reports whether any value exists for the key.
func (b *Builder) Has(when time.Time) bool {
	_, ok := b.rows[when.UTC().Unix()]
	return ok
}

// Delete drops an observation entirely.
func (b *Builder) Delete(when time.Time) { delete(b.rows, when.UTC().Unix()) }

// Value reads back a previously set value, nil if absent.
func (b *Builder) Value(when time.Time, column string) *float64 {
	row, ok := b.rows[when.UTC().Unix()]
	if !ok {
		return nil
	}
	i, ok := b.colIdx[column]
	if !ok {
		return nil
	}
	return row[i]
}

// Keys returns the accumulated keys in ascending order.
func (b *Builder) Keys() []time.Time {
	keys := make([]int64, 0, len(b.rows))
	for k := range b.rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]time.Time, len(keys))
	for i, k := range keys {
		out[i] = time.Unix(k, 0).UTC()
	}
	return out
}

// Build sorts observations ascending and freezes the series. Duplicate keys
// cannot occur by construction (the builder keys by instant).
func (b *Builder) Build() *TimeSeries {
	keys := b.Keys()
	ts := &TimeSeries{
		columns: append([]string(nil), b.columns...),
		colIdx:  b.colIdx,
		times:   keys,
		values:  make([][]*float64, len(keys)),
	}
	for i, k := range keys {
		ts.values[i] = b.rows[k.Unix()]
	}
	return ts
}

// Len returns the number of observations.
func (ts *TimeSeries) Len() int { return len(ts.times) }

// Columns returns the schema in declaration order.
func (ts *TimeSeries) Columns() []string { return append([]string(nil), ts.columns...) }

// HasColumn reports whether the schema declares the column.
func (ts *TimeSeries) HasColumn(c string) bool { _, ok := ts.colIdx[c]; return ok }

// When returns the i-th key as a UTC instant.
func (ts *TimeSeries) When(i int) time.Time { return ts.times[i] }

// ISO returns the i-th key as an ISO-8601 calendar date.
func (ts *TimeSeries) ISO(i int) string { return ts.times[i].Format(ISODate) }

// Unix returns the i-th key as UTC epoch seconds.
func (ts *TimeSeries) Unix(i int) int64 { return ts.times[i].Unix() }

// Value returns the value at row i for the column, nil when missing.
func (ts *TimeSeries) Value(i int, column string) *float64 {
	j, ok := ts.colIdx[column]
	if !ok {
		return nil
	}
	return ts.values[i][j]
}

// Column returns a full column, aligned to the key order.
func (ts *TimeSeries) Column(column string) []*float64 {
	j, ok := ts.colIdx[column]
	if !ok {
		return nil
	}
	out := make([]*float64, len(ts.values))
	for i, row := range ts.values {
		out[i] = row[j]
	}
	return out
}

// Timestamps selects integer-seconds keys for rendering. The default is ISO
// date strings.
func (ts *TimeSeries) Timestamps(enabled bool) *TimeSeries {
	ts.timestamps = enabled
	return ts
}

// UsesTimestamps reports the key rendering mode.
func (ts *TimeSeries) UsesTimestamps() bool { return ts.timestamps }

// Keys renders all keys in the selected representation: int64 epoch seconds
// when Timestamps(true), ISO strings otherwise.
func (ts *TimeSeries) Keys() []any {
	out := make([]any, len(ts.times))
	for i := range ts.times {
		if ts.timestamps {
			out[i] = ts.Unix(i)
		} else {
			out[i] = ts.ISO(i)
		}
	}
	return out
}

// MarshalJSON renders the series as {key: {column: value|null}} in key order.
func (ts *TimeSeries) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i := range ts.times {
		if i > 0 {
			buf = append(buf, ',')
		}
		if ts.timestamps {
			buf = append(buf, fmt.Sprintf("%q:", fmt.Sprint(ts.Unix(i)))...)
		} else {
			buf = append(buf, fmt.Sprintf("%q:", ts.ISO(i))...)
		}
		row := make(map[string]*float64, len(ts.columns))
		for j, c := range ts.columns {
			row[c] = ts.values[i][j]
		}
		enc, err := json.Marshal(row)
		if err != nil {
			return nil, err
		}
		buf = append(buf, enc...)
	}
	return append(buf, '}'), nil
}

// WithReturns appends simple_returns and log_returns columns computed from
// the close and dividend columns:
//
//	simple = (close + dividends) / prev_close − 1
//	log    = ln((close + dividends) / prev_close)
//
// The first row's returns are nil, as is any row where close or the previous
// close is missing. divColumn may be empty for series without dividends.
func (ts *TimeSeries) WithReturns(closeColumn, divColumn string) *TimeSeries {
	const simpleCol, logCol = "simple_returns", "log_returns"
	b := NewBuilder(append(ts.Columns(), simpleCol, logCol)...)
	var prevClose *float64
	for i := range ts.times {
		when := ts.times[i]
		for _, c := range ts.columns {
			b.Set(when, c, ts.Value(i, c))
		}
		cl := ts.Value(i, closeColumn)
		if i > 0 && cl != nil && prevClose != nil && *prevClose != 0 {
			num := *cl
			if divColumn != "" {
				if d := ts.Value(i, divColumn); d != nil {
					num += *d
				}
			}
			ratio := num / *prevClose
			b.Set(when, simpleCol, Float(ratio-1))
			b.Set(when, logCol, Float(math.Log(ratio)))
		}
		if cl != nil {
			prevClose = cl
		}
	}
	out := b.Build()
	out.timestamps = ts.timestamps
	return out
}

// Rebase scales a column so its first non-nil value equals base. Used for
// index-level normalization to 100.
func (ts *TimeSeries) Rebase(column string, base float64) *TimeSeries {
	col := ts.Column(column)
	var first *float64
	for _, v := range col {
		if v != nil {
			first = v
			break
		}
	}
	if first == nil || *first == 0 {
		return ts
	}
	b := NewBuilder(ts.columns...)
	for i := range ts.times {
		for _, c := range ts.columns {
			v := ts.Value(i, c)
			if c == column && v != nil {
				v = Float(*v / *first * base)
			}
			b.Set(ts.times[i], c, v)
		}
	}
	out := b.Build()
	out.timestamps = ts.timestamps
	return out
}

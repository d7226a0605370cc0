// Package result turns raw measurement counts into an outcome table with one
// column per named register and a frequency column.
package result

import (
	"cmp"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// FreqColumn is the name of the absolute-frequency column.
const FreqColumn = "$freq"

var ErrRegisterMismatch = errors.New("bit-string does not match register names")

// Row is one distinct observed outcome.
type Row struct {
	Index  int               // dense position after sorting, starting at 0
	Values map[string]string // register name -> measured bits
	Freq   int
}

// Table holds the organized outcomes, most frequent first.
type Table struct {
	Columns []string // register names followed by FreqColumn
	Rows    []Row
}

// Organize converts a counts map into a Table. Every key is split on spaces
// and the groups are assigned to names in reverse: names[0] receives the last
// group. Rows are sorted by frequency, highest first; ties are broken by the
// original key so the order is deterministic.
func Organize(counts map[string]int, names []string) (*Table, error) {
	type keyed struct {
		key string
		row Row
	}
	entries := make([]keyed, 0, len(counts))

	for fullBitString, freq := range counts {
		regBitStrings := strings.Split(fullBitString, " ")
		if len(regBitStrings) != len(names) {
			return nil, errors.Wrapf(ErrRegisterMismatch, "%q has %d groups, want %d", fullBitString, len(regBitStrings), len(names))
		}
		values := make(map[string]string, len(names))
		for i, name := range names {
			values[name] = regBitStrings[len(regBitStrings)-1-i]
		}
		entries = append(entries, keyed{key: fullBitString, row: Row{Values: values, Freq: freq}})
	}

	slices.SortFunc(entries, func(a, b keyed) int {
		if c := cmp.Compare(b.row.Freq, a.row.Freq); c != 0 {
			return c
		}
		return strings.Compare(a.key, b.key)
	})

	t := &Table{
		Columns: append(slices.Clone(names), FreqColumn),
		Rows:    make([]Row, len(entries)),
	}
	for i, e := range entries {
		e.row.Index = i
		t.Rows[i] = e.row
	}
	return t, nil
}

// Total returns the sum of all frequencies.
func (t *Table) Total() int {
	total := 0
	for _, r := range t.Rows {
		total += r.Freq
	}
	return total
}

// Proportion returns the share of shots that produced row i.
func (t *Table) Proportion(i int) float64 {
	total := t.Total()
	if total == 0 || i < 0 || i >= len(t.Rows) {
		return 0
	}
	return float64(t.Rows[i].Freq) / float64(total)
}

// Find returns the first row whose values match every given register value.
func (t *Table) Find(values map[string]string) (Row, bool) {
	for _, r := range t.Rows {
		match := true
		for name, v := range values {
			if r.Values[name] != v {
				match = false
				break
			}
		}
		if match {
			return r, true
		}
	}
	return Row{}, false
}

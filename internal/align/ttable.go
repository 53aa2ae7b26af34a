package align

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/example/paracorpus/internal/corpus"
	"gonum.org/v1/gonum/mathext"
)

// NullWord is the source word that generates target words no real source
// word explains.
const NullWord = 0

// DefaultProb is the translation probability of a pair the table has no
// entry for.
const DefaultProb = 1e-9

// TTable holds t(tgt|src), one row per source word.
type TTable struct {
	rows map[int]map[int]float64
}

// NewTTable returns an empty table; every lookup yields DefaultProb.
func NewTTable() *TTable {
	return &TTable{rows: make(map[int]map[int]float64)}
}

// Prob returns t(tgt|src).
func (t *TTable) Prob(src, tgt int) float64 {
	if p, ok := t.rows[src][tgt]; ok {
		return p
	}

	return DefaultProb
}

// Set stores t(tgt|src).
func (t *TTable) Set(src, tgt int, p float64) {
	row, ok := t.rows[src]
	if !ok {
		row = make(map[int]float64)
		t.rows[src] = row
	}
	row[tgt] = p
}

// Len returns the number of stored entries.
func (t *TTable) Len() int {
	n := 0
	for _, row := range t.rows {
		n += len(row)
	}

	return n
}

// Dump writes one "src tgt log(p) p" line per entry, ordered by source then
// target word.
func (t *TTable) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)

	for _, src := range slices.Sorted(maps.Keys(t.rows)) {
		row := t.rows[src]
		for _, tgt := range slices.Sorted(maps.Keys(row)) {
			p := row[tgt]
			if _, err := fmt.Fprintf(bw, "%d %d %s %s\n", src, tgt, formatFloat(math.Log(p)), formatFloat(p)); err != nil {
				return fmt.Errorf("write ttable: %w", err)
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush ttable: %w", err)
	}

	return nil
}

// ReadTTable parses what Dump writes. Blank lines are ignored.
func ReadTTable(r io.Reader) (*TTable, error) {
	t := NewTTable()
	lines := corpus.NewLineReader(r)

	for lines.Next() {
		fields := strings.Fields(lines.Line())
		if len(fields) == 0 {
			continue
		}

		if len(fields) != 4 {
			return nil, fmt.Errorf("ttable line %d: want 4 fields, got %d", lines.LineNumber(), len(fields))
		}

		src, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("ttable line %d: source word: %w", lines.LineNumber(), err)
		}

		tgt, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("ttable line %d: target word: %w", lines.LineNumber(), err)
		}

		p, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("ttable line %d: probability: %w", lines.LineNumber(), err)
		}

		if !(p > 0 && p <= 1) {
			return nil, fmt.Errorf("ttable line %d: probability %g outside (0,1]", lines.LineNumber(), p)
		}
		t.Set(src, tgt, p)
	}

	if err := lines.Err(); err != nil {
		return nil, fmt.Errorf("read ttable: %w", err)
	}

	return t, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// counts accumulates expected translation counts during an E-step.
type counts map[int]map[int]float64

func (c counts) add(src, tgt int, v float64) {
	row, ok := c[src]
	if !ok {
		row = make(map[int]float64)
		c[src] = row
	}
	row[tgt] += v
}

// normalize turns each row into a distribution over target words. With vb
// set, rows get the mean-field estimate under a symmetric Dirichlet(alpha)
// prior instead of the maximum-likelihood one. Zero counts are dropped.
func (c counts) normalize(vb bool, alpha float64) *TTable {
	t := NewTTable()

	for src, row := range c {
		var sum float64
		n := 0
		for _, v := range row {
			if v != 0 {
				sum += v
				n++
			}
		}

		if vb {
			sum += alpha * float64(n)
		}

		for tgt, v := range row {
			if v == 0 {
				continue
			}

			if vb {
				t.Set(src, tgt, math.Exp(mathext.Digamma(v+alpha)-mathext.Digamma(sum)))
			} else {
				t.Set(src, tgt, v/sum)
			}
		}
	}

	return t
}

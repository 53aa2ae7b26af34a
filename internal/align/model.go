package align

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

const (
	tensionSteps = 8
	tensionRate  = 20.0
	minTension   = 0.1
	maxTension   = 14.0
)

// Options controls training and alignment.
type Options struct {
	// Reverse swaps source and target; links are still reported as
	// source-target of the input.
	Reverse          bool
	FavorDiagonal    bool
	ProbAlignNull    float64
	DiagonalTension  float64
	OptimizeTension  bool
	VariationalBayes bool
	Alpha            float64
	NoNullWord       bool
}

// DefaultOptions returns the settings used when none are given.
func DefaultOptions() Options {
	return Options{
		FavorDiagonal:    true,
		ProbAlignNull:    0.08,
		DiagonalTension:  4.0,
		OptimizeTension:  true,
		VariationalBayes: true,
		Alpha:            0.01,
	}
}

// Validate rejects option combinations that cannot produce distributions.
func (o Options) Validate() error {
	var err error

	if o.FavorDiagonal {
		if o.ProbAlignNull < 0 || o.ProbAlignNull >= 1 {
			err = multierr.Append(err, fmt.Errorf("prob_align_null must be in [0,1), got %g", o.ProbAlignNull))
		}

		if o.DiagonalTension <= 0 {
			err = multierr.Append(err, fmt.Errorf("diagonal_tension must be positive, got %g", o.DiagonalTension))
		}
	}

	if o.VariationalBayes && o.Alpha <= 0 {
		err = multierr.Append(err, fmt.Errorf("alpha must be positive, got %g", o.Alpha))
	}

	return err
}

// Link aligns source position Src with target position Tgt, both 0-based.
type Link struct {
	Src int
	Tgt int
}

func (l Link) String() string {
	return strconv.Itoa(l.Src) + "-" + strconv.Itoa(l.Tgt)
}

// FormatLinks renders links as space-separated "src-tgt" points.
func FormatLinks(links []Link) string {
	parts := make([]string, len(links))
	for i, l := range links {
		parts[i] = l.String()
	}

	return strings.Join(parts, " ")
}

// IterationStats summarizes one EM iteration.
type IterationStats struct {
	Pairs         int
	Skipped       int
	Tokens        float64
	LogLikelihood float64
	// AlignFeature is the mean posterior diagonal feature per target token.
	AlignFeature float64
	Tension      float64
	Entries      int
}

// CrossEntropy returns the per-token cross entropy in bits.
func (s IterationStats) CrossEntropy() float64 {
	if s.Tokens == 0 {
		return 0
	}

	return -s.LogLikelihood / math.Ln2 / s.Tokens
}

// Perplexity returns 2 raised to the cross entropy.
func (s IterationStats) Perplexity() float64 {
	return math.Pow(2, s.CrossEntropy())
}

// Model is an IBM Model 1 aligner with an optional diagonal prior.
type Model struct {
	opts    Options
	table   *TTable
	tension float64
}

// NewModel returns a model starting from table, or from an empty table when
// table is nil.
func NewModel(opts Options, table *TTable) (*Model, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if table == nil {
		table = NewTTable()
	}

	return &Model{opts: opts, table: table, tension: opts.DiagonalTension}, nil
}

// Table returns the current translation table.
func (m *Model) Table() *TTable { return m.table }

// Tension returns the current diagonal tension.
func (m *Model) Tension() float64 { return m.tension }

func (m *Model) orient(p Pair) (src, tgt []int) {
	if m.opts.Reverse {
		return p.Tgt, p.Src
	}

	return p.Src, p.Tgt
}

// score fills probs[i] with the joint probability of aligning target word
// j to source position i, where position 0 is the null word.
func (m *Model) score(src, tgt []int, j int, probs []float64) {
	n, f := len(src), tgt[j]
	favor := m.opts.FavorDiagonal

	nullSlots := 1
	if m.opts.NoNullWord {
		nullSlots = 0
	}
	probA := 1 / float64(n+nullSlots)

	probs[0] = 0
	if !m.opts.NoNullWord {
		if favor {
			probA = m.opts.ProbAlignNull
		}
		probs[0] = m.table.Prob(NullWord, f) * probA
	}

	var az float64
	if favor {
		az = diagonalZ(j+1, len(tgt), n, m.tension) / (1 - m.opts.ProbAlignNull)
	}

	for i := 1; i <= n; i++ {
		if favor {
			probA = diagonalWeight(j+1, i, len(tgt), n, m.tension) / az
		}
		probs[i] = m.table.Prob(src[i-1], f) * probA
	}
}

type sizeCount struct {
	tgtLen, srcLen int
	count          int
}

// Iterate runs one EM iteration over pairs and replaces the table with the
// re-estimated one. Pairs with an empty side are skipped.
func (m *Model) Iterate(ctx context.Context, pairs []Pair) (IterationStats, error) {
	var stats IterationStats

	acc := make(counts)
	sizes := make(map[[2]int]int)
	var probs []float64

	for _, p := range pairs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		src, tgt := m.orient(p)
		if len(src) == 0 || len(tgt) == 0 {
			stats.Skipped++
			continue
		}

		stats.Pairs++
		stats.Tokens += float64(len(tgt))
		sizes[[2]int{len(tgt), len(src)}]++

		if cap(probs) < len(src)+1 {
			probs = make([]float64, len(src)+1)
		}
		probs = probs[:len(src)+1]

		for j, f := range tgt {
			m.score(src, tgt, j, probs)

			var sum float64
			for _, v := range probs {
				sum += v
			}

			if !m.opts.NoNullWord {
				acc.add(NullWord, f, probs[0]/sum)
			}

			for i := 1; i <= len(src); i++ {
				post := probs[i] / sum
				acc.add(src[i-1], f, post)
				stats.AlignFeature += diagonalFeature(j, i, len(tgt), len(src)) * post
			}

			stats.LogLikelihood += math.Log(sum)
		}
	}

	m.table = acc.normalize(m.opts.VariationalBayes, m.opts.Alpha)
	stats.Entries = m.table.Len()

	if stats.Tokens > 0 {
		stats.AlignFeature /= stats.Tokens

		if m.opts.FavorDiagonal && m.opts.OptimizeTension {
			m.tension = m.optimizeTension(sortedSizes(sizes), stats.AlignFeature, stats.Tokens)
		}
	}
	stats.Tension = m.tension

	return stats, nil
}

func sortedSizes(sizes map[[2]int]int) []sizeCount {
	out := make([]sizeCount, 0, len(sizes))
	for k, c := range sizes {
		out = append(out, sizeCount{tgtLen: k[0], srcLen: k[1], count: c})
	}

	slices.SortFunc(out, func(a, b sizeCount) int {
		if c := cmp.Compare(a.tgtLen, b.tgtLen); c != 0 {
			return c
		}
		return cmp.Compare(a.srcLen, b.srcLen)
	})

	return out
}

// optimizeTension moves the tension so that the expected diagonal feature
// under the prior approaches the posterior one.
func (m *Model) optimizeTension(sizes []sizeCount, empFeat, tokens float64) float64 {
	tension := m.tension

	for step := 0; step < tensionSteps; step++ {
		var modFeat float64
		for _, sc := range sizes {
			for j := 1; j <= sc.tgtLen; j++ {
				modFeat += float64(sc.count) * diagonalDLogZ(j, sc.tgtLen, sc.srcLen, tension)
			}
		}
		modFeat /= tokens

		tension += (empFeat - modFeat) * tensionRate
		tension = min(max(tension, minTension), maxTension)
	}

	return tension
}

// Align returns the most probable source position for every target word.
// Words best explained by the null word get no link.
func (m *Model) Align(p Pair) []Link {
	src, tgt := m.orient(p)
	if len(src) == 0 || len(tgt) == 0 {
		return nil
	}

	probs := make([]float64, len(src)+1)
	var links []Link

	for j := range tgt {
		m.score(src, tgt, j, probs)

		best, maxP := -1, -1.0
		if !m.opts.NoNullWord {
			best, maxP = 0, probs[0]
		}

		for i := 1; i <= len(src); i++ {
			if probs[i] > maxP {
				best, maxP = i, probs[i]
			}
		}

		if best <= 0 {
			continue
		}

		if m.opts.Reverse {
			links = append(links, Link{Src: j, Tgt: best - 1})
		} else {
			links = append(links, Link{Src: best - 1, Tgt: j})
		}
	}

	return links
}

// WriteAlignments writes "id<TAB>links" for every pair. Output already
// produced is flushed when the context is cancelled.
func (m *Model) WriteAlignments(ctx context.Context, w io.Writer, pairs []Pair) error {
	bw := bufio.NewWriter(w)

	err := func() error {
		for _, p := range pairs {
			if err := ctx.Err(); err != nil {
				return err
			}

			if _, err := fmt.Fprintf(bw, "%d\t%s\n", p.ID, FormatLinks(m.Align(p))); err != nil {
				return fmt.Errorf("write pair %d: %w", p.ID, err)
			}
		}

		return nil
	}()

	if flushErr := bw.Flush(); flushErr != nil && err == nil {
		err = fmt.Errorf("flush output: %w", flushErr)
	}

	return err
}

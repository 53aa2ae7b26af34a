package partition

import (
	"context"
	"fmt"
	"io"

	"github.com/example/paracorpus/internal/corpus"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// Stats summarizes one partitioning run. PerBucket, BucketBytes and Paths
// are indexed by bucket.
type Stats struct {
	Lines       int
	PerBucket   []int
	BucketBytes []int64
	Paths       []string
	Bytes       int64
}

// Options configures Run.
type Options struct {
	Count    int
	Template string
}

// Partitioner copies each input line to the output chosen by its key.
type Partitioner struct {
	Outputs *Outputs
}

// Run partitions every line of r.
func (p *Partitioner) Run(ctx context.Context, r io.Reader) (Stats, error) {
	return p.RunLines(ctx, corpus.NewLineReader(r))
}

// RunLines partitions every line of lines. Lines are written verbatim,
// terminator included. A missing tab or a non-integer key aborts the run.
func (p *Partitioner) RunLines(ctx context.Context, lines *corpus.LineReader) (stats Stats, err error) {
	n := p.Outputs.Len()
	stats = Stats{PerBucket: make([]int, n), Paths: p.Outputs.Paths()}
	defer func() { stats.BucketBytes = p.Outputs.Written() }()

	for lines.Next() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		line := lines.Line()
		stats.Lines++

		bucket, err := LineBucket(line, n)
		if err != nil {
			return stats, fmt.Errorf("line %d: %w", lines.LineNumber(), err)
		}

		if err := p.Outputs.Write(bucket, line); err != nil {
			return stats, fmt.Errorf("line %d: %w", lines.LineNumber(), err)
		}

		stats.PerBucket[bucket]++
		stats.Bytes += int64(len(line))
	}

	if err := lines.Err(); err != nil {
		return stats, fmt.Errorf("read input: %w", err)
	}

	return stats, nil
}

// Run opens the outputs described by opts on fs, partitions lines into them
// and closes every output on return, whether or not partitioning succeeded.
func Run(ctx context.Context, fs afero.Fs, opts Options, lines *corpus.LineReader) (stats Stats, err error) {
	tmpl, err := ParseTemplate(opts.Template)
	if err != nil {
		return Stats{}, err
	}

	outs, err := OpenOutputs(fs, tmpl, opts.Count)
	if err != nil {
		return Stats{}, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(outs))

	p := &Partitioner{Outputs: outs}

	return p.RunLines(ctx, lines)
}

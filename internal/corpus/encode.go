package corpus

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/example/paracorpus/internal/vocab"
)

// Stats summarizes one encoding run.
type Stats struct {
	Lines     int
	Emitted   int
	Skipped   int
	VocabSize int
}

// Encoder rewrites each "source\ttarget" line as "ids\tids".
type Encoder struct {
	Vocab *vocab.Vocabulary
}

// NewEncoder returns an Encoder with its own vocabulary.
func NewEncoder(v *vocab.Vocabulary) *Encoder {
	if v == nil {
		v = vocab.New(nil)
	}

	return &Encoder{Vocab: v}
}

// Run encodes every line of r to w.
func (e *Encoder) Run(ctx context.Context, r io.Reader, w io.Writer) (Stats, error) {
	return e.RunLines(ctx, NewLineReader(r), w)
}

// RunLines encodes every line of lines to w. A line without a tab aborts the
// run; lines already written are flushed first.
func (e *Encoder) RunLines(ctx context.Context, lines *LineReader, w io.Writer) (Stats, error) {
	bw := bufio.NewWriter(w)

	stats, err := e.run(ctx, lines, bw)
	if flushErr := bw.Flush(); flushErr != nil && err == nil {
		err = fmt.Errorf("flush output: %w", flushErr)
	}
	stats.VocabSize = e.Vocab.Len()

	return stats, err
}

func (e *Encoder) run(ctx context.Context, lines *LineReader, bw *bufio.Writer) (Stats, error) {
	var stats Stats

	for lines.Next() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		stats.Lines++

		rec, err := ParseRecord(lines.Line())
		if err != nil {
			return stats, fmt.Errorf("line %d: %w", lines.LineNumber(), err)
		}

		src := e.Vocab.EncodeField(rec.Source)
		tgt := e.Vocab.EncodeField(rec.Target)

		if _, err := fmt.Fprintf(bw, "%s\t%s\n", src, tgt); err != nil {
			return stats, fmt.Errorf("write line %d: %w", lines.LineNumber(), err)
		}
		stats.Emitted++
	}

	if err := lines.Err(); err != nil {
		return stats, fmt.Errorf("read input: %w", err)
	}

	return stats, nil
}

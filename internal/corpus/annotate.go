package corpus

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/example/paracorpus/internal/vocab"
)

// Annotator encodes lines like Encoder, prefixes each output with its 1-based
// input line number and drops pairs with an empty side.
type Annotator struct {
	Vocab *vocab.Vocabulary
}

// NewAnnotator returns an Annotator with its own vocabulary.
func NewAnnotator(v *vocab.Vocabulary) *Annotator {
	if v == nil {
		v = vocab.New(nil)
	}

	return &Annotator{Vocab: v}
}

// Run annotates every line of r to w. Skip notices go to diag.
func (a *Annotator) Run(ctx context.Context, r io.Reader, w, diag io.Writer) (Stats, error) {
	return a.RunLines(ctx, NewLineReader(r), w, diag)
}

// RunLines annotates every line of lines to w. The line counter advances for
// every line read, skipped or not.
func (a *Annotator) RunLines(ctx context.Context, lines *LineReader, w, diag io.Writer) (Stats, error) {
	bw := bufio.NewWriter(w)

	stats, err := a.run(ctx, lines, bw, diag)
	if flushErr := bw.Flush(); flushErr != nil && err == nil {
		err = fmt.Errorf("flush output: %w", flushErr)
	}
	stats.VocabSize = a.Vocab.Len()

	return stats, err
}

func (a *Annotator) run(ctx context.Context, lines *LineReader, bw *bufio.Writer, diag io.Writer) (Stats, error) {
	var stats Stats

	for lines.Next() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		n := lines.LineNumber()
		stats.Lines++

		rec, err := ParseRecord(lines.Line())
		if err != nil {
			return stats, fmt.Errorf("line %d: %w", n, err)
		}

		src := a.Vocab.EncodeField(rec.Source)
		tgt := a.Vocab.EncodeField(rec.Target)

		if src == "" || tgt == "" {
			stats.Skipped++
			slog.Debug("empty side", "line", n, "source_empty", src == "", "target_empty", tgt == "")
			if _, err := fmt.Fprintf(diag, "skipping line %d: at least one side is empty\n", n); err != nil {
				return stats, fmt.Errorf("write diagnostic: %w", err)
			}
			continue
		}

		if _, err := fmt.Fprintf(bw, "%d\t%s\t%s\n", n, src, tgt); err != nil {
			return stats, fmt.Errorf("write line %d: %w", n, err)
		}
		stats.Emitted++
	}

	if err := lines.Err(); err != nil {
		return stats, fmt.Errorf("read input: %w", err)
	}

	return stats, nil
}

package align

import (
	"context"
	"fmt"
	"io"

	"github.com/example/paracorpus/internal/corpus"
)

// On-disk sizes of the sparse ttable layout: an index record holds a word
// ID, an offset and a length; an entry record holds a word ID and a
// probability.
const (
	intSize      = 4
	longLongSize = 8
	doubleSize   = 8
)

// Estimate sizes the sparse translation table a corpus would train.
type Estimate struct {
	SrcVocab int
	TgtVocab int
	// Pairs is the number of distinct co-occurring (src, tgt) word pairs.
	Pairs int
	Bytes int64
}

// EstimateTTable counts the word pairs that co-occur in some sentence pair
// of lines. With reverse set the target side is treated as the source.
func EstimateTTable(ctx context.Context, lines *corpus.LineReader, reverse bool) (Estimate, error) {
	stripes := make(map[int]map[int]struct{})
	tgtVocab := make(map[int]struct{})

	for lines.Next() {
		if err := ctx.Err(); err != nil {
			return Estimate{}, err
		}

		p, err := ParsePair(lines.Line(), lines.LineNumber())
		if err != nil {
			return Estimate{}, fmt.Errorf("line %d: %w", lines.LineNumber(), err)
		}

		src, tgt := p.Src, p.Tgt
		if reverse {
			src, tgt = tgt, src
		}

		for _, w := range src {
			for _, v := range tgt {
				stripe, ok := stripes[w]
				if !ok {
					stripe = make(map[int]struct{})
					stripes[w] = stripe
				}
				stripe[v] = struct{}{}
				tgtVocab[v] = struct{}{}
			}
		}
	}

	if err := lines.Err(); err != nil {
		return Estimate{}, fmt.Errorf("read input: %w", err)
	}

	e := Estimate{SrcVocab: len(stripes), TgtVocab: len(tgtVocab)}
	for _, stripe := range stripes {
		e.Pairs += len(stripe)
	}

	e.Bytes = intSize +
		int64(e.SrcVocab+1)*(intSize+longLongSize+longLongSize) +
		int64(e.TgtVocab)*(intSize+doubleSize) +
		int64(e.Pairs)*(intSize+doubleSize)

	return e, nil
}

// WriteReport writes the estimate as four human-readable lines.
func (e Estimate) WriteReport(w io.Writer) error {
	mb := float64(e.Bytes) / (1 << 20)
	gb := float64(e.Bytes) / (1 << 30)

	_, err := fmt.Fprintf(w, "src vocab size: %d\ntgt vocab size: %d\nnon-null pairs: %d\nsparse: %d bytes = %.2g MB = %.2g GB\n",
		e.SrcVocab, e.TgtVocab, e.Pairs, e.Bytes, mb, gb)

	return err
}

// Package align trains IBM Model 1 translation tables on integerized
// sentence pairs and derives Viterbi word alignments from them.
package align

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/paracorpus/internal/corpus"
)

// ErrBadPair is returned for a line whose fields are not integer IDs.
var ErrBadPair = errors.New("invalid sentence pair")

// Pair is one integerized sentence pair. ID identifies the pair in the
// alignment output.
type Pair struct {
	ID  int
	Src []int
	Tgt []int
}

// ParsePair reads an encoded "src<TAB>tgt" line or an annotated
// "id<TAB>src<TAB>tgt" line. Encoded lines take n as their ID. Word ID 0 is
// reserved for the null word and rejected.
func ParsePair(line string, n int) (Pair, error) {
	rec, err := corpus.ParseRecord(line)
	if err != nil {
		return Pair{}, err
	}

	p := Pair{ID: n}
	src, tgt := rec.Source, rec.Target

	if mid, rest, ok := strings.Cut(rec.Target, "\t"); ok {
		id, err := strconv.Atoi(strings.TrimSpace(rec.Source))
		if err != nil {
			return Pair{}, fmt.Errorf("%w: id %q", ErrBadPair, rec.Source)
		}
		p.ID = id
		src, tgt = mid, rest
	}

	if p.Src, err = parseIDs(src); err != nil {
		return Pair{}, err
	}

	if p.Tgt, err = parseIDs(tgt); err != nil {
		return Pair{}, err
	}

	return p, nil
}

func parseIDs(field string) ([]int, error) {
	toks := strings.Fields(field)
	ids := make([]int, 0, len(toks))

	for _, tok := range toks {
		id, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: word %q", ErrBadPair, tok)
		}

		if id == NullWord {
			return nil, fmt.Errorf("%w: word ID %d is reserved", ErrBadPair, NullWord)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// ReadPairs parses every line of lines.
func ReadPairs(ctx context.Context, lines *corpus.LineReader) ([]Pair, error) {
	var pairs []Pair

	for lines.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p, err := ParsePair(lines.Line(), lines.LineNumber())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lines.LineNumber(), err)
		}
		pairs = append(pairs, p)
	}

	if err := lines.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	return pairs, nil
}

// Package partition routes tab-separated records to N output files by the
// integer key in their first field.
package partition

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/example/paracorpus/internal/corpus"
)

// ErrBadKey is returned when the first field is not a base-10 integer.
var ErrBadKey = errors.New("invalid integer key")

// Bucket maps key to [0, n) using floor modulo, so negative keys land in the
// same bucket as key+n. n must be positive.
func Bucket(key int64, n int) int {
	p := key % int64(n)
	if p < 0 {
		p += int64(n)
	}

	return int(p)
}

// LineBucket returns the bucket of line among n. The key is the text before
// the first tab; surrounding whitespace and a leading sign are accepted. Keys
// outside the int64 range are reduced with arbitrary precision.
func LineBucket(line string, n int) (int, error) {
	field, err := keyField(line)
	if err != nil {
		return 0, err
	}

	key, err := strconv.ParseInt(field, 10, 64)
	if err == nil {
		return Bucket(key, n), nil
	}

	if !errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w %q", ErrBadKey, field)
	}

	k, ok := new(big.Int).SetString(strings.TrimPrefix(field, "+"), 10)
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrBadKey, field)
	}

	// Int.Mod is Euclidean: the result is in [0, n) for positive n.
	return int(k.Mod(k, big.NewInt(int64(n))).Int64()), nil
}

func keyField(line string) (string, error) {
	field, _, ok := strings.Cut(line, "\t")
	if !ok {
		return "", corpus.ErrMissingTab
	}

	return strings.TrimSpace(field), nil
}

// Package vocab assigns integer IDs to tokens in first-seen order.
package vocab

import (
	"strconv"
	"strings"

	"github.com/example/paracorpus/internal/text"
)

// Vocabulary maps tokens to positive IDs starting at 1. IDs are handed out in
// the order tokens are first requested and never change afterwards. A
// Vocabulary belongs to a single run and is not safe for concurrent use.
type Vocabulary struct {
	ids       map[string]int
	normalize text.Normalizer
}

// New returns an empty vocabulary. A nil normalizer keeps tokens as-is.
func New(normalize text.Normalizer) *Vocabulary {
	return &Vocabulary{
		ids:       make(map[string]int),
		normalize: normalize,
	}
}

// ID returns the ID of token, assigning Len()+1 if it has not been seen.
func (v *Vocabulary) ID(token string) int {
	if v.normalize != nil {
		token = v.normalize(token)
	}

	if id, ok := v.ids[token]; ok {
		return id
	}

	id := len(v.ids) + 1
	v.ids[token] = id

	return id
}

// Lookup reports the ID of token without assigning one.
func (v *Vocabulary) Lookup(token string) (int, bool) {
	if v.normalize != nil {
		token = v.normalize(token)
	}

	id, ok := v.ids[token]

	return id, ok
}

// Len returns the number of distinct tokens seen so far.
func (v *Vocabulary) Len() int {
	return len(v.ids)
}

// EncodeField splits field on runs of whitespace and replaces every token
// with its ID. The IDs are joined with single spaces; a field without tokens
// encodes to the empty string.
func (v *Vocabulary) EncodeField(field string) string {
	tokens := strings.Fields(field)
	if len(tokens) == 0 {
		return ""
	}

	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(v.ID(tok)))
	}

	return b.String()
}

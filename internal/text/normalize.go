package text

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	FormNone = "none"
	FormNFC  = "nfc"
	FormNFKC = "nfkc"
)

// Normalizer rewrites a single token before it is looked up in a vocabulary.
type Normalizer func(token string) string

// NormalizeForm validates a normalization form name.
// Empty input selects FormNone.
func NormalizeForm(raw string) (string, error) {
	form := strings.ToLower(strings.TrimSpace(raw))
	if form == "" {
		return FormNone, nil
	}
	switch form {
	case FormNone, FormNFC, FormNFKC:
		return form, nil
	default:
		return "", fmt.Errorf("invalid normalization form %q (expected %s|%s|%s)", raw, FormNone, FormNFC, FormNFKC)
	}
}

// NewNormalizer returns the token normalizer for form. FormNone yields nil,
// which callers treat as the identity.
func NewNormalizer(form string) (Normalizer, error) {
	form, err := NormalizeForm(form)
	if err != nil {
		return nil, err
	}

	switch form {
	case FormNFC:
		return norm.NFC.String, nil
	case FormNFKC:
		return norm.NFKC.String, nil
	default:
		return nil, nil
	}
}

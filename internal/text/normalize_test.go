package text

import "testing"

func TestNormalizeForm(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"empty defaults to none", "", "none", false},
		{"whitespace defaults to none", "   ", "none", false},
		{"none", "none", "none", false},
		{"nfc uppercase", "NFC", "nfc", false},
		{"nfkc with spaces", "  nfkc ", "nfkc", false},
		{"nfd unsupported", "nfd", "", true},
		{"garbage", "utf8", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeForm(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NormalizeForm(%q) = %q, nil; want error", tt.input, got)
				}

				return
			}

			if err != nil {
				t.Errorf("NormalizeForm(%q) unexpected error: %v", tt.input, err)
				return
			}

			if got != tt.want {
				t.Errorf("NormalizeForm(%q) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewNormalizer_NoneIsNil(t *testing.T) {
	fn, err := NewNormalizer("none")
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}

	if fn != nil {
		t.Error("NewNormalizer(none) returned a non-nil normalizer")
	}
}

func TestNewNormalizer_NFC(t *testing.T) {
	fn, err := NewNormalizer("nfc")
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}

	// "e" + combining acute accent composes to U+00E9.
	if got := fn("e\u0301"); got != "\u00e9" {
		t.Errorf("nfc(%q) = %q; want %q", "e\u0301", got, "\u00e9")
	}
}

func TestNewNormalizer_NFKC(t *testing.T) {
	fn, err := NewNormalizer("nfkc")
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}

	// Fullwidth digits fold to ASCII under compatibility normalization.
	if got := fn("\uff11\uff12"); got != "12" {
		t.Errorf("nfkc(%q) = %q; want %q", "\uff11\uff12", got, "12")
	}
}

func TestNewNormalizer_Invalid(t *testing.T) {
	if _, err := NewNormalizer("bogus"); err == nil {
		t.Error("NewNormalizer(bogus) = nil error; want error")
	}
}

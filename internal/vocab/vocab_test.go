package vocab

import (
	"testing"

	"github.com/example/paracorpus/internal/text"
)

func TestID_FirstSeenOrder(t *testing.T) {
	v := New(nil)

	for i, tok := range []string{"the", "cat", "sat"} {
		if got := v.ID(tok); got != i+1 {
			t.Errorf("ID(%q) = %d; want %d", tok, got, i+1)
		}
	}

	if got := v.ID("cat"); got != 2 {
		t.Errorf("ID(cat) second call = %d; want 2", got)
	}

	if v.Len() != 3 {
		t.Errorf("Len() = %d; want 3", v.Len())
	}
}

func TestLookup_DoesNotAssign(t *testing.T) {
	v := New(nil)
	v.ID("a")

	if _, ok := v.Lookup("b"); ok {
		t.Error("Lookup(b) found a token that was never assigned")
	}

	if v.Len() != 1 {
		t.Errorf("Len() = %d after Lookup; want 1", v.Len())
	}

	id, ok := v.Lookup("a")
	if !ok || id != 1 {
		t.Errorf("Lookup(a) = %d, %v; want 1, true", id, ok)
	}
}

func TestEncodeField(t *testing.T) {
	v := New(nil)

	tests := []struct {
		name  string
		field string
		want  string
	}{
		{"first tokens", "a b", "1 2"},
		{"reversed seen tokens", "b a", "2 1"},
		{"whitespace runs collapse", "  a \t\tc  ", "1 3"},
		{"trailing newline ignored", "d\n", "4"},
		{"empty field", "", ""},
		{"whitespace only", " \t \r\n", ""},
		{"repeated token in field", "e e e", "5 5 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.EncodeField(tt.field); got != tt.want {
				t.Errorf("EncodeField(%q) = %q; want %q", tt.field, got, tt.want)
			}
		})
	}
}

func TestEncodeField_SeenTokensKeepSize(t *testing.T) {
	v := New(nil)
	v.EncodeField("x y z")

	before := v.Len()
	if got := v.EncodeField("z y x y"); got != "3 2 1 2" {
		t.Errorf("EncodeField = %q; want %q", got, "3 2 1 2")
	}

	if v.Len() != before {
		t.Errorf("Len() = %d; want %d", v.Len(), before)
	}
}

func TestID_WithNormalizer(t *testing.T) {
	nfc, err := text.NewNormalizer(text.FormNFC)
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}

	v := New(nfc)

	composed := v.ID("caf\u00e9")
	decomposed := v.ID("cafe\u0301")

	if composed != decomposed {
		t.Errorf("composed ID %d != decomposed ID %d", composed, decomposed)
	}

	if v.Len() != 1 {
		t.Errorf("Len() = %d; want 1", v.Len())
	}
}

func TestID_WithoutNormalizerKeepsBytes(t *testing.T) {
	v := New(nil)

	if v.ID("caf\u00e9") == v.ID("cafe\u0301") {
		t.Error("distinct byte sequences shared an ID without normalization")
	}
}

package corpus

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/example/paracorpus/internal/vocab"
	"github.com/spf13/afero"
)

// --- ParseRecord ---

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Record
		wantErr bool
	}{
		{"simple pair", "a b\tc d\n", Record{Source: "a b", Target: "c d"}, false},
		{"no trailing newline", "a\tb", Record{Source: "a", Target: "b"}, false},
		{"crlf terminator", "a\tb\r\n", Record{Source: "a", Target: "b"}, false},
		{"extra tabs stay in target", "a\tb\tc\n", Record{Source: "a", Target: "b\tc"}, false},
		{"empty source", "\tfoo\n", Record{Source: "", Target: "foo"}, false},
		{"empty target", "foo\t\n", Record{Source: "foo", Target: ""}, false},
		{"no tab", "a b c\n", Record{}, true},
		{"empty line", "\n", Record{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecord(tt.line)
			if tt.wantErr {
				if !errors.Is(err, ErrMissingTab) {
					t.Errorf("ParseRecord(%q) error = %v; want ErrMissingTab", tt.line, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("ParseRecord(%q) unexpected error: %v", tt.line, err)
			}

			if got != tt.want {
				t.Errorf("ParseRecord(%q) = %+v; want %+v", tt.line, got, tt.want)
			}
		})
	}
}

// --- LineReader ---

func readAll(t *testing.T, lr *LineReader) []string {
	t.Helper()

	var got []string
	for lr.Next() {
		got = append(got, lr.Line())
	}

	if err := lr.Err(); err != nil {
		t.Fatalf("LineReader.Err() = %v", err)
	}

	return got
}

func TestLineReader_KeepsTerminators(t *testing.T) {
	lr := NewLineReader(strings.NewReader("one\ntwo\r\nthree"))

	got := readAll(t, lr)
	want := []string{"one\n", "two\r\n", "three"}

	if len(got) != len(want) {
		t.Fatalf("lines = %q; want %q", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q; want %q", i, got[i], want[i])
		}
	}

	if lr.LineNumber() != 3 {
		t.Errorf("LineNumber() = %d; want 3", lr.LineNumber())
	}
}

func TestLineReader_SourcesDoNotMerge(t *testing.T) {
	lr := NewLineReader(strings.NewReader("a"), strings.NewReader(""), strings.NewReader("b\nc\n"))

	got := readAll(t, lr)
	if strings.Join(got, "|") != "a|b\n|c\n" {
		t.Errorf("lines = %q", got)
	}
}

func TestLineReader_Empty(t *testing.T) {
	lr := NewLineReader(strings.NewReader(""))
	if lr.Next() {
		t.Error("Next() = true on empty input")
	}
}

func TestLineReader_LongLine(t *testing.T) {
	long := strings.Repeat("x", 1<<20)
	lr := NewLineReader(strings.NewReader(long + "\n"))

	got := readAll(t, lr)
	if len(got) != 1 || len(got[0]) != len(long)+1 {
		t.Fatalf("long line not returned intact")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestLineReader_ReadError(t *testing.T) {
	lr := NewLineReader(failingReader{})
	if lr.Next() {
		t.Fatal("Next() = true on failing reader")
	}

	if lr.Err() == nil {
		t.Error("Err() = nil; want read error")
	}
}

// --- OpenInputs ---

func TestOpenInputs_DefaultsToStdin(t *testing.T) {
	in, err := OpenInputs(afero.NewMemMapFs(), nil, strings.NewReader("x\ty\n"))
	if err != nil {
		t.Fatalf("OpenInputs: %v", err)
	}
	defer in.Close()

	got := readAll(t, in.Lines())
	if len(got) != 1 || got[0] != "x\ty\n" {
		t.Errorf("lines = %q", got)
	}
}

func TestOpenInputs_FilesAndDash(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/a.tsv", []byte("a\t1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := afero.WriteFile(fs, "/b.tsv", []byte("b\t2\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	in, err := OpenInputs(fs, []string{"/a.tsv", "-", "/b.tsv"}, strings.NewReader("s\t0\n"))
	if err != nil {
		t.Fatalf("OpenInputs: %v", err)
	}

	got := readAll(t, in.Lines())
	if strings.Join(got, "") != "a\t1\ns\t0\nb\t2\n" {
		t.Errorf("lines = %q", got)
	}

	if err := in.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := in.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestOpenInputs_MissingFile(t *testing.T) {
	_, err := OpenInputs(afero.NewMemMapFs(), []string{"/nope.tsv"}, nil)
	if err == nil {
		t.Fatal("OpenInputs = nil error; want error for missing file")
	}

	if !strings.Contains(err.Error(), "/nope.tsv") {
		t.Errorf("error %q should name the path", err)
	}
}

// --- Encoder ---

func TestEncoder_RoundTripScenario(t *testing.T) {
	var out bytes.Buffer

	stats, err := NewEncoder(nil).Run(context.Background(), strings.NewReader("a b\tc d\nb a\td c\n"), &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "1 2\t3 4\n2 1\t4 3\n"
	if out.String() != want {
		t.Errorf("output = %q; want %q", out.String(), want)
	}

	if stats.Lines != 2 || stats.Emitted != 2 || stats.VocabSize != 4 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestEncoder_SharedIDSpaceAndExtraTabs(t *testing.T) {
	var out bytes.Buffer

	_, err := NewEncoder(nil).Run(context.Background(), strings.NewReader("x\ty\tx\n"), &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.String() != "1\t2 1\n" {
		t.Errorf("output = %q; want %q", out.String(), "1\t2 1\n")
	}
}

func TestEncoder_EmptySidesAreEmitted(t *testing.T) {
	var out bytes.Buffer

	_, err := NewEncoder(nil).Run(context.Background(), strings.NewReader("\tfoo\n \t\n"), &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.String() != "\t1\n\t\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestEncoder_MissingTabIsFatal(t *testing.T) {
	var out bytes.Buffer

	stats, err := NewEncoder(nil).Run(context.Background(), strings.NewReader("a\tb\nbroken\nc\td\n"), &out)
	if !errors.Is(err, ErrMissingTab) {
		t.Fatalf("Run error = %v; want ErrMissingTab", err)
	}

	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q should name line 2", err)
	}

	if out.String() != "1\t2\n" {
		t.Errorf("output = %q; want only the first line", out.String())
	}

	if stats.Emitted != 1 {
		t.Errorf("Emitted = %d; want 1", stats.Emitted)
	}
}

func TestEncoder_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEncoder(nil).Run(ctx, strings.NewReader("a\tb\n"), io.Discard)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v; want context.Canceled", err)
	}
}

func TestEncoder_UsesGivenVocabulary(t *testing.T) {
	v := vocab.New(nil)
	v.ID("pre")

	var out bytes.Buffer
	if _, err := NewEncoder(v).Run(context.Background(), strings.NewReader("pre\tpost\n"), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.String() != "1\t2\n" {
		t.Errorf("output = %q", out.String())
	}
}

// --- Annotator ---

func TestAnnotator_SkipScenario(t *testing.T) {
	var out, diag bytes.Buffer

	stats, err := NewAnnotator(nil).Run(context.Background(), strings.NewReader("\tfoo\n"), &out, &diag)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.Len() != 0 {
		t.Errorf("stdout = %q; want empty", out.String())
	}

	if diag.String() != "skipping line 1: at least one side is empty\n" {
		t.Errorf("diag = %q", diag.String())
	}

	if stats.Skipped != 1 || stats.Emitted != 0 || stats.Lines != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestAnnotator_LineNumbersCountSkippedLines(t *testing.T) {
	input := "a b\tc\n" +
		"   \tx\n" +
		"d\t\n" +
		"b\ta\n"

	var out, diag bytes.Buffer

	stats, err := NewAnnotator(nil).Run(context.Background(), strings.NewReader(input), &out, &diag)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// x and d are still assigned IDs even though their lines are skipped.
	wantOut := "1\t1 2\t3\n4\t2\t1\n"
	if out.String() != wantOut {
		t.Errorf("stdout = %q; want %q", out.String(), wantOut)
	}

	wantDiag := "skipping line 2: at least one side is empty\n" +
		"skipping line 3: at least one side is empty\n"
	if diag.String() != wantDiag {
		t.Errorf("diag = %q; want %q", diag.String(), wantDiag)
	}

	if stats.VocabSize != 5 {
		t.Errorf("VocabSize = %d; want 5", stats.VocabSize)
	}
}

func TestAnnotator_MissingTabIsFatal(t *testing.T) {
	var out, diag bytes.Buffer

	_, err := NewAnnotator(nil).Run(context.Background(), strings.NewReader("a\tb\nnotab\n"), &out, &diag)
	if !errors.Is(err, ErrMissingTab) {
		t.Fatalf("Run error = %v; want ErrMissingTab", err)
	}

	if out.String() != "1\t1\t2\n" {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestAnnotator_LineNumbersContinueAcrossSources(t *testing.T) {
	var out, diag bytes.Buffer

	lines := NewLineReader(strings.NewReader("a\tb\n"), strings.NewReader("c\td"))
	if _, err := NewAnnotator(nil).RunLines(context.Background(), lines, &out, &diag); err != nil {
		t.Fatalf("RunLines: %v", err)
	}

	if out.String() != "1\t1\t2\n2\t3\t4\n" {
		t.Errorf("stdout = %q", out.String())
	}
}

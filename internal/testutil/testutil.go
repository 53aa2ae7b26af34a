// Package testutil provides filesystem helpers shared by package tests.
//
// Typical usage:
//
//	fs := afero.NewMemMapFs()
//	testutil.WriteFiles(t, fs, map[string]string{"/in.tsv": "1\ta\n"})
//	...
//	testutil.AssertFiles(t, fs, map[string]string{"/out/part-0.tsv": "..."})
package testutil

import (
	"testing"

	"github.com/spf13/afero"
)

// WriteFiles writes each path/content pair to fs, failing the test on error.
func WriteFiles(tb testing.TB, fs afero.Fs, files map[string]string) {
	tb.Helper()

	for path, content := range files {
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			tb.Fatalf("write %s: %v", path, err)
		}
	}
}

// ReadFile returns the content of path on fs, failing the test if it cannot
// be read.
func ReadFile(tb testing.TB, fs afero.Fs, path string) string {
	tb.Helper()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		tb.Fatalf("read %s: %v", path, err)
	}

	return string(data)
}

// AssertFiles compares the content of every listed path on fs.
func AssertFiles(tb testing.TB, fs afero.Fs, want map[string]string) {
	tb.Helper()

	for path, content := range want {
		if got := ReadFile(tb, fs, path); got != content {
			tb.Errorf("%s = %q; want %q", path, got, content)
		}
	}
}

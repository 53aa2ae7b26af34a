package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// StdinName is the input path that selects the process's standard input.
const StdinName = "-"

// LineReader yields raw lines from one or more sources in order. Lines keep
// their trailing newline; a final line without one is still returned. A line
// never spans two sources.
type LineReader struct {
	srcs []io.Reader
	br   *bufio.Reader
	line string
	n    int
	err  error
}

// NewLineReader reads srcs one after another.
func NewLineReader(srcs ...io.Reader) *LineReader {
	lr := &LineReader{srcs: srcs}
	lr.advance()

	return lr
}

func (lr *LineReader) advance() {
	if len(lr.srcs) == 0 {
		lr.br = nil
		return
	}

	lr.br = bufio.NewReader(lr.srcs[0])
	lr.srcs = lr.srcs[1:]
}

// Next advances to the next line. It returns false at the end of the last
// source or on a read error, which Err then reports.
func (lr *LineReader) Next() bool {
	for lr.br != nil && lr.err == nil {
		s, err := lr.br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			lr.err = err
			return false
		}

		if errors.Is(err, io.EOF) {
			lr.advance()
			if s == "" {
				continue
			}
		}

		lr.line = s
		lr.n++

		return true
	}

	return false
}

// Line returns the current raw line.
func (lr *LineReader) Line() string { return lr.line }

// LineNumber returns the 1-based number of the current line across all sources.
func (lr *LineReader) LineNumber() int { return lr.n }

// Err returns the first non-EOF read error.
func (lr *LineReader) Err() error { return lr.err }

// Inputs is a set of opened input sources.
type Inputs struct {
	readers []io.Reader
	closers []io.Closer
}

// OpenInputs opens every path on fs. No paths, or the path "-", selects stdin.
// On failure, files opened so far are closed.
func OpenInputs(fs afero.Fs, paths []string, stdin io.Reader) (*Inputs, error) {
	in := &Inputs{}
	if len(paths) == 0 {
		in.readers = append(in.readers, stdin)
		return in, nil
	}

	for _, p := range paths {
		if p == StdinName {
			in.readers = append(in.readers, stdin)
			continue
		}

		f, err := fs.Open(p)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("open input %q: %w", p, err), in.Close())
		}

		in.readers = append(in.readers, f)
		in.closers = append(in.closers, f)
	}

	return in, nil
}

// Lines returns a LineReader over all inputs in order.
func (in *Inputs) Lines() *LineReader {
	return NewLineReader(in.readers...)
}

// Close closes every opened file exactly once.
func (in *Inputs) Close() error {
	var err error
	for _, c := range in.closers {
		err = multierr.Append(err, c.Close())
	}
	in.closers = nil

	return err
}

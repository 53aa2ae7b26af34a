package partition

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

type output struct {
	path  string
	file  afero.File
	w     *bufio.Writer
	bytes int64
}

// Outputs is the fixed pool of bucket files for one run. All files are
// opened up front; Close flushes and releases each exactly once.
type Outputs struct {
	outs   []*output
	closed bool
}

// OpenOutputs creates or truncates the n files named by tmpl on fs. If any
// file cannot be opened, those already opened are closed and an error is
// returned before any input is consumed.
func OpenOutputs(fs afero.Fs, tmpl Template, n int) (*Outputs, error) {
	if n < 1 {
		return nil, fmt.Errorf("partition count must be at least 1, got %d", n)
	}

	o := &Outputs{outs: make([]*output, 0, n)}

	for i := 0; i < n; i++ {
		path := tmpl.Path(i)

		f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			err = fmt.Errorf("open output %q from template %q: %w", path, tmpl, err)
			return nil, multierr.Append(err, o.Close())
		}

		o.outs = append(o.outs, &output{path: path, file: f, w: bufio.NewWriter(f)})
	}

	return o, nil
}

// Len returns the number of buckets.
func (o *Outputs) Len() int { return len(o.outs) }

// Paths returns the output path of every bucket in index order.
func (o *Outputs) Paths() []string {
	paths := make([]string, len(o.outs))
	for i, out := range o.outs {
		paths[i] = out.path
	}

	return paths
}

// Write appends line verbatim to bucket.
func (o *Outputs) Write(bucket int, line string) error {
	if o.closed {
		return fmt.Errorf("write to bucket %d: outputs closed", bucket)
	}

	if bucket < 0 || bucket >= len(o.outs) {
		return fmt.Errorf("bucket %d out of range [0,%d)", bucket, len(o.outs))
	}

	out := o.outs[bucket]

	n, err := out.w.WriteString(line)
	out.bytes += int64(n)
	if err != nil {
		return fmt.Errorf("write %q: %w", out.path, err)
	}

	return nil
}

// Written returns the number of bytes written to every bucket in index
// order.
func (o *Outputs) Written() []int64 {
	written := make([]int64, len(o.outs))
	for i, out := range o.outs {
		written[i] = out.bytes
	}

	return written
}

// Close flushes and closes every file. Errors from all files are combined.
// Calling Close again is a no-op.
func (o *Outputs) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true

	var err error
	for _, out := range o.outs {
		if flushErr := out.w.Flush(); flushErr != nil {
			err = multierr.Append(err, fmt.Errorf("flush %q: %w", out.path, flushErr))
		}

		if closeErr := out.file.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("close %q: %w", out.path, closeErr))
		}
	}

	return err
}

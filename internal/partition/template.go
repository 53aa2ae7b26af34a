package partition

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadTemplate is returned for an output template that does not hold
// exactly one integer placeholder.
var ErrBadTemplate = errors.New("invalid output template")

// Template derives one output path per bucket index.
type Template struct {
	raw    string
	format string
}

// ParseTemplate accepts printf-style templates with exactly one integer verb
// (d, v, x, X, o, O, b), optionally with flags and width such as "%03d".
// The verbs i and s are read as d. With s only the width and the - flag
// apply, so "%03s" pads with spaces and a precision is rejected. "%%" is a
// literal percent sign.
func ParseTemplate(raw string) (Template, error) {
	if strings.TrimSpace(raw) == "" {
		return Template{}, fmt.Errorf("%w: empty", ErrBadTemplate)
	}

	var b strings.Builder
	verbs := 0

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		b.WriteByte(c)
		if c != '%' {
			continue
		}

		i++
		if i < len(raw) && raw[i] == '%' {
			b.WriteByte('%')
			continue
		}

		start := i
		for i < len(raw) && strings.IndexByte("+-# 0123456789.", raw[i]) >= 0 {
			i++
		}

		if i >= len(raw) {
			return Template{}, fmt.Errorf("%w: %q ends inside a placeholder", ErrBadTemplate, raw)
		}

		flags, verb := raw[start:i], raw[i]
		switch verb {
		case 'd', 'v', 'x', 'X', 'o', 'O', 'b':
		case 'i':
			verb = 'd'
		case 's':
			var err error
			if flags, err = stringFlags(raw, flags); err != nil {
				return Template{}, err
			}
			verb = 'd'
		default:
			return Template{}, fmt.Errorf("%w: %q: unsupported placeholder %%%c", ErrBadTemplate, raw, raw[i])
		}
		b.WriteString(flags)
		b.WriteByte(verb)
		verbs++
	}

	if verbs != 1 {
		return Template{}, fmt.Errorf("%w: %q has %d placeholders, want 1", ErrBadTemplate, raw, verbs)
	}

	return Template{raw: raw, format: b.String()}, nil
}

// stringFlags keeps the parts of a %s placeholder that pad a string: the
// width and left alignment. Digits after the first non-zero one are width.
func stringFlags(raw, flags string) (string, error) {
	if strings.Contains(flags, ".") {
		return "", fmt.Errorf("%w: %q: precision is not supported with %%s", ErrBadTemplate, raw)
	}

	var b strings.Builder
	width := false
	for i := 0; i < len(flags); i++ {
		switch c := flags[i]; {
		case c >= '1' && c <= '9':
			width = true
			b.WriteByte(c)
		case c == '0' && width:
			b.WriteByte(c)
		case c == '-':
			b.WriteByte(c)
		}
	}

	return b.String(), nil
}

// Path returns the output path of bucket i.
func (t Template) Path(i int) string {
	return fmt.Sprintf(t.format, i)
}

func (t Template) String() string { return t.raw }

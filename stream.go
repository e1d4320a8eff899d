package fixcol

import (
	"bufio"
	"io"
	"iter"
	"reflect"

	"github.com/pkg/errors"
)

// ReadAll returns an iterator over the records of r, one per line, in input
// order. A line that fails to decode yields its error and iteration moves on
// to the next line; the caller decides whether to stop. A read error from r
// is yielded once and ends the iteration.
//
// T is a struct type, a pointer to one, or an interface served by Variants.
func ReadAll[T any](r io.Reader, opts ...Option) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		d := NewDecoder(r, opts...)
		for {
			var rec T
			ok, err := d.readLine(reflect.ValueOf(&rec).Elem())
			if !ok && err == nil {
				return
			}
			if !yield(rec, err) || !ok {
				return
			}
		}
	}
}

// WriteAll encodes every record of seq to w, one line each. It stops at the
// first record that fails to encode; the lines written before it are
// flushed to w.
func WriteAll[T any](w io.Writer, seq iter.Seq[T], opts ...Option) error {
	e := NewEncoder(w, opts...)

	n := 0
	for rec := range seq {
		n++
		if err := e.writeLine(reflect.ValueOf(&rec).Elem()); err != nil {
			return flushAfter(e.w, withLine(err, n))
		}
	}
	return flushAfter(e.w, nil)
}

func flushAfter(w *bufio.Writer, err error) error {
	if ferr := w.Flush(); err == nil && ferr != nil {
		return errors.Wrap(ferr, "fixcol: flush")
	}
	return err
}

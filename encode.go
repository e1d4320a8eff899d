package fixcol

import (
	"bufio"
	"bytes"
	"io"
	"reflect"

	"github.com/pkg/errors"
)

// Marshal returns the fixed-width encoding of v.
//
// v must be a struct, a value of a registered variant type, or a slice of
// those. A slice is encoded as one line per element, each terminated by a
// newline. A single value is encoded as a single line without a terminator.
//
// Each tagged field of a struct is padded to its width according to its
// alignment and placed after the columns of the previous field. A value
// longer than its column is never truncated: Marshal fails with an Overflow
// error instead.
func Marshal(v interface{}, opts ...Option) ([]byte, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if isLines(reflect.ValueOf(v)) {
		buff := bytes.NewBuffer(nil)
		if err := NewEncoder(buff, opts...).Encode(v); err != nil {
			return nil, err
		}
		return buff.Bytes(), nil
	}

	line, err := encodeRecord(reflect.ValueOf(v), &o)
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}

// An Encoder writes fixed-width formatted data to an output
// stream.
type Encoder struct {
	w    *bufio.Writer
	opts options
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	e := &Encoder{
		w: bufio.NewWriter(w),
	}
	for _, opt := range opts {
		opt(&e.opts)
	}
	return e
}

// SetUseCodepointIndices configures Encoder on whether the widths in the
// fixcol struct tags are expressed in terms of bytes (the default
// behavior) or in terms of UTF-8 decoded codepoints.
func (e *Encoder) SetUseCodepointIndices(use bool) {
	e.opts.useCodepointIndices = use
}

// SetStrict makes strict validation the default for fields that do not set
// strict in their tag.
func (e *Encoder) SetStrict(strict bool) {
	e.opts.strict = strict
}

// SetVariants sets the Variants used to key the lines of values stored in
// interfaces. It takes precedence over RegisterInterface.
func (e *Encoder) SetVariants(vs *Variants) {
	e.opts.variants = vs
}

// Encode writes the fixed-width encoding of v to the
// stream, one line per record, each terminated by a newline.
// See the documentation for Marshal for details about
// encoding behavior.
//
// A line is written only once it has been fully encoded. If a record fails,
// the lines before it are still flushed to the stream.
func (e *Encoder) Encode(v interface{}) error {
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v)
	var err error
	if isLines(rv) {
		err = e.writeLines(indirect(rv))
	} else {
		err = e.writeLine(rv)
	}
	return flushAfter(e.w, err)
}

func (e *Encoder) writeLines(v reflect.Value) error {
	for i := 0; i < v.Len(); i++ {
		if err := e.writeLine(v.Index(i)); err != nil {
			return withLine(err, i+1)
		}
	}
	return nil
}

func (e *Encoder) writeLine(v reflect.Value) error {
	line, err := encodeRecord(v, &e.opts)
	if err != nil {
		return err
	}
	if _, err := e.w.WriteString(line); err != nil {
		return errors.Wrap(err, "fixcol: write line")
	}
	return errors.Wrap(e.w.WriteByte('\n'), "fixcol: write line")
}

func indirect(v reflect.Value) reflect.Value {
	for (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) && !v.IsNil() {
		v = v.Elem()
	}
	return v
}

// isLines reports whether v holds several records.
func isLines(v reflect.Value) bool {
	if !v.IsValid() {
		return false
	}
	k := indirect(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

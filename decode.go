package fixcol

import (
	"bufio"
	"bytes"
	"io"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// Unmarshal parses fixed width encoded data and stores the
// result in the value pointed to by v. If v is nil or not a
// pointer, Unmarshal returns an InvalidUnmarshalError.
//
// If v points to a slice every line of data is decoded,
// otherwise only the first line is. Empty data is a single empty line.
func Unmarshal(data []byte, v interface{}, opts ...Option) error {
	d := NewDecoder(bytes.NewReader(data), opts...)
	if err := d.Decode(v); err != io.EOF {
		return err
	}
	d.line = 1
	return withLine(decodeRecord(reflect.ValueOf(v).Elem(), rawValue{}, &d.opts), d.line)
}

// A Decoder reads and decodes fixed width data from an input stream.
type Decoder struct {
	data *bufio.Reader
	done bool
	line int
	opts options
}

// NewDecoder returns a new decoder that reads from r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	d := &Decoder{
		data: bufio.NewReader(r),
	}
	for _, opt := range opts {
		opt(&d.opts)
	}
	return d
}

// SetUseCodepointIndices configures Decoder on whether the widths in the
// fixcol struct tags are expressed in terms of bytes (the default
// behavior) or in terms of UTF-8 decoded codepoints.
func (d *Decoder) SetUseCodepointIndices(use bool) {
	d.opts.useCodepointIndices = use
}

// SetStrict makes strict validation the default for fields that do not set
// strict in their tag, and enables the record level rules: the last field
// must be complete and nothing but whitespace may follow it.
func (d *Decoder) SetStrict(strict bool) {
	d.opts.strict = strict
}

// SetVariants sets the Variants used when the decode target is an
// interface. It takes precedence over RegisterInterface.
func (d *Decoder) SetVariants(vs *Variants) {
	d.opts.variants = vs
}

// Line returns the number of the last line read, starting at 1.
func (d *Decoder) Line() int {
	return d.line
}

// Decode reads from its input and stores the decoded data to the value
// pointed to by v.
//
// In the case that v points to a slice value, Decode will read until
// the end of its input, stopping at the first line that fails to decode.
// Otherwise Decode reads a single line. If there is no data remaining,
// Decode returns io.EOF.
//
// Errors describing a bad line are of type *Error and carry the line
// number. The value pointed to by v is left unchanged when a line fails.
func (d *Decoder) Decode(v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return &InvalidUnmarshalError{reflect.TypeOf(v)}
	}

	if rv.Elem().Kind() == reflect.Slice {
		return d.readLines(rv.Elem())
	}

	ok, err := d.readLine(rv.Elem())
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	return nil
}

func (d *Decoder) readLines(v reflect.Value) error {
	ct := v.Type().Elem()
	for {
		nv := reflect.New(ct).Elem()
		ok, err := d.readLine(nv)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		v.Set(reflect.Append(v, nv))
	}
}

// readLine decodes the next line into v. ok is false once the input is
// exhausted. A final line without a terminator is decoded, an empty one is
// not.
func (d *Decoder) readLine(v reflect.Value) (ok bool, err error) {
	if d.done {
		return false, nil
	}

	line, err := d.data.ReadString('\n')
	if err == io.EOF {
		d.done = true
		if line == "" {
			return false, nil
		}
	} else if err != nil {
		d.done = true
		return false, errors.Wrap(err, "fixcol: read line")
	}

	d.line++
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	raw, err := newRawValue(line, d.opts.useCodepointIndices)
	if err != nil {
		return true, &Error{Kind: ParseFailure, Line: d.line, Text: line, Err: err}
	}
	return true, withLine(decodeRecord(v, raw, &d.opts), d.line)
}

package fixcol

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// decode reads the fields of rs from line, starting at column cursor, into
// the struct v. strict enables the record level rules: the last field must be
// complete and nothing but whitespace may follow it.
func (rs *recordSpec) decode(line rawValue, cursor int, v reflect.Value, o *options, strict bool) error {
	if rs.err != nil {
		return rs.err
	}

	for i := range rs.fields {
		f := &rs.fields[i]
		col, next, err := sliceColumn(line, cursor, f, i == len(rs.fields)-1, strict)
		if err != nil {
			return annotate(err, rs.name, f.name)
		}

		c := f.cell(o)
		if c.strict {
			if err := checkColumn(col, f); err != nil {
				return annotate(err, rs.name, f.name)
			}
		}
		if err := f.setter(v.Field(f.index), col.text, c); err != nil {
			return annotate(err, rs.name, f.name)
		}
		cursor = next
	}

	if strict {
		if err := checkUnread(line, cursor); err != nil {
			return annotate(err, rs.name, "")
		}
	}
	return nil
}

// encode writes the fields of the struct v into a line of rs.width columns.
// Skipped columns are written as spaces.
func (rs *recordSpec) encode(v reflect.Value, o *options) (string, error) {
	if rs.err != nil {
		return "", rs.err
	}
	if !v.CanAddr() {
		// Pointer receivers of Marshaler and TextMarshaler need an address.
		nv := reflect.New(v.Type()).Elem()
		nv.Set(v)
		v = nv
	}

	b := newLineBuilder(rs.width, rs.width, padChar)
	cursor := 0
	for i := range rs.fields {
		f := &rs.fields[i]
		cursor += f.skip

		text, err := f.encodeField(v.Field(f.index), f.cell(o))
		if err != nil {
			return "", annotate(err, rs.name, f.name)
		}
		raw, err := newRawValue(text, o.useCodepointIndices)
		if err != nil {
			return "", errors.Wrapf(err, "fixcol: %s.%s", rs.name, f.name)
		}
		b.WriteValue(cursor, raw)
		cursor += f.width
	}
	return b.String(), nil
}

// encodeField renders v padded to the width of the column.
func (f *fieldSpec) encodeField(v reflect.Value, c cell) (string, error) {
	if (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) && v.IsNil() {
		return strings.Repeat(string(padChar), f.width), nil
	}

	text, err := f.encoder(v, c)
	if err != nil {
		return "", err
	}

	n := textLen(text, c.opts.useCodepointIndices)
	if n > f.width {
		return "", overflowError(text, n, f.width)
	}
	if f.align == Full {
		if n != f.width {
			return "", overflowError(text, n, f.width)
		}
		if c.strict {
			if err := checkFull(text); err != nil {
				return "", err
			}
		}
	}
	return f.align.pad(text, n, f.width), nil
}

// decodeRecord decodes a whole line into the settable value v. Structs are
// decoded directly unless registered as variants, interfaces go through
// Variants and pointers are allocated. v is only assigned on success.
func decodeRecord(v reflect.Value, line rawValue, o *options) error {
	t := v.Type()
	switch t.Kind() {
	case reflect.Ptr:
		nv := reflect.New(t.Elem())
		if err := decodeRecord(nv.Elem(), line, o); err != nil {
			return err
		}
		v.Set(nv)
		return nil

	case reflect.Interface:
		vs := lookupVariants(t, o)
		if vs == nil {
			return &InvalidTypeError{t}
		}
		rv, err := vs.decode(line, o, o.strict)
		if err != nil {
			return err
		}
		if !rv.Type().AssignableTo(t) {
			return &InvalidTypeError{rv.Type()}
		}
		v.Set(rv)
		return nil

	case reflect.Struct:
		if vs := variantsFor(t, o); vs != nil {
			rv, err := vs.decode(line, o, o.strict)
			if err != nil {
				return err
			}
			rv = reflect.Indirect(rv)
			if rv.Type() != t {
				return &Error{
					Kind: UnknownKey,
					Text: line.substr(0, vs.keyWidth),
					Err:  errors.Errorf("key selects %s, want %s", rv.Type(), t),
				}
			}
			v.Set(rv)
			return nil
		}

		nv := reflect.New(t).Elem()
		if err := cachedRecordSpec(t).decode(line, 0, nv, o, o.strict); err != nil {
			return err
		}
		v.Set(nv)
		return nil
	}
	return &InvalidTypeError{t}
}

// encodeRecord renders v as a single line without a terminator. Values of
// registered variant types are prefixed with their key.
func encodeRecord(v reflect.Value, o *options) (string, error) {
	if !v.IsValid() {
		return "", &InvalidTypeError{}
	}
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return "", &InvalidTypeError{}
		}
		v = v.Elem()
	}
	if vs := variantsFor(v.Type(), o); vs != nil {
		return vs.encode(v, o)
	}
	if v.Kind() != reflect.Struct {
		return "", &InvalidTypeError{v.Type()}
	}
	return cachedRecordSpec(v.Type()).encode(v, o)
}

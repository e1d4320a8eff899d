package fixcol

import (
	"encoding"
	"reflect"
	"strconv"
	"strings"
)

// cell carries the layout of the column a value is read from or written to.
type cell struct {
	width  int
	align  Alignment
	strict bool
	opts   *options
}

// valueSetter stores the value held in a column's text into v. v is always
// addressable. The text is the raw column: setters apply their own trimming.
type valueSetter func(v reflect.Value, text string, c cell) error

// valueEncoder renders v as column text without padding. The caller pads
// the result and checks it fits.
type valueEncoder func(v reflect.Value, c cell) (string, error)

// Boolean columns hold a single flag character.
const (
	trueToken  = "Y"
	falseToken = "N"
)

var (
	marshalerType       = reflect.TypeOf(new(Marshaler)).Elem()
	unmarshalerType     = reflect.TypeOf(new(Unmarshaler)).Elem()
	textMarshalerType   = reflect.TypeOf(new(encoding.TextMarshaler)).Elem()
	textUnmarshalerType = reflect.TypeOf(new(encoding.TextUnmarshaler)).Elem()
)

func implements(t, iface reflect.Type) bool {
	return t.Implements(iface) || reflect.PointerTo(t).Implements(iface)
}

// isCustom reports whether t brings its own text representation.
func isCustom(t reflect.Type) bool {
	return implements(t, unmarshalerType) || implements(t, marshalerType) ||
		implements(t, textUnmarshalerType) || implements(t, textMarshalerType)
}

// isNumeric reports whether t is decoded as a number. Pointers are looked
// through, optional numbers are still numbers.
func isNumeric(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if isCustom(t) {
		return false
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// isComposite reports whether t is decoded as a record of its own.
func isComposite(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if isCustom(t) {
		return false
	}
	return t.Kind() == reflect.Struct || t.Kind() == reflect.Interface
}

// isSupported reports whether a field of type t can be mapped to a column.
func isSupported(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		return t.Elem().Kind() != reflect.Ptr && isSupported(t.Elem())
	}
	if isCustom(t) {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool, reflect.Struct, reflect.Interface:
		return true
	}
	return isNumeric(t)
}

func newValueSetter(t reflect.Type) valueSetter {
	if t.Kind() == reflect.Ptr {
		return ptrSetter(t)
	}
	if implements(t, unmarshalerType) {
		return unmarshalerSetter
	}
	if implements(t, textUnmarshalerType) {
		return textUnmarshalerSetter
	}

	switch t.Kind() {
	case reflect.Interface:
		return variantSetter(t)
	case reflect.Struct:
		return structSetter(t)
	case reflect.String:
		return stringSetter
	case reflect.Bool:
		return boolSetter
	case reflect.Int, reflect.Int64, reflect.Int32, reflect.Int16, reflect.Int8:
		return intSetter
	case reflect.Uint, reflect.Uint64, reflect.Uint32, reflect.Uint16, reflect.Uint8:
		return uintSetter
	case reflect.Float32, reflect.Float64:
		return floatSetter
	}
	return unknownSetter
}

func unknownSetter(v reflect.Value, _ string, _ cell) error {
	return &InvalidTypeError{v.Type()}
}

// ptrSetter makes any supported type optional: a blank column leaves the
// pointer nil.
func ptrSetter(t reflect.Type) valueSetter {
	elemSetter := newValueSetter(t.Elem())
	return func(v reflect.Value, text string, c cell) error {
		if isBlank(text) {
			v.Set(reflect.Zero(t))
			return nil
		}
		nv := reflect.New(t.Elem())
		if err := elemSetter(nv.Elem(), text, c); err != nil {
			return err
		}
		v.Set(nv)
		return nil
	}
}

func unmarshalerSetter(v reflect.Value, text string, _ cell) error {
	err := v.Addr().Interface().(Unmarshaler).UnmarshalFixedWidth([]byte(text))
	return wrapSetterError(err, text)
}

func textUnmarshalerSetter(v reflect.Value, text string, c cell) error {
	text = c.align.trim(text)
	err := v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text))
	return wrapSetterError(err, text)
}

func wrapSetterError(err error, text string) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*Error); ok {
		return err
	}
	return parseError(text, err)
}

func stringSetter(v reflect.Value, text string, c cell) error {
	v.SetString(c.align.trim(text))
	return nil
}

func boolSetter(v reflect.Value, text string, _ cell) error {
	switch s := strings.TrimSpace(text); s {
	case trueToken:
		v.SetBool(true)
	case falseToken:
		v.SetBool(false)
	default:
		return parseError(s, nil)
	}
	return nil
}

func intSetter(v reflect.Value, text string, _ cell) error {
	s := strings.TrimSpace(text)
	i, err := strconv.ParseInt(s, 10, v.Type().Bits())
	if err != nil {
		return parseError(s, numError(err))
	}
	v.SetInt(i)
	return nil
}

func uintSetter(v reflect.Value, text string, _ cell) error {
	s := strings.TrimSpace(text)
	i, err := strconv.ParseUint(s, 10, v.Type().Bits())
	if err != nil {
		return parseError(s, numError(err))
	}
	v.SetUint(i)
	return nil
}

func floatSetter(v reflect.Value, text string, _ cell) error {
	s := strings.TrimSpace(text)
	f, err := strconv.ParseFloat(s, v.Type().Bits())
	if err != nil {
		return parseError(s, numError(err))
	}
	v.SetFloat(f)
	return nil
}

// numError drops the strconv prefix, the column text is reported separately.
func numError(err error) error {
	if ne, ok := err.(*strconv.NumError); ok {
		return ne.Err
	}
	return err
}

// structSetter decodes the column as a record of its own.
func structSetter(t reflect.Type) valueSetter {
	return func(v reflect.Value, text string, c cell) error {
		raw, err := newRawValue(text, c.opts.useCodepointIndices)
		if err != nil {
			return parseError(text, err)
		}
		nv := reflect.New(t).Elem()
		if err := cachedRecordSpec(t).decode(raw, 0, nv, c.opts, c.strict); err != nil {
			return err
		}
		v.Set(nv)
		return nil
	}
}

// variantSetter decodes the column through the Variants registered for the
// interface type t.
func variantSetter(t reflect.Type) valueSetter {
	return func(v reflect.Value, text string, c cell) error {
		vs := lookupVariants(t, c.opts)
		if vs == nil {
			return &InvalidTypeError{t}
		}
		raw, err := newRawValue(text, c.opts.useCodepointIndices)
		if err != nil {
			return parseError(text, err)
		}
		rv, err := vs.decode(raw, c.opts, c.strict)
		if err != nil {
			return err
		}
		if !rv.Type().AssignableTo(t) {
			return &InvalidTypeError{rv.Type()}
		}
		v.Set(rv)
		return nil
	}
}

func newValueEncoder(t reflect.Type) valueEncoder {
	if t.Kind() == reflect.Ptr {
		return ptrEncoder(t)
	}
	if implements(t, marshalerType) {
		return marshalerEncoder
	}
	if implements(t, textMarshalerType) {
		return textMarshalerEncoder
	}

	switch t.Kind() {
	case reflect.Interface:
		return variantEncoder
	case reflect.Struct:
		return structEncoder
	case reflect.String:
		return stringEncoder
	case reflect.Bool:
		return boolEncoder
	case reflect.Int, reflect.Int64, reflect.Int32, reflect.Int16, reflect.Int8:
		return intEncoder
	case reflect.Uint, reflect.Uint64, reflect.Uint32, reflect.Uint16, reflect.Uint8:
		return uintEncoder
	case reflect.Float32, reflect.Float64:
		return floatEncoder
	}
	return unknownEncoder
}

func unknownEncoder(v reflect.Value, _ cell) (string, error) {
	return "", &InvalidTypeError{v.Type()}
}

// ptrEncoder only sees non-nil pointers, nil is written as a blank column
// before the encoder is reached.
func ptrEncoder(t reflect.Type) valueEncoder {
	elemEncoder := newValueEncoder(t.Elem())
	return func(v reflect.Value, c cell) (string, error) {
		return elemEncoder(v.Elem(), c)
	}
}

// receiver returns v or its address, whichever implements iface.
func receiver(v reflect.Value, iface reflect.Type) interface{} {
	if !v.Type().Implements(iface) && v.CanAddr() {
		return v.Addr().Interface()
	}
	return v.Interface()
}

func marshalerEncoder(v reflect.Value, c cell) (string, error) {
	m, ok := receiver(v, marshalerType).(Marshaler)
	if !ok {
		return "", &InvalidTypeError{v.Type()}
	}
	data, err := m.MarshalFixedWidth(c.width)
	return string(data), err
}

func textMarshalerEncoder(v reflect.Value, _ cell) (string, error) {
	m, ok := receiver(v, textMarshalerType).(encoding.TextMarshaler)
	if !ok {
		return "", &InvalidTypeError{v.Type()}
	}
	data, err := m.MarshalText()
	return string(data), err
}

func stringEncoder(v reflect.Value, _ cell) (string, error) {
	return v.String(), nil
}

func boolEncoder(v reflect.Value, _ cell) (string, error) {
	if v.Bool() {
		return trueToken, nil
	}
	return falseToken, nil
}

func intEncoder(v reflect.Value, _ cell) (string, error) {
	return strconv.FormatInt(v.Int(), 10), nil
}

func uintEncoder(v reflect.Value, _ cell) (string, error) {
	return strconv.FormatUint(v.Uint(), 10), nil
}

// floatEncoder writes the shortest representation of the value. A value that
// only fits after dropping decimals is refused; use Float for columns that
// round to their width.
func floatEncoder(v reflect.Value, c cell) (string, error) {
	f, bits := v.Float(), v.Type().Bits()
	s := strconv.FormatFloat(f, 'f', -1, bits)
	if len(s) <= c.width {
		return s, nil
	}

	whole := strconv.FormatFloat(f, 'f', 0, bits)
	if c.strict && len(whole) <= c.width {
		return "", strictError(Truncated, s)
	}
	return "", overflowError(s, len(s), c.width)
}

func structEncoder(v reflect.Value, c cell) (string, error) {
	return cachedRecordSpec(v.Type()).encode(v, c.opts)
}

// variantEncoder writes the key and record of the value held in v.
func variantEncoder(v reflect.Value, c cell) (string, error) {
	ev := v.Elem()
	vs := variantsFor(indirectType(ev.Type()), c.opts)
	if vs == nil {
		return "", &InvalidTypeError{ev.Type()}
	}
	return vs.encode(ev, c.opts)
}

func indirectType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

package fixcol

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

const tagName = "fixcol"

type tagOptions struct {
	skip      int
	width     int
	align     Alignment
	strict    bool
	strictSet bool
}

// parseTag parses a fixcol struct tag such as "width=12,skip=1,align=right".
// A bare "strict" is the same as "strict=true".
func parseTag(tag string) (tagOptions, error) {
	opts := tagOptions{align: Left}
	widthSet := false

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, hasValue := strings.Cut(part, "=")

		var err error
		switch key {
		case "width":
			opts.width, err = strconv.Atoi(value)
			widthSet = true
		case "skip":
			opts.skip, err = strconv.Atoi(value)
		case "align":
			opts.align = Alignment(value)
			if !opts.align.Valid() {
				return opts, errors.Errorf("unknown alignment %q", value)
			}
		case "strict":
			opts.strict, opts.strictSet = true, true
			if hasValue {
				opts.strict, err = strconv.ParseBool(value)
			}
		default:
			return opts, errors.Errorf("unknown option %q", key)
		}
		if err != nil {
			return opts, errors.Wrapf(err, "option %q", key)
		}
	}

	switch {
	case !widthSet:
		return opts, errors.New("width is required")
	case opts.width <= 0:
		return opts, errors.Errorf("width must be positive, got %d", opts.width)
	case opts.skip < 0:
		return opts, errors.Errorf("skip must not be negative, got %d", opts.skip)
	}
	return opts, nil
}

// fieldSpec is the column layout and codec of a single struct field.
type fieldSpec struct {
	name  string
	index int

	skip  int
	width int
	align Alignment

	// strict overrides the Decoder or Encoder default when strictSet is true.
	strict    bool
	strictSet bool

	optional  bool
	numeric   bool
	composite bool

	setter  valueSetter
	encoder valueEncoder
}

func (f *fieldSpec) cell(o *options) cell {
	strict := o.strict
	if f.strictSet {
		strict = f.strict
	}
	return cell{width: f.width, align: f.align, strict: strict, opts: o}
}

// recordSpec is the layout of a record type. A type with an invalid
// declaration is still cached, with err set, so the error is reported on
// every use.
type recordSpec struct {
	name   string
	fields []fieldSpec
	width  int // skip plus width of every field
	err    error
}

func buildRecordSpec(t reflect.Type) *recordSpec {
	rs := &recordSpec{name: t.Name()}
	if t.Kind() != reflect.Struct {
		rs.err = &InvalidTypeError{t}
		return rs
	}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup(tagName)
		if !ok || tag == "-" {
			continue
		}

		specErr := func(msg string) *recordSpec {
			rs.err = &SpecError{Type: t.String(), Field: sf.Name, Msg: msg}
			return rs
		}
		if !sf.IsExported() {
			return specErr("field is not exported")
		}
		opts, err := parseTag(tag)
		if err != nil {
			return specErr(err.Error())
		}
		if !isSupported(sf.Type) {
			return specErr("unsupported type " + sf.Type.String())
		}

		rs.fields = append(rs.fields, fieldSpec{
			name:      sf.Name,
			index:     i,
			skip:      opts.skip,
			width:     opts.width,
			align:     opts.align,
			strict:    opts.strict,
			strictSet: opts.strictSet,
			optional:  sf.Type.Kind() == reflect.Ptr,
			numeric:   isNumeric(sf.Type),
			composite: isComposite(sf.Type),
			setter:    newValueSetter(sf.Type),
			encoder:   newValueEncoder(sf.Type),
		})
		rs.width += opts.skip + opts.width
	}
	return rs
}

var recordSpecCache sync.Map // map[reflect.Type]*recordSpec

// cachedRecordSpec is like buildRecordSpec but cached to prevent duplicate work.
func cachedRecordSpec(t reflect.Type) *recordSpec {
	if rs, ok := recordSpecCache.Load(t); ok {
		return rs.(*recordSpec)
	}
	rs, _ := recordSpecCache.LoadOrStore(t, buildRecordSpec(t))
	return rs.(*recordSpec)
}

// ValidateType returns the error every decode or encode of t would fail
// with, or nil if t is a struct type, or a pointer to one, with a valid
// fixcol layout.
func ValidateType(t reflect.Type) error {
	if t == nil {
		return &InvalidTypeError{}
	}
	return cachedRecordSpec(indirectType(t)).err
}

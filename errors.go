package fixcol

import (
	"reflect"
	"strconv"

	"github.com/pkg/errors"
)

// Kind classifies the ways a record can fail to decode or encode.
type Kind int

const (
	// LineTooShort means the line ended before a field's columns.
	LineTooShort Kind = iota + 1
	// ParseFailure means a column could not be converted to the field type.
	ParseFailure
	// Overflow means an encoded value does not fit its column.
	Overflow
	// StrictViolation means one of the strict mode rules was broken.
	StrictViolation
	// UnknownKey means no variant is registered for a line's key.
	UnknownKey
)

func (k Kind) String() string {
	switch k {
	case LineTooShort:
		return "line too short"
	case ParseFailure:
		return "parse failure"
	case Overflow:
		return "overflow"
	case StrictViolation:
		return "strict violation"
	case UnknownKey:
		return "unknown key"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Violation identifies the strict mode rule an Error broke.
type Violation int

const (
	NoViolation Violation = iota
	// ShortField: the last field of a strict record was shorter than its width.
	ShortField
	// FullWidth: a Full column was written with whitespace padding.
	FullWidth
	// Truncated: a value only fit its column after losing precision.
	Truncated
	// SkipNotBlank: a skipped span contained non-whitespace.
	SkipNotBlank
	// NumericWhitespace: a Full numeric column contained whitespace.
	NumericWhitespace
	// LeadingSpace: a Left aligned column started with whitespace.
	LeadingSpace
	// TrailingSpace: a Right aligned column ended with whitespace.
	TrailingSpace
	// UnreadColumns: non-whitespace followed the last field.
	UnreadColumns
)

var violationText = map[Violation]string{
	ShortField:        "last field shorter than its width",
	FullWidth:         "full width column padded with whitespace",
	Truncated:         "value loses precision to fit its column",
	SkipNotBlank:      "found non-whitespace character between data fields",
	NumericWhitespace: "whitespace in full width numeric column",
	LeadingSpace:      "left aligned column starts with whitespace",
	TrailingSpace:     "right aligned column ends with whitespace",
	UnreadColumns:     "found non-whitespace character after the last field",
}

func (v Violation) String() string {
	if s, ok := violationText[v]; ok {
		return s
	}
	return "Violation(" + strconv.Itoa(int(v)) + ")"
}

// Error describes a record that could not be decoded or encoded. It carries
// enough context to find the offending line, field and text.
type Error struct {
	Kind      Kind
	Violation Violation // set for StrictViolation and strict short fields

	Line   int    // 1-based line number, 0 when unknown
	Record string // name of the record type
	Field  string // name of the field, dotted for nested records
	Text   string // the text that was observed or produced

	// Have and Want hold the available and required widths for
	// LineTooShort and Overflow.
	Have, Want int

	Err error // underlying cause, such as a strconv error
}

func (e *Error) Error() string {
	s := "fixcol: "
	if e.Line > 0 {
		s += "line " + strconv.Itoa(e.Line) + ": "
	}
	switch {
	case e.Record != "" && e.Field != "":
		s += e.Record + "." + e.Field + ": "
	case e.Field != "":
		s += e.Field + ": "
	case e.Record != "":
		s += e.Record + ": "
	}

	switch e.Kind {
	case LineTooShort:
		s += "line too short: have " + strconv.Itoa(e.Have) + " characters, want " + strconv.Itoa(e.Want)
		if e.Violation != NoViolation {
			s += " (strict)"
		}
	case ParseFailure:
		s += "cannot parse " + strconv.Quote(e.Text)
	case Overflow:
		s += "value " + strconv.Quote(e.Text) + " does not fit column: have " + strconv.Itoa(e.Have) + " characters, want " + strconv.Itoa(e.Want)
	case StrictViolation:
		s += e.Violation.String() + " " + strconv.Quote(e.Text) + " (strict)"
	case UnknownKey:
		s += "unrecognized key " + strconv.Quote(e.Text)
	default:
		s += e.Kind.String()
	}

	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Cause returns the underlying error, for use with errors.Cause.
func (e *Error) Cause() error { return e.Err }

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func parseError(text string, cause error) error {
	return &Error{Kind: ParseFailure, Text: text, Err: cause}
}

func overflowError(text string, have, want int) error {
	return &Error{Kind: Overflow, Text: text, Have: have, Want: want}
}

func strictError(v Violation, text string) error {
	return &Error{Kind: StrictViolation, Violation: v, Text: text}
}

// annotate attaches the record and field to an error produced while
// handling a single field. Errors coming back from nested records already
// name their field, which is then qualified by the outer field name.
func annotate(err error, record, field string) error {
	e, ok := err.(*Error)
	if !ok {
		return err
	}
	if e.Field == "" {
		e.Field = field
	} else if field != "" {
		e.Field = field + "." + e.Field
	}
	e.Record = record
	return e
}

func withLine(err error, line int) error {
	if e, ok := err.(*Error); ok && e.Line == 0 {
		e.Line = line
	}
	return err
}

// An InvalidUnmarshalError describes an invalid argument passed to Unmarshal.
// (The argument to Unmarshal must be a non-nil pointer.)
type InvalidUnmarshalError struct {
	Type reflect.Type
}

func (e *InvalidUnmarshalError) Error() string {
	if e.Type == nil {
		return "fixcol: Unmarshal(nil)"
	}

	if e.Type.Kind() != reflect.Ptr {
		return "fixcol: Unmarshal(non-pointer " + e.Type.String() + ")"
	}
	return "fixcol: Unmarshal(nil " + e.Type.String() + ")"
}

// An InvalidTypeError describes a Go type that cannot be mapped onto a line
// or a column.
type InvalidTypeError struct {
	Type reflect.Type
}

func (e *InvalidTypeError) Error() string {
	if e.Type == nil {
		return "fixcol: cannot handle nil type"
	}
	return "fixcol: cannot handle Go type " + e.Type.String()
}

// A SpecError describes an invalid record or variant declaration.
type SpecError struct {
	Type  string
	Field string
	Msg   string
}

func (e *SpecError) Error() string {
	s := "fixcol: invalid layout"
	if e.Type != "" {
		s += " for " + e.Type
	}
	if e.Field != "" {
		s += " field " + e.Field
	}
	return s + ": " + e.Msg
}

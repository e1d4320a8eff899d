package fixcol

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/pkg/errors"
)

func TestError_Error(t *testing.T) {
	for _, tt := range []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "parse failure",
			err:  &Error{Kind: ParseFailure, Line: 3, Record: "City", Field: "Population", Text: "12x", Err: strconv.ErrSyntax},
			want: `fixcol: line 3: City.Population: cannot parse "12x": invalid syntax`,
		},
		{
			name: "line too short",
			err:  &Error{Kind: LineTooShort, Record: "City", Field: "Name", Have: 2, Want: 12},
			want: `fixcol: City.Name: line too short: have 2 characters, want 12`,
		},
		{
			name: "strict short field",
			err:  &Error{Kind: LineTooShort, Violation: ShortField, Field: "Name", Have: 2, Want: 12},
			want: `fixcol: Name: line too short: have 2 characters, want 12 (strict)`,
		},
		{
			name: "overflow",
			err:  &Error{Kind: Overflow, Record: "City", Field: "Name", Text: "Llanfairpwll", Have: 12, Want: 8},
			want: `fixcol: City.Name: value "Llanfairpwll" does not fit column: have 12 characters, want 8`,
		},
		{
			name: "strict violation",
			err:  &Error{Kind: StrictViolation, Violation: UnreadColumns, Line: 1, Record: "City", Text: "xyz"},
			want: `fixcol: line 1: City: found non-whitespace character after the last field "xyz" (strict)`,
		},
		{
			name: "unknown key",
			err:  &Error{Kind: UnknownKey, Line: 7, Text: "XXXX"},
			want: `fixcol: line 7: unrecognized key "XXXX"`,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if have := tt.err.Error(); have != tt.want {
				t.Errorf("Error() want %q, have %q", tt.want, have)
			}
		})
	}
}

func TestIsKind(t *testing.T) {
	err := errors.Wrap(&Error{Kind: Overflow}, "writing report")
	if !IsKind(err, Overflow) {
		t.Errorf("IsKind() want true for a wrapped Overflow")
	}
	if IsKind(err, ParseFailure) {
		t.Errorf("IsKind() want false for another kind")
	}
	if IsKind(errors.New("plain"), Overflow) || IsKind(nil, Overflow) {
		t.Errorf("IsKind() want false for errors that are not *Error")
	}
}

func TestError_Cause(t *testing.T) {
	err := parseError("abc", strconv.ErrSyntax)
	if errors.Cause(err) != strconv.ErrSyntax {
		t.Errorf("Cause() want %v, have %v", strconv.ErrSyntax, errors.Cause(err))
	}
	if !errors.Is(err, strconv.ErrSyntax) {
		t.Errorf("Is() want the cause to be found through Unwrap")
	}
}

func TestAnnotate(t *testing.T) {
	err := annotate(&Error{Kind: ParseFailure}, "Inner", "B")
	err = annotate(err, "Outer", "In")
	e := err.(*Error)
	if e.Record != "Outer" || e.Field != "In.B" {
		t.Errorf("annotate() want Outer.In.B, have %s.%s", e.Record, e.Field)
	}

	plain := errors.New("plain")
	if annotate(plain, "Outer", "In") != plain {
		t.Errorf("annotate() changed an error that is not *Error")
	}

	if withLine(e, 4); e.Line != 4 {
		t.Errorf("withLine() want 4, have %d", e.Line)
	}
	if withLine(e, 9); e.Line != 4 {
		t.Errorf("withLine() replaced an existing line number")
	}
}

func TestInvalidUnmarshalError(t *testing.T) {
	for _, tt := range []struct {
		v    interface{}
		want string
	}{
		{nil, "fixcol: Unmarshal(nil)"},
		{city{}, "fixcol: Unmarshal(non-pointer fixcol.city)"},
		{(*city)(nil), "fixcol: Unmarshal(nil *fixcol.city)"},
	} {
		err := &InvalidUnmarshalError{reflect.TypeOf(tt.v)}
		if err.Error() != tt.want {
			t.Errorf("Error() want %q, have %q", tt.want, err.Error())
		}
	}
}

func TestSpecError(t *testing.T) {
	err := &SpecError{Type: "fixcol.city", Field: "Name", Msg: "width is required"}
	if want := "fixcol: invalid layout for fixcol.city field Name: width is required"; err.Error() != want {
		t.Errorf("Error() want %q, have %q", want, err.Error())
	}

	type broken struct {
		Name string `fixcol:"skip=1"`
	}
	var b broken
	if err := Unmarshal([]byte("x"), &b); err == nil {
		t.Errorf("Unmarshal() into a broken layout want error")
	} else if _, ok := err.(*SpecError); !ok {
		t.Errorf("Unmarshal() want *SpecError, have %T", err)
	}
	if _, err := Marshal(b); err == nil {
		t.Errorf("Marshal() of a broken layout want error")
	}
}

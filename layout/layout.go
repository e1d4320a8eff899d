// Package layout builds fixcol record types at runtime from YAML layout
// files, for formats whose columns are not known when the program is
// compiled.
//
// A layout describes either a single record:
//
//	name: city
//	fields:
//	  - {name: name, width: 12}
//	  - {name: population, type: uint, width: 8, align: right}
//
// or a keyed set of records, selected by the first key_width columns of a
// line:
//
//	name: graph
//	key_width: 4
//	variants:
//	  - key: NODE
//	    fields:
//	      - {name: id, type: int, skip: 1, width: 3, align: right}
//	  - key: "END "
//
// Field types are string (the default), int, uint, float and bool. An
// optional field decodes a blank column to null.
//
// A top level strict: true decodes and encodes every line in strict mode,
// which also requires the last field to be complete and nothing but
// whitespace to follow it. The strict key of a variant or a field only sets
// the column rules of its fields.
package layout

import (
	"bytes"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/ianlopshire/go-fixcol"
)

// Field is a single column of a layout file.
type Field struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Width    int    `yaml:"width"`
	Skip     int    `yaml:"skip"`
	Align    string `yaml:"align"`
	Strict   *bool  `yaml:"strict"`
	Optional bool   `yaml:"optional"`
}

// Variant is one record of a keyed layout.
type Variant struct {
	Key    string  `yaml:"key"`
	Name   string  `yaml:"name"`
	Strict *bool   `yaml:"strict"`
	Fields []Field `yaml:"fields"`
}

// Document is the content of a layout file.
type Document struct {
	Name     string    `yaml:"name"`
	Strict   *bool     `yaml:"strict"`
	Fields   []Field   `yaml:"fields"`
	KeyWidth int       `yaml:"key_width"`
	Variants []Variant `yaml:"variants"`
}

var fieldTypes = map[string]reflect.Type{
	"string": reflect.TypeOf(""),
	"int":    reflect.TypeOf(int64(0)),
	"uint":   reflect.TypeOf(uint64(0)),
	"float":  reflect.TypeOf(float64(0)),
	"bool":   reflect.TypeOf(false),
}

// markerField distinguishes the types of variants whose fields are
// identical, since reflect.StructOf returns the same type for them.
const markerField = "Key_"

// Layout is a compiled layout file. It is safe for concurrent use.
type Layout struct {
	name     string
	strict   *bool
	typ      reflect.Type
	variants *fixcol.Variants
}

// Load reads and compiles the layout file at path.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "layout: read")
	}
	return Parse(data)
}

// Parse compiles a YAML layout. Unknown keys are rejected.
func Parse(data []byte) (*Layout, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "layout: parse")
	}
	return New(doc)
}

// New compiles doc.
func New(doc Document) (*Layout, error) {
	l := &Layout{name: doc.Name, strict: doc.Strict}
	if l.name == "" {
		l.name = "record"
	}

	switch {
	case len(doc.Variants) > 0 && len(doc.Fields) > 0:
		return nil, errors.Errorf("layout %s: fields and variants are exclusive", l.name)
	case len(doc.Variants) > 0:
		if err := l.compileVariants(doc); err != nil {
			return nil, err
		}
		return l, nil
	case doc.KeyWidth != 0:
		return nil, errors.Errorf("layout %s: key_width without variants", l.name)
	case len(doc.Fields) == 0:
		return nil, errors.Errorf("layout %s: no fields", l.name)
	}

	typ, err := structType(doc.Fields, "", nil)
	if err != nil {
		return nil, errors.Wrapf(err, "layout %s", l.name)
	}
	if err := fixcol.ValidateType(typ); err != nil {
		return nil, renameSpecError(err, l.name)
	}
	l.typ = typ
	return l, nil
}

func (l *Layout) compileVariants(doc Document) error {
	l.variants = fixcol.NewVariants(doc.KeyWidth)
	for i, v := range doc.Variants {
		name := v.Name
		if name == "" {
			name = strings.TrimSpace(v.Key)
		}
		if name == "" {
			name = "variant " + strconv.Itoa(i+1)
		}
		name = l.name + "." + name

		typ, err := structType(v.Fields, v.Key, v.Strict)
		if err != nil {
			return errors.Wrapf(err, "layout %s", name)
		}
		if err := l.variants.Add(v.Key, reflect.New(typ).Elem().Interface()); err != nil {
			return renameSpecError(err, name)
		}
	}
	return nil
}

// Name returns the name of the layout.
func (l *Layout) Name() string { return l.name }

// Keyed reports whether lines start with a variant key.
func (l *Layout) Keyed() bool { return l.variants != nil }

// Keys returns the variant keys of a keyed layout.
func (l *Layout) Keys() []string {
	if l.variants == nil {
		return nil
	}
	return l.variants.Keys()
}

// Strict reports whether lines are handled in strict mode unless the caller
// says otherwise.
func (l *Layout) Strict() bool { return l.strict != nil && *l.strict }

// Type returns the record type of a layout that is not keyed.
func (l *Layout) Type() reflect.Type { return l.typ }

// Variants returns the variants of a keyed layout.
func (l *Layout) Variants() *fixcol.Variants { return l.variants }

// structType builds the record type of fields. strict is the default of
// fields that do not set it.
func structType(fields []Field, key string, strict *bool) (reflect.Type, error) {
	sfs := make([]reflect.StructField, 0, len(fields)+1)
	seen := make(map[string]bool, len(fields))

	for i, f := range fields {
		if f.Name == "" {
			return nil, errors.Errorf("field %d: name is required", i+1)
		}
		goName, err := exportedName(f.Name)
		if err != nil {
			return nil, err
		}
		if seen[goName] {
			return nil, errors.Errorf("field %q: duplicate name", f.Name)
		}
		seen[goName] = true

		typeName := f.Type
		if typeName == "" {
			typeName = "string"
		}
		typ, ok := fieldTypes[typeName]
		if !ok {
			return nil, errors.Errorf("field %q: unknown type %q", f.Name, f.Type)
		}
		if f.Optional {
			typ = reflect.PointerTo(typ)
		}
		if f.Strict == nil {
			f.Strict = strict
		}

		sfs = append(sfs, reflect.StructField{
			Name: goName,
			Type: typ,
			Tag:  reflect.StructTag(`fixcol:"` + columnTag(f) + `" json:"` + f.Name + `"`),
		})
	}

	if key != "" {
		sfs = append(sfs, reflect.StructField{
			Name: markerField,
			Type: reflect.TypeOf(struct{}{}),
			Tag:  reflect.StructTag(`json:"-" layout:` + strconv.Quote(key)),
		})
	}
	return reflect.StructOf(sfs), nil
}

func columnTag(f Field) string {
	tag := "width=" + strconv.Itoa(f.Width)
	if f.Skip != 0 {
		tag += ",skip=" + strconv.Itoa(f.Skip)
	}
	if f.Align != "" {
		tag += ",align=" + f.Align
	}
	if f.Strict != nil {
		tag += ",strict=" + strconv.FormatBool(*f.Strict)
	}
	return tag
}

// exportedName turns a layout field name such as "zip_code" into the
// exported Go field name "ZipCode".
func exportedName(name string) (string, error) {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})

	caser := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, part := range parts {
		for _, r := range part {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return "", errors.Errorf("field %q: invalid name", name)
			}
		}
		b.WriteString(caser.String(part))
	}

	s := b.String()
	if r, _ := utf8.DecodeRuneInString(s); !unicode.IsUpper(r) {
		return "", errors.Errorf("field %q: name must start with a letter", name)
	}
	return s, nil
}

// renameSpecError returns a copy of a *fixcol.SpecError naming the layout
// instead of the generated Go type. The original is shared through the
// fixcol type cache.
func renameSpecError(err error, name string) error {
	if se, ok := err.(*fixcol.SpecError); ok {
		renamed := *se
		renamed.Type = name
		return &renamed
	}
	return errors.Wrapf(err, "layout %s", name)
}

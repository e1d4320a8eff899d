package layout

import (
	"bytes"
	"io"
	"iter"
	"reflect"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/ianlopshire/go-fixcol"
)

// Record is a line decoded through a Layout. Value holds a struct of the
// type the layout built for the line, Key the variant key of a keyed
// layout.
type Record struct {
	Key   string
	Value interface{}
}

type envelope struct {
	Key    string          `json:"key"`
	Record json.RawMessage `json:"record,omitempty"`
}

var anyType = reflect.TypeOf((*interface{})(nil)).Elem()

// Decode decodes a single line.
func (l *Layout) Decode(line []byte, opts ...fixcol.Option) (Record, error) {
	opts = l.options(opts)
	if l.variants != nil {
		v, err := l.variants.Unmarshal(line, opts...)
		if err != nil {
			return Record{}, l.annotate(err)
		}
		return l.record(reflect.ValueOf(v)), nil
	}

	p := reflect.New(l.typ)
	if err := fixcol.Unmarshal(line, p.Interface(), opts...); err != nil {
		return Record{}, l.annotate(err)
	}
	return l.record(p.Elem()), nil
}

// Encode encodes rec as a single line without a terminator.
func (l *Layout) Encode(rec Record, opts ...fixcol.Option) ([]byte, error) {
	if err := l.check(rec); err != nil {
		return nil, err
	}
	var (
		data []byte
		err  error
	)
	opts = l.options(opts)
	if l.variants != nil {
		data, err = l.variants.Marshal(rec.Value, opts...)
	} else {
		data, err = fixcol.Marshal(rec.Value, opts...)
	}
	return data, l.annotate(err)
}

// ReadAll returns an iterator over the records of r, one per line. Like
// fixcol.ReadAll it yields bad lines as errors and moves on, and stops
// after a read error.
func (l *Layout) ReadAll(r io.Reader, opts ...fixcol.Option) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		d := fixcol.NewDecoder(r, l.options(opts)...)
		for {
			target := l.target()
			err := d.Decode(target.Interface())
			if err == io.EOF {
				return
			}
			var rec Record
			if err == nil {
				rec = l.record(target.Elem())
			}
			if !yield(rec, l.annotate(err)) {
				return
			}
		}
	}
}

// WriteAll encodes the records of seq to w, one line each, and stops at
// the first record that fails. Lines written before it are flushed.
func (l *Layout) WriteAll(w io.Writer, seq iter.Seq[Record], opts ...fixcol.Option) error {
	e := fixcol.NewEncoder(w, l.options(opts)...)
	n := 0
	for rec := range seq {
		n++
		err := l.check(rec)
		if err == nil {
			err = e.Encode(rec.Value)
		}
		if err != nil {
			if ce, ok := err.(*fixcol.Error); ok && ce.Line == 0 {
				ce.Line = n
			}
			return l.annotate(err)
		}
	}
	return nil
}

// MarshalJSON returns the JSON form of rec: the record object for a plain
// layout, {"key": ..., "record": {...}} for a keyed one. Optional fields
// with a blank column are null.
func (l *Layout) MarshalJSON(rec Record) ([]byte, error) {
	if err := l.check(rec); err != nil {
		return nil, err
	}
	if l.variants == nil {
		data, err := json.Marshal(rec.Value)
		return data, errors.Wrap(err, "layout: marshal json")
	}

	raw, err := json.Marshal(rec.Value)
	if err != nil {
		return nil, errors.Wrap(err, "layout: marshal json")
	}
	data, err := json.Marshal(envelope{Key: rec.Key, Record: raw})
	return data, errors.Wrap(err, "layout: marshal json")
}

// UnmarshalJSON is the inverse of MarshalJSON. Unknown fields are
// rejected; missing ones are left zero.
func (l *Layout) UnmarshalJSON(data []byte) (Record, error) {
	typ, key := l.typ, ""
	if l.variants != nil {
		var env envelope
		if err := strictUnmarshal(data, &env); err != nil {
			return Record{}, err
		}
		t, ok := l.variants.Type(env.Key)
		if !ok {
			return Record{}, &fixcol.Error{Kind: fixcol.UnknownKey, Record: l.name, Text: env.Key}
		}
		typ, key, data = t, env.Key, env.Record
	}

	p := reflect.New(typ)
	if len(data) > 0 {
		if err := strictUnmarshal(data, p.Interface()); err != nil {
			return Record{}, err
		}
	}
	return Record{Key: key, Value: p.Elem().Interface()}, nil
}

func strictUnmarshal(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return errors.Wrap(dec.Decode(v), "layout: unmarshal json")
}

// options puts the layout's own strictness before opts, so callers can
// override it.
func (l *Layout) options(opts []fixcol.Option) []fixcol.Option {
	o := make([]fixcol.Option, 0, len(opts)+2)
	if l.strict != nil {
		o = append(o, fixcol.WithStrict(*l.strict))
	}
	o = append(o, opts...)
	if l.variants != nil {
		o = append(o, fixcol.WithVariants(l.variants))
	}
	return o
}

func (l *Layout) target() reflect.Value {
	if l.variants != nil {
		return reflect.New(anyType)
	}
	return reflect.New(l.typ)
}

func (l *Layout) record(v reflect.Value) Record {
	val := v.Interface()
	if l.variants == nil {
		return Record{Value: val}
	}
	key, _ := l.variants.Key(val)
	return Record{Key: key, Value: val}
}

// check reports whether rec holds a value built by l.
func (l *Layout) check(rec Record) error {
	t := reflect.TypeOf(rec.Value)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if l.variants == nil {
		if t != l.typ {
			return errors.Errorf("layout %s: cannot encode %v", l.name, t)
		}
		return nil
	}
	key, ok := l.variants.Key(rec.Value)
	if !ok {
		return errors.Errorf("layout %s: cannot encode %v", l.name, t)
	}
	if rec.Key != "" && rec.Key != key {
		return errors.Errorf("layout %s: record of variant %q carries key %q", l.name, key, rec.Key)
	}
	return nil
}

// annotate names the layout in errors about records of generated types,
// which have no name of their own.
func (l *Layout) annotate(err error) error {
	if ce, ok := err.(*fixcol.Error); ok && ce.Record == "" {
		ce.Record = l.name
	}
	return err
}

package fixcol

import (
	"bytes"
	"io"
	"reflect"
	"strings"
	"testing"
)

type graphItem interface {
	graphItem()
}

type graphNode struct {
	ID   int    `fixcol:"skip=1,width=3,align=right"`
	Name string `fixcol:"skip=1,width=8"`
}

type graphEdge struct {
	From int `fixcol:"skip=1,width=3,align=right"`
	To   int `fixcol:"skip=1,width=3,align=right"`
}

type graphEnd struct{}

func (graphNode) graphItem() {}
func (graphEdge) graphItem() {}
func (graphEnd) graphItem()  {}

var graphVariants = func() *Variants {
	vs := NewVariants(4).
		Register("NODE", graphNode{}).
		Register("EDGE", &graphEdge{}).
		Register("END ", graphEnd{})
	if err := RegisterInterface((*graphItem)(nil), vs); err != nil {
		panic(err)
	}
	return vs
}()

const graphData = "" +
	"NODE   1 alpha   " + "\n" +
	"NODE   2 beta" + "\n" +
	"EDGE   1   2" + "\n" +
	"END " + "\n"

var graphItems = []graphItem{
	graphNode{1, "alpha"},
	graphNode{2, "beta"},
	&graphEdge{1, 2},
	graphEnd{},
}

func TestVariants_decode(t *testing.T) {
	var items []graphItem
	if err := Unmarshal([]byte(graphData), &items); err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(items, graphItems) {
		t.Errorf("Unmarshal() want %+v, have %+v", graphItems, items)
	}

	for _, tt := range []struct {
		name string
		raw  string
		kind Kind
		text string
	}{
		{"unknown key", "XXXX   1 alpha", UnknownKey, "XXXX"},
		{"key is not trimmed", "END", LineTooShort, "END"},
		{"lowercase key", "node   1 alpha", UnknownKey, "node"},
		{"record too short", "EDGE   1", LineTooShort, ""},
		{"bad field", "NODE   x alpha", ParseFailure, "x"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var item graphItem
			err := Unmarshal([]byte(tt.raw), &item)
			e, ok := err.(*Error)
			if !ok || e.Kind != tt.kind {
				t.Fatalf("Unmarshal() want %v, have %v", tt.kind, err)
			}
			if tt.text != "" && e.Text != tt.text {
				t.Errorf("Unmarshal() error text want %q, have %q", tt.text, e.Text)
			}
			if item != nil {
				t.Errorf("Unmarshal() failed line set target to %+v", item)
			}
		})
	}
}

func TestVariants_encode(t *testing.T) {
	data, err := Marshal(graphItems)
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	want := "" +
		"NODE   1 alpha   " + "\n" +
		"NODE   2 beta    " + "\n" +
		"EDGE   1   2" + "\n" +
		"END " + "\n"
	if string(data) != want {
		t.Errorf("Marshal() want %q, have %q", want, data)
	}

	// Registered types carry their key wherever they are encoded on their own.
	data, err = Marshal(graphNode{3, "gamma"})
	if err != nil || string(data) != "NODE   3 gamma   " {
		t.Errorf("Marshal() want %q, have %q (%v)", "NODE   3 gamma   ", data, err)
	}

	var node graphNode
	if err := Unmarshal(data, &node); err != nil || node != (graphNode{3, "gamma"}) {
		t.Errorf("Unmarshal() want %+v, have %+v (%v)", graphNode{3, "gamma"}, node, err)
	}
	if err := Unmarshal([]byte("EDGE   1   2"), &node); !IsKind(err, UnknownKey) {
		t.Errorf("Unmarshal() of another variant want UnknownKey, have %v", err)
	}
}

func TestVariants_field(t *testing.T) {
	type envelope struct {
		Seq  int       `fixcol:"width=2,align=full"`
		Item graphItem `fixcol:"skip=1,width=17"`
		Tail string    `fixcol:"width=2"`
	}

	in := []envelope{
		{11, graphNode{1, "alpha"}, "ok"},
		{12, graphEdge{1, 2}, "ok"},
		{13, nil, "no"},
	}
	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	want := "" +
		"11 NODE   1 alpha   ok" + "\n" +
		"12 EDGE   1   2     ok" + "\n" +
		"13                  no" + "\n"
	if string(data) != want {
		t.Fatalf("Marshal() want %q, have %q", want, data)
	}

	var out []envelope
	err = Unmarshal([]byte(want[:len(want)-len("13                  no\n")]), &out)
	if err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}
	expected := []envelope{
		{11, graphNode{1, "alpha"}, "ok"},
		{12, &graphEdge{1, 2}, "ok"},
	}
	if !reflect.DeepEqual(out, expected) {
		t.Errorf("Unmarshal() want %+v, have %+v", expected, out)
	}

	var e envelope
	err = Unmarshal([]byte("04 XXXX   1 alpha   ok"), &e)
	if ce, ok := err.(*Error); !ok || ce.Kind != UnknownKey || ce.Field != "Item" {
		t.Errorf("Unmarshal() want UnknownKey on Item, have %v", err)
	}
}

func TestVariants_strict(t *testing.T) {
	d := NewDecoder(strings.NewReader("NODE   1 alpha   \nNODE   1 alpha   !\nEND   \nEND x\n"))
	d.SetStrict(true)

	var item graphItem
	if err := d.Decode(&item); err != nil {
		t.Fatalf("Decode() unexpected error: %v", err)
	}
	for _, v := range []Violation{UnreadColumns, NoViolation, UnreadColumns} {
		err := d.Decode(&item)
		if v == NoViolation {
			if err != nil {
				t.Errorf("Decode() line %d unexpected error: %v", d.Line(), err)
			}
			continue
		}
		if e, ok := err.(*Error); !ok || e.Violation != v {
			t.Errorf("Decode() line %d want %v, have %v", d.Line(), v, err)
		}
	}
	if err := d.Decode(&item); err != io.EOF {
		t.Errorf("Decode() want io.EOF, have %v", err)
	}
}

func TestVariants_local(t *testing.T) {
	type reading struct {
		Value float64 `fixcol:"width=6,align=right"`
	}
	type alarm struct {
		Code string `fixcol:"width=3"`
	}
	vs := NewVariants(1).Register("R", reading{}).Register("A", &alarm{})

	d := NewDecoder(strings.NewReader("R  21.5\nAE42\n"))
	d.SetVariants(vs)

	var got []interface{}
	for {
		var v interface{}
		err := d.Decode(&v)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Decode() unexpected error: %v", err)
		}
		got = append(got, v)
	}
	want := []interface{}{reading{21.5}, &alarm{"E42"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode() want %+v, have %+v", want, got)
	}

	buff := bytes.NewBuffer(nil)
	e := NewEncoder(buff)
	e.SetVariants(vs)
	if err := e.Encode(got); err != nil {
		t.Fatalf("Encode() unexpected error: %v", err)
	}
	if buff.String() != "R  21.5\nAE42\n" {
		t.Errorf("Encode() want %q, have %q", "R  21.5\nAE42\n", buff.String())
	}

	// Without the variants the values are plain records.
	data, err := Marshal(reading{21.5})
	if err != nil || string(data) != "  21.5" {
		t.Errorf("Marshal() want %q, have %q (%v)", "  21.5", data, err)
	}
}

func TestVariants_direct(t *testing.T) {
	v, err := graphVariants.Unmarshal([]byte("EDGE   4   5"))
	if err != nil {
		t.Fatalf("Variants.Unmarshal() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(v, &graphEdge{4, 5}) {
		t.Errorf("Variants.Unmarshal() want %+v, have %+v", &graphEdge{4, 5}, v)
	}

	data, err := graphVariants.Marshal(graphEdge{4, 5})
	if err != nil || string(data) != "EDGE   4   5" {
		t.Errorf("Variants.Marshal() want %q, have %q (%v)", "EDGE   4   5", data, err)
	}
	if _, err := graphVariants.Marshal(strictRecord{}); err == nil {
		t.Errorf("Variants.Marshal() of an unregistered type want error")
	}

	if key, ok := graphVariants.Key(&graphEdge{}); !ok || key != "EDGE" {
		t.Errorf("Variants.Key() want EDGE, have %q", key)
	}
	if typ, ok := graphVariants.Type("NODE"); !ok || typ != reflect.TypeOf(graphNode{}) {
		t.Errorf("Variants.Type() want graphNode, have %v", typ)
	}
	if typ, ok := graphVariants.Type("EDGE"); !ok || typ != reflect.TypeOf(&graphEdge{}) {
		t.Errorf("Variants.Type() want *graphEdge, have %v", typ)
	}
	if _, ok := graphVariants.Type("XXXX"); ok {
		t.Errorf("Variants.Type() unknown key reported as registered")
	}
	if keys := graphVariants.Keys(); !reflect.DeepEqual(keys, []string{"NODE", "EDGE", "END "}) {
		t.Errorf("Variants.Keys() have %q", keys)
	}
	if graphVariants.KeyWidth() != 4 {
		t.Errorf("Variants.KeyWidth() want 4, have %d", graphVariants.KeyWidth())
	}
}

func TestVariants_Add(t *testing.T) {
	type good struct {
		A string `fixcol:"width=1"`
	}
	type bad struct {
		A string `fixcol:"width=-1"`
	}

	for _, tt := range []struct {
		name      string
		keyWidth  int
		key       string
		prototype interface{}
	}{
		{"key too short", 3, "AB", good{}},
		{"key too long", 3, "ABCD", good{}},
		{"multibyte key", 3, "Aø", good{}},
		{"zero key width", 0, "", good{}},
		{"nil prototype", 1, "A", nil},
		{"not a struct", 1, "A", 12},
		{"invalid record", 1, "A", bad{}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewVariants(tt.keyWidth).Add(tt.key, tt.prototype); err == nil {
				t.Errorf("Add() want error")
			}
		})
	}

	vs := NewVariants(1).Register("A", good{})
	if err := vs.Add("A", &graphEnd{}); err == nil {
		t.Errorf("Add() duplicate key want error")
	}
	if err := vs.Add("B", &good{}); err == nil {
		t.Errorf("Add() duplicate type want error")
	}

	defer func() {
		if recover() == nil {
			t.Errorf("Register() want panic")
		}
	}()
	vs.Register("AB", good{})
}

func TestRegisterInterface(t *testing.T) {
	type stringer interface{ String() string }

	if err := RegisterInterface(graphItem(nil), graphVariants); err == nil {
		t.Errorf("RegisterInterface() of a nil interface value want error")
	}
	if err := RegisterInterface((*graphItem)(nil), graphVariants); err == nil {
		t.Errorf("RegisterInterface() twice want error")
	}
	if err := RegisterInterface((*stringer)(nil), graphVariants); err == nil {
		t.Errorf("RegisterInterface() with variants not implementing the interface want error")
	}
}

package fixcol

import (
	"reflect"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Variants maps the fixed-width key at the start of a line to the record type
// that describes the rest of it. Keys are matched exactly, including any
// spaces they contain, and written verbatim when encoding.
//
// A Variants is built once with Add or Register and must not be modified
// after it has been used to decode or encode.
type Variants struct {
	keyWidth int
	byKey    map[string]*variant
	byType   map[reflect.Type]*variant
	keys     []string
}

type variant struct {
	key string
	typ reflect.Type // always a struct type
	ptr bool         // registered by pointer, decoded values are pointers
}

// decodedType is the type of the values produced when decoding the variant.
func (vr *variant) decodedType() reflect.Type {
	if vr.ptr {
		return reflect.PointerTo(vr.typ)
	}
	return vr.typ
}

// NewVariants returns an empty set of variants whose keys occupy the first
// keyWidth columns of a line.
func NewVariants(keyWidth int) *Variants {
	return &Variants{
		keyWidth: keyWidth,
		byKey:    make(map[string]*variant),
		byType:   make(map[reflect.Type]*variant),
	}
}

// Add registers the record type of prototype under key. The prototype is a
// struct value or a pointer to one; lines decoded through a pointer
// prototype produce pointers. A struct without fixcol fields describes a
// line that holds only its key.
func (vs *Variants) Add(key string, prototype interface{}) error {
	if vs.keyWidth <= 0 {
		return &SpecError{Msg: "variant key width must be positive"}
	}
	if len(key) != vs.keyWidth || utf8.RuneCountInString(key) != vs.keyWidth {
		return &SpecError{Msg: "variant key " + strconv.Quote(key) + " must be exactly " + strconv.Itoa(vs.keyWidth) + " single-byte characters"}
	}
	if _, ok := vs.byKey[key]; ok {
		return &SpecError{Msg: "duplicate variant key " + strconv.Quote(key)}
	}

	t := reflect.TypeOf(prototype)
	if t == nil {
		return &SpecError{Msg: "nil prototype for variant key " + strconv.Quote(key)}
	}
	vr := &variant{key: key, typ: t}
	if t.Kind() == reflect.Ptr {
		vr.typ, vr.ptr = t.Elem(), true
	}
	if vr.typ.Kind() != reflect.Struct {
		return &SpecError{Type: t.String(), Msg: "variant prototype must be a struct"}
	}
	if _, ok := vs.byType[vr.typ]; ok {
		return &SpecError{Type: vr.typ.String(), Msg: "type registered for more than one key"}
	}
	if err := cachedRecordSpec(vr.typ).err; err != nil {
		return err
	}

	vs.byKey[key] = vr
	vs.byType[vr.typ] = vr
	vs.keys = append(vs.keys, key)
	return nil
}

// Register is like Add but panics on error. It returns vs so registrations
// can be chained.
func (vs *Variants) Register(key string, prototype interface{}) *Variants {
	if err := vs.Add(key, prototype); err != nil {
		panic(err)
	}
	return vs
}

// KeyWidth returns the number of columns occupied by the key.
func (vs *Variants) KeyWidth() int { return vs.keyWidth }

// Keys returns the registered keys in registration order.
func (vs *Variants) Keys() []string {
	return append([]string(nil), vs.keys...)
}

// Type returns the type of the values decoded for key.
func (vs *Variants) Type(key string) (reflect.Type, bool) {
	vr, ok := vs.byKey[key]
	if !ok {
		return nil, false
	}
	return vr.decodedType(), true
}

// Key returns the key v is encoded with.
func (vs *Variants) Key(v interface{}) (string, bool) {
	t := reflect.TypeOf(v)
	if t == nil {
		return "", false
	}
	vr, ok := vs.byType[indirectType(t)]
	if !ok {
		return "", false
	}
	return vr.key, true
}

// Unmarshal decodes a single line and returns the record selected by its
// key.
func (vs *Variants) Unmarshal(data []byte, opts ...Option) (interface{}, error) {
	o := vs.options(opts)
	line, err := newRawValue(string(data), o.useCodepointIndices)
	if err != nil {
		return nil, parseError(string(data), err)
	}
	rv, err := vs.decode(line, o, o.strict)
	if err != nil {
		return nil, err
	}
	return rv.Interface(), nil
}

// Marshal encodes v, one of the registered record types, as its key
// followed by its record. No line terminator is written.
func (vs *Variants) Marshal(v interface{}, opts ...Option) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, &InvalidTypeError{}
	}
	line, err := vs.encode(rv, vs.options(opts))
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}

func (vs *Variants) options(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	o.variants = vs
	return o
}

// decode reads the key from the start of line and decodes the rest of the
// line into the selected record type.
func (vs *Variants) decode(line rawValue, o *options, strict bool) (reflect.Value, error) {
	if line.len() < vs.keyWidth {
		return reflect.Value{}, &Error{
			Kind:  LineTooShort,
			Field: "key",
			Text:  line.data,
			Have:  line.len(),
			Want:  vs.keyWidth,
		}
	}

	key := line.substr(0, vs.keyWidth)
	vr, ok := vs.byKey[key]
	if !ok {
		return reflect.Value{}, &Error{Kind: UnknownKey, Text: key}
	}

	nv := reflect.New(vr.typ)
	if err := cachedRecordSpec(vr.typ).decode(line, vs.keyWidth, nv.Elem(), o, strict); err != nil {
		return reflect.Value{}, err
	}
	if vr.ptr {
		return nv, nil
	}
	return nv.Elem(), nil
}

func (vs *Variants) encode(v reflect.Value, o *options) (string, error) {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return "", &InvalidTypeError{}
		}
		v = v.Elem()
	}
	vr, ok := vs.byType[v.Type()]
	if !ok {
		return "", &InvalidTypeError{v.Type()}
	}
	line, err := cachedRecordSpec(vr.typ).encode(v, o)
	if err != nil {
		return "", err
	}
	return vr.key + line, nil
}

// implementedBy reports whether every value decoded through vs can be
// stored in a variable of the interface type iface.
func (vs *Variants) implementedBy(iface reflect.Type) bool {
	for _, vr := range vs.byKey {
		if !vr.decodedType().Implements(iface) {
			return false
		}
	}
	return true
}

var registry = struct {
	sync.RWMutex
	byInterface map[reflect.Type]*Variants
	all         []*Variants
}{byInterface: make(map[reflect.Type]*Variants)}

// RegisterInterface makes vs the Variants used for fields and decode
// targets of an interface type. iface is a nil pointer to the interface:
//
//	fixcol.RegisterInterface((*Shape)(nil), vs)
//
// Values of the registered record types are encoded with their key wherever
// they appear at the top level of a line.
func RegisterInterface(iface interface{}, vs *Variants) error {
	t := reflect.TypeOf(iface)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Interface {
		return errors.Errorf("fixcol: RegisterInterface needs a pointer to an interface, got %v", t)
	}
	it := t.Elem()
	if !vs.implementedBy(it) {
		return &SpecError{Type: it.String(), Msg: "a registered variant does not implement the interface"}
	}

	registry.Lock()
	defer registry.Unlock()
	if _, ok := registry.byInterface[it]; ok {
		return &SpecError{Type: it.String(), Msg: "interface already registered"}
	}
	registry.byInterface[it] = vs
	registry.all = append(registry.all, vs)
	return nil
}

// lookupVariants returns the Variants serving the interface type iface,
// preferring those set on the Decoder.
func lookupVariants(iface reflect.Type, o *options) *Variants {
	if o.variants != nil && o.variants.implementedBy(iface) {
		return o.variants
	}
	registry.RLock()
	defer registry.RUnlock()
	return registry.byInterface[iface]
}

// variantsFor returns the Variants the struct type t is registered with.
func variantsFor(t reflect.Type, o *options) *Variants {
	if o.variants != nil {
		if _, ok := o.variants.byType[t]; ok {
			return o.variants
		}
	}
	registry.RLock()
	defer registry.RUnlock()
	for _, vs := range registry.all {
		if _, ok := vs.byType[t]; ok {
			return vs
		}
	}
	return nil
}

// Package fixcol provides encoding and decoding for fixed-width, column
// formatted data.
//
// A record layout is declared with `fixcol` struct tags. Each tagged field
// occupies Width columns after skipping Skip columns, and fields are laid out
// one after another in declaration order:
//
//	type City struct {
//		Name       string `fixcol:"width=12"`
//		Population uint64 `fixcol:"width=8,align=right"`
//		Lat        float64 `fixcol:"skip=1,width=8,align=right"`
//	}
//
// The supported tag options are width (required), skip, align (left, right or
// full) and strict. Pointer fields are optional: a blank column decodes to nil
// and nil encodes to a blank column.
//
// Lines holding several kinds of record are decoded through Variants, which
// select a record type from a fixed-width key at the start of the line.
package fixcol

// Marshaler is the interface implemented by an object that can
// marshal itself into a fixed-width form.
//
// MarshalFixedWidth is provided the width of the column and should return
// the encoded value of the receiver. If the encoded value is longer than
// the width the encoder fails with an Overflow error. If the encoded value
// is shorter it will be padded according to the field alignment.
type Marshaler interface {
	MarshalFixedWidth(width int) (data []byte, err error)
}

// Unmarshaler is the interface implemented by an object that can
// unmarshal a fixed-width representation of itself.
//
// The data passed to UnmarshalFixedWidth by the decoder will be
// the full column. No leading or trailing space will be removed.
//
// UnmarshalFixedWidth should be able to decode the form generated
// by MarshalFixedWidth.
type Unmarshaler interface {
	UnmarshalFixedWidth(data []byte) error
}

// options holds the settings shared by Decoder and Encoder.
type options struct {
	strict              bool
	useCodepointIndices bool
	variants            *Variants
}

// Option configures a Decoder, an Encoder or one of the helpers built on
// them.
type Option func(*options)

// WithStrict enables strict validation for every field that does not set
// strict explicitly, and for the record level rules.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithCodepointIndices measures columns in UTF-8 codepoints instead of bytes.
func WithCodepointIndices(use bool) Option {
	return func(o *options) { o.useCodepointIndices = use }
}

// WithVariants dispatches lines through vs when the target is an interface.
func WithVariants(vs *Variants) Option {
	return func(o *options) { o.variants = vs }
}

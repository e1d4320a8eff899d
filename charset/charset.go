// Package charset converts fixed-width data between UTF-8 and the legacy
// encodings it is often stored in, such as EBCDIC mainframe extracts and
// Latin-1 exports.
//
// The fixcol codec works on UTF-8 text. Wrap the input of a Decoder with
// NewReader and the output of an Encoder with NewWriter to handle other
// encodings:
//
//	r, err := charset.NewReader(f, "ebcdic")
//	...
//	for rec, err := range fixcol.ReadAll[Record](r) {
package charset

import (
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// aliases are the short names accepted in addition to IANA names.
var aliases = map[string]encoding.Encoding{
	"":         encoding.Nop,
	"utf8":     encoding.Nop,
	"utf-8":    encoding.Nop,
	"ebcdic":   charmap.CodePage037,
	"cp037":    charmap.CodePage037,
	"ibm037":   charmap.CodePage037,
	"cp1047":   charmap.CodePage1047,
	"latin1":   charmap.ISO8859_1,
	"cp1252":   charmap.Windows1252,
	"cp437":    charmap.CodePage437,
	"cp850":    charmap.CodePage850,
	"macroman": charmap.Macintosh,
}

// Lookup returns the encoding called name. Names are matched case
// insensitively against the short aliases listed by Names and then against
// the IANA registry. UTF-8 is passed through unchanged.
func Lookup(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if enc, ok := aliases[key]; ok {
		return enc, nil
	}

	enc, err := ianaindex.IANA.Encoding(key)
	if err != nil {
		return nil, errors.Wrapf(err, "charset: unknown encoding %q", name)
	}
	if enc == nil {
		return nil, errors.Errorf("charset: unsupported encoding %q", name)
	}
	return enc, nil
}

// Names returns the short aliases accepted by Lookup.
func Names() []string {
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// NewReader returns a reader that decodes r from the encoding called name
// into UTF-8.
func NewReader(r io.Reader, name string) (io.Reader, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == encoding.Nop {
		return r, nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// NewWriter returns a writer that encodes UTF-8 written to it into the
// encoding called name. Close must be called to flush the final bytes; it
// does not close w. Writing a character the encoding cannot represent
// fails.
func NewWriter(w io.Writer, name string) (io.WriteCloser, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == encoding.Nop {
		return nopCloser{w}, nil
	}
	return transform.NewWriter(w, enc.NewEncoder()), nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

package fixcol

import (
	"bytes"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// lineBuilder is a multibyte character aware buffer used to assemble an
// encoded record. The line starts out filled with padding and each field is
// written at its column offset.
type lineBuilder struct {
	data []byte

	// Set once a multibyte character has been written. codepointIndices[n]
	// is the byte offset of the n-th codepoint in data.
	codepointIndices []int
}

// newLineBuilder makes a new lineBuilder of len columns filled with fillChar.
func newLineBuilder(len, cap int, fillChar byte) *lineBuilder {
	data := make([]byte, len, cap)
	if len == 0 {
		return &lineBuilder{data: data}
	}

	data[0] = fillChar
	filled := 1
	for filled < len {
		copy(data[filled:], data[:filled])
		filled *= 2
	}

	return &lineBuilder{data: data}
}

// WriteValue writes value to the buffer starting at column start. The value
// must fit within the columns of the buffer.
func (b *lineBuilder) WriteValue(start int, value rawValue) {
	if value.len() == 0 {
		return
	}

	// Fast path: nothing multibyte on either side, columns are bytes.
	if !b.hasMultiByteChar() && !value.hasMultiByteChar() {
		copy(b.data[start:], value.data)
		return
	}

	if !b.hasMultiByteChar() && value.hasMultiByteChar() {
		b.initializeIndices()
	}

	end := start + value.len() - 1

	byteStart := b.byteStartIndex(start)
	byteEnd := b.byteEndIndex(end)

	// Grow or shrink the byte span of the target columns so the encoded
	// value fits exactly.
	byteDiff := value.byteLen() - (byteEnd + 1 - byteStart)
	if byteDiff != 0 {
		b.adjustByteSpan(end, byteDiff)
		byteEnd = b.byteEndIndex(end)
	}

	copy(b.data[byteStart:byteEnd+1], value.data)

	if byteDiff != 0 || value.hasMultiByteChar() {
		b.correctIndices(start, value)
	}
}

func (b *lineBuilder) String() string {
	return string(b.data)
}

func (b *lineBuilder) initializeIndices() {
	b.codepointIndices = make([]int, len(b.data))
	for i := range b.codepointIndices {
		b.codepointIndices[i] = i
	}
}

func (b *lineBuilder) correctIndices(start int, value rawValue) {
	firstIndex := b.byteEndIndex(start-1) + 1

	if !value.hasMultiByteChar() {
		for i := 0; i < value.len(); i++ {
			b.codepointIndices[start+i] = firstIndex + i
		}
		return
	}

	for i, s := range value.codepointIndices {
		b.codepointIndices[start+i] = firstIndex + s
	}
}

func (b *lineBuilder) adjustByteSpan(end, diff int) {
	byteEnd := b.byteEndIndex(end)

	switch {
	case diff < 0:
		copy(b.data[byteEnd+diff:], b.data[byteEnd:])
		b.data = b.data[:len(b.data)+diff]
	case diff > 0:
		b.data = append(b.data, bytes.Repeat([]byte{padChar}, diff)...)
		copy(b.data[byteEnd+diff:], b.data[byteEnd:])
	}

	for i := end + 1; i < len(b.codepointIndices); i++ {
		b.codepointIndices[i] += diff
	}
}

func (b *lineBuilder) byteStartIndex(start int) int {
	if b.codepointIndices == nil {
		return start
	}
	return b.codepointIndices[start]
}

func (b *lineBuilder) byteEndIndex(end int) int {
	if b.codepointIndices == nil {
		return end
	}
	if end == len(b.codepointIndices)-1 {
		return len(b.data) - 1
	}
	return b.codepointIndices[end+1] - 1
}

func (b *lineBuilder) hasMultiByteChar() bool {
	return b.codepointIndices != nil
}

// rawValue is a line, or part of one, addressed by column.
type rawValue struct {
	data string

	// Only populated when codepoint indices are in use and data holds a
	// multibyte character. codepointIndices[n] is the byte offset of the
	// n-th codepoint in data.
	codepointIndices []int
}

var errInvalidCodepoint = errors.New("invalid UTF-8 codepoint")

func newRawValue(data string, useCodepointIndices bool) (rawValue, error) {
	value := rawValue{data: data}
	if !useCodepointIndices {
		return value, nil
	}

	bytesIdx := findFirstMultiByteChar(data)
	if bytesIdx == len(data) {
		return value, nil
	}

	codepointIndices := make([]int, bytesIdx, len(data))
	for i := 0; i < bytesIdx; i++ {
		codepointIndices[i] = i
	}
	for bytesIdx < len(data) {
		r, size := utf8.DecodeRuneInString(data[bytesIdx:])
		if r == utf8.RuneError && size <= 1 {
			return rawValue{}, errInvalidCodepoint
		}
		codepointIndices = append(codepointIndices, bytesIdx)
		bytesIdx += size
	}
	value.codepointIndices = codepointIndices
	return value, nil
}

func (v rawValue) len() int {
	if v.codepointIndices == nil {
		return len(v.data)
	}
	return len(v.codepointIndices)
}

func (v rawValue) byteLen() int {
	return len(v.data)
}

func (v rawValue) hasMultiByteChar() bool {
	return v.codepointIndices != nil
}

func (v rawValue) byteStartIndex(start int) int {
	switch {
	case v.codepointIndices == nil:
		return start
	case start >= len(v.codepointIndices):
		return len(v.data)
	default:
		return v.codepointIndices[start]
	}
}

// substr returns the text of columns [start, end).
func (v rawValue) substr(start, end int) string {
	if start >= end {
		return ""
	}
	return v.data[v.byteStartIndex(start):v.byteStartIndex(end)]
}

// findFirstMultiByteChar returns the index of the first byte of a multibyte
// character, or len(data) when there is none.
func findFirstMultiByteChar(data string) int {
	for i := 0; i < len(data); i++ {
		if data[i]&0x80 == 0x80 {
			return i
		}
	}
	return len(data)
}

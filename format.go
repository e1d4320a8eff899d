package fixcol

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Alignment controls how a column is trimmed when decoding and padded when
// encoding.
type Alignment string

const (
	// Left aligned values are padded on the right.
	Left Alignment = "left"
	// Right aligned values are padded on the left.
	Right Alignment = "right"
	// Full aligned values fill the whole column. Nothing is trimmed.
	Full Alignment = "full"
)

const padChar = ' '

func (a Alignment) Valid() bool {
	switch a {
	case Left, Right, Full:
		return true
	default:
		return false
	}
}

// trim removes the padding a column of this alignment carries.
func (a Alignment) trim(s string) string {
	switch a {
	case Left:
		return strings.TrimRightFunc(s, unicode.IsSpace)
	case Right:
		return strings.TrimLeftFunc(s, unicode.IsSpace)
	default:
		return s
	}
}

// pad fills text out to width characters. n is the length of text in the
// same unit as width.
func (a Alignment) pad(text string, n, width int) string {
	if n >= width {
		return text
	}
	fill := strings.Repeat(string(padChar), width-n)
	if a == Right {
		return fill + text
	}
	return text + fill
}

// textLen returns the number of columns s occupies.
func textLen(s string, useCodepointIndices bool) int {
	if useCodepointIndices {
		return utf8.RuneCountInString(s)
	}
	return len(s)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func hasSpace(s string) bool {
	return strings.IndexFunc(s, unicode.IsSpace) >= 0
}

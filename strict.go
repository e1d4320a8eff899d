package fixcol

import (
	"unicode"
	"unicode/utf8"
)

// checkColumn applies the strict rules that concern a single column read
// from a line: blank skip spans, padding on the wrong side of Left and Right
// columns and whitespace inside Full numeric columns.
func checkColumn(col column, f *fieldSpec) error {
	if !isBlank(col.skip) {
		return strictError(SkipNotBlank, col.skip+col.text)
	}

	// Nested records validate their own columns.
	if f.composite {
		return nil
	}
	if isBlank(col.text) {
		return nil
	}

	switch f.align {
	case Left:
		if r, _ := utf8.DecodeRuneInString(col.text); unicode.IsSpace(r) {
			return strictError(LeadingSpace, col.text)
		}
	case Right:
		if r, _ := utf8.DecodeLastRuneInString(col.text); unicode.IsSpace(r) {
			return strictError(TrailingSpace, col.text)
		}
	case Full:
		if f.numeric && hasSpace(col.text) {
			return strictError(NumericWhitespace, col.text)
		}
	}
	return nil
}

// checkUnread requires the columns after the last field of a strict record
// to be blank.
func checkUnread(line rawValue, cursor int) error {
	if rest := line.substr(cursor, line.len()); !isBlank(rest) {
		return strictError(UnreadColumns, rest)
	}
	return nil
}

// checkFull rejects Full column values that carry their own whitespace
// padding, which a reader could not tell apart from the value.
func checkFull(text string) error {
	if text == "" {
		return nil
	}
	first, _ := utf8.DecodeRuneInString(text)
	last, _ := utf8.DecodeLastRuneInString(text)
	if unicode.IsSpace(first) || unicode.IsSpace(last) {
		return strictError(FullWidth, text)
	}
	return nil
}

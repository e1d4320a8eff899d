package fixcol

// column is the span of a line assigned to one field.
type column struct {
	skip  string // the skipped columns preceding the field
	text  string // the field's own columns, shorter than width for a short last field
	start int    // column offset of text within the line
	width int
}

// sliceColumn cuts the columns of f out of line starting at cursor and
// returns the cursor for the next field.
//
// A field that runs past the end of the line fails with LineTooShort. The
// last field of a record may be short in lax mode as long as at least one of
// its own columns is present; a strict record requires it in full.
func sliceColumn(line rawValue, cursor int, f *fieldSpec, last, strict bool) (column, int, error) {
	avail := line.len() - cursor
	if avail < 0 {
		avail = 0
	}
	want := f.skip + f.width

	col := column{start: cursor + f.skip, width: f.width}
	switch {
	case avail >= want:
		col.skip = line.substr(cursor, cursor+f.skip)
		col.text = line.substr(col.start, col.start+f.width)
		return col, cursor + want, nil

	case last && avail > f.skip && !strict:
		col.skip = line.substr(cursor, cursor+f.skip)
		col.text = line.substr(col.start, line.len())
		return col, line.len(), nil

	case last && avail > f.skip:
		return col, 0, &Error{
			Kind:      LineTooShort,
			Violation: ShortField,
			Text:      line.substr(col.start, line.len()),
			Have:      avail,
			Want:      want,
		}

	default:
		return col, 0, &Error{
			Kind: LineTooShort,
			Text: line.substr(cursor, line.len()),
			Have: avail,
			Want: want,
		}
	}
}

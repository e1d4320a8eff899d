package fixcol

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Float is a float64 that fills its column: it is written with as many
// decimals as the width leaves room for.
type Float float64

func (f Float) MarshalFixedWidth(width int) ([]byte, error) {
	// l is the length of the integer part plus the decimal point.
	var l int
	switch {
	case f > 0:
		l = int(math.Log10(float64(f))) + 2
	case f < 0:
		l = int(math.Log10(math.Abs(float64(f)))) + 3
	default:
		l = 2
	}

	if l-1 > width {
		return nil, errors.New("formatted float with 0 precision longer than field width")
	}

	p := width - l
	if p < 0 {
		p = 0
	}
	return []byte(strconv.FormatFloat(float64(f), 'f', p, 64)), nil
}

func (f *Float) UnmarshalFixedWidth(data []byte) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return numError(err)
	}
	*f = Float(v)
	return nil
}

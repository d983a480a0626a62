package cplx

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/fractalview/pkg/errors"
)

const unsigned = `(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`

var (
	realOnly = regexp.MustCompile(`^[+-]?` + unsigned + `$`)
	imagOnly = regexp.MustCompile(`^([+-]?)(` + unsigned + `)?i$`)
	full     = regexp.MustCompile(`^([+-]?` + unsigned + `)([+-])(` + unsigned + `)?i$`)
)

// Parse reads a complex number in one of the forms "x", "yi", "x+yi" or
// "x-yi". Whitespace is ignored and a bare "i" stands for 1i.
func Parse(s string) (Number, error) {
	s = strings.Join(strings.Fields(s), "")
	switch {
	case s == "":
		return Origin, errors.New(errors.ErrCodeInvalidFormat, "empty complex number")
	case realOnly.MatchString(s):
		re, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Origin, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid complex number %q", s)
		}
		return Number{Re: re}, nil
	}

	if m := imagOnly.FindStringSubmatch(s); m != nil {
		im, err := parseImag(m[1], m[2])
		if err != nil {
			return Origin, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid complex number %q", s)
		}
		return Number{Im: im}, nil
	}

	if m := full.FindStringSubmatch(s); m != nil {
		re, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Origin, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid complex number %q", s)
		}
		im, err := parseImag(m[2], m[3])
		if err != nil {
			return Origin, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid complex number %q", s)
		}
		return Number{Re: re, Im: im}, nil
	}

	return Origin, errors.New(errors.ErrCodeInvalidFormat, "invalid complex number %q (want x, yi or x+yi)", s)
}

func parseImag(sign, digits string) (float64, error) {
	v := 1.0
	if digits != "" {
		var err error
		if v, err = strconv.ParseFloat(digits, 64); err != nil {
			return 0, err
		}
	}
	if sign == "-" {
		v = -v
	}
	return v, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(s string) Number {
	z, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return z
}

// String formats z as "re+imi" with the shortest representation that
// parses back to the same value.
func (z Number) String() string {
	return join(strconv.FormatFloat(z.Re, 'g', -1, 64), z.Im, strconv.FormatFloat(math.Abs(z.Im), 'g', -1, 64))
}

// Format formats z rounded to dp decimal places.
func (z Number) Format(dp int) string {
	im := z.Im
	if strconv.FormatFloat(math.Abs(im), 'f', dp, 64) == strconv.FormatFloat(0, 'f', dp, 64) {
		im = 0
	}
	return join(strconv.FormatFloat(z.Re, 'f', dp, 64), im, strconv.FormatFloat(math.Abs(im), 'f', dp, 64))
}

func join(re string, im float64, absIm string) string {
	sign := "+"
	if math.Signbit(im) {
		sign = "-"
	}
	return re + sign + absIm + "i"
}

// MarshalText implements encoding.TextMarshaler.
func (z Number) MarshalText() ([]byte, error) {
	if !z.IsFinite() {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "cannot encode non-finite complex number %v", z)
	}
	return []byte(z.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (z *Number) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*z = v
	return nil
}

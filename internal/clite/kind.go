package clite

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Kind is the value type of an option. The set is closed: every option is
// exactly one of these, fixed at registration.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "string"
	}
}

// Coerce converts v to the Go type carried by k: bool, int, float64 or
// string. It accepts command-line strings as well as values decoded from
// YAML or JSON (numbers, booleans). Integer strings are read in base 10
// and a fractional number is not an int.
func (k Kind) Coerce(v any) (any, error) {
	var (
		out any
		err error
	)
	switch k {
	case KindBool:
		out, err = cast.ToBoolE(v)
	case KindInt:
		out, err = toInt(v)
	case KindFloat:
		out, err = cast.ToFloat64E(v)
	default:
		out, err = cast.ToStringE(v)
	}
	if err != nil {
		return nil, fmt.Errorf("expected %s, got %v", k, v)
	}
	return out, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 0)
		return int(i), err
	case float64:
		return floatToInt(n)
	case float32:
		return floatToInt(float64(n))
	}
	return cast.ToIntE(v)
}

func floatToInt(f float64) (int, error) {
	if f != math.Trunc(f) || f >= math.MaxInt || f < math.MinInt {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	return int(f), nil
}

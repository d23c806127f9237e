package formula

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Reserved binding names. BuildBindings always defines them.
const (
	KeyStartPK    = "startPk"
	KeyEndPK      = "endPk"
	KeyRawLength  = "rawLength"
	KeySideFactor = "sideFactor"
	KeyLength     = "length"
	KeyPointCount = "pointCount"
)

// ReservedKeys returns the names BuildBindings always defines.
func ReservedKeys() []string {
	return []string{KeyStartPK, KeyEndPK, KeyRawLength, KeySideFactor, KeyLength, KeyPointCount}
}

// Side is the side of the alignment an interval covers.
type Side int8

const (
	SideLeft Side = iota
	SideRight
	SideBoth
)

// ParseSide parses a side name: left, right, or both, or their initials, in
// any case.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LEFT", "L":
		return SideLeft, nil
	case "RIGHT", "R":
		return SideRight, nil
	case "BOTH", "B":
		return SideBoth, nil
	default:
		return 0, errors.New("unknown side " + strconv.Quote(s))
	}
}

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "LEFT"
	case SideRight:
		return "RIGHT"
	case SideBoth:
		return "BOTH"
	default:
		return "Side(" + strconv.Itoa(int(s)) + ")"
	}
}

// Factor is the number of sides covered: 2 for SideBoth, otherwise 1.
func (s Side) Factor() float64 {
	if s == SideBoth {
		return 2
	}
	return 1
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(text []byte) error {
	v, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Geometry is the span of an interval along the alignment.
type Geometry struct {
	StartPK float64
	EndPK   float64
	Side    Side
}

// BuildBindings creates the bindings for evaluating a formula over an
// interval. The reserved names are derived from g:
//
//	startPk, endPk  the interval endpoints
//	rawLength       |endPk - startPk|
//	sideFactor      2 for both sides, otherwise 1
//	length          rawLength times sideFactor, with a zero rawLength counted as 1
//	pointCount      1
//
// Each entry of raw that Coerce accepts is then added, replacing a reserved
// name if it has the same one. Other entries are dropped.
func BuildBindings(g Geometry, raw map[string]any) Bindings {
	rawLength := math.Abs(g.EndPK - g.StartPK)
	basis := math.Max(rawLength, 0)
	if rawLength == 0 {
		// Point intervals measure one unit.
		basis = 1
	}
	factor := g.Side.Factor()
	b := make(Bindings, 6+len(raw))
	b[KeyStartPK] = g.StartPK
	b[KeyEndPK] = g.EndPK
	b[KeyRawLength] = rawLength
	b[KeySideFactor] = factor
	b[KeyLength] = basis * factor
	b[KeyPointCount] = 1
	for k, v := range raw {
		if x, ok := Coerce(v); ok {
			b[k] = x
		}
	}
	return b
}

// Coerce converts a raw input to a number. Go numbers, json.Number, and
// strings holding a number in strconv.ParseFloat syntax convert; surrounding
// space in strings is ignored. The result must be finite.
func Coerce(v any) (float64, bool) {
	var x float64
	switch v := v.(type) {
	case float64:
		x = v
	case float32:
		x = float64(v)
	case int:
		x = float64(v)
	case int8:
		x = float64(v)
	case int16:
		x = float64(v)
	case int32:
		x = float64(v)
	case int64:
		x = float64(v)
	case uint:
		x = float64(v)
	case uint8:
		x = float64(v)
	case uint16:
		x = float64(v)
	case uint32:
		x = float64(v)
	case uint64:
		x = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		x = f
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		x = f
	default:
		return 0, false
	}
	return x, finite(x)
}

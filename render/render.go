// Package render formats a runtime value as the display string returned to
// a batch driver's caller.
package render

import (
	"fmt"
	"math"
	"strconv"

	"github.com/cellforge/avs/env"
	"github.com/cellforge/avs/value"
)

// Display formats v for presentation. e is consulted for String content and
// for the verbatim name bound to a Pointer's symbol, if any.
func Display(v value.Value, e *env.Environment) string {
	switch value.TypeOf(v) {
	case value.TypeNumber:
		return formatNumber(v.Float64())
	case value.TypeBoolean:
		if v == value.TRUE {
			return "True"
		}
		return "False"
	case value.TypeNone:
		return "None"
	case value.TypeString:
		s, ok := e.StringContent(v.SymbolID())
		if !ok {
			s = ""
		}
		return strconv.Quote(s)
	case value.TypePointer:
		if name, ok := e.NameOf(v.SymbolID()); ok {
			return name
		}
		return fmt.Sprintf("0x%X", v.SymbolID())
	case value.TypeError:
		return value.ErrorMessage(v)
	default:
		return fmt.Sprintf("0x%016X", uint64(v))
	}
}

// formatNumber prints an integral value without a decimal point and any
// other finite value using Go's shortest round-tripping representation.
func formatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Package interp executes a postfix token sequence against an
// *env.Environment, producing exactly one 64-bit result value. It never
// panics: malformed stacks and type mismatches surface as tagged error
// values on the result, per the value package's error taxonomy.
package interp

import (
	"github.com/cellforge/avs/env"
	"github.com/cellforge/avs/lexer"
	"github.com/cellforge/avs/value"
)

// Eval interprets tokens (already in postfix order) and returns the single
// value remaining on the stack when it drains, or RuntimeErrInvalidType if
// the stack ends empty or with more than one value. e is mutated: string
// literals encountered along the way are allocated fresh symbols in it.
func Eval(tokens []lexer.Token, e *env.Environment) value.Value {
	stack := make([]value.Value, 0, len(tokens))

	for _, t := range tokens {
		switch t.Type {
		case lexer.TokLiteralNumber:
			stack = append(stack, value.FromFloat64(t.Num))
		case lexer.TokLiteralBoolean:
			stack = append(stack, t.Bool)
		case lexer.TokLiteralNone:
			stack = append(stack, value.NONE)
		case lexer.TokLiteralString:
			sym := e.DefineIdentifier()
			stack = append(stack, e.BindString(sym, t.Str))
		case lexer.TokIdentifier:
			stack = append(stack, resolveIdentifier(t.Symbol, e))
		case lexer.TokKeyword:
			stack = apply(t.Kw, stack, e)
		}
	}

	if len(stack) != 1 {
		return value.RuntimeErrInvalidType
	}
	return stack[len(stack)-1]
}

func resolveIdentifier(sym uint64, e *env.Environment) value.Value {
	_, v, ok := e.ResolveSymbol(sym)
	if !ok {
		return value.RuntimeErrUnkVal
	}
	return v
}

// apply pops the operands for keyword k off stack, applies the
// corresponding value-codec primitive, and pushes the result. The first
// pop is the right-hand (top-of-stack) operand; for binary operators the
// second pop is the left-hand operand, matching postfix emission order.
func apply(k lexer.Kind, stack []value.Value, e *env.Environment) []value.Value {
	pop := func() value.Value {
		if len(stack) == 0 {
			return value.RuntimeErrInvalidType
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	if k == lexer.KwNot {
		a := pop()
		return append(stack, value.Not(a))
	}

	right := pop()
	left := pop()

	var result value.Value
	switch k {
	case lexer.KwOr:
		result = value.Or(left, right)
	case lexer.KwAnd:
		result = value.And(left, right)
	case lexer.KwIs:
		result = isEqual(left, right, e)
	case lexer.KwLt:
		result = value.Lt(left, right)
	case lexer.KwLte:
		result = value.Lte(left, right)
	case lexer.KwGt:
		result = value.Gt(left, right)
	case lexer.KwGte:
		result = value.Gte(left, right)
	case lexer.KwPlus:
		result = add(left, right, e)
	case lexer.KwMinus:
		result = value.Sub(left, right)
	case lexer.KwMul:
		result = value.Mul(left, right)
	case lexer.KwDiv:
		result = value.Div(left, right)
	default:
		result = value.RuntimeErrInvalidType
	}
	return append(stack, result)
}

// add implements + including the string-concatenation case: when both
// operands are String-tagged, their text is resolved through e and
// concatenated into a freshly allocated string symbol. A String paired
// with anything else is RuntimeErrExpectedStr; two non-strings fall
// through to the pure numeric primitive.
func add(left, right value.Value, e *env.Environment) value.Value {
	leftIsStr := value.TypeOf(left) == value.TypeString
	rightIsStr := value.TypeOf(right) == value.TypeString
	if !leftIsStr && !rightIsStr {
		return value.Add(left, right)
	}
	if !leftIsStr || !rightIsStr {
		return value.RuntimeErrExpectedStr
	}
	ls, ok := e.StringContent(left.SymbolID())
	if !ok {
		return value.RuntimeErrExpectedStr
	}
	rs, ok := e.StringContent(right.SymbolID())
	if !ok {
		return value.RuntimeErrExpectedStr
	}
	sym := e.DefineIdentifier()
	return e.BindString(sym, ls+rs)
}

// isEqual implements the "is" keyword: two Strings compare by their
// resolved text; everything else compares by the value package's bit/float
// equality rule.
func isEqual(left, right value.Value, e *env.Environment) value.Value {
	if value.TypeOf(left) == value.TypeString && value.TypeOf(right) == value.TypeString {
		ls, lok := e.StringContent(left.SymbolID())
		rs, rok := e.StringContent(right.SymbolID())
		return value.BoolValue(lok && rok && ls == rs)
	}
	return value.BoolValue(value.Equal(left, right))
}

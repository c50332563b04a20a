// Package parser converts an infix token sequence into postfix (reverse
// Polish) order using the shunting-yard algorithm, with a fixed, left
// associative operator precedence table borrowed from the lexer package.
package parser

import (
	"github.com/cellforge/avs/lexer"
	"github.com/cellforge/avs/value"
)

// Parse runs the shunting-yard algorithm over tokens, returning the postfix
// sequence and the set of identifier symbols referenced anywhere in it.
func Parse(tokens []lexer.Token) ([]lexer.Token, map[uint64]struct{}, error) {
	out := make([]lexer.Token, 0, len(tokens))
	var ops []lexer.Token
	dependsOn := make(map[uint64]struct{})

	pop := func() lexer.Token {
		t := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		return t
	}

	for _, t := range tokens {
		switch t.Type {
		case lexer.TokLiteralNumber, lexer.TokLiteralBoolean, lexer.TokLiteralString, lexer.TokLiteralNone:
			out = append(out, t)
			continue
		case lexer.TokIdentifier:
			out = append(out, t)
			dependsOn[t.Symbol] = struct{}{}
			continue
		}

		// t.Type == TokKeyword
		switch t.Kw {
		case lexer.KwEquals:
			return nil, nil, value.NewCodeError(value.ParseErrUnexpectedToken)
		case lexer.KwLParen:
			ops = append(ops, t)
		case lexer.KwRParen:
			matched := false
			for len(ops) > 0 {
				top := pop()
				if top.Kw == lexer.KwLParen {
					matched = true
					break
				}
				out = append(out, top)
			}
			if !matched {
				return nil, nil, value.NewCodeError(value.ParseErrUnmatchedParens)
			}
		default:
			prec := lexer.Precedence[t.Kw]
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if top.Kw == lexer.KwLParen {
					break
				}
				if lexer.Precedence[top.Kw] < prec {
					break
				}
				out = append(out, pop())
			}
			ops = append(ops, t)
		}
	}

	for len(ops) > 0 {
		top := pop()
		if top.Kw == lexer.KwLParen {
			return nil, nil, value.NewCodeError(value.ParseErrUnmatchedParens)
		}
		out = append(out, top)
	}

	return out, dependsOn, nil
}

// Package engine is the batch driver: it takes an EvalRequest, runs every
// cell through the lexer, parser, dependency graph, and interpreter, and
// produces an EvalResponse. Eval is a pure function of its input — it
// builds a fresh *env.Environment per call, so nothing carries over between
// batches (cmd/avsctl's watch mode calls Eval afresh for every revision of
// its file).
package engine

import (
	"github.com/cellforge/avs/env"
	"github.com/cellforge/avs/graph"
	"github.com/cellforge/avs/interp"
	"github.com/cellforge/avs/lexer"
	"github.com/cellforge/avs/parser"
	"github.com/cellforge/avs/render"
	"github.com/cellforge/avs/value"
)

// AvHTTPRequest mirrors the optional HTTP envelope an EvalRequest may carry
// when it arrives via the (out-of-scope) HTTP frontend. The batch driver
// never inspects it; it exists only so the JSON shape round-trips.
type AvHTTPRequest struct {
	Path   string `json:"path"`
	Method string `json:"method"`
	Query  string `json:"query,omitempty"`
}

// CellRequest is one input cell.
type CellRequest struct {
	ID    uint64 `json:"id"`
	Input string `json:"input"`
	Name  string `json:"name,omitempty"`
}

// EvalRequest is a batch of cells to evaluate.
type EvalRequest struct {
	Body  []CellRequest  `json:"body"`
	Input *AvHTTPRequest `json:"input,omitempty"`
}

// CellResponse carries exactly one of Output/Error non-empty.
type CellResponse struct {
	ID     uint64 `json:"id"`
	Output string `json:"output"`
	Error  string `json:"error"`
}

// EvalResponse holds one CellResponse per input cell, ordered by the
// topological evaluation order (not necessarily the request's input
// order).
type EvalResponse struct {
	Results []CellResponse `json:"results"`
}

// Eval runs the full pipeline described in the package doc and returns the
// response. It never returns an error itself: failures are cell-scoped and
// show up as that cell's CellResponse.Error.
func Eval(req EvalRequest) EvalResponse {
	e := env.New()
	exprs := make([]*graph.Expression, 0, len(req.Body))

	// Step 1: pre-pass. Assign a symbol per cell, bind names, register
	// cell-id -> symbol mappings before any lexing happens so that every
	// @N reference resolves consistently regardless of lex order.
	for _, c := range req.Body {
		sym := e.DefineIdentifier()
		e.SetCellSymbol(c.ID, sym)
		expr := &graph.Expression{
			ID:        c.ID,
			Symbol:    sym,
			Name:      c.Name,
			Input:     c.Input,
			DependsOn: map[uint64]struct{}{},
		}
		if c.Name != "" {
			if !e.BindName(sym, c.Name) {
				expr.SetResult(value.ParseErrUsedName)
			}
		}
		exprs = append(exprs, expr)
	}

	// Step 2: lex + parse every cell that isn't already in error.
	for _, expr := range exprs {
		if expr.HasResult {
			continue
		}
		tokens, err := lexer.Lex(expr.Input, e)
		if err != nil {
			expr.SetResult(codeOf(err))
			continue
		}
		postfix, dependsOn, err := parser.Parse(tokens)
		if err != nil {
			expr.SetResult(codeOf(err))
			continue
		}
		expr.Parsed = postfix
		expr.DependsOn = dependsOn
	}

	// Step 3: reverse-link pass.
	graph.LinkUsedBy(exprs)

	// Step 4: topological order (also marks cycle members).
	order := graph.Order(exprs)

	// Step 5: interpret in order, skipping cells that already have a
	// stored error.
	for _, expr := range order {
		if expr.HasResult {
			continue
		}
		result := interp.Eval(expr.Parsed, e)
		expr.SetResult(result)
		e.BindValue(expr.Symbol, result)
	}

	// Step 6: render in evaluation order.
	resp := EvalResponse{Results: make([]CellResponse, 0, len(order))}
	for _, expr := range order {
		resp.Results = append(resp.Results, toCellResponse(expr, e))
	}
	return resp
}

func codeOf(err error) value.Value {
	if ce, ok := err.(*value.CodeError); ok {
		return ce.Code
	}
	return value.RuntimeErrInvalidType
}

func toCellResponse(expr *graph.Expression, e *env.Environment) CellResponse {
	if value.IsError(expr.Result) {
		return CellResponse{ID: expr.ID, Error: render.Display(expr.Result, e)}
	}
	return CellResponse{ID: expr.ID, Output: render.Display(expr.Result, e)}
}

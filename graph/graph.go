// Package graph holds the per-cell Expression record and the topological
// ordering pass that schedules cells for interpretation so that every
// dependency is evaluated before its dependents.
package graph

import (
	"github.com/cellforge/avs/lexer"
	"github.com/cellforge/avs/value"
)

// Expression is one cell's lex/parse/dependency/result record.
type Expression struct {
	ID               uint64
	Symbol           uint64
	Name             string
	Input            string
	Parsed           []lexer.Token
	DependsOn        map[uint64]struct{}
	UsedBy           []uint64
	UnmetDependCount int
	Result           value.Value
	HasResult        bool
}

// SetResult records the expression's first (and only) result. Callers must
// not call this more than once per expression.
func (e *Expression) SetResult(v value.Value) {
	e.Result = v
	e.HasResult = true
}

// Order runs Kahn's algorithm over exprs, which must already have UsedBy
// populated by a reverse-link pass. Only dependencies on symbols owned by an
// expression in exprs are counted. Nodes with no such dependencies start in
// the ready queue in their original slice order; as each dependent's count
// drops to zero it joins the back of the queue, so nodes that become ready
// in the same "wave" keep their original relative order. Any expression
// still pending when the queue drains participates in a cycle; each is
// marked with RuntimeErrCircularDep and appended after the acyclic prefix,
// in original order.
func Order(exprs []*Expression) []*Expression {
	pending := make(map[uint64]*Expression, len(exprs))
	queue := make([]*Expression, 0, len(exprs))

	inBatch := make(map[uint64]struct{}, len(exprs))
	for _, e := range exprs {
		inBatch[e.Symbol] = struct{}{}
	}
	for _, e := range exprs {
		unmet := 0
		for dep := range e.DependsOn {
			if _, ok := inBatch[dep]; ok {
				unmet++
			}
		}
		if unmet == 0 {
			queue = append(queue, e)
			continue
		}
		e.UnmetDependCount = unmet
		pending[e.Symbol] = e
	}

	order := make([]*Expression, 0, len(exprs))
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		order = append(order, e)
		for _, usedBySym := range e.UsedBy {
			dep, ok := pending[usedBySym]
			if !ok {
				continue
			}
			dep.UnmetDependCount--
			if dep.UnmetDependCount == 0 {
				delete(pending, usedBySym)
				queue = append(queue, dep)
			}
		}
	}

	if len(pending) > 0 {
		for _, e := range exprs {
			if _, ok := pending[e.Symbol]; ok {
				e.SetResult(value.RuntimeErrCircularDep)
				order = append(order, e)
			}
		}
	}

	return order
}

// LinkUsedBy populates UsedBy on every expression that owns a symbol some
// other expression depends on. References to symbols outside this batch
// (unknown cells or names) are left to resolve — or fail to resolve — at
// interpret time via the environment.
func LinkUsedBy(exprs []*Expression) {
	bySymbol := make(map[uint64]*Expression, len(exprs))
	for _, e := range exprs {
		bySymbol[e.Symbol] = e
	}
	for _, e := range exprs {
		for dep := range e.DependsOn {
			if owner, ok := bySymbol[dep]; ok {
				owner.UsedBy = append(owner.UsedBy, e.Symbol)
			}
		}
	}
}

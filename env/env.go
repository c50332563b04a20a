// Package env implements the per-batch symbol table: allocation of symbol
// identifiers, name-to-symbol bindings, symbol-to-value storage, and
// symbol-chain resolution with a bounded hop count. One Environment backs a
// single EvalRequest; nothing here is safe to share across batches.
package env

import (
	"strings"

	"github.com/cellforge/avs/value"
)

// AppSymbolStart is the first identifier available for general allocation.
// The range below it is reserved for True/False/None, matching the design
// note that built-ins live in a fixed low range.
const AppSymbolStart = 64

// maxResolveHops bounds symbol-chain resolution so a cyclic binding can
// never spin forever.
const maxResolveHops = 1000

const (
	symTrue uint64 = iota
	symFalse
	symNone
)

// Environment is the symbol table and value store for one batch.
type Environment struct {
	names       map[string]uint64
	symbolNames map[uint64]string
	atoms       map[uint64]value.Value
	strings     map[uint64]string
	cellSymbols map[uint64]uint64
	nextID      uint64
}

// New returns an Environment with the built-in names pre-registered.
func New() *Environment {
	e := &Environment{
		names:       make(map[string]uint64),
		symbolNames: make(map[uint64]string),
		atoms:       make(map[uint64]value.Value),
		strings:     make(map[uint64]string),
		cellSymbols: make(map[uint64]uint64),
		nextID:      AppSymbolStart,
	}
	e.bindBuiltin(symTrue, "True", value.TRUE)
	e.bindBuiltin(symFalse, "False", value.FALSE)
	e.bindBuiltin(symNone, "None", value.NONE)
	return e
}

func (e *Environment) bindBuiltin(sym uint64, name string, v value.Value) {
	e.names[Normalize(name)] = sym
	e.symbolNames[sym] = name
	e.atoms[sym] = v
}

// Normalize trims whitespace and upper-cases a name for case-insensitive
// lookup, as required of every name comparison in this package.
func Normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// DefineIdentifier allocates and returns a fresh symbol id.
func (e *Environment) DefineIdentifier() uint64 {
	id := e.nextID
	e.nextID++
	return id
}

// BindName associates name with sym. It fails (returning false) if the
// normalized name already resolves to a different symbol; binding the same
// symbol under the same name twice is a no-op success.
func (e *Environment) BindName(sym uint64, name string) bool {
	key := Normalize(name)
	if existing, ok := e.names[key]; ok && existing != sym {
		return false
	}
	e.names[key] = sym
	e.symbolNames[sym] = name
	return true
}

// BindValue stores v as the atom bound to sym, overwriting any prior value.
func (e *Environment) BindValue(sym uint64, v value.Value) {
	e.atoms[sym] = v
}

// BindString stores s as the string content owned by sym and returns the
// String-tagged Value referencing it.
func (e *Environment) BindString(sym uint64, s string) value.Value {
	e.strings[sym] = s
	v := value.EncodeStringSymbol(sym)
	e.atoms[sym] = v
	return v
}

// LookupName resolves a name to its symbol, if bound.
func (e *Environment) LookupName(name string) (uint64, bool) {
	sym, ok := e.names[Normalize(name)]
	return sym, ok
}

// NameOf returns the verbatim (non-normalized) name last bound to sym.
func (e *Environment) NameOf(sym uint64) (string, bool) {
	n, ok := e.symbolNames[sym]
	return n, ok
}

// GetOrCreateSymbol looks up name, allocating and binding a fresh symbol if
// it has never been seen in this environment. Used by the lexer when it
// encounters an identifier that isn't a reserved keyword.
func (e *Environment) GetOrCreateSymbol(name string) uint64 {
	if sym, ok := e.LookupName(name); ok {
		return sym
	}
	sym := e.DefineIdentifier()
	e.BindName(sym, name)
	return sym
}

// Lookup returns the atom directly bound to sym, without following chains.
func (e *Environment) Lookup(sym uint64) (value.Value, bool) {
	v, ok := e.atoms[sym]
	return v, ok
}

// StringContent returns the text owned by sym, if any was ever bound there.
func (e *Environment) StringContent(sym uint64) (string, bool) {
	s, ok := e.strings[sym]
	return s, ok
}

// SetCellSymbol records which symbol represents the cell identified by id.
// The batch driver calls this during its pre-pass, before any lexing
// happens, so that every @N reference in any cell's source resolves to the
// same symbol regardless of lexing order.
func (e *Environment) SetCellSymbol(id, sym uint64) {
	e.cellSymbols[id] = sym
}

// CellSymbol returns the symbol for cell id, allocating (and remembering) a
// fresh, never-to-be-bound symbol if id does not name any cell in this
// batch — such a reference will resolve to RuntimeErrUnkVal at interpret
// time, exactly as an unknown name would.
func (e *Environment) CellSymbol(id uint64) uint64 {
	if sym, ok := e.cellSymbols[id]; ok {
		return sym
	}
	sym := e.DefineIdentifier()
	e.cellSymbols[id] = sym
	return sym
}

// ResolveSymbol follows Pointer-tagged chains starting at id, up to
// maxResolveHops. It returns the terminal symbol, its bound value, and
// whether resolution succeeded. Resolution fails on a cycle (revisiting
// the starting symbol or looping on itself), on a missing non-built-in
// entry, or on hop-limit exhaustion. An unbound built-in symbol (no atom
// recorded, id below AppSymbolStart) resolves to a Pointer value of
// itself, matching the "push the symbol itself" rule for unbound
// identifiers that are nonetheless known to the environment.
func (e *Environment) ResolveSymbol(id uint64) (sym uint64, v value.Value, ok bool) {
	current := id
	for hops := 0; hops < maxResolveHops; hops++ {
		atom, found := e.atoms[current]
		if !found {
			if current < AppSymbolStart {
				return current, value.EncodeSymbol(current), true
			}
			return 0, 0, false
		}
		if value.TypeOf(atom) != value.TypePointer {
			return current, atom, true
		}
		next := atom.SymbolID()
		if next == id || next == current {
			return 0, 0, false
		}
		current = next
	}
	return 0, 0, false
}

package semantic

import "sl2c/internal/engine/ast"

// Category is what an identifier denotes.
type Category int

const (
	CatSignal Category = iota
	CatProbSignal
	CatParam
	CatProperty
)

func (c Category) String() string {
	switch c {
	case CatSignal:
		return "signal"
	case CatProbSignal:
		return "probabilistic signal"
	case CatParam:
		return "parameter"
	case CatProperty:
		return "property"
	}
	return "unknown"
}

// IsSignal reports whether c is a signal of either kind.
func (c Category) IsSignal() bool {
	return c == CatSignal || c == CatProbSignal
}

type Symbol struct {
	Name     string
	Category Category
	Pos      ast.Pos
	// Order is the declaration ordinal across all categories.
	Order int
}

// SymbolTable maps each identifier to exactly one category. The first
// declaration of a name wins.
type SymbolTable struct {
	byName map[string]*Symbol
	order  []*Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: make(map[string]*Symbol)}
}

// Declare adds name. When the name already exists the existing symbol is
// returned with ok=false and the table is unchanged.
func (t *SymbolTable) Declare(name string, cat Category, pos ast.Pos) (*Symbol, bool) {
	if existing, found := t.byName[name]; found {
		return existing, false
	}
	sym := &Symbol{Name: name, Category: cat, Pos: pos, Order: len(t.order)}
	t.byName[name] = sym
	t.order = append(t.order, sym)
	return sym, true
}

func (t *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, ok := t.byName[name]
	return sym, ok
}

// Is reports whether name is declared with category cat.
func (t *SymbolTable) Is(name string, cat Category) bool {
	sym, ok := t.byName[name]
	return ok && sym.Category == cat
}

// Symbols returns every symbol in declaration order.
func (t *SymbolTable) Symbols() []*Symbol {
	return append([]*Symbol(nil), t.order...)
}

// Names returns the names of one category in declaration order.
func (t *SymbolTable) Names(cat Category) []string {
	var out []string
	for _, sym := range t.order {
		if sym.Category == cat {
			out = append(out, sym.Name)
		}
	}
	return out
}

func (t *SymbolTable) Len() int {
	return len(t.order)
}

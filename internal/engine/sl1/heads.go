package sl1

// Head is the operator token of a compound node.
type Head string

const (
	HeadAnd     Head = "and"
	HeadOr      Head = "or"
	HeadNot     Head = "not"
	HeadImplies Head = "->"

	HeadLess      Head = "<"
	HeadLessEq    Head = "<="
	HeadGreater   Head = ">"
	HeadGreaterEq Head = ">="
	HeadNotEq     Head = "!="

	HeadAdd Head = "+"
	HeadSub Head = "-"
	HeadMul Head = "*"
	HeadDiv Head = "/"

	HeadFuture Head = "F"
	HeadGlobal Head = "G"
	HeadUntil  Head = "StlUntil"
	HeadOn     Head = "On"

	HeadMin Head = "Min"
	HeadMax Head = "Max"
	HeadInt Head = "Int"
	HeadDer Head = "Der"

	HeadProb Head = "Pr"
)

// Heads is the complete head alphabet.
var Heads = []Head{
	HeadAnd, HeadOr, HeadNot, HeadImplies,
	HeadLess, HeadLessEq, HeadGreater, HeadGreaterEq, HeadNotEq,
	HeadAdd, HeadSub, HeadMul, HeadDiv,
	HeadFuture, HeadGlobal, HeadUntil, HeadOn,
	HeadMin, HeadMax, HeadInt, HeadDer,
	HeadProb,
}

// Valid reports whether h belongs to the head alphabet.
func (h Head) Valid() bool {
	for _, known := range Heads {
		if h == known {
			return true
		}
	}
	return false
}

// Temporal reports heads that take an interval.
func (h Head) Temporal() bool {
	switch h {
	case HeadFuture, HeadGlobal, HeadUntil, HeadOn:
		return true
	}
	return false
}

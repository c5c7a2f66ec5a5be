package ast

type ArithOp string

const (
	Add ArithOp = "+"
	Sub ArithOp = "-"
	Mul ArithOp = "*"
	Div ArithOp = "/"
)

type CompareOp string

const (
	Less      CompareOp = "<"
	LessEq    CompareOp = "<="
	Greater   CompareOp = ">"
	GreaterEq CompareOp = ">="
	NotEq     CompareOp = "<>"
)

type BoolOp string

const (
	And     BoolOp = "and"
	Or      BoolOp = "or"
	Implies BoolOp = "->"
)

type AggKind string

const (
	Min AggKind = "Min"
	Max AggKind = "Max"
	Int AggKind = "Int"
	Der AggKind = "Der"
)

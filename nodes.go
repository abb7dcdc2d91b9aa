package calculator

import (
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression. Each node
// exclusively owns its children.
type node struct {
	kind nodeKind

	// name is the literal text of a number, or the name of a constant or
	// function.
	name string
	num  float64
	fn   Func

	left  *node
	right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum   // num is the parsed literal
	nodeConst // name is a key of constants
	nodeCall  // name is Func to call, left is the argument

	nodeNeg     // evaluate left, then negate
	nodeNop     // evaluate left
	nodePercent // evaluate left, divide by 100
	nodeFact    // evaluate left, then factorial
	nodeAdd     // evaluate left, add right
	nodeSub     // evaluate left, sub right
	nodeMul     // evaluate left, mul right
	nodeDiv     // evaluate left, div by right
	nodePow     // evaluate left, exp by right
)

var nodeNames = [...]string{
	nodeNone:    "None",
	nodeNum:     "Num",
	nodeConst:   "Const",
	nodeCall:    "Call",
	nodeNeg:     "Neg",
	nodeNop:     "Nop",
	nodePercent: "Percent",
	nodeFact:    "Fact",
	nodeAdd:     "Add",
	nodeSub:     "Sub",
	nodeMul:     "Mul",
	nodeDiv:     "Div",
	nodePow:     "Pow",
}

func (k nodeKind) String() string {
	if k < 0 || int(k) >= len(nodeNames) {
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return nodeNames[k]
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b, false)
	return b.String()
}

func (n *node) fmt(b *strings.Builder, square bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	switch n.kind {
	case nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteByte('$')
		if n.left != nil {
			n.left.fmt(b, square)
		}
		b.WriteByte('#')
		if n.right != nil {
			n.right.fmt(b, square)
		}
		b.WriteByte('$')
	case nodeNum, nodeConst:
		b.WriteString(n.name)
	case nodeCall:
		b.WriteString(n.name)
		n.left.fmt(b, !square)
	case nodeNeg:
		b.WriteByte('-')
		n.left.fmt(b, !square)
	case nodeNop:
		b.WriteByte('+')
		n.left.fmt(b, !square)
	case nodePercent:
		n.left.fmt(b, !square)
		b.WriteByte('%')
	case nodeFact:
		n.left.fmt(b, !square)
		b.WriteByte('!')
	case nodeAdd:
		n.left.fmt(b, !square)
		b.WriteString(" + ")
		n.right.fmt(b, !square)
	case nodeSub:
		n.left.fmt(b, !square)
		b.WriteString(" - ")
		n.right.fmt(b, !square)
	case nodeMul:
		n.left.fmt(b, !square)
		b.WriteString(" * ")
		n.right.fmt(b, !square)
	case nodeDiv:
		n.left.fmt(b, !square)
		b.WriteString(" / ")
		n.right.fmt(b, !square)
	case nodePow:
		n.left.fmt(b, !square)
		b.WriteString(" ^ ")
		n.right.fmt(b, !square)
	default:
		panic("calculator: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

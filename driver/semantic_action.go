package driver

import (
	"fmt"
	"io"

	"github.com/shoyo-k/grackle/grammar"
)

// TreeNode is a node a TreeBuilder produces. The driver never inspects it; it
// only threads nodes from shifts and reductions into their parents.
type TreeNode interface{}

// TreeBuilder constructs the parser's output tree. The same parsing table
// can produce different tree representations by swapping the builder.
type TreeBuilder[T comparable] interface {
	// TerminalNode runs when the parser shifts a token.
	TerminalNode(terminal grammar.Element[T], tok *Token[T]) TreeNode

	// NonTerminalNode runs when the parser reduces a production. children
	// holds the kept nodes of the production's RHS in order.
	NonTerminalNode(prod *grammar.Production[T], children []TreeNode) TreeNode
}

// Node is the default concrete-syntax-tree node.
type Node struct {
	KindName string
	Text     string
	Offset   int64
	Children []*Node
}

var _ TreeBuilder[int] = &CSTBuilder[int]{}

// CSTBuilder is the default TreeBuilder. It materializes one Node per kept
// grammar element.
type CSTBuilder[T comparable] struct{}

func NewCSTBuilder[T comparable]() *CSTBuilder[T] {
	return &CSTBuilder[T]{}
}

func (b *CSTBuilder[T]) TerminalNode(terminal grammar.Element[T], tok *Token[T]) TreeNode {
	return &Node{
		KindName: fmt.Sprintf("%v", terminal.Value()),
		Text:     tok.Text,
		Offset:   tok.Offset,
	}
}

func (b *CSTBuilder[T]) NonTerminalNode(prod *grammar.Production[T], children []TreeNode) TreeNode {
	cNodes := make([]*Node, len(children))
	for i, c := range children {
		cNodes[i] = c.(*Node)
	}
	var offset int64
	if len(cNodes) > 0 {
		offset = cNodes[0].Offset
	}
	return &Node{
		KindName: prod.LHS().Name(),
		Offset:   offset,
		Children: cNodes,
	}
}

// PrintTree writes a ruled-line rendering of a tree to w.
func PrintTree(w io.Writer, node *Node) {
	printTree(w, node, "", "")
}

func printTree(w io.Writer, node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	if node.Text != "" {
		fmt.Fprintf(w, "%v%v %#v\n", ruledLine, node.KindName, node.Text)
	} else {
		fmt.Fprintf(w, "%v%v\n", ruledLine, node.KindName)
	}

	num := len(node.Children)
	for i, child := range node.Children {
		var line string
		if num > 1 && i < num-1 {
			line = "├─ "
		} else {
			line = "└─ "
		}

		var prefix string
		if i >= num-1 {
			prefix = "   "
		} else {
			prefix = "│  "
		}

		printTree(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
	}
}

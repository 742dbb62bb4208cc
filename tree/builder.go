package tree

import (
	"fmt"

	"github.com/shoyo-k/grackle/driver"
	"github.com/shoyo-k/grackle/grammar"
)

// Builder assembles a tree bottom-up. Records are appended to the arena and
// never modified, so node handles stay valid while the builder grows.
type Builder struct {
	t *Tree
}

func NewBuilder() *Builder {
	return &Builder{
		t: &Tree{},
	}
}

func (b *Builder) Terminal(kind, text string) Node {
	b.t.nodes = append(b.t.nodes, nodeRecord{
		kind:     kind,
		text:     text,
		terminal: true,
	})
	return Node{
		t:  b.t,
		id: len(b.t.nodes) - 1,
	}
}

func (b *Builder) NonTerminal(kind string, children ...Node) Node {
	ids := make([]int, len(children))
	for i, c := range children {
		if c.t == b.t {
			ids[i] = c.id
		} else {
			ids[i] = importSubtree(b.t, c)
		}
	}
	b.t.nodes = append(b.t.nodes, nodeRecord{
		kind:     kind,
		children: ids,
	})
	return Node{
		t:  b.t,
		id: len(b.t.nodes) - 1,
	}
}

// Build roots the tree at root and returns it. The builder must not be used
// afterwards.
func (b *Builder) Build(root Node) *Tree {
	b.t.root = root.id
	return b.t
}

var _ driver.TreeBuilder[int] = &ParserBuilder[int]{}

// ParserBuilder adapts Builder to the parser's tree-builder interface, so a
// parse materializes a persistent tree directly.
type ParserBuilder[T comparable] struct {
	b *Builder
}

func NewParserBuilder[T comparable]() *ParserBuilder[T] {
	return &ParserBuilder[T]{
		b: NewBuilder(),
	}
}

func (pb *ParserBuilder[T]) TerminalNode(terminal grammar.Element[T], tok *driver.Token[T]) driver.TreeNode {
	return pb.b.Terminal(fmt.Sprintf("%v", terminal.Value()), tok.Text)
}

func (pb *ParserBuilder[T]) NonTerminalNode(prod *grammar.Production[T], children []driver.TreeNode) driver.TreeNode {
	nodes := make([]Node, len(children))
	for i, c := range children {
		nodes[i] = c.(Node)
	}
	return pb.b.NonTerminal(prod.LHS().Name(), nodes...)
}

// Tree roots the built tree at the node the parser returned.
func (pb *ParserBuilder[T]) Tree(root driver.TreeNode) *Tree {
	return pb.b.Build(root.(Node))
}

// Package boolexpr implements a small Boolean AST — AND/OR nodes over
// word literals — evaluated against a caller-supplied word resolver.
package boolexpr

import "github.com/pashandor789/search/docset"

// Context supplies the single hook the AST needs: resolving a literal
// word to its posting set. Represented as an explicit one-method
// interface rather than a closure captured by reflection.
type Context interface {
	Resolve(word string) docset.Set
}

// ContextFunc adapts a plain function to Context.
type ContextFunc func(word string) docset.Set

// Resolve implements Context.
func (f ContextFunc) Resolve(word string) docset.Set { return f(word) }

// Node is a tagged-variant AST node: a Literal, an And, or an Or. The
// tree is shallow (two internal kinds plus a literal) and has no cycles,
// so a tagged variant is used instead of a virtual-dispatch hierarchy.
type Node interface {
	Evaluate(ctx Context) docset.Set
}

// Literal resolves a single word against the context.
type Literal struct {
	Word string
}

// Evaluate implements Node.
func (l *Literal) Evaluate(ctx Context) docset.Set {
	return ctx.Resolve(l.Word)
}

// And folds its children with AND, identity = the universe (every id in
// [0, docset.MaxDocCount)) — so an empty AND is the universe. nil
// children (used as a sentinel by the pattern index) are skipped.
type And struct {
	Children []Node
}

// Evaluate implements Node.
func (n *And) Evaluate(ctx Context) docset.Set {
	result := docset.New()
	result.SetAll()
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		result = result.And(c.Evaluate(ctx))
	}
	return result
}

// Or folds its children with OR, identity = the empty set. nil children
// are skipped.
type Or struct {
	Children []Node
}

// Evaluate implements Node.
func (n *Or) Evaluate(ctx Context) docset.Set {
	result := docset.New()
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		result = result.Or(c.Evaluate(ctx))
	}
	return result
}

// Lit is shorthand for &Literal{Word: word}.
func Lit(word string) Node {
	return &Literal{Word: word}
}

// NewAnd builds an And node. Plain strings are wrapped in Literal;
// already-built nodes (including nil, used as a sentinel) pass through.
func NewAnd(args ...any) Node {
	return &And{Children: toNodes(args)}
}

// NewOr builds an Or node, with the same argument handling as NewAnd.
func NewOr(args ...any) Node {
	return &Or{Children: toNodes(args)}
}

func toNodes(args []any) []Node {
	nodes := make([]Node, 0, len(args))
	for _, a := range args {
		switch v := a.(type) {
		case nil:
			nodes = append(nodes, nil)
		case Node:
			nodes = append(nodes, v)
		case string:
			nodes = append(nodes, Lit(v))
		}
	}
	return nodes
}

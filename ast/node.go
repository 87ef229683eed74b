// Package ast defines the NZSL abstract syntax tree and the passes that
// operate on it: sanitization (semantic resolution and canonicalization),
// constant propagation, dependency analysis with dead-code elimination, and
// binary serialization of sanitized modules.
//
// The tree is a closed set of node variants split between expressions and
// statements. Passes are built on the Cloner, which deep-copies a tree by
// default; a pass overrides the clone hooks of the variants it rewrites and
// inherits bit-for-bit copies (cached types and source locations included)
// for everything else.
package ast

import "github.com/gogpu/nzsl/lang"

// Node is implemented by every AST node.
type Node interface {
	// NodeType returns the variant tag of the node.
	NodeType() NodeType
	// Loc returns the node's source location.
	Loc() lang.SourceLocation
}

// NodeBase carries the fields common to all nodes.
type NodeBase struct {
	SourceLocation lang.SourceLocation
}

// Loc returns the node's source location.
func (n *NodeBase) Loc() lang.SourceLocation { return n.SourceLocation }

func (n *NodeBase) setLoc(loc lang.SourceLocation) { n.SourceLocation = loc }

func (n *NodeBase) locRef() *lang.SourceLocation { return &n.SourceLocation }

// Expression is implemented by every expression variant.
type Expression interface {
	Node
	// Visit dispatches to the visitor method matching the variant.
	Visit(visitor ExpressionVisitor)
	// ExprType returns the cached expression type, or nil before
	// sanitization.
	ExprType() ExpressionType
	// SetExprType stores the cached expression type.
	SetExprType(t ExpressionType)
}

// ExpressionBase carries the fields common to all expressions.
type ExpressionBase struct {
	NodeBase

	// CachedExpressionType is populated by the sanitizer and preserved by
	// every subsequent pass and by cloning.
	CachedExpressionType ExpressionType
}

// ExprType returns the cached expression type, or nil before sanitization.
func (e *ExpressionBase) ExprType() ExpressionType { return e.CachedExpressionType }

// SetExprType stores the cached expression type.
func (e *ExpressionBase) SetExprType(t ExpressionType) { e.CachedExpressionType = t }

// Statement is implemented by every statement variant.
type Statement interface {
	Node
	// Visit dispatches to the visitor method matching the variant.
	Visit(visitor StatementVisitor)
}

// StatementBase carries the fields common to all statements.
type StatementBase struct {
	NodeBase
}

// GetExpressionType returns the cached type of expr, or nil when expr is nil
// or has not been sanitized.
func GetExpressionType(expr Expression) ExpressionType {
	if expr == nil {
		return nil
	}
	return expr.ExprType()
}

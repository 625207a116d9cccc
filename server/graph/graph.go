// Package graph defines the authoring-level node-graph representation (the
// GraphIR) that a Compiler lowers to VM bytecode. Graph is a pure value type:
// it carries no behaviour beyond field access.
package graph

// NodeID identifies a Node within a Graph. The compiler currently uses a
// Node's id directly as a Branch jump target, so callers that build graphs by
// hand should keep ids aligned with a node's eventual instruction index if
// they need JUMP_IF_FALSE to land where they expect — see vm.Compile.
type NodeID uint32

// NodeType discriminates the kind of operation a Node performs once lowered.
type NodeType uint8

const (
	Constant NodeType = iota
	Add
	Sub
	Mul
	Div
	CompareLT
	Branch
	Event
)

// Node is one operation in a Graph. ConstantPayload is only meaningful for
// Constant nodes (the value to push) and Event nodes (the uint32 tag to
// emit); it is ignored by every other NodeType.
type Node struct {
	ID              NodeID
	Type            NodeType
	ConstantPayload int64
}

// Edge is a directed connection between two nodes. Edges are currently
// advisory: the compiler walks Graph.Nodes in stored order regardless of
// Edges or Entry. They are reserved for a future evaluator that honours
// control flow explicitly instead of via raw instruction order.
type Edge struct {
	From, To NodeID
}

// Graph is the in-memory, authoring-level representation of a compiled
// program. Nodes are compiled in the order they appear here.
type Graph struct {
	Nodes []Node
	Edges []Edge
	Entry NodeID
}

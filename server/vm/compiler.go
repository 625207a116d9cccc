package vm

import "github.com/atlas-engine/atlas/server/graph"

// Compile lowers g to a Bytecode program. Compile is deterministic and total:
// every graph.Graph, however constructed, produces a valid program. Nodes are
// walked in g.Nodes order — g.Entry and g.Edges are reserved for a future
// evaluator and do not affect emission order, so two graphs with identical
// Nodes compile identically regardless of Entry/Edges.
func Compile(g graph.Graph) Bytecode {
	bc := Bytecode{}
	for _, node := range g.Nodes {
		emit(&bc, node)
	}
	bc.Instructions = append(bc.Instructions, Instruction{Opcode: END})
	return bc
}

func emit(bc *Bytecode, node graph.Node) {
	switch node.Type {
	case graph.Constant:
		idx := uint32(len(bc.Constants))
		bc.Constants = append(bc.Constants, node.ConstantPayload)
		bc.Instructions = append(bc.Instructions, Instruction{Opcode: LOAD_CONST, A: idx})
	case graph.Add:
		bc.Instructions = append(bc.Instructions, Instruction{Opcode: ADD})
	case graph.Sub:
		bc.Instructions = append(bc.Instructions, Instruction{Opcode: SUB})
	case graph.Mul:
		bc.Instructions = append(bc.Instructions, Instruction{Opcode: MUL})
	case graph.Div:
		bc.Instructions = append(bc.Instructions, Instruction{Opcode: DIV})
	case graph.CompareLT:
		bc.Instructions = append(bc.Instructions, Instruction{Opcode: CMP_LT})
	case graph.Branch:
		// The node's own id is used as the jump target, an acknowledged
		// coarseness carried from the original engine: it only coincides with
		// the emitted instruction index when node ids equal their ordinal
		// position in the graph. Graphs relying on JUMP_IF_FALSE should keep
		// ids aligned with position until a resolution pass is added.
		bc.Instructions = append(bc.Instructions, Instruction{Opcode: JUMP_IF_FALSE, A: uint32(node.ID)})
	case graph.Event:
		bc.Instructions = append(bc.Instructions, Instruction{Opcode: EMIT_EVENT, A: uint32(node.ConstantPayload)})
	}
}

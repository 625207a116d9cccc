package vm_test

import (
	"testing"

	"github.com/atlas-engine/atlas/server/graph"
	"github.com/atlas-engine/atlas/server/vm"
)

func TestExecuteArithmetic(t *testing.T) {
	bc := vm.Bytecode{
		Constants: []int64{10, 20},
		Instructions: []vm.Instruction{
			{Opcode: vm.LOAD_CONST, A: 0},
			{Opcode: vm.LOAD_CONST, A: 1},
			{Opcode: vm.ADD},
			{Opcode: vm.STORE_VAR, A: 0},
			{Opcode: vm.END},
		},
	}
	m := vm.New()
	m.Execute(bc, vm.Context{})
	if got := m.GetLocal(0); got != 30 {
		t.Fatalf("GetLocal(0) = %d, want 30", got)
	}
}

func TestExecuteDivideByZeroYieldsZero(t *testing.T) {
	bc := vm.Bytecode{
		Constants: []int64{100, 0},
		Instructions: []vm.Instruction{
			{Opcode: vm.LOAD_CONST, A: 0},
			{Opcode: vm.LOAD_CONST, A: 1},
			{Opcode: vm.DIV},
			{Opcode: vm.STORE_VAR, A: 0},
			{Opcode: vm.END},
		},
	}
	m := vm.New()
	m.Execute(bc, vm.Context{})
	if got := m.GetLocal(0); got != 0 {
		t.Fatalf("GetLocal(0) = %d, want 0", got)
	}
}

func TestExecuteConditionalSkip(t *testing.T) {
	bc := vm.Bytecode{
		Constants: []int64{0, 999, 42},
		Instructions: []vm.Instruction{
			{Opcode: vm.LOAD_CONST, A: 0},
			{Opcode: vm.JUMP_IF_FALSE, A: 4},
			{Opcode: vm.LOAD_CONST, A: 1},
			{Opcode: vm.STORE_VAR, A: 0},
			{Opcode: vm.LOAD_CONST, A: 2},
			{Opcode: vm.STORE_VAR, A: 0},
			{Opcode: vm.END},
		},
	}
	m := vm.New()
	m.Execute(bc, vm.Context{})
	if got := m.GetLocal(0); got != 42 {
		t.Fatalf("GetLocal(0) = %d, want 42", got)
	}
}

func TestExecuteUnknownOpcodeTerminates(t *testing.T) {
	bc := vm.Bytecode{
		Instructions: []vm.Instruction{
			{Opcode: vm.Opcode(200)},
			{Opcode: vm.END},
		},
	}
	m := vm.New()
	m.Execute(bc, vm.Context{}) // must not panic or loop forever
}

func TestExecuteJumpPastEndTerminates(t *testing.T) {
	bc := vm.Bytecode{
		Instructions: []vm.Instruction{
			{Opcode: vm.JUMP, A: 50},
		},
	}
	m := vm.New()
	m.Execute(bc, vm.Context{}) // defensive termination, not a fault
}

func TestExecutePopEmptyStackPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on stack underflow")
		}
	}()
	bc := vm.Bytecode{Instructions: []vm.Instruction{{Opcode: vm.ADD}, {Opcode: vm.END}}}
	vm.New().Execute(bc, vm.Context{})
}

func TestExecuteEmitEventRoutesToSink(t *testing.T) {
	var gotTag uint32
	var gotCtx vm.Context
	calls := 0
	sink := vm.EventSinkFunc(func(ctx vm.Context, tag uint32) {
		calls++
		gotTag, gotCtx = tag, ctx
	})
	bc := vm.Bytecode{
		Instructions: []vm.Instruction{
			{Opcode: vm.EMIT_EVENT, A: 7},
			{Opcode: vm.END},
		},
	}
	m := vm.New()
	m.Sink = sink
	ctx := vm.Context{Entity: 3, Tick: 9}
	m.Execute(bc, ctx)

	if calls != 1 {
		t.Fatalf("sink invoked %d times, want 1", calls)
	}
	if gotTag != 7 || gotCtx != ctx {
		t.Fatalf("sink received (%v, %v), want (%v, 7)", gotCtx, gotTag, ctx)
	}
}

func TestExecuteEmitEventNoSinkIsNoop(t *testing.T) {
	bc := vm.Bytecode{
		Instructions: []vm.Instruction{
			{Opcode: vm.EMIT_EVENT, A: 1},
			{Opcode: vm.END},
		},
	}
	vm.New().Execute(bc, vm.Context{}) // must not panic with a nil Sink
}

func TestCompileAndExecuteMultiply(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: 0, Type: graph.Constant, ConstantPayload: 7},
			{ID: 1, Type: graph.Constant, ConstantPayload: 6},
			{ID: 2, Type: graph.Mul},
		},
		Entry: 0,
	}
	bc := vm.Compile(g)

	// Strip the compiler-emitted END and append STORE_VAR 0, END, per
	// spec.md §8 scenario 4.
	bc.Instructions = bc.Instructions[:len(bc.Instructions)-1]
	bc.Instructions = append(bc.Instructions,
		vm.Instruction{Opcode: vm.STORE_VAR, A: 0},
		vm.Instruction{Opcode: vm.END},
	)

	m := vm.New()
	m.Execute(bc, vm.Context{})
	if got := m.GetLocal(0); got != 42 {
		t.Fatalf("GetLocal(0) = %d, want 42", got)
	}
}

func TestCompileConstantsInEncounterOrderAllowDuplicates(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: 0, Type: graph.Constant, ConstantPayload: 5},
			{ID: 1, Type: graph.Constant, ConstantPayload: 5},
			{ID: 2, Type: graph.Add},
		},
	}
	bc := vm.Compile(g)
	if len(bc.Constants) != 2 {
		t.Fatalf("len(Constants) = %d, want 2 (duplicates are distinct entries)", len(bc.Constants))
	}
	if bc.Constants[0] != 5 || bc.Constants[1] != 5 {
		t.Fatalf("Constants = %v, want [5 5]", bc.Constants)
	}
}

func TestCompileEmitsTerminatingEnd(t *testing.T) {
	bc := vm.Compile(graph.Graph{})
	if len(bc.Instructions) != 1 || bc.Instructions[0].Opcode != vm.END {
		t.Fatalf("Instructions = %v, want a single END", bc.Instructions)
	}
}

func TestCompileAddSubDivLowering(t *testing.T) {
	cases := []struct {
		op   graph.NodeType
		x, y int64
		want int64
	}{
		{graph.Add, 3, 4, 7},
		{graph.Sub, 10, 4, 6},
		{graph.Mul, 3, 4, 12},
		{graph.Div, 9, 3, 3},
		{graph.Div, 9, 0, 0},
	}
	for _, c := range cases {
		g := graph.Graph{Nodes: []graph.Node{
			{ID: 0, Type: graph.Constant, ConstantPayload: c.x},
			{ID: 1, Type: graph.Constant, ConstantPayload: c.y},
			{ID: 2, Type: c.op},
		}}
		bc := vm.Compile(g)
		bc.Instructions = bc.Instructions[:len(bc.Instructions)-1]
		bc.Instructions = append(bc.Instructions,
			vm.Instruction{Opcode: vm.STORE_VAR, A: 0},
			vm.Instruction{Opcode: vm.END},
		)
		m := vm.New()
		m.Execute(bc, vm.Context{})
		if got := m.GetLocal(0); got != c.want {
			t.Fatalf("op=%v x=%d y=%d: GetLocal(0) = %d, want %d", c.op, c.x, c.y, got, c.want)
		}
	}
}

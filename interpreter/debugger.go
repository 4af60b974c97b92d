package interpreter

import (
	"fmt"

	"decicalc/ast"
)

// DebugEvent describes a single evaluator step, reported around every
// expression node (statement nodes are not reported) so a step-debugger can
// follow a Backwards function call (§8).
type DebugEvent struct {
	Cell       string // spreadsheet notation of the cell being evaluated, if any
	Line       int
	Column     int
	NodeType   string
	FrameDepth int
}

// DebugFrame is one entry of the debugger's call-stack view: one per active
// Backwards function call, distinct from CallingContext's cell-cycle stack.
type DebugFrame struct {
	ID     int
	Name   string
	Cell   string
	Line   int
	Column int
	Depth  int
	Scope  *Scope
}

// Debugger receives callbacks around every expression evaluation. It is consulted
// only when a CallingContext's Debugger field is non-nil; ordinary
// recalculation leaves it nil and pays no overhead for these calls.
type Debugger interface {
	BeforeNode(event DebugEvent) error
	AfterNode(event DebugEvent, result Value, sig *Signal, evalErr error) error
}

// FrameAwareDebugger declares function call frame push/pop notifications
// for rendering a call stack; no evaluator path calls OnFramePush or
// OnFramePop.
type FrameAwareDebugger interface {
	OnFramePush(frame DebugFrame)
	OnFramePop(frame DebugFrame)
}

func debugEventFor(node ast.Node, cell string, depth int) DebugEvent {
	event := DebugEvent{
		Cell:       cell,
		NodeType:   fmt.Sprintf("%T", node),
		FrameDepth: depth,
	}
	if tok := tokenFromNode(node); tok != nil {
		event.Line = tok.Line
		event.Column = tok.Column
	}
	return event
}

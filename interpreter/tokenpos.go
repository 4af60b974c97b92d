package interpreter

import (
	"decicalc/ast"
	"decicalc/token"
)

// tokenFromNode extracts the source-position token carried by an AST node,
// for error messages and debugger events. Grounded on the same pattern the
// teacher's errors.go uses to recover location info from a bare ast.Node.
func tokenFromNode(node ast.Node) *token.Token {
	switch n := node.(type) {
	case *ast.Constant:
		return &n.Token
	case *ast.Variable:
		return &n.Token
	case *ast.UnaryOp:
		return &n.Token
	case *ast.BinaryOp:
		return &n.Token
	case *ast.FunctionCall:
		return &n.Token
	case *ast.CellRefNode:
		return &n.Token
	case *ast.CellRangeNode:
		return &n.Token
	case *ast.ArrayLiteral:
		return &n.Token
	case *ast.FunctionLiteral:
		return &n.Token
	case *ast.BlockStatement:
		return &n.Token
	case *ast.ExpressionStatement:
		return &n.Token
	case *ast.AssignStatement:
		return &n.Token
	case *ast.FunctionDefStatement:
		return &n.Token
	case *ast.IfStatement:
		return &n.Token
	case *ast.WhileStatement:
		return &n.Token
	case *ast.ForStatement:
		return &n.Token
	case *ast.ReturnStatement:
		return &n.Token
	case *ast.BreakStatement:
		return &n.Token
	case *ast.ContinueStatement:
		return &n.Token
	case *ast.NopStatement:
		return &n.Token
	default:
		return nil
	}
}

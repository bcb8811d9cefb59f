package eval

import (
	"github.com/gosass/sass/internal/ast"
	"github.com/gosass/sass/value"
)

// evalCalc implements "calc()"/"min()"/"max()"/"clamp()"/etc. (§3
// "calculation expression"): each comma-separated operand is evaluated
// with ordinary arithmetic first; an operand whose arithmetic fails
// because of incompatible units (the one case ordinary Sass arithmetic
// rejects that CSS calc() itself tolerates, e.g. "calc(1px + 1%)")
// degrades to its literal textual form instead of failing compilation,
// preserving output fidelity without a fully symbolic calc rewriter.
func (e *Evaluator) evalCalc(n ast.CalcExpr) (value.Value, error) {
	args := make([]value.Value, len(n.Operands))
	for i, op := range n.Operands {
		v, err := e.evalCalcOperand(op)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	if n.Name == "calc" && len(args) == 1 {
		if num, ok := args[0].(value.Number); ok {
			return num, nil
		}
	}
	return value.Calculation{Name: n.Name, Arguments: args}, nil
}

func (e *Evaluator) evalCalcOperand(expr ast.Expr) (value.Value, error) {
	v, err := e.evalExpr(expr)
	if err == nil {
		return v, nil
	}
	text, rerr := e.renderCalcOperandText(expr)
	if rerr != nil {
		return nil, err
	}
	return value.NewString(text, false), nil
}

// renderCalcOperandText rebuilds an arithmetic expression's literal text
// without performing unit-checked arithmetic, for the incompatible-unit
// fallback above.
func (e *Evaluator) renderCalcOperandText(expr ast.Expr) (string, error) {
	switch n := expr.(type) {
	case ast.BinaryExpr:
		l, err := e.renderCalcOperandText(n.Left)
		if err != nil {
			return "", err
		}
		r, err := e.renderCalcOperandText(n.Right)
		if err != nil {
			return "", err
		}
		return l + " " + binaryOpText(n.Op) + " " + r, nil
	case ast.UnaryExpr:
		operand, err := e.renderCalcOperandText(n.Operand)
		if err != nil {
			return "", err
		}
		if n.Op == ast.UnaryNeg {
			return "-" + operand, nil
		}
		return operand, nil
	default:
		v, err := e.evalExpr(expr)
		if err != nil {
			return "", err
		}
		return e.toCSSString(v), nil
	}
}

func binaryOpText(op ast.BinaryOp) string {
	switch op {
	case ast.OpAdd:
		return "+"
	case ast.OpSub:
		return "-"
	case ast.OpMul:
		return "*"
	case ast.OpDiv:
		return "/"
	default:
		return "+"
	}
}

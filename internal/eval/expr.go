package eval

import (
	"fmt"
	"strings"

	"github.com/gosass/sass/internal/ast"
	"github.com/gosass/sass/internal/selector"
	"github.com/gosass/sass/span"
	"github.com/gosass/sass/value"
)

// evalExpr dispatches over the closed sum of Sass-AST expression
// variants (§3 "Expression variants", §4.1 "Operator precedence"),
// mirroring the statement-level switch in eval.go.
func (e *Evaluator) evalExpr(expr ast.Expr) (value.Value, error) {
	switch n := expr.(type) {
	case ast.NumberLit:
		return value.WithUnit(n.Value, n.Unit), nil
	case ast.ColorLit:
		return value.RGB(n.R, n.G, n.B, colorLitAlpha(n)), nil
	case ast.StringLit:
		text, err := e.evalInterpolationToString(n.Text)
		if err != nil {
			return nil, err
		}
		return value.NewString(text, n.Quoted), nil
	case ast.Ident:
		return e.evalIdent(n)
	case ast.VariableRef:
		return e.evalVariableRef(n)
	case ast.ListExpr:
		return e.evalListExpr(n)
	case ast.MapExpr:
		return e.evalMapExpr(n)
	case ast.BinaryExpr:
		return e.evalBinary(n)
	case ast.UnaryExpr:
		return e.evalUnary(n)
	case ast.FuncCall:
		return e.evalFuncCall(n)
	case ast.IfExpr:
		cond, err := e.evalExpr(n.Condition)
		if err != nil {
			return nil, err
		}
		if cond.Truthy() {
			return e.evalExpr(n.IfTrue)
		}
		return e.evalExpr(n.IfFalse)
	case ast.CalcExpr:
		return e.evalCalc(n)
	case ast.SelectorExpr:
		text, err := e.evalInterpolationToString(n.Text)
		if err != nil {
			return nil, err
		}
		return value.Selector{Text: text}, nil
	default:
		return nil, fmt.Errorf("unhandled expression %T", n)
	}
}

func colorLitAlpha(n ast.ColorLit) float64 {
	if n.HasA {
		return n.A
	}
	return 1
}

// evalIdent treats the three bare keywords the grammar leaves unparsed
// as Ident nodes (§4.1: `true`, `false`, `null` are ordinary identifiers
// syntactically, distinguished only by the evaluator) and otherwise
// yields an unquoted string, the CSS-keyword fallback every unrecognized
// bare word takes (§3 "string (quoted flag)").
func (e *Evaluator) evalIdent(n ast.Ident) (value.Value, error) {
	if !n.Text.HasInterpolation() {
		switch n.Text.PlainText() {
		case "true":
			return value.TrueValue, nil
		case "false":
			return value.FalseValue, nil
		case "null":
			return value.NullValue, nil
		}
	}
	text, err := e.evalInterpolationToString(n.Text)
	if err != nil {
		return nil, err
	}
	return value.NewString(text, false), nil
}

func (e *Evaluator) evalVariableRef(n ast.VariableRef) (value.Value, error) {
	frame := e.frame
	if n.Namespace != "" {
		mod, ok := e.module.namespaces[n.Namespace]
		if !ok {
			return nil, fmt.Errorf("there is no module with namespace %q", n.Namespace)
		}
		if v, ok := mod.publicVar(n.Name); ok {
			return v, nil
		}
		return nil, fmt.Errorf("undefined variable %s.$%s", n.Namespace, n.Name)
	}
	if v, ok := frame.GetVar(n.Name); ok {
		return v, nil
	}
	return nil, fmt.Errorf("undefined variable $%s", n.Name)
}

func (e *Evaluator) evalListExpr(n ast.ListExpr) (value.Value, error) {
	elems := make([]value.Value, len(n.Elements))
	for i, el := range n.Elements {
		v, err := e.evalExpr(el)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	sep := value.Separator(n.Separator)
	return value.List{Separator: sep, Bracketed: n.Bracketed, Elements: elems}, nil
}

func (e *Evaluator) evalMapExpr(n ast.MapExpr) (value.Value, error) {
	var m value.Map
	for _, pair := range n.Pairs {
		k, err := e.evalExpr(pair.Key)
		if err != nil {
			return nil, err
		}
		v, err := e.evalExpr(pair.Value)
		if err != nil {
			return nil, err
		}
		if _, dup := m.Get(k); dup {
			return nil, fmt.Errorf("duplicate key %s in map", e.inspect(k))
		}
		m = m.Set(k, v)
	}
	return m, nil
}

func (e *Evaluator) evalUnary(n ast.UnaryExpr) (value.Value, error) {
	v, err := e.evalExpr(n.Operand)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case ast.UnaryNot:
		return value.Bool(!v.Truthy()), nil
	case ast.UnaryNeg:
		if num, ok := v.(value.Number); ok {
			num.Num = -num.Num
			return num, nil
		}
		return value.NewString("-"+e.toCSSString(v), false), nil
	case ast.UnaryPlus:
		if num, ok := v.(value.Number); ok {
			return num, nil
		}
		return value.NewString("+"+e.toCSSString(v), false), nil
	default:
		return nil, fmt.Errorf("unhandled unary operator")
	}
}

// evalBinary implements §4.3 "Arithmetic semantics" and equality/
// relational/logical operators, short-circuiting `and`/`or` the way
// Sass's boolean operators do.
func (e *Evaluator) evalBinary(n ast.BinaryExpr) (value.Value, error) {
	if n.Op == ast.OpAnd || n.Op == ast.OpOr {
		left, err := e.evalExpr(n.Left)
		if err != nil {
			return nil, err
		}
		if n.Op == ast.OpAnd && !left.Truthy() {
			return left, nil
		}
		if n.Op == ast.OpOr && left.Truthy() {
			return left, nil
		}
		return e.evalExpr(n.Right)
	}

	left, err := e.evalExpr(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.evalExpr(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case ast.OpEq:
		return value.Bool(value.Equal(left, right)), nil
	case ast.OpNeq:
		return value.Bool(!value.Equal(left, right)), nil
	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		return e.evalRelational(n.Op, left, right)
	case ast.OpAdd:
		return e.evalAdd(left, right)
	case ast.OpSub:
		return e.evalSub(left, right)
	case ast.OpMul:
		return e.evalMul(left, right)
	case ast.OpDiv:
		return e.evalDivOrSlashList(n, left, right)
	case ast.OpMod:
		return e.evalMod(left, right)
	default:
		return nil, fmt.Errorf("unhandled binary operator")
	}
}

func (e *Evaluator) evalRelational(op ast.BinaryOp, left, right value.Value) (value.Value, error) {
	ln, lok := left.(value.Number)
	rn, rok := right.(value.Number)
	if !lok || !rok {
		return nil, fmt.Errorf("%s and %s are not comparable", e.inspect(left), e.inspect(right))
	}
	lv, rv := ln.Num, rn.Num
	if !ln.IsUnitless() && !rn.IsUnitless() {
		if !ln.ConvertibleWith(rn) {
			return nil, fmt.Errorf("%s and %s have incompatible units", ln.CSSText(), rn.CSSText())
		}
		rv = rn.ConvertedValue(ln)
	}
	switch op {
	case ast.OpLt:
		return value.Bool(lv < rv), nil
	case ast.OpLte:
		return value.Bool(lv <= rv), nil
	case ast.OpGt:
		return value.Bool(lv > rv), nil
	default:
		return value.Bool(lv >= rv), nil
	}
}

// stringConcat implements Sass's `+` string fallback: when either
// operand is a string (or neither side is a number/color pair that
// arithmetic otherwise handles), `+` concatenates text, preserving the
// left operand's quotedness (§4.3 "String `+` concatenates preserving
// the left operand's quotedness").
func (e *Evaluator) stringConcat(left, right value.Value) value.Value {
	l, isStr := left.(value.String)
	quoted := isStr && bool(l.Quoted)
	return value.NewString(e.toCSSString(left)+e.toCSSString(right), quoted)
}

func (e *Evaluator) evalAdd(left, right value.Value) (value.Value, error) {
	ln, lok := left.(value.Number)
	rn, rok := right.(value.Number)
	if lok && rok {
		res, err := ln.Add(rn)
		if err != nil {
			return nil, err
		}
		return res, nil
	}
	if lc, ok := left.(value.Color); ok {
		if rc, ok2 := right.(value.Color); ok2 {
			return addColors(lc, rc)
		}
	}
	return e.stringConcat(left, right), nil
}

func addColors(a, b value.Color) (value.Value, error) {
	clampByte := func(v int) uint8 {
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return uint8(v)
	}
	return value.RGB(clampByte(int(a.R)+int(b.R)), clampByte(int(a.G)+int(b.G)), clampByte(int(a.B)+int(b.B)), a.A), nil
}

func (e *Evaluator) evalSub(left, right value.Value) (value.Value, error) {
	ln, lok := left.(value.Number)
	rn, rok := right.(value.Number)
	if lok && rok {
		res, err := ln.Sub(rn)
		if err != nil {
			return nil, err
		}
		return res, nil
	}
	return value.NewString(e.toCSSString(left)+"-"+e.toCSSString(right), false), nil
}

func (e *Evaluator) evalMul(left, right value.Value) (value.Value, error) {
	ln, lok := left.(value.Number)
	rn, rok := right.(value.Number)
	if !lok || !rok {
		return nil, fmt.Errorf("%s and %s can't be multiplied", e.inspect(left), e.inspect(right))
	}
	return ln.Mul(rn), nil
}

func (e *Evaluator) evalMod(left, right value.Value) (value.Value, error) {
	ln, lok := left.(value.Number)
	rn, rok := right.(value.Number)
	if !lok || !rok {
		return nil, fmt.Errorf("%s and %s can't be used with %%", e.inspect(left), e.inspect(right))
	}
	if rn.Num == 0 {
		return nil, fmt.Errorf("can't divide by zero modulus")
	}
	res := ln
	m := func(v, d float64) float64 {
		r := v - d*float64(int(v/d))
		if r != 0 && (r < 0) != (d < 0) {
			r += d
		}
		return r
	}
	res.Num = m(ln.Num, rn.Num)
	return res, nil
}

// evalDivOrSlashList implements the slash-division deprecation (§4.1,
// §7): a top-level, non-parenthesized `/` between two numbers used to
// mean division and now builds a slash-separated two-element list
// instead, flagged through the injected Logger as a deprecation warning
// while still evaluating to the division result inside parentheses. When
// either operand isn't a number, the result is the unquoted text
// `left/right`.
func (e *Evaluator) evalDivOrSlashList(n ast.BinaryExpr, left, right value.Value) (value.Value, error) {
	ln, lok := left.(value.Number)
	rn, rok := right.(value.Number)
	if lok && rok {
		if n.Parenthesized {
			return ln.Div(rn)
		}
		e.opts.Logger.Warn("/ operator is deprecated for division; use math.div instead", "slash-div", []span.Span{n.Pos})
		return value.List{Separator: value.SepSlash, Elements: []value.Value{left, right}}, nil
	}
	return value.NewString(e.toCSSString(left)+"/"+e.toCSSString(right), false), nil
}

// toCSSString renders v the way it appears interpolated into CSS output
// text (unquoted strings verbatim, quoted strings without their quotes,
// numbers/colors/lists in their CSS textual form) — distinct from
// inspect, which is used by @debug/@error and always shows quotes.
func (e *Evaluator) toCSSString(v value.Value) string {
	switch vv := v.(type) {
	case value.Null:
		return ""
	case value.Bool:
		if vv {
			return "true"
		}
		return "false"
	case value.String:
		return vv.Text
	case value.Number:
		return vv.CSSText()
	case value.Color:
		return vv.HexText()
	case value.List:
		return e.listCSSText(vv)
	case value.Map:
		return e.listCSSText(vv.AsList())
	case value.Calculation:
		return e.calcCSSText(vv)
	case value.Function:
		return "get-function(\"" + vv.Name + "\")"
	case value.Selector:
		return vv.Text
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (e *Evaluator) listCSSText(l value.List) string {
	sep := " "
	switch l.Separator {
	case value.SepComma:
		sep = ", "
	case value.SepSlash:
		sep = "/"
	}
	parts := make([]string, 0, len(l.Elements))
	for _, el := range l.Elements {
		if _, ok := el.(value.Null); ok {
			continue
		}
		parts = append(parts, e.toCSSString(el))
	}
	text := strings.Join(parts, sep)
	if l.Bracketed {
		return "[" + text + "]"
	}
	return text
}

func (e *Evaluator) calcCSSText(c value.Calculation) string {
	parts := make([]string, len(c.Arguments))
	for i, a := range c.Arguments {
		parts[i] = e.toCSSString(a)
	}
	if c.Name == "calc" {
		return "calc(" + strings.Join(parts, " ") + ")"
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

// inspect renders v the way `@debug`/`@error` and `meta.inspect` do:
// quoted strings keep their quotes, null/lists/maps show their Sass
// literal shape (§4.3 "@debug"/"@error").
func (e *Evaluator) inspect(v value.Value) string {
	switch vv := v.(type) {
	case value.Null:
		return "null"
	case value.String:
		if vv.Quoted {
			return "\"" + strings.ReplaceAll(vv.Text, "\"", "\\\"") + "\""
		}
		return vv.Text
	case value.Number:
		return vv.InspectText()
	case value.List:
		if len(vv.Elements) == 0 {
			if vv.Bracketed {
				return "[]"
			}
			return "()"
		}
		parts := make([]string, len(vv.Elements))
		for i, el := range vv.Elements {
			parts[i] = e.inspect(el)
		}
		sep := " "
		if vv.Separator == value.SepComma {
			sep = ", "
		} else if vv.Separator == value.SepSlash {
			sep = "/"
		}
		text := strings.Join(parts, sep)
		if vv.Bracketed {
			return "[" + text + "]"
		}
		if vv.Separator == value.SepComma && len(vv.Elements) == 1 {
			return "(" + text + ",)"
		}
		return text
	case value.Map:
		if len(vv.Entries) == 0 {
			return "()"
		}
		parts := make([]string, len(vv.Entries))
		for i, ent := range vv.Entries {
			parts[i] = e.inspect(ent.Key) + ": " + e.inspect(ent.Value)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return e.toCSSString(v)
	}
}

// selectorListFromValue converts a selector-as-value or a list/string of
// selector text into a parsed selector.List, the coercion `selector.*`
// built-ins and `@extend`/`#{&}` interop need (§4.4).
func (e *Evaluator) selectorListFromValue(v value.Value) (*selector.List, error) {
	text := e.toCSSString(v)
	return selector.Parse(text, selector.ParseOptions{AllowParent: true})
}

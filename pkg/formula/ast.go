package formula

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yaklabco/textsheets/pkg/scope"
)

// Position is the byte range of a node in the formula source.
type Position struct {
	Start int
	End   int
}

// Node is an expression in a parsed formula.
type Node interface {
	Eval(env *Env) (any, error)
	Position() Position
	String() string
}

// NumberNode is a numeric literal.
type NumberNode struct {
	Value float64
	Pos   Position
}

func (n *NumberNode) Eval(*Env) (any, error) { return n.Value, nil }
func (n *NumberNode) Position() Position     { return n.Pos }
func (n *NumberNode) String() string         { return FormatNumber(n.Value) }

// StringNode is a string literal.
type StringNode struct {
	Value string
	Pos   Position
}

func (n *StringNode) Eval(*Env) (any, error) { return n.Value, nil }
func (n *StringNode) Position() Position     { return n.Pos }
func (n *StringNode) String() string         { return quote(n.Value) }

// BoolNode is true or false.
type BoolNode struct {
	Value bool
	Pos   Position
}

func (n *BoolNode) Eval(*Env) (any, error) { return n.Value, nil }
func (n *BoolNode) Position() Position     { return n.Pos }
func (n *BoolNode) String() string         { return strconv.FormatBool(n.Value) }

// NullNode is null or undefined; both evaluate to nil.
type NullNode struct {
	Pos Position
}

func (n *NullNode) Eval(*Env) (any, error) { return nil, nil }
func (n *NullNode) Position() Position     { return n.Pos }
func (n *NullNode) String() string         { return "null" }

// IdentNode is a name resolved against the environment.
type IdentNode struct {
	Name string
	Pos  Position
}

func (n *IdentNode) Eval(env *Env) (any, error) {
	value, err := env.Lookup(n.Name)
	return value, atPos(n.Pos.Start, err)
}

func (n *IdentNode) Position() Position { return n.Pos }
func (n *IdentNode) String() string     { return n.Name }

// ArrayNode is a list literal.
type ArrayNode struct {
	Elements []Node
	Pos      Position
}

func (n *ArrayNode) Eval(env *Env) (any, error) {
	out := make([]any, 0, len(n.Elements))
	for _, elem := range n.Elements {
		value, err := elem.Eval(env)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}

func (n *ArrayNode) Position() Position { return n.Pos }
func (n *ArrayNode) String() string     { return "[" + joinNodes(n.Elements) + "]" }

// MemberNode is field access: Object.Name.
type MemberNode struct {
	Object Node
	Name   string
	Pos    Position
}

func (n *MemberNode) Eval(env *Env) (any, error) {
	obj, err := n.Object.Eval(env)
	if err != nil {
		return nil, err
	}
	value, err := member(obj, n.Name)
	return value, atPos(n.Pos.Start, err)
}

func (n *MemberNode) Position() Position { return n.Pos }
func (n *MemberNode) String() string     { return postfixOperand(n.Object) + "." + n.Name }

// IndexNode is subscript access: Object[Index].
type IndexNode struct {
	Object Node
	Index  Node
	Pos    Position
}

func (n *IndexNode) Eval(env *Env) (any, error) {
	obj, err := n.Object.Eval(env)
	if err != nil {
		return nil, err
	}
	key, err := n.Index.Eval(env)
	if err != nil {
		return nil, err
	}

	switch typed := obj.(type) {
	case []any:
		idx, ok := listIndex(key, len(typed))
		if !ok {
			return nil, nil
		}
		return typed[idx], nil
	case string:
		runes := []rune(typed)
		idx, ok := listIndex(key, len(runes))
		if !ok {
			return nil, nil
		}
		return string(runes[idx]), nil
	}

	name, isName := key.(string)
	if !isName {
		name = Display(key, nil)
	}
	value, err := member(obj, name)
	return value, atPos(n.Pos.Start, err)
}

func (n *IndexNode) Position() Position { return n.Pos }
func (n *IndexNode) String() string {
	return postfixOperand(n.Object) + "[" + n.Index.String() + "]"
}

// CallNode is a function call.
type CallNode struct {
	Callee Node
	Args   []Node
	Pos    Position
}

func (n *CallNode) Eval(env *Env) (any, error) {
	callee, err := n.Callee.Eval(env)
	if err != nil {
		return nil, err
	}

	fn, ok := callee.(*Func)
	if !ok {
		return nil, atPos(n.Pos.Start,
			fmt.Errorf("%w: %s is %s", ErrNotCallable, n.Callee.String(), TypeName(callee)))
	}

	args := make([]any, 0, len(n.Args))
	for _, arg := range n.Args {
		value, err := arg.Eval(env)
		if err != nil {
			return nil, err
		}
		args = append(args, value)
	}

	value, err := fn.Call(args)
	return value, atPos(n.Pos.Start, err)
}

func (n *CallNode) Position() Position { return n.Pos }
func (n *CallNode) String() string {
	return postfixOperand(n.Callee) + "(" + joinNodes(n.Args) + ")"
}

// UnaryNode is a prefix operator: !, - or +.
type UnaryNode struct {
	Op      string
	Operand Node
	Pos     Position
}

func (n *UnaryNode) Eval(env *Env) (any, error) {
	value, err := n.Operand.Eval(env)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "!":
		return !Truthy(value), nil
	case "-":
		return -ToNumber(value), nil
	default:
		return ToNumber(value), nil
	}
}

func (n *UnaryNode) Position() Position { return n.Pos }
func (n *UnaryNode) String() string     { return n.Op + n.Operand.String() }

// BinaryNode is an arithmetic, comparison or equality operator.
type BinaryNode struct {
	Op    string
	Left  Node
	Right Node
	Pos   Position
}

func (n *BinaryNode) Eval(env *Env) (any, error) {
	left, err := n.Left.Eval(env)
	if err != nil {
		return nil, err
	}
	right, err := n.Right.Eval(env)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "+":
		_, leftIsString := left.(string)
		_, rightIsString := right.(string)
		if leftIsString || rightIsString {
			return Display(left, nil) + Display(right, nil), nil
		}
		return ToNumber(left) + ToNumber(right), nil
	case "-":
		return ToNumber(left) - ToNumber(right), nil
	case "*":
		return ToNumber(left) * ToNumber(right), nil
	case "/":
		return ToNumber(left) / ToNumber(right), nil
	case "%":
		return math.Mod(ToNumber(left), ToNumber(right)), nil
	case "==":
		return LooseEqual(left, right), nil
	case "!=":
		return !LooseEqual(left, right), nil
	case "===":
		return StrictEqual(left, right), nil
	case "!==":
		return !StrictEqual(left, right), nil
	case "<", "<=", ">", ">=":
		return compare(n.Op, left, right), nil
	default:
		return nil, atPos(n.Pos.Start, fmt.Errorf("unknown operator %q", n.Op))
	}
}

func (n *BinaryNode) Position() Position { return n.Pos }
func (n *BinaryNode) String() string {
	return "(" + n.Left.String() + " " + n.Op + " " + n.Right.String() + ")"
}

// LogicalNode is && or ||. The right side is evaluated only when needed and
// the deciding operand is returned unchanged.
type LogicalNode struct {
	Op    string
	Left  Node
	Right Node
	Pos   Position
}

func (n *LogicalNode) Eval(env *Env) (any, error) {
	left, err := n.Left.Eval(env)
	if err != nil {
		return nil, err
	}
	if Truthy(left) == (n.Op == "||") {
		return left, nil
	}
	return n.Right.Eval(env)
}

func (n *LogicalNode) Position() Position { return n.Pos }
func (n *LogicalNode) String() string {
	return "(" + n.Left.String() + " " + n.Op + " " + n.Right.String() + ")"
}

// TernaryNode is Cond ? Then : Else.
type TernaryNode struct {
	Cond Node
	Then Node
	Else Node
	Pos  Position
}

func (n *TernaryNode) Eval(env *Env) (any, error) {
	cond, err := n.Cond.Eval(env)
	if err != nil {
		return nil, err
	}
	if Truthy(cond) {
		return n.Then.Eval(env)
	}
	return n.Else.Eval(env)
}

func (n *TernaryNode) Position() Position { return n.Pos }
func (n *TernaryNode) String() string {
	return "(" + n.Cond.String() + " ? " + n.Then.String() + " : " + n.Else.String() + ")"
}

// LambdaNode is an arrow function. It closes over the environment it is
// evaluated in.
type LambdaNode struct {
	Params []string
	Body   Node
	Pos    Position
}

func (n *LambdaNode) Eval(env *Env) (any, error) {
	return NewFunc("", n.Params, func(args []any) (any, error) {
		if env.calls.Add(1) > maxCallDepth {
			env.calls.Add(-1)
			return nil, atPos(n.Pos.Start, ErrCallDepth)
		}
		defer env.calls.Add(-1)

		bindings := scope.New()
		for idx, param := range n.Params {
			bindings.Set(param, args[idx])
		}
		return n.Body.Eval(env.Push(bindings))
	}), nil
}

func (n *LambdaNode) Position() Position { return n.Pos }
func (n *LambdaNode) String() string {
	return "((" + strings.Join(n.Params, ", ") + ") => " + n.Body.String() + ")"
}

// member reads a named field of obj through scope projection.
func member(obj any, name string) (any, error) {
	switch typed := obj.(type) {
	case nil:
		return nil, fmt.Errorf("%w: reading %q", ErrNilMember, name)
	case *ErrorValue:
		return nil, fmt.Errorf("reading %q of a failed value: %w", name, typed.Err)
	}

	if name == "length" {
		if n, ok := length(obj); ok {
			return n, nil
		}
	}

	value, ok := scope.Project(obj, name)
	if !ok {
		return nil, nil
	}
	return value, nil
}

func listIndex(key any, n int) (int, bool) {
	f, ok := key.(float64)
	if !ok || f != math.Trunc(f) || f < 0 || f >= float64(n) {
		return 0, false
	}
	return int(f), true
}

func compare(op string, left, right any) bool {
	var cmp int
	leftStr, leftIsString := left.(string)
	rightStr, rightIsString := right.(string)
	if leftIsString && rightIsString {
		cmp = strings.Compare(leftStr, rightStr)
	} else {
		l, r := ToNumber(left), ToNumber(right)
		if math.IsNaN(l) || math.IsNaN(r) {
			return false
		}
		switch {
		case l < r:
			cmp = -1
		case l > r:
			cmp = 1
		}
	}

	switch op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	default:
		return cmp >= 0
	}
}

// postfixOperand renders the operand of a member, index or call so that it
// binds tighter than the postfix operator when parsed again.
func postfixOperand(n Node) string {
	switch n.(type) {
	case *NumberNode, *UnaryNode:
		return "(" + n.String() + ")"
	default:
		return n.String()
	}
}

// quote renders s as a double-quoted literal using only the escapes the
// lexer understands.
func quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for idx := range len(s) {
		switch ch := s[idx]; ch {
		case '\\', '"':
			sb.WriteByte('\\')
			sb.WriteByte(ch)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteByte(ch)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func joinNodes(nodes []Node) string {
	parts := make([]string, 0, len(nodes))
	for _, node := range nodes {
		parts = append(parts, node.String())
	}
	return strings.Join(parts, ", ")
}

package formula

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrUnknownToken       = errors.New("formula: unknown token")
	ErrUnresolvedVariable = errors.New("formula: unresolved variable")
	ErrParenMismatch      = errors.New("formula: mismatched parentheses")
	ErrDivisionByZero     = errors.New("formula: division by zero")
	ErrNotFinite          = errors.New("formula: result is not finite")
	ErrMalformed          = errors.New("formula: malformed expression")
)

var functions = map[string]struct {
	arity int
	apply func(args []float64) float64
}{
	"MAX":   {2, func(a []float64) float64 { return math.Max(a[0], a[1]) }},
	"MIN":   {2, func(a []float64) float64 { return math.Min(a[0], a[1]) }},
	"FLOOR": {1, func(a []float64) float64 { return math.Floor(a[0]) }},
	"CEIL":  {1, func(a []float64) float64 { return math.Ceil(a[0]) }},
	"ROUND": {1, func(a []float64) float64 { return math.Round(a[0]) }},
	"ABS":   {1, func(a []float64) float64 { return math.Abs(a[0]) }},
}

func precedence(op string) int {
	switch op {
	case "u-":
		return 3
	case "*", "/":
		return 2
	default:
		return 1
	}
}

// markUnary rewrites "-" tokens into the unary operator "u-" when the
// preceding token cannot end an operand (start of expression, another
// operator, an opening paren or a comma).
func markUnary(toks []token) []token {
	for i := range toks {
		if toks[i].kind != tokOperator || toks[i].text != "-" {
			continue
		}
		if i == 0 {
			toks[i].text = "u-"
			continue
		}
		switch toks[i-1].kind {
		case tokOperator, tokLParen, tokComma:
			toks[i].text = "u-"
		}
	}
	return toks
}

// toRPN converts tokens to reverse Polish notation via shunting-yard.
// Function identifiers go on the operator stack; variable identifiers pass
// straight to the output after resolution by the caller.
func toRPN(toks []token) ([]token, error) {
	var output, stack []token
	for _, t := range toks {
		switch t.kind {
		case tokNumber:
			output = append(output, t)
		case tokIdent:
			if _, isFn := functions[t.text]; isFn {
				stack = append(stack, t)
			} else {
				output = append(output, t)
			}
		case tokOperator:
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.kind == tokOperator && precedence(top.text) >= precedence(t.text) && t.text != "u-" {
					output = append(output, top)
					stack = stack[:len(stack)-1]
					continue
				}
				break
			}
			stack = append(stack, t)
		case tokLParen:
			stack = append(stack, t)
		case tokComma:
			for {
				if len(stack) == 0 {
					return nil, ErrParenMismatch
				}
				top := stack[len(stack)-1]
				if top.kind == tokLParen {
					break
				}
				output = append(output, top)
				stack = stack[:len(stack)-1]
			}
		case tokRParen:
			for {
				if len(stack) == 0 {
					return nil, ErrParenMismatch
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.kind == tokLParen {
					break
				}
				output = append(output, top)
			}
			if len(stack) > 0 && stack[len(stack)-1].kind == tokIdent {
				output = append(output, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
		}
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.kind == tokLParen {
			return nil, ErrParenMismatch
		}
		output = append(output, top)
	}
	return output, nil
}

func evalRPN(rpn []token, ctx *Context) (float64, error) {
	var stack []float64
	pop := func() (float64, bool) {
		if len(stack) == 0 {
			return 0, false
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, true
	}
	for _, t := range rpn {
		switch t.kind {
		case tokNumber:
			stack = append(stack, t.value)
		case tokIdent:
			if fn, isFn := functions[t.text]; isFn {
				args := make([]float64, fn.arity)
				for i := fn.arity - 1; i >= 0; i-- {
					v, ok := pop()
					if !ok {
						return 0, fmt.Errorf("%w: %s needs %d arguments", ErrMalformed, t.text, fn.arity)
					}
					args[i] = v
				}
				stack = append(stack, fn.apply(args))
				continue
			}
			v, err := ctx.resolve(t.text)
			if err != nil {
				return 0, err
			}
			stack = append(stack, v)
		case tokOperator:
			if t.text == "u-" {
				v, ok := pop()
				if !ok {
					return 0, ErrMalformed
				}
				stack = append(stack, -v)
				continue
			}
			b, okB := pop()
			a, okA := pop()
			if !okA || !okB {
				return 0, ErrMalformed
			}
			switch t.text {
			case "+":
				stack = append(stack, a+b)
			case "-":
				stack = append(stack, a-b)
			case "*":
				stack = append(stack, a*b)
			case "/":
				if b == 0 {
					return 0, ErrDivisionByZero
				}
				stack = append(stack, a/b)
			}
		}
	}
	if len(stack) != 1 {
		return 0, ErrMalformed
	}
	return stack[0], nil
}

// Eval parses and evaluates an expression against the context.
// Postcondition: on success the result is finite; every failure mode maps
// to one of the exported sentinel errors.
func Eval(expr string, ctx *Context) (float64, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return 0, err
	}
	if len(toks) == 0 {
		return 0, fmt.Errorf("%w: empty expression", ErrMalformed)
	}
	rpn, err := toRPN(markUnary(toks))
	if err != nil {
		return 0, err
	}
	v, err := evalRPN(rpn, ctx)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotFinite
	}
	return v, nil
}

// EvalInt evaluates the expression and floors the result, the convention
// every rules quantity follows.
func EvalInt(expr string, ctx *Context) (int, error) {
	v, err := Eval(expr, ctx)
	if err != nil {
		return 0, err
	}
	return int(math.Floor(v)), nil
}

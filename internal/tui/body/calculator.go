package body

import (
	"fmt"
	"strconv"
	"strings"
)

type calculatorBody struct {
	expr   string
	result string
	errMsg string
}

func newCalculator(env Env) Body {
	return &calculatorBody{}
}

func (b *calculatorBody) HandleKey(key string) bool {
	switch {
	case len(key) == 1 && (key[0] >= '0' && key[0] <= '9' || key == "."):
		b.expr += key
	case key == "+" || key == "-" || key == "*" || key == "/":
		b.expr += key
	case key == "backspace":
		if b.expr != "" {
			b.expr = b.expr[:len(b.expr)-1]
		}
	case key == "c":
		b.expr, b.result, b.errMsg = "", "", ""
	case key == "=" || key == "enter":
		b.evaluate()
	default:
		return false
	}
	if key != "=" && key != "enter" {
		b.result, b.errMsg = "", ""
	}
	return true
}

func (b *calculatorBody) evaluate() {
	v, err := evalExpr(b.expr)
	if err != nil {
		b.errMsg = err.Error()
		b.result = ""
		return
	}
	b.errMsg = ""
	b.result = strconv.FormatFloat(v, 'g', 12, 64)
}

// evalExpr evaluates a flat +-*/ expression with the usual precedence. A
// leading minus is folded into the first number.
func evalExpr(expr string) (float64, error) {
	expr = strings.ReplaceAll(expr, " ", "")
	if expr == "" {
		return 0, fmt.Errorf("empty expression")
	}

	var nums []float64
	var ops []byte
	cur := ""
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch c {
		case '+', '-', '*', '/':
			if cur == "" && c == '-' && len(nums) == len(ops) {
				// Unary minus.
				cur = "-"
				continue
			}
			if cur == "" {
				return 0, fmt.Errorf("misplaced operator %q", string(c))
			}
			n, err := strconv.ParseFloat(cur, 64)
			if err != nil {
				return 0, fmt.Errorf("bad number %q", cur)
			}
			nums = append(nums, n)
			ops = append(ops, c)
			cur = ""
		default:
			cur += string(c)
		}
	}
	if cur == "" {
		return 0, fmt.Errorf("trailing operator")
	}
	n, err := strconv.ParseFloat(cur, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", cur)
	}
	nums = append(nums, n)

	// First * and /, then + and -.
	for i := 0; i < len(ops); {
		if ops[i] == '*' || ops[i] == '/' {
			var v float64
			if ops[i] == '*' {
				v = nums[i] * nums[i+1]
			} else {
				if nums[i+1] == 0 {
					return 0, fmt.Errorf("division by zero")
				}
				v = nums[i] / nums[i+1]
			}
			nums[i] = v
			nums = append(nums[:i+1], nums[i+2:]...)
			ops = append(ops[:i], ops[i+1:]...)
		} else {
			i++
		}
	}
	acc := nums[0]
	for i, op := range ops {
		if op == '+' {
			acc += nums[i+1]
		} else {
			acc -= nums[i+1]
		}
	}
	return acc, nil
}

func (b *calculatorBody) Render(width, height int) string {
	var sb strings.Builder
	expr := b.expr
	if expr == "" {
		expr = "0"
	}
	fmt.Fprintf(&sb, "%s\n", expr)
	if b.errMsg != "" {
		fmt.Fprintf(&sb, "\n! %s\n", b.errMsg)
	} else if b.result != "" {
		fmt.Fprintf(&sb, "\n= %s\n", b.result)
	}
	sb.WriteString("\ndigits/ops type · = eval · c clear")
	return strings.TrimRight(sb.String(), "\n")
}

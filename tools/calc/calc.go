// Package calc evaluates a single binary operation on two decimal operands.
package calc

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// DivisionByZero is the result text of a division by zero.
const DivisionByZero = "division by zero"

var ErrUnknownOperator = errors.New("unknown operator")

// Operator is one of the four arithmetic operations.
type Operator string

const (
	Add      Operator = "+"
	Subtract Operator = "-"
	Multiply Operator = "*"
	Divide   Operator = "/"
)

// ParseOperator accepts the ASCII symbols, their typographic variants and the
// operation names.
func ParseOperator(s string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "+", "add", "plus":
		return Add, nil
	case "-", "−", "sub", "subtract", "minus":
		return Subtract, nil
	case "*", "×", "x", "mul", "multiply":
		return Multiply, nil
	case "/", "÷", "div", "divide":
		return Divide, nil
	}
	return "", ErrUnknownOperator
}

// Result of an evaluation. Text holds DivisionByZero instead of a number when
// the divisor is zero. An overflowing result keeps Value at 0 and spells the
// outcome in Text as "Infinity", "-Infinity" or "NaN".
type Result struct {
	Value          float64 `json:"value"`
	Text           string  `json:"text"`
	DivisionByZero bool    `json:"divisionByZero"`
}

// Parse reads a decimal operand. Anything unparsable or not finite is 0.
func Parse(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// Evaluate applies op to the parsed operands.
func Evaluate(op1, op2 string, op Operator) (Result, error) {
	a, b := Parse(op1), Parse(op2)

	var v float64
	switch op {
	case Add:
		v = a + b
	case Subtract:
		v = a - b
	case Multiply:
		v = a * b
	case Divide:
		if b == 0 {
			return Result{Text: DivisionByZero, DivisionByZero: true}, nil
		}
		v = a / b
	default:
		return Result{}, ErrUnknownOperator
	}

	switch {
	case math.IsNaN(v):
		return Result{Text: "NaN"}, nil
	case math.IsInf(v, 1):
		return Result{Text: "Infinity"}, nil
	case math.IsInf(v, -1):
		return Result{Text: "-Infinity"}, nil
	}
	return Result{Value: v, Text: strconv.FormatFloat(v, 'g', -1, 64)}, nil
}

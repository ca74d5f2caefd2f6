package calculator

import (
	"errors"
	"fmt"
)

// ErrDivisionByZero is returned by Divide when the divisor is zero.
// Callers get this instead of an IEEE Inf/NaN result.
var ErrDivisionByZero = errors.New("cannot divide by zero")

// Operation names one of the four supported arithmetic operations.
type Operation string

const (
	OpAdd      Operation = "add"
	OpSubtract Operation = "subtract"
	OpMultiply Operation = "multiply"
	OpDivide   Operation = "divide"
)

// ParseOperation maps a request string onto an Operation.
func ParseOperation(s string) (Operation, error) {
	switch Operation(s) {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return Operation(s), nil
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// Symbol returns the infix symbol used when rendering an expression.
func (op Operation) Symbol() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	}
	return "?"
}

// Engine performs the four basic operations while tracking the running
// result, the number of operations attempted and the name of the last
// operation that succeeded. The zero value is ready to use.
//
// Engine is not safe for concurrent use; HTTP handlers create one per
// request, the CLI menu loop keeps one for its whole session.
type Engine struct {
	result     float64
	operations int
	lastOp     Operation
}

func (e *Engine) Add(a, b float64) float64 {
	e.operations++
	e.result = a + b
	e.lastOp = OpAdd
	return e.result
}

func (e *Engine) Subtract(a, b float64) float64 {
	e.operations++
	e.result = a - b
	e.lastOp = OpSubtract
	return e.result
}

func (e *Engine) Multiply(a, b float64) float64 {
	e.operations++
	e.result = a * b
	e.lastOp = OpMultiply
	return e.result
}

// Divide returns ErrDivisionByZero when b is zero. The attempt still
// counts against the operation counter, but the running result and last
// operation are left untouched.
func (e *Engine) Divide(a, b float64) (float64, error) {
	e.operations++
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	e.result = a / b
	e.lastOp = OpDivide
	return e.result, nil
}

// Apply dispatches op onto the matching method.
func (e *Engine) Apply(op Operation, a, b float64) (float64, error) {
	switch op {
	case OpAdd:
		return e.Add(a, b), nil
	case OpSubtract:
		return e.Subtract(a, b), nil
	case OpMultiply:
		return e.Multiply(a, b), nil
	case OpDivide:
		return e.Divide(a, b)
	}
	return 0, fmt.Errorf("unknown operation %q", op)
}

// Result returns the result of the last successful operation.
func (e *Engine) Result() float64 { return e.result }

// Operations returns how many operations have been attempted.
func (e *Engine) Operations() int { return e.operations }

// LastOperation returns the name of the last successful operation, or
// the empty string when none has run yet.
func (e *Engine) LastOperation() Operation { return e.lastOp }

// Package calculator implements the four arithmetic operations behind the
// REST service. Add, Subtract and Multiply are total; Divide is the single
// operation with a domain error.
package calculator

import "errors"

// ErrDivisionByZero is returned by Divide when the divisor is zero. The
// message is part of the API contract and surfaces verbatim in the HTTP
// error body.
var ErrDivisionByZero = errors.New("Division by zero is not allowed")

// Add returns the sum of a and b.
func Add(a, b float64) float64 {
	return a + b
}

// Subtract returns the difference of a and b.
func Subtract(a, b float64) float64 {
	return a - b
}

// Multiply returns the product of a and b.
func Multiply(a, b float64) float64 {
	return a * b
}

// Divide returns the quotient of a and b, or ErrDivisionByZero when b is zero.
func Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}

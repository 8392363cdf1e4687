package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     float64
		expected float64
	}{
		{name: "positive numbers", a: 2, b: 3, expected: 5},
		{name: "negative numbers", a: -2, b: -3, expected: -5},
		{name: "mixed signs", a: -2, b: 3, expected: 1},
		{name: "floats", a: 2.5, b: 3.5, expected: 6.0},
		{name: "zero operand", a: 5, b: 0, expected: 5},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Add(tc.a, tc.b))
			// Addition is commutative.
			assert.Equal(t, Add(tc.a, tc.b), Add(tc.b, tc.a))
		})
	}
}

func TestSubtract(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     float64
		expected float64
	}{
		{name: "positive numbers", a: 5, b: 3, expected: 2},
		{name: "negative numbers", a: -5, b: -3, expected: -2},
		{name: "mixed signs", a: 5, b: -3, expected: 8},
		{name: "floats", a: 5.5, b: 2.5, expected: 3.0},
		{name: "zero operand", a: 5, b: 0, expected: 5},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Subtract(tc.a, tc.b))
		})
	}
}

func TestMultiply(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     float64
		expected float64
	}{
		{name: "positive numbers", a: 4, b: 3, expected: 12},
		{name: "negative numbers", a: -4, b: -3, expected: 12},
		{name: "mixed signs", a: -4, b: 3, expected: -12},
		{name: "floats", a: 2.5, b: 4, expected: 10.0},
		{name: "zero operand", a: 5, b: 0, expected: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Multiply(tc.a, tc.b))
		})
	}
}

func TestDivide(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     float64
		expected float64
	}{
		{name: "positive numbers", a: 10, b: 2, expected: 5},
		{name: "negative numbers", a: -10, b: -2, expected: 5},
		{name: "mixed signs", a: -10, b: 2, expected: -5},
		{name: "floats", a: 7.5, b: 2.5, expected: 3.0},
		{name: "zero dividend", a: 0, b: 5, expected: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Divide(tc.a, tc.b)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestDivide_ByZero(t *testing.T) {
	_, err := Divide(10, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDivisionByZero)
	assert.Equal(t, "Division by zero is not allowed", err.Error())
}

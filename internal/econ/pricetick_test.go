package econ

import (
	"math"
	"testing"
)

const tol = 1e-10

func almostEq(a, b float64) bool { return math.Abs(a-b) <= tol }

func TestRoundToTick(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		x        float64
		tick     float64
		expected float64
	}{
		{"basic rounding down", 1.2345, 0.01, 1.23},
		{"tie rounds away from zero", 1.235, 0.01, 1.24},
		{"negative tie rounds away from zero", -1.235, 0.01, -1.24},
		{"negative basic rounding", -1.2345, 0.01, -1.23},
		{"larger tick size", 1.27, 0.05, 1.25},
		{"exact multiple", 1.25, 0.05, 1.25},
		{"tick larger than magnitude", 0.004, 0.01, 0.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RoundToTick(tt.x, tt.tick)
			if !almostEq(result, tt.expected) {
				t.Errorf("RoundToTick(%v, %v) = %v, expected %v", tt.x, tt.tick, result, tt.expected)
			}
		})
	}
}

func TestFloorToTick(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		x        float64
		tick     float64
		expected float64
	}{
		{"exact multiple", 1.30, 0.05, 1.30},
		{"basic floor", 1.237, 0.01, 1.23},
		{"negative values", -1.237, 0.01, -1.24},
		{"negative exact multiple", -1.25, 0.05, -1.25},
		{"negative tick uses absolute value", 1.237, -0.01, 1.23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FloorToTick(tt.x, tt.tick)
			if !almostEq(result, tt.expected) {
				t.Errorf("FloorToTick(%v, %v) = %v, expected %v", tt.x, tt.tick, result, tt.expected)
			}
		})
	}
}

func TestCeilToTick(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		x        float64
		tick     float64
		expected float64
	}{
		{"exact multiple", 1.30, 0.05, 1.30},
		{"basic ceil", 1.231, 0.01, 1.24},
		{"negative values", -1.231, 0.01, -1.23},
		{"negative exact multiple", -1.25, 0.05, -1.25},
		{"negative tick uses absolute value", -1.231, -0.01, -1.23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CeilToTick(tt.x, tt.tick)
			if !almostEq(result, tt.expected) {
				t.Errorf("CeilToTick(%v, %v) = %v, expected %v", tt.x, tt.tick, result, tt.expected)
			}
		})
	}
}

func TestTickRoundingEdgeCases(t *testing.T) {
	t.Run("zero tick returns input", func(t *testing.T) {
		input := 1.2345
		if result := RoundToTick(input, 0); result != input {
			t.Errorf("RoundToTick(%v, 0) = %v, expected %v", input, result, input)
		}
	})

	t.Run("NaN inputs return unchanged", func(t *testing.T) {
		nan := math.NaN()
		if result := RoundToTick(nan, 0.01); !math.IsNaN(result) {
			t.Errorf("RoundToTick(NaN, 0.01) = %v, expected NaN", result)
		}
	})

	t.Run("infinite inputs return unchanged", func(t *testing.T) {
		posInf := math.Inf(1)
		if result := RoundToTick(posInf, 0.01); result != posInf {
			t.Errorf("RoundToTick(+Inf, 0.01) = %v, expected +Inf", result)
		}
	})

	t.Run("negative tick uses absolute value", func(t *testing.T) {
		result := RoundToTick(1.235, -0.01)
		expected := 1.24
		if !almostEq(result, expected) {
			t.Errorf("RoundToTick(1.235, -0.01) = %v, expected %v", result, expected)
		}
	})
}

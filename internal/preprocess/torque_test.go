package preprocess_test

import (
	"math"
	"testing"

	"github.com/paveg/tabprep/internal/preprocess"
	"github.com/stretchr/testify/assert"
)

func TestParseTorque(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"190 Nm", 190},
		{"250Nm", 250},
		{"190Nm@ 2000rpm", 190},
		{"22.4@ 1,750rpm", 22.4},
		{"113.75nm@ 4000rpm", 113.75},
		{" 250 Nm ", 250},
		{"-5 Nm", -5},
		{"1.5e2Nm", 150},
		{"1e", 1},
		{".5kg", 0.5},
		{"12.5.3", 12.5},
		{"", 0},
		{"   ", 0},
		{"Nm 190", 0},
		{"+", 0},
		{"torque", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.InDelta(t, tt.expected, preprocess.ParseTorque(tt.input), 1e-9)
		})
	}
}

func TestParseTorque_Overflow(t *testing.T) {
	tests := []struct {
		input string
		sign  int
	}{
		{"1e400 Nm", 1},
		{"-1e400", -1},
		{"1e400Nm@ 2000rpm", 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.True(t, math.IsInf(preprocess.ParseTorque(tt.input), tt.sign))
		})
	}
}

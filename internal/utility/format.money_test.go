// Package utility - Test quy tắc làm tròn và định dạng số tiền.
package utility

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{10.004, 10.00},
		{10.006, 10.01},
		{115.0, 115.0},
		{-2.004, -2.0},
		{-2.006, -2.01},
		{0, 0},
		{33.333333, 33.33},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, Round2(c.in), 1e-9, "Round2(%v)", c.in)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "25.00", FormatAmount(25))
	assert.Equal(t, "5.50", FormatAmount(5.5))
	assert.Equal(t, "-2.00", FormatAmount(-2), "số âm phải giữ dấu")
	assert.Equal(t, "0.00", FormatAmount(0))
}

func TestFormatAmount_NegativeZero(t *testing.T) {
	negZero := -1.0 * 0.0
	assert.Equal(t, "0.00", FormatAmount(negZero), "-0 phải chuẩn hóa, không được in -0.00")
}

package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
		wantOK bool
	}{
		{"odd", []float64{130, 100, 110}, 110, true},
		{"even", []float64{4, 1, 3, 2}, 2.5, true},
		{"single", []float64{-7}, -7, true},
		{"empty", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Median(tt.values)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMedian_DoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Median(values)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestSampleStdDev(t *testing.T) {
	std, ok := SampleStdDev([]float64{100, 110, 130})
	assert.True(t, ok)
	assert.InDelta(t, 15.2753, std, 1e-4)

	std, ok = SampleStdDev([]float64{5, 5, 5})
	assert.True(t, ok)
	assert.Equal(t, 0.0, std)

	_, ok = SampleStdDev([]float64{5})
	assert.False(t, ok)
}

func TestQuantile(t *testing.T) {
	values := []float64{40, 10, 30, 20}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 10},
		{0.25, 17.5},
		{0.5, 25},
		{0.75, 32.5},
		{1, 40},
	}
	for _, tt := range tests {
		got, ok := Quantile(values, tt.p)
		assert.True(t, ok)
		assert.InDelta(t, tt.want, got, 1e-9, "p=%v", tt.p)
	}

	_, ok := Quantile(nil, 0.5)
	assert.False(t, ok)
}

func TestZScore(t *testing.T) {
	z, ok := ZScore(120, 110, 15.275252316519467)
	assert.True(t, ok)
	assert.InDelta(t, 0.6547, z, 1e-4)

	for _, spread := range []float64{0, math.NaN(), math.Inf(1)} {
		_, ok := ZScore(1, 0, spread)
		assert.False(t, ok)
	}
}

func TestMean(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"values", []float64{100, 110, 130}, 113.33333333333333},
		{"negative", []float64{-50, -30}, -40},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Mean(tt.values), 1e-9)
		})
	}
}

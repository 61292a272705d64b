package grade

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/Blanc-byte/gradingsystem/core/roster"
)

func quarters(grades ...interface{}) roster.QuarterGrades {
	qg := roster.NewQuarterGrades()
	for i, g := range grades {
		if f, ok := g.(float64); ok {
			qg[i+1] = null.Float64From(f)
		}
	}
	return qg
}

func TestSubjectFinal(t *testing.T) {
	tests := []struct {
		name      string
		qg        roster.QuarterGrades
		wantFinal float64
		wantOk    bool
	}{
		{name: "no grades", qg: quarters(), wantOk: false},
		{name: "nil map", qg: nil, wantOk: false},
		{name: "single quarter", qg: quarters(88.0), wantFinal: 88, wantOk: true},
		{name: "two quarters", qg: quarters(80.0, 90.0), wantFinal: 85, wantOk: true},
		{name: "gap ignored", qg: quarters(80.0, nil, 90.0, nil), wantFinal: 85, wantOk: true},
		{name: "all quarters", qg: quarters(75.0, 80.0, 85.0, 90.0), wantFinal: 82.5, wantOk: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			final, ok := SubjectFinal(tt.qg)
			assert.Equal(t, tt.wantOk, ok)
			assert.InDelta(t, tt.wantFinal, final, 1e-9)
		})
	}
}

func TestGeneralAverage(t *testing.T) {
	assert.Equal(t, 0.0, GeneralAverage(nil))
	assert.Equal(t, 0.0, GeneralAverage([]float64{}))
	assert.InDelta(t, 77.5, GeneralAverage([]float64{85, 70}), 1e-9)
	assert.InDelta(t, 90.0, GeneralAverage([]float64{90}), 1e-9)
}

func TestRemarks(t *testing.T) {
	tests := []struct {
		avg  float64
		want string
	}{
		{avg: 0, want: RemarksFailed},
		{avg: 74.99, want: RemarksFailed},
		{avg: 75, want: RemarksPassed},
		{avg: 98.5, want: RemarksPassed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Remarks(tt.avg), "Remarks(%v)", tt.avg)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		x    float64
		want float64
	}{
		{x: 85.666666, want: 85.67},
		{x: 85.664, want: 85.66},
		{x: 77.5, want: 77.5},
		{x: 0.125, want: 0.13},
		{x: -0.125, want: -0.13},
		{x: 90, want: 90},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Round2(tt.x), 1e-9, "Round2(%v)", tt.x)
	}
	assert.True(t, math.IsNaN(Round2(math.NaN())))
}

func TestCountFailed(t *testing.T) {
	assert.Equal(t, 0, CountFailed(quarters()))
	assert.Equal(t, 0, CountFailed(quarters(75.0, 80.0)))
	assert.Equal(t, 1, CountFailed(quarters(74.0, 80.0)))
	assert.Equal(t, 2, CountFailed(quarters(60.0, nil, 74.9, 75.0)))
}

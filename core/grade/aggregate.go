package grade

import (
	"math"

	"github.com/Blanc-byte/gradingsystem/core/roster"
)

const (
	PassingGrade = 75

	RemarksPassed = "PASSED"
	RemarksFailed = "FAILED"
)

// SubjectFinal returns the mean of the recorded quarter grades.
// ok is false when no quarter has a grade, in which case the subject is left out of the general average.
func SubjectFinal(qg roster.QuarterGrades) (final float64, ok bool) {
	var sum float64
	var n int
	for q := roster.FirstQuarter; q <= roster.LastQuarter; q++ {
		if g, found := qg[q]; found && g.Valid {
			sum += g.Float64
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// GeneralAverage returns the mean of the subject finals, 0 when there are none.
func GeneralAverage(finals []float64) float64 {
	if len(finals) == 0 {
		return 0
	}
	var sum float64
	for _, f := range finals {
		sum += f
	}
	return sum / float64(len(finals))
}

func Remarks(avg float64) string {
	if avg >= PassingGrade {
		return RemarksPassed
	}
	return RemarksFailed
}

// Round2 rounds x to two decimal places, half away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// CountFailed returns the number of recorded quarter grades below PassingGrade.
func CountFailed(qg roster.QuarterGrades) int {
	var n int
	for q := roster.FirstQuarter; q <= roster.LastQuarter; q++ {
		if g, found := qg[q]; found && g.Valid && g.Float64 < PassingGrade {
			n++
		}
	}
	return n
}

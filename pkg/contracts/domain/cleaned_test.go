package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLetterGrade(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{score: 100, want: "A"},
		{score: 90, want: "A"},
		{score: 89.9, want: "B"},
		{score: 80, want: "B"},
		{score: 70, want: "C"},
		{score: 69.5, want: "D"},
		{score: 60, want: "D"},
		{score: 59.9, want: "F"},
		{score: 0, want: "F"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LetterGrade(tt.score), "score %v", tt.score)
	}
}

func TestGradeDrop(t *testing.T) {
	r := CleanedRecord{MidtermGrade: 80, FinalGrade: 65}
	assert.Equal(t, 15.0, r.GradeDrop())

	improved := CleanedRecord{MidtermGrade: 60, FinalGrade: 75}
	assert.Equal(t, -15.0, improved.GradeDrop())
}

func TestHasAge(t *testing.T) {
	assert.True(t, Student{Age: 21}.HasAge())
	assert.False(t, Student{Age: math.NaN()}.HasAge())
}

func TestHasFinalGrade(t *testing.T) {
	assert.True(t, GradeRecord{FinalGrade: 88}.HasFinalGrade())
	assert.False(t, GradeRecord{FinalGrade: math.NaN()}.HasFinalGrade())
}
